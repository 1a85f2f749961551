package distribution

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestCategoricalLogProb(t *testing.T) {
	const threshold float64 = 0.00001

	logitsBacking := []float64{1, 2, 3}
	xBacking := []int{0, 2, 1, 2}

	// Normalize by hand
	sum := 0.
	for _, l := range logitsBacking {
		sum += math.Exp(l)
	}
	expected := make([]float64, len(xBacking))
	for i, class := range xBacking {
		expected[i] = logitsBacking[class] - math.Log(sum)
	}

	g := G.NewGraph()
	logitsT := tensor.NewDense(
		tensor.Float64,
		[]int{len(logitsBacking)},
		tensor.WithBacking(logitsBacking),
	)
	logits := G.NewVector(g, logitsT.Dtype(), G.WithValue(logitsT),
		G.WithName("logits"))

	c, err := NewCategorical(logits, uint64(29))
	if err != nil {
		t.Error(err)
	}

	if c.Dtype() != tensor.Int {
		t.Errorf("expected samples of dtype %v but got %v", tensor.Int,
			c.Dtype())
	}
	if c.NumEvents() != len(logitsBacking) {
		t.Errorf("expected %v events but got %v", len(logitsBacking),
			c.NumEvents())
	}

	xT := tensor.NewDense(
		tensor.Int,
		[]int{len(xBacking)},
		tensor.WithBacking(xBacking),
	)
	x := G.NewVector(g, xT.Dtype(), G.WithValue(xT), G.WithName("x"))

	logProb, err := c.LogProb(x)
	if err != nil {
		t.Error(err)
	}
	var logProbVal G.Value
	G.Read(logProb, &logProbVal)

	vm := G.NewTapeMachine(g)
	vm.RunAll()

	out := logProbVal.Data().([]float64)
	for i := range expected {
		if math.Abs(out[i]-expected[i]) > threshold {
			t.Errorf("expected: %v received: %v for class: %v",
				expected[i], out[i], xBacking[i])
		}
	}

	vm.Reset()
	vm.Close()
}

func TestCategoricalEntropy(t *testing.T) {
	const threshold float64 = 0.00001

	logitsBacking := []float64{0.5, -1, 2, 0}

	// Compute the entropy by hand
	sum := 0.
	for _, l := range logitsBacking {
		sum += math.Exp(l)
	}
	expected := 0.
	for _, l := range logitsBacking {
		p := math.Exp(l) / sum
		expected -= p * math.Log(p)
	}

	g := G.NewGraph()
	logitsT := tensor.NewDense(
		tensor.Float64,
		[]int{len(logitsBacking)},
		tensor.WithBacking(logitsBacking),
	)
	logits := G.NewVector(g, logitsT.Dtype(), G.WithValue(logitsT),
		G.WithName("logits"))

	c, err := NewCategorical(logits, uint64(29))
	if err != nil {
		t.Error(err)
	}

	entropy, err := c.Entropy()
	if err != nil {
		t.Error(err)
	}
	var eVal G.Value
	G.Read(entropy, &eVal)

	vm := G.NewTapeMachine(g)
	vm.RunAll()

	out := eVal.Data().(float64)
	if math.Abs(out-expected) > threshold {
		t.Errorf("expected: %v received: %v", expected, out)
	}

	vm.Reset()
	vm.Close()
}

func TestCategoricalInvalid(t *testing.T) {
	g := G.NewGraph()

	logitsT := tensor.NewDense(
		tensor.Float64,
		[]int{2, 2, 2},
		tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6, 7, 8}),
	)
	cube := G.NewTensor(g, logitsT.Dtype(), 3, G.WithValue(logitsT),
		G.WithName("cube"))

	if _, err := NewCategorical(cube, 1); err == nil {
		t.Error("expected an error for logits of rank 3")
	}

	if _, err := NewCategorical(nil, 1); err == nil {
		t.Error("expected an error for nil logits")
	}

	intT := tensor.NewDense(
		tensor.Int,
		[]int{2},
		tensor.WithBacking([]int{1, 2}),
	)
	intLogits := G.NewVector(g, intT.Dtype(), G.WithValue(intT),
		G.WithName("intLogits"))

	if _, err := NewCategorical(intLogits, 1); err == nil {
		t.Error("expected an error for integer logits")
	}

	// Class indices must be integers
	logits2T := tensor.NewDense(
		tensor.Float64,
		[]int{3},
		tensor.WithBacking([]float64{1, 2, 3}),
	)
	logits := G.NewVector(g, logits2T.Dtype(), G.WithValue(logits2T),
		G.WithName("vecLogits"))

	c, err := NewCategorical(logits, 1)
	if err != nil {
		t.Error(err)
	}

	floatT := tensor.NewDense(
		tensor.Float64,
		[]int{2},
		tensor.WithBacking([]float64{0, 1}),
	)
	floatX := G.NewVector(g, floatT.Dtype(), G.WithValue(floatT),
		G.WithName("floatX"))

	if _, err := c.LogProb(floatX); err == nil {
		t.Error("expected an error for float class indices")
	}

	if _, err := c.Rsample(1); err == nil {
		t.Error("expected an error from Rsample")
	}
}

// TestCategoricalBatch tests a batch of categorical distributions
// parameterized by a matrix of logits, one distribution per row
func TestCategoricalBatch(t *testing.T) {
	const threshold float64 = 0.00001
	const numSamples = 40

	logitsBacking := [][]float64{
		{1, 2, 3},
		{-1, 0, 1},
	}
	xBacking := []int{2, 0}

	// Normalize by hand
	expectedLogProb := make([]float64, len(xBacking))
	expectedEntropy := make([]float64, len(logitsBacking))
	for b, row := range logitsBacking {
		sum := 0.
		for _, l := range row {
			sum += math.Exp(l)
		}
		expectedLogProb[b] = row[xBacking[b]] - math.Log(sum)
		for _, l := range row {
			p := math.Exp(l) / sum
			expectedEntropy[b] -= p * math.Log(p)
		}
	}

	g := G.NewGraph()
	logitsT := tensor.NewDense(
		tensor.Float64,
		[]int{2, 3},
		tensor.WithBacking([]float64{1, 2, 3, -1, 0, 1}),
	)
	logits := G.NewMatrix(g, logitsT.Dtype(), G.WithValue(logitsT),
		G.WithName("logits"))

	c, err := NewCategorical(logits, uint64(31))
	if err != nil {
		t.Error(err)
	}

	if !c.Shape().Eq(tensor.Shape{2}) {
		t.Errorf("expected batch shape (2,) but got %v", c.Shape())
	}
	if c.NumEvents() != 3 {
		t.Errorf("expected 3 events but got %v", c.NumEvents())
	}

	xT := tensor.NewDense(
		tensor.Int,
		[]int{len(xBacking)},
		tensor.WithBacking(xBacking),
	)
	x := G.NewVector(g, xT.Dtype(), G.WithValue(xT), G.WithName("x"))

	logProb, err := c.LogProb(x)
	if err != nil {
		t.Error(err)
	}
	var logProbVal G.Value
	G.Read(logProb, &logProbVal)

	entropy, err := c.Entropy()
	if err != nil {
		t.Error(err)
	}
	var eVal G.Value
	G.Read(entropy, &eVal)

	samples, err := c.Sample(numSamples)
	if err != nil {
		t.Error(err)
	}
	var samplesVal G.Value
	G.Read(samples, &samplesVal)

	vm := G.NewTapeMachine(g)
	vm.RunAll()

	logProbOut := logProbVal.Data().([]float64)
	for b := range expectedLogProb {
		if math.Abs(logProbOut[b]-expectedLogProb[b]) > threshold {
			t.Errorf("expected log probability: %v received: %v for "+
				"row: %v", expectedLogProb[b], logProbOut[b], b)
		}
	}

	entropyOut := eVal.Data().([]float64)
	for b := range expectedEntropy {
		if math.Abs(entropyOut[b]-expectedEntropy[b]) > threshold {
			t.Errorf("expected entropy: %v received: %v for row: %v",
				expectedEntropy[b], entropyOut[b], b)
		}
	}

	expectedShape := tensor.Shape{numSamples, 2}
	if !samplesVal.Shape().Eq(expectedShape) {
		t.Errorf("expected sample shape %v received %v", expectedShape,
			samplesVal.Shape())
	}
	samplesOut := samplesVal.Data().([]int)
	for i := range samplesOut {
		if samplesOut[i] < 0 || samplesOut[i] >= 3 {
			t.Errorf("expected a class index in [0, 3) but got %v",
				samplesOut[i])
		}
	}

	vm.Reset()
	vm.Close()
}
