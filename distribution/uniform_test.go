package distribution

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestUniformProb(t *testing.T) {
	const threshold float64 = 0.00001

	const min float64 = -1.
	const max float64 = 3.

	dist := distuv.Uniform{Min: min, Max: max}

	// Values inside and outside the support
	xBacking := []float64{-2, -1, 0, 1, 2.9, 4}

	g := G.NewGraph()
	minNode := G.NewScalar(g, tensor.Float64, G.WithName("min"))
	if err := G.Let(minNode, min); err != nil {
		t.Error(err)
	}
	maxNode := G.NewScalar(g, tensor.Float64, G.WithName("max"))
	if err := G.Let(maxNode, max); err != nil {
		t.Error(err)
	}

	u, err := NewUniform(minNode, maxNode, uint64(3))
	if err != nil {
		t.Error(err)
	}

	xT := tensor.NewDense(
		tensor.Float64,
		[]int{len(xBacking)},
		tensor.WithBacking(xBacking),
	)
	x := G.NewVector(g, xT.Dtype(), G.WithValue(xT), G.WithName("x"))

	prob, err := u.Prob(x)
	if err != nil {
		t.Error(err)
	}
	var probVal G.Value
	G.Read(prob, &probVal)

	vm := G.NewTapeMachine(g)
	vm.RunAll()

	probOut := probVal.Data().([]float64)
	for j := range probOut {
		if math.Abs(probOut[j]-dist.Prob(xBacking[j])) > threshold {
			t.Errorf("expected: %v received: %v for x: %v",
				dist.Prob(xBacking[j]), probOut[j], xBacking[j])
		}
	}

	vm.Reset()
	vm.Close()
}

func TestUniformCdf(t *testing.T) {
	const threshold float64 = 0.00001

	const min float64 = 0.
	const max float64 = 2.

	dist := distuv.Uniform{Min: min, Max: max}

	// Values below, inside, and above the support: the CDF saturates
	// at 0 and 1
	xBacking := []float64{-1, 0, 0.5, 1, 1.5, 3}

	g := G.NewGraph()
	minNode := G.NewScalar(g, tensor.Float64, G.WithName("min"))
	if err := G.Let(minNode, min); err != nil {
		t.Error(err)
	}
	maxNode := G.NewScalar(g, tensor.Float64, G.WithName("max"))
	if err := G.Let(maxNode, max); err != nil {
		t.Error(err)
	}

	u, err := NewUniform(minNode, maxNode, uint64(3))
	if err != nil {
		t.Error(err)
	}

	xT := tensor.NewDense(
		tensor.Float64,
		[]int{len(xBacking)},
		tensor.WithBacking(xBacking),
	)
	x := G.NewVector(g, xT.Dtype(), G.WithValue(xT), G.WithName("x"))

	cdf, err := u.Cdf(x)
	if err != nil {
		t.Error(err)
	}
	var cdfVal G.Value
	G.Read(cdf, &cdfVal)

	vm := G.NewTapeMachine(g)
	vm.RunAll()

	cdfOut := cdfVal.Data().([]float64)
	for j := range cdfOut {
		if math.Abs(cdfOut[j]-dist.CDF(xBacking[j])) > threshold {
			t.Errorf("expected: %v received: %v for x: %v",
				dist.CDF(xBacking[j]), cdfOut[j], xBacking[j])
		}
	}

	vm.Reset()
	vm.Close()
}

func TestUniformEntropy(t *testing.T) {
	const threshold float64 = 0.00001

	const min float64 = -0.5
	const max float64 = 1.5

	dist := distuv.Uniform{Min: min, Max: max}

	g := G.NewGraph()
	minNode := G.NewScalar(g, tensor.Float64, G.WithName("min"))
	if err := G.Let(minNode, min); err != nil {
		t.Error(err)
	}
	maxNode := G.NewScalar(g, tensor.Float64, G.WithName("max"))
	if err := G.Let(maxNode, max); err != nil {
		t.Error(err)
	}

	u, err := NewUniform(minNode, maxNode, uint64(3))
	if err != nil {
		t.Error(err)
	}

	entropy, err := u.Entropy()
	if err != nil {
		t.Error(err)
	}
	var eVal G.Value
	G.Read(entropy, &eVal)

	vm := G.NewTapeMachine(g)
	vm.RunAll()

	if math.Abs(dist.Entropy()-eVal.Data().([]float64)[0]) > threshold {
		t.Errorf("expected: %v received: %v", dist.Entropy(),
			eVal.Data().([]float64)[0])
	}

	vm.Reset()
	vm.Close()
}

func TestUniformRsample(t *testing.T) {
	const numSamples = 100

	const min float64 = 2.
	const max float64 = 5.

	g := G.NewGraph()
	minNode := G.NewScalar(g, tensor.Float64, G.WithName("min"))
	if err := G.Let(minNode, min); err != nil {
		t.Error(err)
	}
	maxNode := G.NewScalar(g, tensor.Float64, G.WithName("max"))
	if err := G.Let(maxNode, max); err != nil {
		t.Error(err)
	}

	u, err := NewUniform(minNode, maxNode, uint64(7))
	if err != nil {
		t.Error(err)
	}

	samples, err := u.Rsample(numSamples)
	if err != nil {
		t.Error(err)
	}
	var samplesVal G.Value
	G.Read(samples, &samplesVal)

	vm := G.NewTapeMachine(g)
	vm.RunAll()

	expected := tensor.Shape{numSamples, 1}
	if !samplesVal.Shape().Eq(expected) {
		t.Errorf("expected shape %v received %v", expected,
			samplesVal.Shape())
	}

	data := samplesVal.Data().([]float64)
	for i := range data {
		if data[i] < min || data[i] >= max {
			t.Errorf("sample %v outside [%v, %v)", data[i], min, max)
		}
	}

	vm.Reset()
	vm.Close()
}

// TestUniformSampleBlocksGradient tests that no gradient flows from
// non-reparameterized samples to the distribution bounds
func TestUniformSampleBlocksGradient(t *testing.T) {
	g := G.NewGraph()
	minNode := G.NewScalar(g, tensor.Float64, G.WithName("min"))
	if err := G.Let(minNode, 0.0); err != nil {
		t.Error(err)
	}
	maxNode := G.NewScalar(g, tensor.Float64, G.WithName("max"))
	if err := G.Let(maxNode, 1.0); err != nil {
		t.Error(err)
	}

	u, err := NewUniform(minNode, maxNode, uint64(7))
	if err != nil {
		t.Error(err)
	}

	samples, err := u.Sample(10)
	if err != nil {
		t.Error(err)
	}

	loss := G.Must(G.Mean(samples))
	if _, err := G.Grad(loss, maxNode); err == nil {
		t.Error("expected an error when differentiating through " +
			"non-reparameterized samples")
	}
}

func TestUniformInvalid(t *testing.T) {
	g := G.NewGraph()
	minT := tensor.NewDense(
		tensor.Float64,
		[]int{2},
		tensor.WithBacking([]float64{0, 0}),
	)
	min := G.NewVector(g, minT.Dtype(), G.WithValue(minT),
		G.WithName("min"))

	maxT := tensor.NewDense(
		tensor.Float64,
		[]int{3},
		tensor.WithBacking([]float64{1, 1, 1}),
	)
	max := G.NewVector(g, maxT.Dtype(), G.WithValue(maxT),
		G.WithName("max"))

	if _, err := NewUniform(min, max, 1); err == nil {
		t.Error("expected an error for mismatched shapes")
	}
}
