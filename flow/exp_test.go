package flow

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestExpTransform(t *testing.T) {
	const tolerance float64 = 0.00001

	shape := []int{2, 3}
	backing := []float64{0, 0.5, 1, -0.5, -1, 2}

	f, err := NewExp(1)
	if err != nil {
		t.Error(err)
	}

	g := G.NewGraph()
	xT := tensor.NewDense(
		tensor.Float64,
		shape,
		tensor.WithBacking(backing),
	)
	x := G.NewMatrix(g, tensor.Float64, G.WithValue(xT))

	y, logDet, err := f.Transform(x)
	if err != nil {
		t.Error(err)
	}
	var yVal, logDetVal G.Value
	G.Read(y, &yVal)
	G.Read(logDet, &logDetVal)

	vm := G.NewTapeMachine(g)
	err = vm.RunAll()
	if err != nil {
		t.Error(err)
	}

	yOut := yVal.Data().([]float64)
	for i := range backing {
		if math.Abs(yOut[i]-math.Exp(backing[i])) > tolerance {
			t.Errorf("expected: %v received: %v", math.Exp(backing[i]),
				yOut[i])
		}
	}

	// The log determinant of y = exp(x) is the sum of x over the
	// event dimensions
	logDetOut := logDetVal.Data().([]float64)
	for i := 0; i < shape[0]; i++ {
		expected := 0.
		for j := 0; j < shape[1]; j++ {
			expected += backing[i*shape[1]+j]
		}

		if math.Abs(logDetOut[i]-expected) > tolerance {
			t.Errorf("expected log det: %v received: %v", expected,
				logDetOut[i])
		}
	}

	vm.Reset()
	vm.Close()
}

func TestExpInverseTransform(t *testing.T) {
	const tolerance float64 = 0.00001

	shape := []int{2, 2}
	backing := []float64{0.5, 1, 2, 4}

	f, err := NewExp(1)
	if err != nil {
		t.Error(err)
	}

	g := G.NewGraph()
	yT := tensor.NewDense(
		tensor.Float64,
		shape,
		tensor.WithBacking(backing),
	)
	y := G.NewMatrix(g, tensor.Float64, G.WithValue(yT))

	x, logDet, err := f.InverseTransform(y)
	if err != nil {
		t.Error(err)
	}
	var xVal, logDetVal G.Value
	G.Read(x, &xVal)
	G.Read(logDet, &logDetVal)

	vm := G.NewTapeMachine(g)
	err = vm.RunAll()
	if err != nil {
		t.Error(err)
	}

	xOut := xVal.Data().([]float64)
	for i := range backing {
		if math.Abs(xOut[i]-math.Log(backing[i])) > tolerance {
			t.Errorf("expected: %v received: %v", math.Log(backing[i]),
				xOut[i])
		}
	}

	// The inverse log determinant is the negated sum of log(y) over
	// the event dimensions
	logDetOut := logDetVal.Data().([]float64)
	for i := 0; i < shape[0]; i++ {
		expected := 0.
		for j := 0; j < shape[1]; j++ {
			expected -= math.Log(backing[i*shape[1]+j])
		}

		if math.Abs(logDetOut[i]-expected) > tolerance {
			t.Errorf("expected log det: %v received: %v", expected,
				logDetOut[i])
		}
	}

	vm.Reset()
	vm.Close()
}

// TestExpGradient tests that gradients flow through the forward
// transform to the input
func TestExpGradient(t *testing.T) {
	const tolerance float64 = 0.00001

	backing := []float64{0, 0.5, 1}

	f, err := NewExp(1)
	if err != nil {
		t.Error(err)
	}

	g := G.NewGraph()
	xT := tensor.NewDense(
		tensor.Float64,
		[]int{3},
		tensor.WithBacking(backing),
	)
	x := G.NewVector(g, tensor.Float64, G.WithValue(xT))

	y, _, err := f.Transform(x)
	if err != nil {
		t.Error(err)
	}

	sum := G.Must(G.Sum(y))
	diff, err := G.Grad(sum, x)
	if err != nil {
		t.Error(err)
	}
	var diffVal G.Value
	G.Read(diff[0], &diffVal)

	vm := G.NewTapeMachine(g)
	err = vm.RunAll()
	if err != nil {
		t.Error(err)
	}

	// d/dx exp(x) = exp(x)
	grad := diffVal.Data().([]float64)
	for i := range backing {
		if math.Abs(grad[i]-math.Exp(backing[i])) > tolerance {
			t.Errorf("expected gradient: %v received: %v",
				math.Exp(backing[i]), grad[i])
		}
	}

	vm.Reset()
	vm.Close()
}
