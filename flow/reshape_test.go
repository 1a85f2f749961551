package flow

import (
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestReshapeTransform(t *testing.T) {
	f, err := NewReshape(1, []int{2, 3})
	if err != nil {
		t.Error(err)
	}

	if f.XValueNdims() != 1 {
		t.Errorf("expected 1 input event dim but got %v", f.XValueNdims())
	}
	if f.YValueNdims() != 2 {
		t.Errorf("expected 2 output event dims but got %v",
			f.YValueNdims())
	}

	g := G.NewGraph()
	backing := make([]float64, 4*6)
	for i := range backing {
		backing[i] = float64(i)
	}
	xT := tensor.NewDense(
		tensor.Float64,
		[]int{4, 6},
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

	expected := tensor.Shape{4, 2, 3}
	if !yVal.Shape().Eq(expected) {
		t.Errorf("expected shape %v received %v", expected, yVal.Shape())
	}

	// Rearranging elements has a log determinant of zero
	logDetOut := logDetVal.Data().([]float64)
	if len(logDetOut) != 4 {
		t.Fatalf("expected 4 log determinants but got %v", len(logDetOut))
	}
	for i := range logDetOut {
		if logDetOut[i] != 0 {
			t.Errorf("expected log det 0 received %v", logDetOut[i])
		}
	}

	// The data passes through unchanged
	yOut := yVal.Data().([]float64)
	for i := range backing {
		if yOut[i] != backing[i] {
			t.Errorf("expected: %v received: %v", backing[i], yOut[i])
		}
	}

	vm.Reset()
	vm.Close()
}

func TestReshapeWildcard(t *testing.T) {
	f, err := NewReshape(1, []int{-1, 3})
	if err != nil {
		t.Error(err)
	}

	g := G.NewGraph()
	backing := make([]float64, 2*6)
	xT := tensor.NewDense(
		tensor.Float64,
		[]int{2, 6},
		tensor.WithBacking(backing),
	)
	x := G.NewMatrix(g, tensor.Float64, G.WithValue(xT))

	y, _, err := f.Transform(x)
	if err != nil {
		t.Error(err)
	}

	// The -1 resolves to 2 from the event size of 6
	expected := tensor.Shape{2, 2, 3}
	if !y.Shape().Eq(expected) {
		t.Errorf("expected shape %v received %v", expected, y.Shape())
	}
}

func TestReshapeInverseTransform(t *testing.T) {
	f, err := NewReshape(1, []int{2, 2})
	if err != nil {
		t.Error(err)
	}

	g := G.NewGraph()
	backing := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	yBeforeT := tensor.NewDense(
		tensor.Float64,
		[]int{2, 4},
		tensor.WithBacking(backing),
	)
	x := G.NewMatrix(g, tensor.Float64, G.WithValue(yBeforeT))

	y, _, err := f.Transform(x)
	if err != nil {
		t.Error(err)
	}

	recovered, _, err := f.InverseTransform(y)
	if err != nil {
		t.Error(err)
	}

	if !recovered.Shape().Eq(x.Shape()) {
		t.Errorf("expected shape %v received %v", x.Shape(),
			recovered.Shape())
	}
}

// TestReshapeUnbuiltInverse tests that the inverse transform requires
// the flow to have seen an input-space value first
func TestReshapeUnbuiltInverse(t *testing.T) {
	f, err := NewReshape(1, []int{2, 2})
	if err != nil {
		t.Error(err)
	}

	g := G.NewGraph()
	yT := tensor.NewDense(
		tensor.Float64,
		[]int{3, 2, 2},
		tensor.WithBacking(make([]float64, 12)),
	)
	y := G.NewTensor(g, tensor.Float64, 3, G.WithValue(yT))

	if _, _, err := f.InverseTransform(y); err == nil {
		t.Error("expected an error when inverting an unbuilt reshape")
	}
}

func TestReshapeInvalid(t *testing.T) {
	if _, err := NewReshape(0, []int{2}); err == nil {
		t.Error("expected an error for zero input event dims")
	}

	if _, err := NewReshape(1, nil); err == nil {
		t.Error("expected an error for an empty target shape")
	}

	if _, err := NewReshape(1, []int{-1, -1}); err == nil {
		t.Error("expected an error for two wildcards")
	}

	if _, err := NewReshape(1, []int{0, 2}); err == nil {
		t.Error("expected an error for a zero dimension")
	}

	// Event size 5 cannot fold into (2, 2)
	f, err := NewReshape(1, []int{2, 2})
	if err != nil {
		t.Error(err)
	}

	g := G.NewGraph()
	xT := tensor.NewDense(
		tensor.Float64,
		[]int{5},
		tensor.WithBacking(make([]float64, 5)),
	)
	x := G.NewVector(g, tensor.Float64, G.WithValue(xT))

	if _, _, err := f.Transform(x); err == nil {
		t.Error("expected an error for an incompatible event size")
	}
}
