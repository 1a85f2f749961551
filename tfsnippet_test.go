package tfsnippet

import (
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestLogSumExp(t *testing.T) {
	const tolerance float64 = 0.00001

	backing := []float64{1, 2, 3, 100, 101, 102}
	shape := []int{2, 3}

	// Sum the exponentials along the last axis by hand, subtracting
	// the max for stability
	expected := make([]float64, shape[0])
	for i := range expected {
		max := math.Inf(-1)
		for j := 0; j < shape[1]; j++ {
			if backing[i*shape[1]+j] > max {
				max = backing[i*shape[1]+j]
			}
		}

		sum := 0.
		for j := 0; j < shape[1]; j++ {
			sum += math.Exp(backing[i*shape[1]+j] - max)
		}
		expected[i] = max + math.Log(sum)
	}

	inTensor := tensor.NewDense(
		tensor.Float64,
		shape,
		tensor.WithBacking(backing),
	)

	g := G.NewGraph()
	in := G.NewMatrix(g, tensor.Float64, G.WithValue(inTensor))

	computedNode := LogSumExp(in, 1)
	var computed G.Value
	G.Read(computedNode, &computed)

	vm := G.NewTapeMachine(g)
	err := vm.RunAll()
	if err != nil {
		t.Error(err)
	}

	out := computed.Data().([]float64)
	for i := range expected {
		if math.Abs(out[i]-expected[i]) > tolerance {
			t.Errorf("expected: %v received: %v", expected[i], out[i])
		}
	}

	vm.Reset()
	vm.Close()
}
