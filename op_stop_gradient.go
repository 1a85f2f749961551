package tfsnippet

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// stopGradientOp is the identity in the forward pass and blocks all
// gradient flow to its input in the backward pass.
type stopGradientOp struct{}

func newStopGradientOp() *stopGradientOp {
	return &stopGradientOp{}
}

func (s *stopGradientOp) Arity() int { return 1 }

func (s *stopGradientOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (s *stopGradientOp) InferShape(inputs ...G.DimSizer) (tensor.Shape,
	error) {
	if err := CheckArity(s, len(inputs)); err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (s *stopGradientOp) ReturnsPtr() bool { return true }

func (s *stopGradientOp) CallsExtern() bool { return false }

func (s *stopGradientOp) OverwritesInput() int { return -1 }

func (s *stopGradientOp) String() string { return "StopGradient()" }

// WriteHash writes the hash of the receiver to a hash struct
func (s *stopGradientOp) WriteHash(h hash.Hash) { fmt.Fprint(h, s.String()) }

// Hashcode returns the hash code of the receiver
func (s *stopGradientOp) Hashcode() uint32 { return SimpleHash(s) }

// DiffWRT marks the input as non-differentiable, which is the entire
// point of this operation.
func (s *stopGradientOp) DiffWRT(inputs int) []bool {
	return []bool{false}
}

func (s *stopGradientOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	return nil, fmt.Errorf("symDiff: stopGradient is not differentiable")
}

func (s *stopGradientOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(s, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("do: cannot stop gradient of nil value")
	}

	return inputs[0], nil
}
