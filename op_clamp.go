package tfsnippet

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/top"
)

// clampOp clamps values to [min, max]
type clampOp struct {
	min, max     interface{}
	passGradient bool
}

func newClampOp(min, max interface{}, passGradient bool) (*clampOp, error) {
	if min == nil || max == nil {
		return nil, fmt.Errorf("newClampOp: min and max must be non-nil")
	}

	return &clampOp{
		min:          min,
		max:          max,
		passGradient: passGradient,
	}, nil
}

func (c *clampOp) Arity() int { return 1 }

func (c *clampOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (c *clampOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	if err := CheckArity(c, len(inputs)); err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return inputs[0].(tensor.Shape), nil
}

func (c *clampOp) ReturnsPtr() bool { return true }

func (c *clampOp) CallsExtern() bool { return false }

func (c *clampOp) OverwritesInput() int { return -1 }

func (c *clampOp) String() string { return "Clamp()" }

// WriteHash writes the hash of the receiver to a hash struct
func (c *clampOp) WriteHash(h hash.Hash) { fmt.Fprint(h, c.String()) }

// Hashcode returns the hash code of the receiver
func (c *clampOp) Hashcode() uint32 { return SimpleHash(c) }

func (c *clampOp) DiffWRT(inputs int) []bool {
	return []bool{true}
}

func (c *clampOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	if err := CheckArity(c, len(inputs)); err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	diffOp := &clampDiffOp{c}
	nodes := make(G.Nodes, 1)

	var err error
	nodes[0], err = G.ApplyOp(diffOp, inputs[0], grad)

	return nodes, err
}

func (c *clampOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := c.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	return tensor.Clamp(inputs[0].(tensor.Tensor), c.min, c.max)
}

func (c *clampOp) checkInputs(inputs ...G.Value) error {
	if err := CheckArity(c, len(inputs)); err != nil {
		return err
	}

	t, ok := inputs[0].(tensor.Tensor)
	if !ok {
		return fmt.Errorf("expected a tensor to clamp but got %T", inputs[0])
	} else if t == nil {
		return fmt.Errorf("cannot clamp nil tensor")
	} else if t.Size() == 0 {
		return fmt.Errorf("cannot clamp empty tensor")
	}

	return nil
}

// clampDiffOp computes the gradient of clampOp
type clampDiffOp struct {
	op *clampOp
}

func (c *clampDiffOp) Arity() int { return 2 }

func (c *clampDiffOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a, a)
}

func (c *clampDiffOp) InferShape(inputs ...G.DimSizer) (tensor.Shape,
	error) {
	if err := CheckArity(c, len(inputs)); err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return inputs[0].(tensor.Shape), nil
}

func (c *clampDiffOp) ReturnsPtr() bool { return false }

func (c *clampDiffOp) CallsExtern() bool { return false }

func (c *clampDiffOp) OverwritesInput() int { return -1 }

func (c *clampDiffOp) String() string { return "ClampDiff()" }

// WriteHash writes the hash of the receiver to a hash struct
func (c *clampDiffOp) WriteHash(h hash.Hash) { fmt.Fprint(h, c.String()) }

// Hashcode returns the hash code of the receiver
func (c *clampDiffOp) Hashcode() uint32 { return SimpleHash(c) }

func (c *clampDiffOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(c, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	in, ok := inputs[0].(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("do: expected a tensor but got %T", inputs[0])
	}

	if c.op.passGradient {
		return tensor.Ones(in.Dtype(), in.Shape()...), nil
	}

	return top.ClampB(in, c.op.min, c.op.max)
}
