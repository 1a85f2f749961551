package tfsnippet

import (
	"fmt"
	"hash"

	"github.com/chewxy/hm"
	"github.com/samuelfneumann/top"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// gatherOp selects values along an axis at given integer indices
type gatherOp struct {
	axis int
	dims int // Dimensions of indices tensor (equivalently output)
}

func newGatherOp(axis, dims int) (*gatherOp, error) {
	if axis < 0 {
		return nil, fmt.Errorf("newGatherOp: axis must be non-negative "+
			"but got %v", axis)
	}

	return &gatherOp{
		axis: axis,
		dims: dims,
	}, nil
}

func (g *gatherOp) Arity() int { return 2 }

func (g *gatherOp) Type() hm.Type {
	any := hm.TypeVariable('a')
	indices := G.TensorType{
		Dims: g.dims,
		Of:   tensor.Int,
	}
	return hm.NewFnType(any, indices, any)
}

func (g *gatherOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	if err := CheckArity(g, len(inputs)); err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	shapes, err := G.DimSizersToShapes(inputs)
	if err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return shapes[1], nil
}

func (g *gatherOp) ReturnsPtr() bool { return false }

func (g *gatherOp) CallsExtern() bool { return false }

func (g *gatherOp) OverwritesInput() int { return -1 }

func (g *gatherOp) String() string {
	return fmt.Sprintf("Gather{axis=%v, dims=%v}()", g.axis, g.dims)
}

// WriteHash writes the hash of the receiver to a hash struct
func (g *gatherOp) WriteHash(h hash.Hash) { fmt.Fprint(h, g.String()) }

// Hashcode returns the hash code of the receiver
func (g *gatherOp) Hashcode() uint32 { return SimpleHash(g) }

// DiffWRT marks the op as differentiable with respect to the input,
// not the indices
func (g *gatherOp) DiffWRT(inputs int) []bool {
	return []bool{true, false}
}

func (g *gatherOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	if err := CheckArity(g, len(inputs)); err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	// One gradient per input, nil for the indices
	diffOp := &gatherDiffOp{g}
	nodes := make(G.Nodes, 2)

	var err error
	nodes[0], err = G.ApplyOp(diffOp, inputs[0], inputs[1], grad)

	return nodes, err
}

func (g *gatherOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := g.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	input := inputs[0].(tensor.Tensor)
	indices := inputs[1].(tensor.Tensor)

	return top.Gather(input, g.axis, indices)
}

func (g *gatherOp) checkInputs(inputs ...G.Value) error {
	if err := CheckArity(g, len(inputs)); err != nil {
		return err
	}

	t, ok := inputs[0].(tensor.Tensor)
	if !ok {
		return fmt.Errorf("expected t to be a tensor but got %T", inputs[0])
	} else if t == nil || t.Size() == 0 {
		return fmt.Errorf("cannot gather on nil or empty tensor")
	} else if g.axis >= len(t.Shape()) {
		return fmt.Errorf("axis [%v] out of range for tensor t with "+
			"shape %v", g.axis, t.Shape())
	}

	indices, ok := inputs[1].(tensor.Tensor)
	if !ok {
		return fmt.Errorf("expected indices to be a tensor but got %T",
			inputs[1])
	} else if indices == nil || indices.Size() == 0 {
		return fmt.Errorf("cannot gather with nil or empty indices")
	}

	return nil
}

// gatherDiffOp scatters the incoming gradient back to the gathered
// positions
type gatherDiffOp struct {
	op *gatherOp
}

func (g *gatherDiffOp) Arity() int { return 3 }

func (g *gatherDiffOp) Type() hm.Type {
	any := hm.TypeVariable('a')
	indices := G.TensorType{
		Dims: g.op.dims,
		Of:   tensor.Int,
	}

	return hm.NewFnType(any, indices, any, any)
}

func (g *gatherDiffOp) InferShape(inputs ...G.DimSizer) (tensor.Shape,
	error) {
	if err := CheckArity(g, len(inputs)); err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}

	return inputs[0].(tensor.Shape), nil
}

func (g *gatherDiffOp) ReturnsPtr() bool { return false }

func (g *gatherDiffOp) CallsExtern() bool { return false }

func (g *gatherDiffOp) OverwritesInput() int { return -1 }

func (g *gatherDiffOp) String() string {
	return fmt.Sprintf("GatherDiff{axis=%v, dims=%v}()", g.op.axis,
		g.op.dims)
}

// WriteHash writes the hash of the receiver to a hash struct
func (g *gatherDiffOp) WriteHash(h hash.Hash) { fmt.Fprint(h, g.String()) }

// Hashcode returns the hash code of the receiver
func (g *gatherDiffOp) Hashcode() uint32 { return SimpleHash(g) }

func (g *gatherDiffOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := CheckArity(g, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	input, ok := inputs[0].(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("do: expected t to be a tensor but got %T",
			inputs[0])
	}

	indices, ok := inputs[1].(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("do: expected indices to be a tensor but "+
			"got %T", inputs[1])
	}

	return top.GatherB(input, g.op.axis, indices)
}
