package tfsnippet

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// erfinvOp computes the element-wise inverse error function
type erfinvOp struct{}

func newErfinvOp() *erfinvOp {
	return &erfinvOp{}
}

func (e *erfinvOp) Arity() int { return 1 }

func (e *erfinvOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (e *erfinvOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	if err := CheckArity(e, len(inputs)); err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (e *erfinvOp) ReturnsPtr() bool { return false }

func (e *erfinvOp) CallsExtern() bool { return false }

func (e *erfinvOp) OverwritesInput() int { return -1 }

func (e *erfinvOp) String() string { return "Erfinv()" }

// WriteHash writes the hash of the receiver to a hash struct
func (e *erfinvOp) WriteHash(h hash.Hash) { fmt.Fprint(h, e.String()) }

// Hashcode returns the hash code of the receiver
func (e *erfinvOp) Hashcode() uint32 { return SimpleHash(e) }

// DiffWRT returns which inputs the operation is differentiable with
// respect to
func (e *erfinvOp) DiffWRT(inputs int) []bool {
	return []bool{true}
}

// SymDiff constructs the symbolic derivative of the inverse error
// function in terms of the op's own output:
//
//	d/dp erfinv(p) = √π/2 ⋅ exp(erfinv(p)²)
func (e *erfinvOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	if err := CheckArity(e, len(inputs)); err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	scale, err := FloatConst(output.Graph(), output.Dtype(),
		math.Sqrt(math.Pi)/2.0)
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	diff := G.Must(G.Square(output))
	diff = G.Must(G.Exp(diff))
	diff = G.Must(G.HadamardProd(scale, diff))
	diff, err = G.HadamardProd(grad, diff)
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	return G.Nodes{diff}, nil
}

func (e *erfinvOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := e.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	switch v := inputs[0].(type) {
	case *G.F64:
		return G.NewF64(math.Erfinv(float64(*v))), nil

	case *G.F32:
		return G.NewF32(float32(math.Erfinv(float64(*v)))), nil

	case tensor.Tensor:
		return e.kernel(v)
	}

	return nil, fmt.Errorf("do: unsupported input type %T", inputs[0])
}

func (e *erfinvOp) kernel(in tensor.Tensor) (tensor.Tensor, error) {
	switch in.Dtype() {
	case tensor.Float64:
		data := in.Data().([]float64)
		backing := make([]float64, len(data))
		for i, elem := range data {
			backing[i] = math.Erfinv(elem)
		}
		return tensor.NewDense(
			tensor.Float64,
			in.Shape().Clone(),
			tensor.WithBacking(backing),
		), nil

	case tensor.Float32:
		data := in.Data().([]float32)
		backing := make([]float32, len(data))
		for i, elem := range data {
			backing[i] = float32(math.Erfinv(float64(elem)))
		}
		return tensor.NewDense(
			tensor.Float32,
			in.Shape().Clone(),
			tensor.WithBacking(backing),
		), nil
	}

	return nil, fmt.Errorf("kernel: dtype %v unsupported", in.Dtype())
}

// checkInputs returns an error if the input to this Op is invalid
func (e *erfinvOp) checkInputs(inputs ...G.Value) error {
	if err := CheckArity(e, len(inputs)); err != nil {
		return err
	}

	_, okF64 := inputs[0].(*G.F64)
	_, okF32 := inputs[0].(*G.F32)
	t, okTensor := inputs[0].(tensor.Tensor)

	if !(okF64 || okF32 || okTensor) {
		return fmt.Errorf("expected input to be a tensor, got %T", inputs[0])
	} else if okTensor && (t == nil || t.Size() == 0) {
		return fmt.Errorf("cannot compute erfinv of empty tensor")
	}

	return nil
}
