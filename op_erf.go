package tfsnippet

import (
	"fmt"
	"hash"
	"math"

	"github.com/chewxy/hm"
	"github.com/chewxy/math32"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// erfOp computes the element-wise error function
type erfOp struct{}

func newErfOp() *erfOp {
	return &erfOp{}
}

func (e *erfOp) Arity() int { return 1 }

func (e *erfOp) Type() hm.Type {
	a := hm.TypeVariable('a')
	return hm.NewFnType(a, a)
}

func (e *erfOp) InferShape(inputs ...G.DimSizer) (tensor.Shape, error) {
	if err := CheckArity(e, len(inputs)); err != nil {
		return nil, fmt.Errorf("inferShape: %v", err)
	}
	if inputs[0] == nil {
		return nil, fmt.Errorf("inferShape: nil input")
	}

	return inputs[0].(tensor.Shape), nil
}

func (e *erfOp) ReturnsPtr() bool { return false }

func (e *erfOp) CallsExtern() bool { return false }

func (e *erfOp) OverwritesInput() int { return -1 }

func (e *erfOp) String() string { return "Erf()" }

// WriteHash writes the hash of the receiver to a hash struct
func (e *erfOp) WriteHash(h hash.Hash) { fmt.Fprint(h, e.String()) }

// Hashcode returns the hash code of the receiver
func (e *erfOp) Hashcode() uint32 { return SimpleHash(e) }

// DiffWRT returns which inputs the operation is differentiable with
// respect to
func (e *erfOp) DiffWRT(inputs int) []bool {
	return []bool{true}
}

// SymDiff constructs the symbolic derivative of the error function:
//
//	d/dx erf(x) = 2/√π ⋅ exp(-x²)
func (e *erfOp) SymDiff(inputs G.Nodes, output, grad *G.Node) (G.Nodes,
	error) {
	if err := CheckArity(e, len(inputs)); err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}
	x := inputs[0]

	scale, err := FloatConst(x.Graph(), x.Dtype(), 2.0/math.Sqrt(math.Pi))
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	diff := G.Must(G.Square(x))
	diff = G.Must(G.Neg(diff))
	diff = G.Must(G.Exp(diff))
	diff = G.Must(G.HadamardProd(scale, diff))
	diff, err = G.HadamardProd(grad, diff)
	if err != nil {
		return nil, fmt.Errorf("symDiff: %v", err)
	}

	return G.Nodes{diff}, nil
}

func (e *erfOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := e.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	switch v := inputs[0].(type) {
	case *G.F64:
		return G.NewF64(math.Erf(float64(*v))), nil

	case *G.F32:
		return G.NewF32(math32.Erf(float32(*v))), nil

	case tensor.Tensor:
		return e.kernel(v)
	}

	return nil, fmt.Errorf("do: unsupported input type %T", inputs[0])
}

func (e *erfOp) kernel(in tensor.Tensor) (tensor.Tensor, error) {
	switch in.Dtype() {
	case tensor.Float64:
		data := in.Data().([]float64)
		backing := make([]float64, len(data))
		for i, elem := range data {
			backing[i] = math.Erf(elem)
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
			backing[i] = math32.Erf(elem)
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
func (e *erfOp) checkInputs(inputs ...G.Value) error {
	if err := CheckArity(e, len(inputs)); err != nil {
		return err
	}

	_, okF64 := inputs[0].(*G.F64)
	_, okF32 := inputs[0].(*G.F32)
	t, okTensor := inputs[0].(tensor.Tensor)

	if !(okF64 || okF32 || okTensor) {
		return fmt.Errorf("expected input to be a tensor, got %T", inputs[0])
	} else if okTensor && (t == nil || t.Size() == 0) {
		return fmt.Errorf("cannot compute erf of empty tensor")
	}

	return nil
}
