package distribution

import (
	"fmt"
	"hash"

	"golang.org/x/exp/rand"

	"github.com/Juan-JV/tfsnippet"
	"github.com/chewxy/hm"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// bernoulliSampleOp draws 0/1 variates from the Bernoulli
// distributions whose success probabilities are held element-wise in
// its input. The output carries a leading numSamples dimension.
type bernoulliSampleOp struct {
	dt         tensor.Dtype
	shape      tensor.Shape
	dist       distuv.Bernoulli
	numSamples int
}

func newBernoulliSampleOp(dt tensor.Dtype, seed uint64, numSamples int,
	shape ...int) (*bernoulliSampleOp, error) {
	if dt != tensor.Float64 && dt != tensor.Float32 {
		return nil, fmt.Errorf("newBernoulliSampleOp: dtype %v not "+
			"supported", dt)
	}
	if numSamples < 1 {
		return nil, fmt.Errorf("newBernoulliSampleOp: expected "+
			"numSamples >= 1 but got %v", numSamples)
	}

	return &bernoulliSampleOp{
		dt:    dt,
		shape: tensor.Shape(shape),
		dist: distuv.Bernoulli{
			P:   0.5,
			Src: rand.NewSource(seed),
		},
		numSamples: numSamples,
	}, nil
}

func (b *bernoulliSampleOp) Arity() int { return 1 }

func (b *bernoulliSampleOp) Type() hm.Type {
	in := G.TensorType{
		Dims: b.shape.Dims(),
		Of:   b.dt,
	}
	out := G.TensorType{
		Dims: b.shape.Dims() + 1,
		Of:   b.dt,
	}

	return hm.NewFnType(in, out)
}

func (b *bernoulliSampleOp) InferShape(...G.DimSizer) (tensor.Shape,
	error) {
	return b.outShape(), nil
}

func (b *bernoulliSampleOp) ReturnsPtr() bool { return false }

func (b *bernoulliSampleOp) CallsExtern() bool { return false }

func (b *bernoulliSampleOp) OverwritesInput() int { return -1 }

func (b *bernoulliSampleOp) String() string {
	return fmt.Sprintf("BernoulliSample{shape=%v}()", b.shape)
}

func (b *bernoulliSampleOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, b.String())
}

func (b *bernoulliSampleOp) Hashcode() uint32 {
	return tfsnippet.SimpleHash(b)
}

// DiffWRT marks sampling as non-differentiable with respect to the
// success probabilities
func (b *bernoulliSampleOp) DiffWRT(inputs int) []bool {
	return []bool{false}
}

func (b *bernoulliSampleOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	return nil, fmt.Errorf("symDiff: sampling is not differentiable")
}

func (b *bernoulliSampleOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := b.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	out := tensor.NewDense(b.dt, b.outShape())

	probs := inputs[0].(tensor.Tensor)

	for i := 0; i < probs.Size(); i++ {
		coords, err := tensor.Itol(i, probs.Shape(), probs.Strides())
		if err != nil {
			return nil, fmt.Errorf("do: could not get coords at index %v", i)
		}

		p, err := probs.At(coords...)
		if err != nil {
			return nil, fmt.Errorf("do: could not get prob at index %v", i)
		}

		if b.dt == tensor.Float64 {
			b.dist.P = p.(float64)
		} else {
			b.dist.P = float64(p.(float32))
		}

		outCoords := append([]int{0}, coords...)
		for j := 0; j < b.numSamples; j++ {
			outCoords[0] = j

			if b.dt == tensor.Float64 {
				out.SetAt(b.dist.Rand(), outCoords...)
			} else {
				out.SetAt(float32(b.dist.Rand()), outCoords...)
			}
		}
	}

	return out, nil
}

func (b *bernoulliSampleOp) outShape() tensor.Shape {
	return tensor.Shape(append([]int{b.numSamples}, b.shape...))
}

func (b *bernoulliSampleOp) checkInputs(inputs ...G.Value) error {
	if err := tfsnippet.CheckArity(b, len(inputs)); err != nil {
		return err
	}

	probs, ok := inputs[0].(tensor.Tensor)
	if !ok {
		return fmt.Errorf("expected probs to be a tensor but got %T",
			inputs[0])
	} else if probs == nil || probs.Size() == 0 {
		return fmt.Errorf("cannot sample from nil or empty probs")
	} else if !probs.Shape().Eq(b.shape) {
		return fmt.Errorf("expected probs to have shape %v but got %v",
			b.shape, probs.Shape())
	}

	return nil
}
