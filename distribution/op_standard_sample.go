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

// standardKind selects the parameter-free distribution a
// standardSampleOp draws from.
type standardKind int

const (
	standardNormal standardKind = iota
	standardUniform
)

func (k standardKind) String() string {
	if k == standardNormal {
		return "StandardNormal"
	}

	return "StandardUniform"
}

// standardSampleOp draws i.i.d. variates from a fixed parameter-free
// distribution: the standard normal or the standard uniform. Its
// single input only fixes the shape, dtype and graph of the draw and
// its values are never read, so the sampled noise is independent of
// everything else on the graph. The output carries a leading
// numSamples dimension.
type standardSampleOp struct {
	kind       standardKind
	dt         tensor.Dtype
	shape      tensor.Shape
	numSamples int
	draw       func() float64
}

func newStandardSampleOp(kind standardKind, dt tensor.Dtype, seed uint64,
	numSamples int, shape ...int) (*standardSampleOp, error) {
	if dt != tensor.Float64 && dt != tensor.Float32 {
		return nil, fmt.Errorf("newStandardSampleOp: dtype %v not "+
			"supported", dt)
	}
	if numSamples < 1 {
		return nil, fmt.Errorf("newStandardSampleOp: expected numSamples "+
			">= 1 but got %v", numSamples)
	}

	source := rand.NewSource(seed)

	var draw func() float64
	switch kind {
	case standardNormal:
		dist := distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: source}
		draw = dist.Rand

	case standardUniform:
		dist := distuv.Uniform{Min: 0.0, Max: 1.0, Src: source}
		draw = dist.Rand

	default:
		return nil, fmt.Errorf("newStandardSampleOp: unknown kind %v", kind)
	}

	return &standardSampleOp{
		kind:       kind,
		dt:         dt,
		shape:      tensor.Shape(shape),
		numSamples: numSamples,
		draw:       draw,
	}, nil
}

func (s *standardSampleOp) Arity() int { return 1 }

func (s *standardSampleOp) Type() hm.Type {
	in := G.TensorType{
		Dims: s.shape.Dims(),
		Of:   s.dt,
	}
	out := G.TensorType{
		Dims: s.shape.Dims() + 1,
		Of:   s.dt,
	}

	return hm.NewFnType(in, out)
}

func (s *standardSampleOp) InferShape(...G.DimSizer) (tensor.Shape, error) {
	return s.outShape(), nil
}

func (s *standardSampleOp) ReturnsPtr() bool { return false }

func (s *standardSampleOp) CallsExtern() bool { return false }

func (s *standardSampleOp) OverwritesInput() int { return -1 }

func (s *standardSampleOp) String() string {
	return fmt.Sprintf("%vSample{shape=%v}()", s.kind, s.shape)
}

func (s *standardSampleOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, s.String())
}

func (s *standardSampleOp) Hashcode() uint32 {
	return tfsnippet.SimpleHash(s)
}

// DiffWRT marks the noise as non-differentiable with respect to the
// shape reference input
func (s *standardSampleOp) DiffWRT(inputs int) []bool {
	return []bool{false}
}

func (s *standardSampleOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	return nil, fmt.Errorf("symDiff: sampling is not differentiable")
}

func (s *standardSampleOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := tfsnippet.CheckArity(s, len(inputs)); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	size := s.numSamples * tensor.ProdInts(s.shape)

	if s.dt == tensor.Float64 {
		backing := make([]float64, size)
		for i := range backing {
			backing[i] = s.draw()
		}
		return tensor.NewDense(
			s.dt,
			s.outShape(),
			tensor.WithBacking(backing),
		), nil
	}

	backing := make([]float32, size)
	for i := range backing {
		backing[i] = float32(s.draw())
	}
	return tensor.NewDense(
		s.dt,
		s.outShape(),
		tensor.WithBacking(backing),
	), nil
}

func (s *standardSampleOp) outShape() tensor.Shape {
	return tensor.Shape(append([]int{s.numSamples}, s.shape...))
}
