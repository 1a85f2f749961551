package flow

import (
	"fmt"
	"math"

	"github.com/Juan-JV/tfsnippet"
	G "gorgonia.org/gorgonia"
)

// Affine is the invertible element-wise map
//
//	y = scale*x + shift
//
// with per-element log determinant log|scale|, summed over the
// trailing valueNdims dimensions of the input. The pre- and
// post-transform event ranks are equal.
type Affine struct {
	baseFlow
	scale float64
	shift float64
}

// NewAffine returns a new Affine flow. The scale must be non-zero,
// otherwise the map is not invertible.
func NewAffine(scale, shift float64, valueNdims int) (*Affine, error) {
	if scale == 0 {
		return nil, fmt.Errorf("newAffine: scale must be non-zero")
	}

	base, err := newBaseFlow(valueNdims, valueNdims)
	if err != nil {
		return nil, fmt.Errorf("newAffine: %v", err)
	}

	return &Affine{
		baseFlow: base,
		scale:    scale,
		shift:    shift,
	}, nil
}

func (a *Affine) Build(x *G.Node) error {
	if a.built {
		return nil
	}
	if err := checkRank("build", x, a.xValueNdims); err != nil {
		return err
	}

	a.markBuilt()
	return nil
}

func (a *Affine) Transform(x *G.Node) (*G.Node, *G.Node, error) {
	if err := a.Build(x); err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}
	if err := checkRank("transform", x, a.xValueNdims); err != nil {
		return nil, nil, err
	}

	scale, err := tfsnippet.FloatConst(x.Graph(), x.Dtype(), a.scale)
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}
	shift, err := tfsnippet.FloatConst(x.Graph(), x.Dtype(), a.shift)
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}

	y := G.Must(G.HadamardProd(scale, x))
	y = G.Must(G.Add(y, shift))

	logDet, err := a.logDet(x, false)
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}

	return y, logDet, nil
}

func (a *Affine) InverseTransform(y *G.Node) (*G.Node, *G.Node, error) {
	if err := a.Build(y); err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}
	if err := checkRank("inverseTransform", y, a.yValueNdims); err != nil {
		return nil, nil, err
	}

	scale, err := tfsnippet.FloatConst(y.Graph(), y.Dtype(), a.scale)
	if err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}
	shift, err := tfsnippet.FloatConst(y.Graph(), y.Dtype(), a.shift)
	if err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}

	x := G.Must(G.Sub(y, shift))
	x = G.Must(G.HadamardDiv(x, scale))

	logDet, err := a.logDet(y, true)
	if err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}

	return x, logDet, nil
}

// logDet returns the log determinant of the map at an input of the
// given shape. The determinant of an element-wise affine map is
// constant, so the log determinant is log|scale| times the number of
// event elements, negated for the inverse direction.
func (a *Affine) logDet(in *G.Node, inverse bool) (*G.Node, error) {
	zeros, err := zeroLogDet(in, a.xValueNdims)
	if err != nil {
		return nil, err
	}

	size := eventSize(in.Shape(), a.xValueNdims)
	value := math.Log(math.Abs(a.scale)) * float64(size)
	if inverse {
		value = -value
	}

	c, err := tfsnippet.FloatConst(in.Graph(), in.Dtype(), value)
	if err != nil {
		return nil, err
	}

	return G.Add(zeros, c)
}
