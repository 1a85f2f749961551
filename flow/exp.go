package flow

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Exp is the invertible element-wise map y = exp(x), whose support in
// y-space is the positive reals. The per-element log determinant of
// the forward map is x itself, summed over the trailing valueNdims
// dimensions.
type Exp struct {
	baseFlow
}

// NewExp returns a new Exp flow
func NewExp(valueNdims int) (*Exp, error) {
	base, err := newBaseFlow(valueNdims, valueNdims)
	if err != nil {
		return nil, fmt.Errorf("newExp: %v", err)
	}

	return &Exp{baseFlow: base}, nil
}

func (e *Exp) Build(x *G.Node) error {
	if e.built {
		return nil
	}
	if err := checkRank("build", x, e.xValueNdims); err != nil {
		return err
	}

	e.markBuilt()
	return nil
}

func (e *Exp) Transform(x *G.Node) (*G.Node, *G.Node, error) {
	if err := e.Build(x); err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}
	if err := checkRank("transform", x, e.xValueNdims); err != nil {
		return nil, nil, err
	}

	y, err := G.Exp(x)
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}

	logDet, err := sumTrailing(x, e.xValueNdims)
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}

	return y, logDet, nil
}

func (e *Exp) InverseTransform(y *G.Node) (*G.Node, *G.Node, error) {
	if err := e.Build(y); err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}
	if err := checkRank("inverseTransform", y, e.yValueNdims); err != nil {
		return nil, nil, err
	}

	x, err := G.Log(y)
	if err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}

	logDet, err := sumTrailing(x, e.yValueNdims)
	if err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}

	logDet, err = G.Neg(logDet)
	if err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}

	return x, logDet, nil
}
