package flow

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Reshape folds the trailing xValueNdims dimensions of its input into
// a new event shape. The map only rearranges elements, so its log
// determinant is zero everywhere.
//
// The target event shape may contain a single -1 entry, which is
// resolved from the actual event size when the flow is built. The
// build-time event shape is also what the inverse transform restores,
// so a Reshape must be built from an x-space value: calling
// InverseTransform before the flow is built is an error.
type Reshape struct {
	baseFlow
	target []int

	// resolved at build time
	xEvent []int
	yEvent []int
}

// NewReshape returns a flow folding the trailing xValueNdims
// dimensions of an input into the event shape target.
func NewReshape(xValueNdims int, target []int) (*Reshape, error) {
	if xValueNdims < 1 {
		return nil, fmt.Errorf("newReshape: xValueNdims must be at least "+
			"1 but got %v", xValueNdims)
	}
	if len(target) == 0 {
		return nil, fmt.Errorf("newReshape: target event shape must be " +
			"non-empty")
	}

	wildcards := 0
	for _, dim := range target {
		if dim == -1 {
			wildcards++
		} else if dim < 1 {
			return nil, fmt.Errorf("newReshape: target event shape %v "+
				"must hold positive dimensions with at most one -1", target)
		}
	}
	if wildcards > 1 {
		return nil, fmt.Errorf("newReshape: target event shape %v holds "+
			"more than one -1", target)
	}

	base, err := newBaseFlow(xValueNdims, len(target))
	if err != nil {
		return nil, fmt.Errorf("newReshape: %v", err)
	}

	return &Reshape{
		baseFlow: base,
		target:   target,
	}, nil
}

func (r *Reshape) Build(x *G.Node) error {
	if r.built {
		return nil
	}
	if err := checkRank("build", x, r.xValueNdims); err != nil {
		return err
	}

	shape := x.Shape()
	xEvent := make([]int, r.xValueNdims)
	copy(xEvent, shape[len(shape)-r.xValueNdims:])

	size := tensor.ProdInts(xEvent)
	known := 1
	wildcard := -1
	for i, dim := range r.target {
		if dim == -1 {
			wildcard = i
		} else {
			known *= dim
		}
	}

	yEvent := make([]int, len(r.target))
	copy(yEvent, r.target)
	if wildcard >= 0 {
		if size%known != 0 {
			return fmt.Errorf("build: cannot fold event shape %v into %v",
				xEvent, r.target)
		}
		yEvent[wildcard] = size / known
	} else if known != size {
		return fmt.Errorf("build: event shape %v holds %v elements but "+
			"target %v holds %v", xEvent, size, r.target, known)
	}

	r.xEvent = xEvent
	r.yEvent = yEvent
	r.markBuilt()
	return nil
}

func (r *Reshape) Transform(x *G.Node) (*G.Node, *G.Node, error) {
	if err := r.Build(x); err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}
	if err := checkRank("transform", x, r.xValueNdims); err != nil {
		return nil, nil, err
	}

	batch := x.Shape()[:x.Dims()-r.xValueNdims]
	y, err := G.Reshape(x, append(append([]int{}, batch...), r.yEvent...))
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}

	logDet, err := zeroLogDet(x, r.xValueNdims)
	if err != nil {
		return nil, nil, fmt.Errorf("transform: %v", err)
	}

	return y, logDet, nil
}

func (r *Reshape) InverseTransform(y *G.Node) (*G.Node, *G.Node, error) {
	if !r.built {
		return nil, nil, fmt.Errorf("inverseTransform: flow must be " +
			"built from an input-space value before inverting")
	}
	if err := checkRank("inverseTransform", y, r.yValueNdims); err != nil {
		return nil, nil, err
	}

	batch := y.Shape()[:y.Dims()-r.yValueNdims]
	x, err := G.Reshape(y, append(append([]int{}, batch...), r.xEvent...))
	if err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}

	logDet, err := zeroLogDet(y, r.yValueNdims)
	if err != nil {
		return nil, nil, fmt.Errorf("inverseTransform: %v", err)
	}

	return x, logDet, nil
}
