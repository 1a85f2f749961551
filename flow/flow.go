// Package flow provides invertible, density-tracking transforms over
// Gorgonia nodes. A flow maps a value x to y through a differentiable
// bijection and reports the log-determinant of the Jacobian of the
// map restricted to the trailing event dimensions, as required by the
// change-of-variables formula.
package flow

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Flow is an invertible transform on nodes of rank >= XValueNdims.
//
// Transform returns the transformed node together with the
// log-determinant of the Jacobian of the forward map. The log
// determinant has the shape of the input with its trailing
// XValueNdims dimensions removed. InverseTransform is the exact
// inverse of Transform, and its log determinant equals the negative
// of the forward log determinant at the corresponding input.
//
// A flow must be built against a representative input before first
// use. Building fixes any shape-dependent internal state. Transform
// and InverseTransform build the flow themselves when it has not been
// built yet; after the first build, Build is a no-op.
type Flow interface {
	// XValueNdims returns the minimum rank of a pre-transform event
	XValueNdims() int

	// YValueNdims returns the minimum rank of a post-transform event
	YValueNdims() int

	// Built returns whether the flow has been built
	Built() bool

	// Build fixes the flow's shape-dependent state against x. The
	// first call wins; later calls are no-ops.
	Build(x *G.Node) error

	Transform(x *G.Node) (y, logDet *G.Node, err error)
	InverseTransform(y *G.Node) (x, logDet *G.Node, err error)
}

// baseFlow carries the event-rank bookkeeping and the one-time build
// flag shared by all flows in this package.
type baseFlow struct {
	xValueNdims int
	yValueNdims int
	built       bool
}

func newBaseFlow(xValueNdims, yValueNdims int) (baseFlow, error) {
	if xValueNdims < 0 || yValueNdims < 0 {
		return baseFlow{}, fmt.Errorf("newBaseFlow: value ndims must be "+
			"non-negative but got x: %v, y: %v", xValueNdims, yValueNdims)
	}

	return baseFlow{
		xValueNdims: xValueNdims,
		yValueNdims: yValueNdims,
	}, nil
}

func (b *baseFlow) XValueNdims() int { return b.xValueNdims }

func (b *baseFlow) YValueNdims() int { return b.yValueNdims }

func (b *baseFlow) Built() bool { return b.built }

// markBuilt transitions the flow to its built state. The transition
// is monotonic: once built, a flow never becomes unbuilt again.
func (b *baseFlow) markBuilt() { b.built = true }

// checkRank returns an error if x has fewer dimensions than ndims
func checkRank(method string, x *G.Node, ndims int) error {
	if x == nil {
		return fmt.Errorf("%v: nil input", method)
	}
	if x.Dims() < ndims {
		return fmt.Errorf("%v: expected input rank >= %v but got shape %v",
			method, ndims, x.Shape())
	}

	return nil
}
