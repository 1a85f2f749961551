// Package tfsnippet provides extended operations for Gorgonia that
// support probabilistic modelling: axis reductions, a stop-gradient
// operation, error functions, clamping, and gathering.
package tfsnippet

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// StopGradient returns a node that evaluates to the same value as x
// but contributes no gradient to x or anything x depends on. The
// value still participates in the forward computation.
func StopGradient(x *G.Node) (*G.Node, error) {
	return G.ApplyOp(newStopGradientOp(), x)
}

// Erf computes the element-wise error function
func Erf(x *G.Node) (*G.Node, error) {
	return G.ApplyOp(newErfOp(), x)
}

// Erfc computes the element-wise complementary error function
func Erfc(x *G.Node) (*G.Node, error) {
	erf, err := Erf(x)
	if err != nil {
		return nil, fmt.Errorf("erfc: %v", err)
	}

	one, err := FloatConst(x.Graph(), x.Dtype(), 1.0)
	if err != nil {
		return nil, fmt.Errorf("erfc: %v", err)
	}

	return G.Sub(one, erf)
}

// Erfinv computes the element-wise inverse error function
func Erfinv(x *G.Node) (*G.Node, error) {
	return G.ApplyOp(newErfinvOp(), x)
}

// Clamp clamps a node's values to be between min and max. If
// passGradient is true, the gradient is passed through the clamping
// operation unchanged. Otherwise values outside [min, max] get a
// zero gradient.
func Clamp(x *G.Node, min, max interface{}, passGradient bool) (*G.Node,
	error) {
	op, err := newClampOp(min, max, passGradient)
	if err != nil {
		return nil, fmt.Errorf("clamp: %v", err)
	}

	return G.ApplyOp(op, x)
}

// Gather selects values from x along axis at the positions given by
// indices. The output has the shape of indices. Gather is
// differentiable with respect to x but not indices.
func Gather(x, indices *G.Node, axis int) (*G.Node, error) {
	op, err := newGatherOp(axis, indices.Dims())
	if err != nil {
		return nil, fmt.Errorf("gather: %v", err)
	}

	return G.ApplyOp(op, x, indices)
}

// LogSumExp calculates the log of the summation of exponentials of
// all logits along the given axis.
func LogSumExp(logits *G.Node, along int) *G.Node {
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{byte(along)}))
	exponent = G.Must(G.Exp(exponent))

	sum := G.Must(G.Sum(exponent, along))
	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}
