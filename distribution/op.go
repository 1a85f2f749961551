package distribution

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NormalRand returns a node that draws numSamples normal variates per
// element of mean and stddev each time it is passed. The node has
// shape (numSamples,) + mean.Shape() and is not differentiable.
func NormalRand(mean, stddev *G.Node, seed uint64,
	numSamples int) (*G.Node, error) {
	if mean.Dtype() != stddev.Dtype() {
		return nil, fmt.Errorf("normalRand: mean and stddev should have "+
			"same dtype but got %v and %v", mean.Dtype(), stddev.Dtype())
	}

	if !mean.Shape().Eq(stddev.Shape()) {
		return nil, fmt.Errorf("normalRand: mean and stddev should have "+
			"same shape but got %v and %v", mean.Shape(), stddev.Shape())
	}

	n, err := newNormalSampleOp(mean.Dtype(), seed, numSamples,
		mean.Shape()...)
	if err != nil {
		return nil, fmt.Errorf("normalRand: %v", err)
	}

	return G.ApplyOp(n, mean, stddev)
}

// StandardNormalRand returns a node that draws numSamples standard
// normal variates per element of ref each time it is passed. The ref
// node fixes the shape, dtype and graph of the draw; its values are
// never read. The node has shape (numSamples,) + ref.Shape() and is
// not differentiable: it is the noise source of the
// reparameterization trick.
func StandardNormalRand(ref *G.Node, seed uint64, numSamples int) (*G.Node,
	error) {
	op, err := newStandardSampleOp(standardNormal, ref.Dtype(), seed,
		numSamples, ref.Shape()...)
	if err != nil {
		return nil, fmt.Errorf("standardNormalRand: %v", err)
	}

	return G.ApplyOp(op, ref)
}

// StandardUniformRand returns a node that draws numSamples U(0, 1)
// variates per element of ref each time it is passed. The ref node
// fixes the shape, dtype and graph of the draw; its values are never
// read. The node has shape (numSamples,) + ref.Shape() and is not
// differentiable.
func StandardUniformRand(ref *G.Node, seed uint64, numSamples int) (*G.Node,
	error) {
	op, err := newStandardSampleOp(standardUniform, ref.Dtype(), seed,
		numSamples, ref.Shape()...)
	if err != nil {
		return nil, fmt.Errorf("standardUniformRand: %v", err)
	}

	return G.ApplyOp(op, ref)
}

// BernoulliRand returns a node that draws numSamples Bernoulli
// variates per element of probs each time it is passed. The node has
// shape (numSamples,) + probs.Shape(), holds 0/1 values of probs's
// dtype and is not differentiable.
func BernoulliRand(probs *G.Node, seed uint64, numSamples int) (*G.Node,
	error) {
	op, err := newBernoulliSampleOp(probs.Dtype(), seed, numSamples,
		probs.Shape()...)
	if err != nil {
		return nil, fmt.Errorf("bernoulliRand: %v", err)
	}

	return G.ApplyOp(op, probs)
}

// CategoricalRand returns a node that draws numSamples category
// indices from the distribution whose unnormalized log probabilities
// are held in logits. For a logits vector of K classes the node has
// shape (numSamples,); for a (B, K) logits matrix each row is sampled
// independently and the node has shape (numSamples, B). The node
// holds tensor.Int values in [0, K) and is not differentiable.
func CategoricalRand(logits *G.Node, seed uint64, numSamples int) (*G.Node,
	error) {
	if logits.Dims() != 1 && logits.Dims() != 2 {
		return nil, fmt.Errorf("categoricalRand: expected logits to be a "+
			"vector or matrix but got shape %v", logits.Shape())
	}
	if logits.Dtype() != tensor.Float64 &&
		logits.Dtype() != tensor.Float32 {
		return nil, fmt.Errorf("categoricalRand: dtype %v not supported",
			logits.Dtype())
	}

	batch := 0
	if logits.Dims() == 2 {
		batch = logits.Shape()[0]
	}

	op, err := newCategoricalSampleOp(logits.Dtype(), seed, numSamples,
		logits.Shape()[logits.Dims()-1], batch)
	if err != nil {
		return nil, fmt.Errorf("categoricalRand: %v", err)
	}

	return G.ApplyOp(op, logits)
}
