// Package distribution provides probability distributions over
// Gorgonia nodes
package distribution

import (
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Quantiler is a Distribution that can return the CDF and the inverse
// of the CDF function, sometimes called the quantile function.
type Quantiler interface {
	Distribution

	// Cdf returns the cumulative probability density or mass of the
	// node. The shape of the node must be compatible with the shape
	// of the distribution.
	Cdf(*G.Node) (*G.Node, error)

	// Cdfinv returns the inverse cumulative distribution function at
	// the probabilities held in the node.
	Cdfinv(*G.Node) (*G.Node, error)
}

// Distribution is a probability distribution over nodes of a
// computational graph.
//
// A Distribution may hold a batch of distributions simultaneously,
// in which case its Shape describes the batch. The trailing
// ValueNdims dimensions of a sample are treated as a single
// multivariate event rather than independent batch dimensions, and
// LogProb and Prob are already reduced over those dimensions.
//
// If an input node to LogProb or Prob has one more dimension than the
// dimensions of the distribution, then the first dimension of the
// input node is taken to be the batch-of-samples dimension.
// Otherwise, the node must have the same number of dimensions as
// samples generated from the distribution.
type Distribution interface {
	// Dtype returns the element type of samples drawn from the
	// distribution
	Dtype() tensor.Dtype

	// IsContinuous returns whether the distribution is continuous
	IsContinuous() bool

	// HasRsample returns whether the distribution has reparameterized
	// samples or not
	HasRsample() bool

	// ValueNdims returns the number of trailing dimensions of a
	// sample which constitute a single event
	ValueNdims() int

	Shape() tensor.Shape

	// Sample returns a node that generates samples from the
	// distribution each time the node is passed, with a leading
	// samples dimension. This function is not differentiable.
	Sample(samples int) (*G.Node, error)

	// Rsample returns a node that generates reparameterized samples
	// from the distribution each time the node is passed. This
	// function is differentiable. Distributions for which HasRsample
	// returns false return an error.
	Rsample(samples int) (*G.Node, error)

	// LogProb returns the log of the probability density or mass of
	// the node, reduced over the distribution's own ValueNdims
	// trailing dimensions only.
	LogProb(*G.Node) (*G.Node, error)

	// Prob returns the probability density or mass of the node
	Prob(*G.Node) (*G.Node, error)

	Entropy() (*G.Node, error)
}
