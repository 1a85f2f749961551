package distribution

import (
	"fmt"

	"github.com/Juan-JV/tfsnippet"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Bernoulli is a univariate Bernoulli distribution, which may hold a
// batch of Bernoulli distributions simultaneously. The distribution is
// parameterized by the log odds of success, so that each element of
// the logits tensor defines a different distribution element-wise.
// The shape of the logits tensor constitutes the shape of the
// Bernoulli.
//
// Inputs to the methods of a Bernoulli are treated in the same way as
// inputs to a Normal: the input must have the same shape as the
// distribution, except for possibly a batch dimension, which is always
// dimension 0.
//
// Bernoulli supports the following data types:
//   - tensor.Float64
//   - tensor.Float32
type Bernoulli struct {
	logits    *G.Node
	logitsVal G.Value

	probs *G.Node

	seed uint64
}

// NewBernoulli returns a new Bernoulli with success probabilities
// sigmoid(logits).
func NewBernoulli(logits *G.Node, seed uint64) (*Bernoulli, error) {
	if logits == nil {
		return nil, fmt.Errorf("newBernoulli: logits cannot be nil")
	}

	if logits.Dtype() != tensor.Float64 &&
		logits.Dtype() != tensor.Float32 {
		return nil, fmt.Errorf("newBernoulli: data type %v unsupported",
			logits.Dtype())
	}

	var err error
	if logits.IsScalar() {
		logits, err = G.Reshape(logits, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newBernoulli: could not expand logits "+
				"to shape (1): %v", err)
		}
	}

	probs, err := G.Sigmoid(logits)
	if err != nil {
		return nil, fmt.Errorf("newBernoulli: could not compute success "+
			"probabilities: %v", err)
	}

	bernoulli := &Bernoulli{
		logits: logits,
		probs:  probs,
		seed:   seed,
	}

	G.Read(bernoulli.logits, &bernoulli.logitsVal)

	return bernoulli, nil
}

// Dtype returns the element type of samples from the distribution
func (b *Bernoulli) Dtype() tensor.Dtype { return b.logits.Dtype() }

// IsContinuous returns false: the Bernoulli is a discrete distribution
func (b *Bernoulli) IsContinuous() bool { return false }

// ValueNdims returns 0: each element of the Bernoulli's shape is an
// independent univariate distribution, there are no event dimensions
func (b *Bernoulli) ValueNdims() int { return 0 }

// HasRsample returns false: samples of a discrete distribution cannot
// be reparameterized
func (b *Bernoulli) HasRsample() bool { return false }

// Shape returns the number of distributions stored by the receiver
func (b *Bernoulli) Shape() tensor.Shape {
	return b.logits.Shape()
}

// Logits returns the log odds of success of the distribution(s)
// stored by the receiver
func (b *Bernoulli) Logits() *G.Node {
	return b.logits
}

// Mean returns the mean of the distribution(s) stored by the receiver,
// which is the probability of success
func (b *Bernoulli) Mean() *G.Node {
	return b.probs
}

// Variance returns the variance of the distribution(s) stored by the
// receiver
func (b *Bernoulli) Variance() *G.Node {
	one := G.Must(tfsnippet.FloatConst(b.logits.Graph(), b.Dtype(), 1.0))
	failure := G.Must(G.Sub(one, b.probs))
	return G.Must(G.HadamardProd(b.probs, failure))
}

// LogProb calculates the log probability of x, where x holds values
// in {0, 1}. The shape of x is treated in the same way as inputs to
// the Normal distribution.
//
// For a value x and log odds l, the log probability is
//
//	x*l - log(1 + exp(l))
func (b *Bernoulli) LogProb(x *G.Node) (*G.Node, error) {
	x, err := b.fixShape(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	softplus := G.Must(G.Log1p(G.Must(G.Exp(b.logits))))

	if b.isBatch(x) {
		batchDim := []byte{0}
		x = G.Must(G.BroadcastHadamardProd(x, b.logits, nil, batchDim))
		x = G.Must(G.BroadcastSub(x, softplus, nil, batchDim))
	} else {
		x = G.Must(G.HadamardProd(x, b.logits))
		x = G.Must(G.Sub(x, softplus))
	}

	return x, nil
}

// Prob calculates the probability of x. The shape of x is treated in
// the same way as the LogProb() method.
func (b *Bernoulli) Prob(x *G.Node) (*G.Node, error) {
	logProb, err := b.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}

	return G.Exp(logProb)
}

// Entropy returns the entropy of the distribution(s) stored by the
// receiver
func (b *Bernoulli) Entropy() (*G.Node, error) {
	softplus := G.Must(G.Log1p(G.Must(G.Exp(b.logits))))
	entropy := G.Must(G.HadamardProd(b.logits, b.probs))
	entropy = G.Must(G.Sub(softplus, entropy))

	return entropy, nil
}

// Sample returns a node holding samples samples from the receiver.
// The node has shape (samples,) + b.Shape() and is not
// differentiable.
func (b *Bernoulli) Sample(samples int) (*G.Node, error) {
	return BernoulliRand(b.probs, b.seed, samples)
}

// Rsample returns an error: samples of a discrete distribution cannot
// be reparameterized.
func (b *Bernoulli) Rsample(samples int) (*G.Node, error) {
	return nil, fmt.Errorf("rsample: bernoulli does not have " +
		"reparameterized sampling")
}

// isBatch returns whether x is a batch of samples to calculate some
// method on
func (b *Bernoulli) isBatch(x *G.Node) bool {
	return !x.Shape().Eq(b.logits.Shape())
}

// fixShape adjusts the shape of x so that it can be used in some
// method. It returns an error indicating if x is of an invalid shape
// which could not be adjusted.
func (b *Bernoulli) fixShape(x *G.Node) (*G.Node, error) {
	if x.IsScalar() && b.logits.Shape()[0] == 1 {
		return G.Reshape(x, []int{1})

	} else if len(x.Shape()) == 1 && len(b.logits.Shape()) == 1 &&
		b.logits.Shape()[0] == 1 {
		return G.Reshape(x, []int{x.Shape()[0], 1})

	} else if b.isBatch(x) && !tensor.Shape(x.Shape()[1:]).Eq(b.Shape()) {
		msg := "expected shape to match distribution shape %v at all " +
			"dimensions except batch (dim 0) but got x shape %v"
		return nil, fmt.Errorf(msg, b.Shape(), x.Shape())

	} else if !b.isBatch(x) && !b.Shape().Eq(x.Shape()) {
		msg := "expected shape to match distribution shape %v but got %v"
		return nil, fmt.Errorf(msg, b.Shape(), x.Shape())
	}

	return x, nil
}
