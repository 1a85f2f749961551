package distribution

import (
	"fmt"

	"github.com/Juan-JV/tfsnippet"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Categorical is a categorical distribution over the class indices
// {0, 1, ..., K-1}, parameterized by K unnormalized log
// probabilities. The logits are either a vector of shape (K,),
// describing a single distribution of shape (), or a matrix of shape
// (B, K), describing a batch of B independent distributions of shape
// (B,).
//
// Categorical supports the following data types for its logits:
//   - tensor.Float64
//   - tensor.Float32
//
// Samples always have data type tensor.Int.
type Categorical struct {
	logits    *G.Node
	logitsVal G.Value

	seed uint64
}

// NewCategorical returns a new Categorical over as many classes as
// there are elements in the trailing dimension of logits.
func NewCategorical(logits *G.Node, seed uint64) (*Categorical, error) {
	if logits == nil {
		return nil, fmt.Errorf("newCategorical: logits cannot be nil")
	}

	if logits.Dtype() != tensor.Float64 &&
		logits.Dtype() != tensor.Float32 {
		return nil, fmt.Errorf("newCategorical: data type %v unsupported",
			logits.Dtype())
	}

	if logits.Dims() != 1 && logits.Dims() != 2 {
		return nil, fmt.Errorf("newCategorical: expected logits to be a "+
			"vector or matrix but got shape %v", logits.Shape())
	}

	categorical := &Categorical{
		logits: logits,
		seed:   seed,
	}

	G.Read(categorical.logits, &categorical.logitsVal)

	return categorical, nil
}

// Dtype returns the element type of samples from the distribution
func (c *Categorical) Dtype() tensor.Dtype { return tensor.Int }

// IsContinuous returns false: the Categorical is a discrete
// distribution
func (c *Categorical) IsContinuous() bool { return false }

// ValueNdims returns 0: samples of the Categorical are scalar class
// indices
func (c *Categorical) ValueNdims() int { return 0 }

// HasRsample returns false: samples of a discrete distribution cannot
// be reparameterized
func (c *Categorical) HasRsample() bool { return false }

// Shape returns the batch shape of the distribution: () for vector
// logits, (B,) for a batch of B distributions. Each sample is a
// single class index per distribution.
func (c *Categorical) Shape() tensor.Shape {
	return c.logits.Shape()[:c.logits.Dims()-1]
}

// NumEvents returns the number of classes of the distribution
func (c *Categorical) NumEvents() int {
	return c.logits.Shape()[c.logits.Dims()-1]
}

// isBatch returns whether the receiver holds a batch of distributions
func (c *Categorical) isBatch() bool {
	return c.logits.Dims() == 2
}

// Logits returns the unnormalized log probabilities of the
// distribution
func (c *Categorical) Logits() *G.Node {
	return c.logits
}

// logProbs returns the normalized log probabilities of the classes,
// with the shape of the logits
func (c *Categorical) logProbs() (*G.Node, error) {
	axis := c.logits.Dims() - 1
	lse := tfsnippet.LogSumExp(c.logits, axis)
	return G.BroadcastSub(c.logits, lse, nil, []byte{byte(axis)})
}

// LogProb calculates the log probability of the class indices held in
// x. For vector logits, x must be an integer scalar or an integer
// vector holding a batch of class indices. For matrix logits, x must
// be an integer vector holding one class index per distribution in
// the batch.
func (c *Categorical) LogProb(x *G.Node) (*G.Node, error) {
	x, err := c.fixShape(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	logProbs, err := c.logProbs()
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	if !c.isBatch() {
		out, err := tfsnippet.Gather(logProbs, x, 0)
		if err != nil {
			return nil, fmt.Errorf("logProb: %v", err)
		}

		return out, nil
	}

	// One index per row: gather along the class axis with the indices
	// as a column, then drop the column dimension
	indices, err := G.Reshape(x, []int{x.Shape()[0], 1})
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	out, err := tfsnippet.Gather(logProbs, indices, 1)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	out, err = G.Reshape(out, []int{x.Shape()[0]})
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	return out, nil
}

// Prob calculates the probability of the class indices held in x. The
// shape of x is treated in the same way as the LogProb() method.
func (c *Categorical) Prob(x *G.Node) (*G.Node, error) {
	logProb, err := c.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}

	return G.Exp(logProb)
}

// Entropy returns the entropy of the distribution: a scalar for
// vector logits, a vector of per-distribution entropies for matrix
// logits
func (c *Categorical) Entropy() (*G.Node, error) {
	axis := c.logits.Dims() - 1
	probs, err := G.SoftMax(c.logits, axis)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	logProbs, err := c.logProbs()
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	entropy := G.Must(G.HadamardProd(probs, logProbs))
	entropy, err = tfsnippet.ReduceAdd(entropy, axis, true)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}

	return G.Neg(entropy)
}

// Sample returns a node holding samples class indices drawn from the
// receiver. The node holds integers of shape (samples,) for vector
// logits and (samples, B) for matrix logits, and is not
// differentiable.
func (c *Categorical) Sample(samples int) (*G.Node, error) {
	return CategoricalRand(c.logits, c.seed, samples)
}

// Rsample returns an error: samples of a discrete distribution cannot
// be reparameterized.
func (c *Categorical) Rsample(samples int) (*G.Node, error) {
	return nil, fmt.Errorf("rsample: categorical does not have " +
		"reparameterized sampling")
}

// fixShape ensures x is an integer vector of class indices
func (c *Categorical) fixShape(x *G.Node) (*G.Node, error) {
	if x.Dtype() != tensor.Int {
		return nil, fmt.Errorf("expected class indices to have data "+
			"type %v but got %v", tensor.Int, x.Dtype())
	}

	if c.isBatch() {
		batch := c.logits.Shape()[0]
		if x.Dims() != 1 || x.Shape()[0] != batch {
			return nil, fmt.Errorf("expected one class index per "+
				"distribution in shape (%v,) but got shape %v", batch,
				x.Shape())
		}

		return x, nil
	}

	if x.IsScalar() {
		return G.Reshape(x, []int{1})
	}

	if x.Dims() != 1 {
		return nil, fmt.Errorf("expected class indices to be a scalar "+
			"or vector but got shape %v", x.Shape())
	}

	return x, nil
}
