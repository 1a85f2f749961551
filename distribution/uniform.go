package distribution

import (
	"fmt"

	"github.com/Juan-JV/tfsnippet"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Uniform is a univariate continuous uniform distribution on the
// half-open interval [min, max), which may hold a batch of uniform
// distributions simultaneously. Each element of the min and max
// tensors defines a different distribution element-wise, and the
// shape of the min and max tensors constitutes the shape of the
// Uniform.
//
// Inputs to the methods of a Uniform are treated in the same way as
// inputs to a Normal: the input must have the same shape as the
// distribution, except for possibly a batch dimension, which is
// always dimension 0.
//
// Uniform supports the following data types:
//   - tensor.Float64
//   - tensor.Float32
type Uniform struct {
	min    *G.Node
	minVal G.Value

	max    *G.Node
	maxVal G.Value

	reparameterized bool
	seed            uint64
}

// NewUniform returns a new Uniform on [min, max). The min and max must
// share a floating point dtype and a shape.
func NewUniform(min, max *G.Node, seed uint64) (*Uniform, error) {
	if !min.Shape().Eq(max.Shape()) {
		return nil, fmt.Errorf("newUniform: expected min and max to "+
			"have the same shape but got %v and %v", min.Shape(),
			max.Shape())
	}

	if min.Dtype() != max.Dtype() {
		return nil, fmt.Errorf("newUniform: expected min and max to "+
			"have the same data type but got %v and %v", min.Dtype(),
			max.Dtype())
	} else if min.Dtype() != tensor.Float64 &&
		min.Dtype() != tensor.Float32 {
		return nil, fmt.Errorf("newUniform: data type %v unsupported",
			min.Dtype())
	}

	var err error
	if min.IsScalar() {
		min, err = G.Reshape(min, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newUniform: could not expand min to "+
				"shape (1): %v", err)
		}
		max, err = G.Reshape(max, []int{1})
		if err != nil {
			return nil, fmt.Errorf("newUniform: could not expand max to "+
				"shape (1): %v", err)
		}
	}

	uniform := &Uniform{
		min:             min,
		max:             max,
		reparameterized: true,
		seed:            seed,
	}

	G.Read(uniform.min, &uniform.minVal)
	G.Read(uniform.max, &uniform.maxVal)

	return uniform, nil
}

// Dtype returns the element type of samples from the distribution
func (u *Uniform) Dtype() tensor.Dtype { return u.min.Dtype() }

// IsContinuous returns true: the Uniform is a continuous distribution
func (u *Uniform) IsContinuous() bool { return true }

// ValueNdims returns 0: each element of the Uniform's shape is an
// independent univariate distribution, there are no event dimensions
func (u *Uniform) ValueNdims() int { return 0 }

// HasRsample returns whether the distribution has reparameterized
// samples
func (u *Uniform) HasRsample() bool { return u.reparameterized }

// DisableRsample marks the distribution as not having reparameterized
// samples, so that Rsample returns an error and gradients never flow
// through sampled values.
func (u *Uniform) DisableRsample() { u.reparameterized = false }

// Shape returns the number of distributions stored by the receiver
func (u *Uniform) Shape() tensor.Shape {
	return u.min.Shape()
}

// Min returns the lower bound of the distribution(s) stored by the
// receiver
func (u *Uniform) Min() *G.Node { return u.min }

// Max returns the upper bound of the distribution(s) stored by the
// receiver
func (u *Uniform) Max() *G.Node { return u.max }

// span returns max - min
func (u *Uniform) span() *G.Node {
	return G.Must(G.Sub(u.max, u.min))
}

// Mean returns the mean of the distribution(s) stored by the receiver
func (u *Uniform) Mean() *G.Node {
	half := G.Must(tfsnippet.FloatConst(u.min.Graph(), u.Dtype(), 0.5))
	sum := G.Must(G.Add(u.min, u.max))
	return G.Must(G.HadamardProd(half, sum))
}

// Variance returns the variance of the distribution(s) stored by the
// receiver
func (u *Uniform) Variance() *G.Node {
	twelfth := G.Must(tfsnippet.FloatConst(u.min.Graph(), u.Dtype(),
		1.0/12.0))
	squared := G.Must(G.Square(u.span()))
	return G.Must(G.HadamardProd(twelfth, squared))
}

// Entropy returns the entropy of the distribution(s) stored by the
// receiver
func (u *Uniform) Entropy() (*G.Node, error) {
	return G.Log(u.span())
}

// Prob calculates the probability density of x, which is
// 1 / (max - min) inside [min, max] and 0 outside. The shape of x is
// treated in the same way as inputs to the Normal distribution.
func (u *Uniform) Prob(x *G.Node) (*G.Node, error) {
	x, err := u.fixShape(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}

	if u.isBatch(x) {
		batchDim := []byte{0}
		above := G.Must(G.BroadcastGte(x, u.min, true, nil, batchDim))
		below := G.Must(G.BroadcastLte(x, u.max, true, nil, batchDim))
		inside := G.Must(G.HadamardProd(above, below))
		x = G.Must(G.BroadcastHadamardDiv(inside, u.span(), nil, batchDim))
	} else {
		above := G.Must(G.Gte(x, u.min, true))
		below := G.Must(G.Lte(x, u.max, true))
		inside := G.Must(G.HadamardProd(above, below))
		x = G.Must(G.HadamardDiv(inside, u.span()))
	}

	return x, nil
}

// LogProb calculates the log probability density of x. The shape of x
// is treated in the same way as the Prob() method. Values of x outside
// [min, max] have a log density of -Inf.
func (u *Uniform) LogProb(x *G.Node) (*G.Node, error) {
	prob, err := u.Prob(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	return G.Log(prob)
}

// Cdf computes the cumulative distribution function of x. The shape
// of x is treated in the same way as the Prob() method.
func (u *Uniform) Cdf(x *G.Node) (*G.Node, error) {
	x, err := u.fixShape(x)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	if u.isBatch(x) {
		batchDim := []byte{0}
		x = G.Must(G.BroadcastSub(x, u.min, nil, batchDim))
		x = G.Must(G.BroadcastHadamardDiv(x, u.span(), nil, batchDim))
	} else {
		x = G.Must(G.Sub(x, u.min))
		x = G.Must(G.HadamardDiv(x, u.span()))
	}

	var min, max interface{}
	if u.Dtype() == tensor.Float64 {
		min, max = 0.0, 1.0
	} else {
		min, max = float32(0.0), float32(1.0)
	}

	x, err = tfsnippet.Clamp(x, min, max, false)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	return x, nil
}

// Cdfinv computes the inverse cumulative distribution function at
// probability p. The shape of p is treated in the same way as the
// Prob() method.
func (u *Uniform) Cdfinv(p *G.Node) (*G.Node, error) {
	p, err := u.fixShape(p)
	if err != nil {
		return nil, fmt.Errorf("cdfinv: %v", err)
	}

	if u.isBatch(p) {
		batchDim := []byte{0}
		p = G.Must(G.BroadcastHadamardProd(p, u.span(), nil, batchDim))
		p = G.Must(G.BroadcastAdd(p, u.min, nil, batchDim))
	} else {
		p = G.Must(G.HadamardProd(p, u.span()))
		p = G.Must(G.Add(p, u.min))
	}

	return p, nil
}

// Sample returns a node holding samples samples from the receiver.
// The node has shape (samples,) + u.Shape() and is not
// differentiable.
func (u *Uniform) Sample(samples int) (*G.Node, error) {
	x, err := u.rsample(samples)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	x, err = tfsnippet.StopGradient(x)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return x, nil
}

// Rsample returns a node holding samples reparameterized samples from
// the receiver. The node has shape (samples,) + u.Shape(). Gradients
// flow through the sampled values to the bounds: a sample is
// min + (max-min)*ε with ε drawn from a standard uniform.
func (u *Uniform) Rsample(samples int) (*G.Node, error) {
	if !u.reparameterized {
		return nil, fmt.Errorf("rsample: uniform does not have " +
			"reparameterized sampling enabled")
	}

	return u.rsample(samples)
}

func (u *Uniform) rsample(samples int) (*G.Node, error) {
	eps, err := StandardUniformRand(u.min, u.seed, samples)
	if err != nil {
		return nil, err
	}

	// Reparameterization trick
	batchDim := []byte{0}
	out := G.Must(G.BroadcastHadamardProd(eps, u.span(), nil, batchDim))
	out = G.Must(G.BroadcastAdd(out, u.min, nil, batchDim))

	return out, nil
}

// isBatch returns whether x is a batch of samples to calculate some
// method on
func (u *Uniform) isBatch(x *G.Node) bool {
	return !x.Shape().Eq(u.min.Shape())
}

// fixShape adjusts the shape of x so that it can be used in some
// method. It returns an error indicating if x is of an invalid shape
// which could not be adjusted.
func (u *Uniform) fixShape(x *G.Node) (*G.Node, error) {
	if x.IsScalar() && u.min.Shape()[0] == 1 {
		return G.Reshape(x, []int{1})

	} else if len(x.Shape()) == 1 && len(u.min.Shape()) == 1 &&
		u.min.Shape()[0] == 1 {
		return G.Reshape(x, []int{x.Shape()[0], 1})

	} else if u.isBatch(x) && !tensor.Shape(x.Shape()[1:]).Eq(u.Shape()) {
		msg := "expected shape to match distribution shape %v at all " +
			"dimensions except batch (dim 0) but got x shape %v"
		return nil, fmt.Errorf(msg, u.Shape(), x.Shape())

	} else if !u.isBatch(x) && !u.Shape().Eq(x.Shape()) {
		msg := "expected shape to match distribution shape %v but got %v"
		return nil, fmt.Errorf(msg, u.Shape(), x.Shape())
	}

	return x, nil
}
