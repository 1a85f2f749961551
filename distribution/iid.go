package distribution

import (
	"fmt"

	"github.com/Juan-JV/tfsnippet"
	G "gorgonia.org/gorgonia"
)

// IID treats the trailing dims dimensions of an underlying
// distribution's shape as a single multivariate event of independent,
// identically distributed variables. Densities and entropies of the
// underlying distribution are combined over those event dimensions,
// which are always taken from the right.
type IID struct {
	Distribution
	dims int // The number of batch dimensions to interpret as events
}

// NewIID returns a new IID which interprets the last dims dimensions
// of d's shape as event dimensions.
func NewIID(d Distribution, dims int) (*IID, error) {
	if d == nil {
		return nil, fmt.Errorf("newIID: distribution cannot be nil")
	}
	if dims < 0 {
		return nil, fmt.Errorf("newIID: expected dims >= 0 but got %v",
			dims)
	}
	if got := d.Shape().Dims(); dims > got {
		return nil, fmt.Errorf("newIID: expected dims <= %v but got %v",
			got, dims)
	}

	return &IID{d, dims}, nil
}

// SetDims sets the number of event dims, validated against the
// underlying distribution's shape the same way as NewIID
func (i *IID) SetDims(dims int) error {
	if dims < 0 {
		return fmt.Errorf("setDims: expected dims >= 0 but got %v", dims)
	}
	if got := i.Distribution.Shape().Dims(); dims > got {
		return fmt.Errorf("setDims: expected dims <= %v but got %v", got,
			dims)
	}

	i.dims = dims
	return nil
}

// ValueNdims returns the number of event dimensions of a single
// sample of the distribution
func (i *IID) ValueNdims() int {
	return i.Distribution.ValueNdims() + i.dims
}

func (i *IID) Prob(x *G.Node) (*G.Node, error) {
	if x.Dims() < i.dims {
		return nil, fmt.Errorf("prob: expected dims >= %v but got %v", i.dims,
			x.Dims())
	}

	x, err := i.Distribution.Prob(x)
	if err != nil {
		return nil, fmt.Errorf("prob: could not compute iid prob: %v", err)
	}

	// Combine event dims
	for j := 0; j < i.dims; j++ {
		x, err = tfsnippet.ReduceProd(x, x.Dims()-1, true)
		if err != nil {
			return nil, fmt.Errorf("prob: could not combine event dims: %v",
				err)
		}
	}

	return x, nil
}

func (i *IID) LogProb(x *G.Node) (*G.Node, error) {
	if x.Dims() < i.dims {
		return nil, fmt.Errorf("logProb: expected dims >= %v but got %v", i.dims,
			x.Dims())
	}

	x, err := i.Distribution.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not compute iid prob: %v", err)
	}

	// Combine event dims
	for j := 0; j < i.dims; j++ {
		x, err = tfsnippet.ReduceAdd(x, x.Dims()-1, true)
		if err != nil {
			return nil, fmt.Errorf("logProb: could not combine event dims: %v",
				err)
		}
	}

	return x, nil
}

func (i *IID) Entropy() (*G.Node, error) {
	x, err := i.Distribution.Entropy()
	if err != nil {
		return nil, fmt.Errorf("entropy: could not take entropy of each "+
			"i.i.d. variable: %v", err)
	}

	// Combine event dims
	for j := 0; j < i.dims; j++ {
		x, err = tfsnippet.ReduceAdd(x, x.Dims()-1, true)
		if err != nil {
			return nil, fmt.Errorf("entropy: could not combine event dims: %v",
				err)
		}
	}

	return x, nil
}

// Cdf computes the joint cumulative distribution function over the
// event dimensions. The underlying distribution must satisfy
// Quantiler.
func (i *IID) Cdf(x *G.Node) (*G.Node, error) {
	quantiler, ok := i.Distribution.(Quantiler)
	if !ok {
		return nil, fmt.Errorf("cdf: underlying distribution (%T) does "+
			"not have a cdf", i.Distribution)
	}

	if x.Dims() < i.dims {
		return nil, fmt.Errorf("cdf: expected dims >= %v but got %v", i.dims,
			x.Dims())
	}

	x, err := quantiler.Cdf(x)
	if err != nil {
		return nil, fmt.Errorf("cdf: could not compute iid cdf: %v", err)
	}

	// Combine event dims
	for j := 0; j < i.dims; j++ {
		x, err = tfsnippet.ReduceProd(x, x.Dims()-1, true)
		if err != nil {
			return nil, fmt.Errorf("cdf: could not combine event dims: %v",
				err)
		}
	}

	return x, nil
}
