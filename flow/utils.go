package flow

import (
	"fmt"

	"github.com/Juan-JV/tfsnippet"
	G "gorgonia.org/gorgonia"
)

// sumTrailing sums x over its trailing ndims dimensions, removing
// them one at a time from the right.
func sumTrailing(x *G.Node, ndims int) (*G.Node, error) {
	var err error
	for i := 0; i < ndims; i++ {
		x, err = tfsnippet.ReduceAdd(x, x.Dims()-1, true)
		if err != nil {
			return nil, fmt.Errorf("sumTrailing: %v", err)
		}
	}

	return x, nil
}

// zeroLogDet returns a node of zeros with the shape of x minus its
// trailing ndims dimensions, on the same graph and of the same dtype
// as x.
func zeroLogDet(x *G.Node, ndims int) (*G.Node, error) {
	reduced, err := sumTrailing(x, ndims)
	if err != nil {
		return nil, fmt.Errorf("zeroLogDet: %v", err)
	}

	zero, err := tfsnippet.FloatConst(x.Graph(), x.Dtype(), 0.0)
	if err != nil {
		return nil, fmt.Errorf("zeroLogDet: %v", err)
	}

	out, err := G.HadamardProd(zero, reduced)
	if err != nil {
		return nil, fmt.Errorf("zeroLogDet: %v", err)
	}

	return out, nil
}

// eventSize returns the number of elements in the trailing ndims
// dimensions of shape
func eventSize(shape []int, ndims int) int {
	size := 1
	for _, dim := range shape[len(shape)-ndims:] {
		size *= dim
	}

	return size
}
