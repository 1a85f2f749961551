package tfsnippet

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ReduceAdd sums x along axis. If squeeze is true, the reduced axis
// is removed from the output shape. Otherwise it is kept with size 1.
func ReduceAdd(x *G.Node, axis int, squeeze bool) (*G.Node, error) {
	if axis < 0 || axis >= x.Dims() {
		return nil, fmt.Errorf("reduceAdd: axis [%v] out of range for "+
			"node with shape %v", axis, x.Shape())
	}

	sum, err := G.Sum(x, axis)
	if err != nil {
		return nil, fmt.Errorf("reduceAdd: %v", err)
	}

	if squeeze {
		return sum, nil
	}

	return keepAxis(sum, x.Shape(), axis)
}

// ReduceProd multiplies x along axis. If squeeze is true, the reduced
// axis is removed from the output shape. Otherwise it is kept with
// size 1.
func ReduceProd(x *G.Node, axis int, squeeze bool) (*G.Node, error) {
	if axis < 0 || axis >= x.Dims() {
		return nil, fmt.Errorf("reduceProd: axis [%v] out of range for "+
			"node with shape %v", axis, x.Shape())
	}

	shape := x.Shape()
	dims := make([]tensor.Slice, len(shape))
	dims[axis] = G.S(0)

	prod, err := G.Slice(x, dims...)
	if err != nil {
		return nil, fmt.Errorf("reduceProd: %v", err)
	}

	for i := 1; i < shape[axis]; i++ {
		dims[axis] = G.S(i)

		s, err := G.Slice(x, dims...)
		if err != nil {
			return nil, fmt.Errorf("reduceProd: %v", err)
		}

		prod, err = G.HadamardProd(prod, s)
		if err != nil {
			return nil, fmt.Errorf("reduceProd: %v", err)
		}
	}

	if squeeze {
		return prod, nil
	}

	return keepAxis(prod, x.Shape(), axis)
}

// keepAxis reshapes reduced, the result of reducing a node of shape
// inShape along axis, so that the reduced axis is kept with size 1.
func keepAxis(reduced *G.Node, inShape tensor.Shape, axis int) (*G.Node,
	error) {
	newShape := make([]int, len(inShape))
	copy(newShape, inShape)
	newShape[axis] = 1

	out, err := G.Reshape(reduced, newShape)
	if err != nil {
		return nil, fmt.Errorf("keepAxis: %v", err)
	}

	return out, nil
}
