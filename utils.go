package tfsnippet

import (
	"fmt"
	"hash/fnv"
	"sync/atomic"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// SimpleHash constructs the 32-bit FNV-1a hash of a Gorgonia Op.
// Taken from Gorgonia.
func SimpleHash(op G.Op) uint32 {
	h := fnv.New32a()
	op.WriteHash(h)
	return h.Sum32()
}

// CheckArity returns an error if the number of inputs does not match
// the arity of op.
func CheckArity(op G.Op, inputs int) error {
	if inputs != op.Arity() && op.Arity() >= 0 {
		return fmt.Errorf("%v has an arity of %d. Got %d instead", op,
			op.Arity(), inputs)
	}
	return nil
}

var uniqueID uint64

// Unique appends an _ followed by a monotonically increasing id to
// name, so that node names do not collide on a graph
func Unique(name string) string {
	return fmt.Sprintf("%v_%v", name, atomic.AddUint64(&uniqueID, 1))
}

// FloatConst returns a constant scalar node of the given floating
// point dtype on g.
func FloatConst(g *G.ExprGraph, dt tensor.Dtype, value float64) (*G.Node,
	error) {
	switch dt {
	case tensor.Float64:
		return g.Constant(G.NewF64(value)), nil

	case tensor.Float32:
		return g.Constant(G.NewF32(float32(value))), nil
	}

	return nil, fmt.Errorf("floatConst: dtype %v unsupported", dt)
}
