package flow

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Chain composes flows left to right: the first flow's output feeds
// the second flow's input, and so on. Log determinants accumulate.
// Adjacent flows must agree on their event ranks, so every log
// determinant in the chain shares the common batch shape.
type Chain struct {
	flows []Flow
}

// NewChain returns the composition of the given flows
func NewChain(flows ...Flow) (*Chain, error) {
	if len(flows) == 0 {
		return nil, fmt.Errorf("newChain: expected at least one flow")
	}

	for i := 0; i < len(flows)-1; i++ {
		if flows[i].YValueNdims() != flows[i+1].XValueNdims() {
			return nil, fmt.Errorf("newChain: flow %v produces events of "+
				"rank %v but flow %v consumes events of rank %v", i,
				flows[i].YValueNdims(), i+1, flows[i+1].XValueNdims())
		}
	}

	return &Chain{flows: flows}, nil
}

func (c *Chain) XValueNdims() int { return c.flows[0].XValueNdims() }

func (c *Chain) YValueNdims() int {
	return c.flows[len(c.flows)-1].YValueNdims()
}

// Built returns whether every flow in the chain has been built
func (c *Chain) Built() bool {
	for _, f := range c.flows {
		if !f.Built() {
			return false
		}
	}

	return true
}

// Build builds every flow in the chain by threading a stand-in for x
// through the composition. The stand-in lives on a scratch graph, so
// building leaves no nodes behind on the graph of x.
func (c *Chain) Build(x *G.Node) error {
	if c.Built() {
		return nil
	}
	if err := checkRank("build", x, c.XValueNdims()); err != nil {
		return err
	}

	scratch := G.NewGraph()
	var cur *G.Node
	if x.Dims() == 0 {
		cur = G.NewScalar(scratch, x.Dtype(), G.WithName("build"))
	} else {
		cur = G.NewTensor(scratch, x.Dtype(), x.Dims(),
			G.WithShape(x.Shape()...), G.WithName("build"))
	}

	for i, f := range c.flows {
		var err error
		if cur, _, err = f.Transform(cur); err != nil {
			return fmt.Errorf("build: flow %v: %v", i, err)
		}
	}

	return nil
}

func (c *Chain) Transform(x *G.Node) (*G.Node, *G.Node, error) {
	var logDet *G.Node

	for i, f := range c.flows {
		var ld *G.Node
		var err error

		x, ld, err = f.Transform(x)
		if err != nil {
			return nil, nil, fmt.Errorf("transform: flow %v: %v", i, err)
		}

		if logDet == nil {
			logDet = ld
		} else if logDet, err = G.Add(logDet, ld); err != nil {
			return nil, nil, fmt.Errorf("transform: flow %v: %v", i, err)
		}
	}

	return x, logDet, nil
}

func (c *Chain) InverseTransform(y *G.Node) (*G.Node, *G.Node, error) {
	var logDet *G.Node

	for i := len(c.flows) - 1; i >= 0; i-- {
		var ld *G.Node
		var err error

		y, ld, err = c.flows[i].InverseTransform(y)
		if err != nil {
			return nil, nil, fmt.Errorf("inverseTransform: flow %v: %v", i,
				err)
		}

		if logDet == nil {
			logDet = ld
		} else if logDet, err = G.Add(logDet, ld); err != nil {
			return nil, nil, fmt.Errorf("inverseTransform: flow %v: %v", i,
				err)
		}
	}

	return y, logDet, nil
}
