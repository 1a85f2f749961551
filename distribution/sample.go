package distribution

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Sample is a value drawn from a FlowDistribution. Beyond the node
// holding the sampled value, it carries the effective
// reparameterization flag of the draw and a cached log density, so
// asking for the density of this exact sample never re-runs the
// flow's inverse transform.
type Sample struct {
	node            *G.Node
	reparameterized bool
	logProb         *G.Node
}

// Node returns the node holding the sampled value
func (s *Sample) Node() *G.Node { return s.node }

// IsReparameterized returns whether the sample was drawn
// reparameterized, i.e. whether gradients flow through the sampled
// value to the distribution's parameters.
func (s *Sample) IsReparameterized() bool { return s.reparameterized }

// LogProb returns the cached log density of the sample
func (s *Sample) LogProb() *G.Node { return s.logProb }

// setLogProb caches the log density of the sample. The density may
// be set exactly once.
func (s *Sample) setLogProb(logProb *G.Node) error {
	if s.logProb != nil {
		return fmt.Errorf("setLogProb: log probability already set")
	}

	s.logProb = logProb
	return nil
}
