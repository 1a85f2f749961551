package distribution

import (
	"fmt"

	"github.com/Juan-JV/tfsnippet"
	"github.com/Juan-JV/tfsnippet/flow"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// FlowDistribution is the distribution of y = f(x), where x is drawn
// from an underlying continuous distribution and f is an invertible
// flow. Densities follow the change of variables formula
//
//	log p(y) = log p(x) + log |det dx/dy|
//
// The underlying distribution's density is combined over the flow's
// leading event dimensions before the log determinant is added, so
// the trailing YValueNdims dimensions of a transformed sample form a
// single multivariate event.
type FlowDistribution struct {
	base Distribution
	flow flow.Flow
}

// NewFlowDistribution returns the distribution of base samples pushed
// through f. The base distribution must be continuous with a floating
// point dtype, and its events must fit within the flow's input
// events: base.ValueNdims() cannot exceed f.XValueNdims().
func NewFlowDistribution(base Distribution, f flow.Flow) (
	*FlowDistribution, error) {
	if base == nil {
		return nil, fmt.Errorf("newFlowDistribution: base distribution " +
			"cannot be nil")
	}
	if f == nil {
		return nil, fmt.Errorf("newFlowDistribution: flow cannot be nil")
	}

	if !base.IsContinuous() {
		return nil, fmt.Errorf("newFlowDistribution: distribution %T "+
			"cannot be transformed by a flow because it is not continuous",
			base)
	}
	if dt := base.Dtype(); dt != tensor.Float64 && dt != tensor.Float32 {
		return nil, fmt.Errorf("newFlowDistribution: distribution %T "+
			"cannot be transformed by a flow because its data type %v is "+
			"not a floating point type", base, dt)
	}

	if base.ValueNdims() > f.XValueNdims() {
		return nil, fmt.Errorf("newFlowDistribution: expected the flow "+
			"to consume events of at least %v dimensions but the flow "+
			"expects %v", base.ValueNdims(), f.XValueNdims())
	}

	return &FlowDistribution{
		base: base,
		flow: f,
	}, nil
}

// Base returns the underlying distribution
func (d *FlowDistribution) Base() Distribution { return d.base }

// Flow returns the flow transforming the underlying distribution
func (d *FlowDistribution) Flow() flow.Flow { return d.flow }

// Dtype returns the element type of samples from the distribution
func (d *FlowDistribution) Dtype() tensor.Dtype { return d.base.Dtype() }

// IsContinuous returns true: a flow is a continuous map of a
// continuous distribution
func (d *FlowDistribution) IsContinuous() bool { return true }

// HasRsample returns whether the underlying distribution has
// reparameterized samples. The flow itself is differentiable, so
// gradients flow through transformed samples exactly when they flow
// through the underlying samples.
func (d *FlowDistribution) HasRsample() bool { return d.base.HasRsample() }

// ValueNdims returns the number of trailing dimensions of a
// transformed sample which constitute a single event
func (d *FlowDistribution) ValueNdims() int { return d.flow.YValueNdims() }

// Shape returns the shape of the underlying distribution
func (d *FlowDistribution) Shape() tensor.Shape { return d.base.Shape() }

// sampleConfig collects the options of a single SampleN call
type sampleConfig struct {
	reparameterized *bool
	groupNdims      int
	computeDensity  bool
}

// SampleOption modifies how SampleN draws a sample
type SampleOption func(*sampleConfig)

// WithReparameterized requests that the sample is or is not drawn
// reparameterized, instead of following the underlying distribution's
// default. Requesting reparameterized samples from a distribution
// without them is an error.
func WithReparameterized(reparameterized bool) SampleOption {
	return func(c *sampleConfig) { c.reparameterized = &reparameterized }
}

// WithGroupNdims requests that the sample's log density is summed
// over the given number of trailing batch dimensions.
func WithGroupNdims(groupNdims int) SampleOption {
	return func(c *sampleConfig) { c.groupNdims = groupNdims }
}

// WithoutDensity requests that no density is computed alongside the
// sample. A FlowDistribution always rejects this option: the log
// determinant is a byproduct of the transform, so the density is
// computed either way.
func WithoutDensity() SampleOption {
	return func(c *sampleConfig) { c.computeDensity = false }
}

// SampleN draws samples from the distribution by sampling the
// underlying distribution and pushing the samples through the flow.
// The returned Sample carries the transformed node, whose shape is
// (samples,) + the transformed shape of the underlying distribution,
// together with its log density.
//
// The first call builds the flow against the drawn samples when the
// flow has not been built yet.
func (d *FlowDistribution) SampleN(samples int, opts ...SampleOption) (
	*Sample, error) {
	if samples < 1 {
		return nil, fmt.Errorf("sampleN: expected samples >= 1 but got %v",
			samples)
	}

	config := sampleConfig{computeDensity: true}
	for _, opt := range opts {
		opt(&config)
	}

	if !config.computeDensity {
		return nil, fmt.Errorf("sampleN: the density of a transformed " +
			"sample is always computed, it cannot be skipped")
	}

	reparameterized := d.base.HasRsample()
	if config.reparameterized != nil {
		reparameterized = *config.reparameterized
		if reparameterized && !d.base.HasRsample() {
			return nil, fmt.Errorf("sampleN: distribution %T does not "+
				"have reparameterized samples", d.base)
		}
	}

	var x *G.Node
	var err error
	if reparameterized {
		x, err = d.base.Rsample(samples)
	} else {
		x, err = d.base.Sample(samples)
	}
	if err != nil {
		return nil, fmt.Errorf("sampleN: could not sample underlying "+
			"distribution: %v", err)
	}

	// Sampling ops already block gradients, but a non-reparameterized
	// draw from a reparameterized distribution must not leak gradients
	// through the density either
	if !reparameterized {
		x, err = tfsnippet.StopGradient(x)
		if err != nil {
			return nil, fmt.Errorf("sampleN: %v", err)
		}
	}

	if !d.flow.Built() {
		if err := d.flow.Build(x); err != nil {
			return nil, fmt.Errorf("sampleN: could not build flow: %v", err)
		}
	}

	y, logDet, err := d.flow.Transform(x)
	if err != nil {
		return nil, fmt.Errorf("sampleN: could not transform sample: %v",
			err)
	}

	// Transform reports log|det dy/dx|; the change of variables needs
	// the log determinant of the inverse map
	logDet, err = G.Neg(logDet)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	logProb, err := d.density(x, logDet, config.groupNdims)
	if err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	sample := &Sample{node: y, reparameterized: reparameterized}
	if err := sample.setLogProb(logProb); err != nil {
		return nil, fmt.Errorf("sampleN: %v", err)
	}

	return sample, nil
}

// LogProbGroup calculates the log density of the transformed values
// held in y, summed over groupNdims trailing batch dimensions. The
// values are pulled back through the flow's inverse transform, and the
// underlying distribution's density at the pre-images is corrected by
// the log determinant of the inverse map.
func (d *FlowDistribution) LogProbGroup(y *G.Node, groupNdims int) (
	*G.Node, error) {
	x, logDet, err := d.flow.InverseTransform(y)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not invert flow: %v", err)
	}

	logProb, err := d.density(x, logDet, groupNdims)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	return logProb, nil
}

// density combines the underlying distribution's log density at x
// with a log determinant and sums the result over groupNdims trailing
// dimensions. The underlying density is first combined over the
// flow's event dimensions so that it has the shape of the log
// determinant.
func (d *FlowDistribution) density(x, logDet *G.Node, groupNdims int) (
	*G.Node, error) {
	logProb, err := d.base.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("could not compute underlying density: %v",
			err)
	}

	// Combine event dims the underlying distribution left unreduced
	for i := 0; i < d.flow.XValueNdims()-d.base.ValueNdims(); i++ {
		logProb, err = tfsnippet.ReduceAdd(logProb, logProb.Dims()-1, true)
		if err != nil {
			return nil, fmt.Errorf("could not combine event dims: %v", err)
		}
	}

	logProb, err = G.Add(logProb, logDet)
	if err != nil {
		return nil, fmt.Errorf("could not add log determinant: %v", err)
	}

	if groupNdims < 0 || groupNdims > logProb.Dims() {
		return nil, fmt.Errorf("expected 0 <= groupNdims <= %v but got %v",
			logProb.Dims(), groupNdims)
	}

	// Combine grouped batch dims
	for i := 0; i < groupNdims; i++ {
		logProb, err = tfsnippet.ReduceAdd(logProb, logProb.Dims()-1, true)
		if err != nil {
			return nil, fmt.Errorf("could not combine grouped dims: %v", err)
		}
	}

	return logProb, nil
}

// LogProb calculates the log density of the transformed values held
// in y. The density of each event is kept separate.
func (d *FlowDistribution) LogProb(y *G.Node) (*G.Node, error) {
	return d.LogProbGroup(y, 0)
}

// Prob calculates the density of the transformed values held in y
func (d *FlowDistribution) Prob(y *G.Node) (*G.Node, error) {
	logProb, err := d.LogProb(y)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}

	return G.Exp(logProb)
}

// Entropy returns an error: the entropy of a transformed distribution
// has no closed form in general.
func (d *FlowDistribution) Entropy() (*G.Node, error) {
	return nil, fmt.Errorf("entropy: not defined for transformed " +
		"distributions")
}

// Sample returns a node holding samples non-reparameterized samples
// from the receiver. The node is not differentiable.
func (d *FlowDistribution) Sample(samples int) (*G.Node, error) {
	sample, err := d.SampleN(samples, WithReparameterized(false))
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}

	return sample.Node(), nil
}

// Rsample returns a node holding samples reparameterized samples from
// the receiver. Gradients flow through the sampled values to the
// underlying distribution's parameters and through the flow.
func (d *FlowDistribution) Rsample(samples int) (*G.Node, error) {
	if !d.HasRsample() {
		return nil, fmt.Errorf("rsample: distribution %T does not have "+
			"reparameterized samples", d.base)
	}

	sample, err := d.SampleN(samples, WithReparameterized(true))
	if err != nil {
		return nil, fmt.Errorf("rsample: %v", err)
	}

	return sample.Node(), nil
}
