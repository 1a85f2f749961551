package distribution

import (
	"fmt"
	"hash"
	"math"

	"golang.org/x/exp/rand"

	"github.com/Juan-JV/tfsnippet"
	"github.com/chewxy/hm"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// categoricalSampleOp draws integer class indices from the categorical
// distributions whose unnormalized log probabilities are held in its
// input. A vector input of numEvents logits yields a vector of
// numSamples indices. A (batch, numEvents) matrix input yields a
// (numSamples, batch) matrix with each column drawn from the matching
// row of logits.
type categoricalSampleOp struct {
	dt         tensor.Dtype
	numEvents  int
	batch      int // 0 for vector logits
	seed       uint64
	numSamples int
}

func newCategoricalSampleOp(dt tensor.Dtype, seed uint64, numSamples,
	numEvents, batch int) (*categoricalSampleOp, error) {
	if dt != tensor.Float64 && dt != tensor.Float32 {
		return nil, fmt.Errorf("newCategoricalSampleOp: dtype %v not "+
			"supported", dt)
	}
	if numSamples < 1 {
		return nil, fmt.Errorf("newCategoricalSampleOp: expected "+
			"numSamples >= 1 but got %v", numSamples)
	}
	if numEvents < 1 {
		return nil, fmt.Errorf("newCategoricalSampleOp: expected at "+
			"least 1 event but got %v", numEvents)
	}
	if batch < 0 {
		return nil, fmt.Errorf("newCategoricalSampleOp: expected a "+
			"non-negative batch size but got %v", batch)
	}

	return &categoricalSampleOp{
		dt:         dt,
		numEvents:  numEvents,
		batch:      batch,
		seed:       seed,
		numSamples: numSamples,
	}, nil
}

// isBatch returns whether the op samples a batch of distributions
func (c *categoricalSampleOp) isBatch() bool { return c.batch > 0 }

func (c *categoricalSampleOp) Arity() int { return 1 }

func (c *categoricalSampleOp) Type() hm.Type {
	dims := 1
	if c.isBatch() {
		dims = 2
	}

	in := G.TensorType{
		Dims: dims,
		Of:   c.dt,
	}
	out := G.TensorType{
		Dims: dims,
		Of:   tensor.Int,
	}

	return hm.NewFnType(in, out)
}

func (c *categoricalSampleOp) InferShape(...G.DimSizer) (tensor.Shape,
	error) {
	if c.isBatch() {
		return tensor.Shape{c.numSamples, c.batch}, nil
	}

	return tensor.Shape{c.numSamples}, nil
}

func (c *categoricalSampleOp) ReturnsPtr() bool { return false }

func (c *categoricalSampleOp) CallsExtern() bool { return false }

func (c *categoricalSampleOp) OverwritesInput() int { return -1 }

func (c *categoricalSampleOp) String() string {
	return fmt.Sprintf("CategoricalSample{events=%v, batch=%v}()",
		c.numEvents, c.batch)
}

func (c *categoricalSampleOp) WriteHash(h hash.Hash) {
	fmt.Fprint(h, c.String())
}

func (c *categoricalSampleOp) Hashcode() uint32 {
	return tfsnippet.SimpleHash(c)
}

// DiffWRT marks sampling as non-differentiable with respect to the
// logits
func (c *categoricalSampleOp) DiffWRT(inputs int) []bool {
	return []bool{false}
}

func (c *categoricalSampleOp) SymDiff(inputs G.Nodes, output,
	grad *G.Node) (G.Nodes, error) {
	return nil, fmt.Errorf("symDiff: sampling is not differentiable")
}

func (c *categoricalSampleOp) Do(inputs ...G.Value) (G.Value, error) {
	if err := c.checkInputs(inputs...); err != nil {
		return nil, fmt.Errorf("do: %v", err)
	}

	logits := inputs[0].(tensor.Tensor)
	src := rand.NewSource(c.seed)

	if !c.isBatch() {
		weights, err := c.rowWeights(logits, nil)
		if err != nil {
			return nil, fmt.Errorf("do: %v", err)
		}
		dist := distuv.NewCategorical(weights, src)

		out := tensor.NewDense(tensor.Int, tensor.Shape{c.numSamples})
		data := out.Data().([]int)
		for i := range data {
			data[i] = int(dist.Rand())
		}

		return out, nil
	}

	out := tensor.NewDense(tensor.Int,
		tensor.Shape{c.numSamples, c.batch})
	data := out.Data().([]int)
	for b := 0; b < c.batch; b++ {
		weights, err := c.rowWeights(logits, []int{b})
		if err != nil {
			return nil, fmt.Errorf("do: %v", err)
		}
		dist := distuv.NewCategorical(weights, src)

		for i := 0; i < c.numSamples; i++ {
			data[i*c.batch+b] = int(dist.Rand())
		}
	}

	return out, nil
}

// rowWeights converts one row of logits, addressed by the leading
// coordinates in row, into unnormalized probability weights
func (c *categoricalSampleOp) rowWeights(logits tensor.Tensor,
	row []int) ([]float64, error) {
	weights := make([]float64, c.numEvents)
	max := math.Inf(-1)
	for i := 0; i < c.numEvents; i++ {
		l, err := logits.At(append(append([]int{}, row...), i)...)
		if err != nil {
			return nil, fmt.Errorf("could not get logit at index %v", i)
		}

		if c.dt == tensor.Float64 {
			weights[i] = l.(float64)
		} else {
			weights[i] = float64(l.(float32))
		}

		if weights[i] > max {
			max = weights[i]
		}
	}
	for i := range weights {
		weights[i] = math.Exp(weights[i] - max)
	}

	return weights, nil
}

func (c *categoricalSampleOp) checkInputs(inputs ...G.Value) error {
	if err := tfsnippet.CheckArity(c, len(inputs)); err != nil {
		return err
	}

	logits, ok := inputs[0].(tensor.Tensor)
	if !ok {
		return fmt.Errorf("expected logits to be a tensor but got %T",
			inputs[0])
	} else if logits == nil || logits.Size() == 0 {
		return fmt.Errorf("cannot sample from nil or empty logits")
	}

	if c.isBatch() {
		if logits.Dims() != 2 || logits.Shape()[0] != c.batch ||
			logits.Shape()[1] != c.numEvents {
			return fmt.Errorf("expected logits to have shape (%v, %v) "+
				"but got %v", c.batch, c.numEvents, logits.Shape())
		}
	} else if logits.Dims() != 1 || logits.Shape()[0] != c.numEvents {
		return fmt.Errorf("expected logits to have shape (%v,) but "+
			"got %v", c.numEvents, logits.Shape())
	}

	return nil
}
