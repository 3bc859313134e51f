package dqn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MLP is a fully connected ReLU network estimating one value per action.
// Weights of layer l have shape (sizes[l], sizes[l+1]) so a batch of
// observations is multiplied from the left. Biases are 1 x sizes[l+1].
type MLP struct {
	sizes   []int
	weights []*mat.Dense
	biases  []*mat.Dense
}

// NewMLP initialises every parameter uniformly in +-1/sqrt(fan in)
func NewMLP(sizes []int, r *rand.Rand) *MLP {
	if len(sizes) < 2 {
		panic("dqn: an MLP needs at least an input and an output layer")
	}
	n := &MLP{
		sizes:   append([]int(nil), sizes...),
		weights: make([]*mat.Dense, len(sizes)-1),
		biases:  make([]*mat.Dense, len(sizes)-1),
	}
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		bound := 1 / math.Sqrt(float64(in))
		w := make([]float64, in*out)
		for i := range w {
			w[i] = (2*r.Float64() - 1) * bound
		}
		b := make([]float64, out)
		for i := range b {
			b[i] = (2*r.Float64() - 1) * bound
		}
		n.weights[l] = mat.NewDense(in, out, w)
		n.biases[l] = mat.NewDense(1, out, b)
	}
	return n
}

func (n *MLP) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

func (n *MLP) InputSize() int {
	return n.sizes[0]
}

func (n *MLP) OutputSize() int {
	return n.sizes[len(n.sizes)-1]
}

// params in a fixed order, weights and biases interleaved by layer
func (n *MLP) params() []*mat.Dense {
	out := make([]*mat.Dense, 0, 2*len(n.weights))
	for l := range n.weights {
		out = append(out, n.weights[l], n.biases[l])
	}
	return out
}

// Forward returns the action values of a single observation
func (n *MLP) Forward(observation []float64) []float64 {
	x := mat.NewDense(1, len(observation), append([]float64(nil), observation...))
	out := n.ForwardBatch(x)
	return append([]float64(nil), out.RawRowView(0)...)
}

// ForwardBatch evaluates a batch with one observation per row
func (n *MLP) ForwardBatch(x *mat.Dense) *mat.Dense {
	acts, _ := n.forward(x)
	return acts[len(acts)-1]
}

// forward keeps the layer inputs (acts) and pre activations needed by backward.
// acts[0] is x and acts[len] is the linear output.
func (n *MLP) forward(x *mat.Dense) ([]*mat.Dense, []*mat.Dense) {
	last := len(n.weights) - 1
	acts := make([]*mat.Dense, 0, len(n.weights)+1)
	pre := make([]*mat.Dense, 0, len(n.weights))
	acts = append(acts, x)

	a := x
	for l := range n.weights {
		z := &mat.Dense{}
		z.Mul(a, n.weights[l])
		rows, _ := z.Dims()
		bias := n.biases[l].RawRowView(0)
		for i := 0; i < rows; i++ {
			floats.Add(z.RawRowView(i), bias)
		}
		pre = append(pre, z)
		if l == last {
			acts = append(acts, z)
			break
		}
		h := &mat.Dense{}
		h.Apply(func(_, _ int, v float64) float64 {
			return math.Max(v, 0)
		}, z)
		acts = append(acts, h)
		a = h
	}
	return acts, pre
}

// backward propagates the gradient of the loss with respect to the output
// and returns the parameter gradients in the order of params.
func (n *MLP) backward(acts, pre []*mat.Dense, gradOut *mat.Dense) []*mat.Dense {
	grads := make([]*mat.Dense, 2*len(n.weights))
	delta := gradOut
	for l := len(n.weights) - 1; l >= 0; l-- {
		gw := &mat.Dense{}
		gw.Mul(acts[l].T(), delta)

		rows, cols := delta.Dims()
		gb := mat.NewDense(1, cols, nil)
		for i := 0; i < rows; i++ {
			floats.Add(gb.RawRowView(0), delta.RawRowView(i))
		}
		grads[2*l] = gw
		grads[2*l+1] = gb

		if l == 0 {
			break
		}
		prev := &mat.Dense{}
		prev.Mul(delta, n.weights[l].T())
		mask := pre[l-1]
		prev.Apply(func(i, j int, v float64) float64 {
			if mask.At(i, j) > 0 {
				return v
			}
			return 0
		}, prev)
		delta = prev
	}
	return grads
}

// CopyFrom overwrites every parameter with the ones of other
func (n *MLP) CopyFrom(other *MLP) error {
	if !sameSizes(n.sizes, other.sizes) {
		return fmt.Errorf("dqn: cannot copy a %v network into a %v network", other.sizes, n.sizes)
	}
	for l := range n.weights {
		n.weights[l].Copy(other.weights[l])
		n.biases[l].Copy(other.biases[l])
	}
	return nil
}

// Clone returns a deep copy
func (n *MLP) Clone() *MLP {
	c := &MLP{
		sizes:   append([]int(nil), n.sizes...),
		weights: make([]*mat.Dense, len(n.weights)),
		biases:  make([]*mat.Dense, len(n.biases)),
	}
	for l := range n.weights {
		c.weights[l] = mat.DenseCopyOf(n.weights[l])
		c.biases[l] = mat.DenseCopyOf(n.biases[l])
	}
	return c
}

// Equal is true when both networks hold identical parameters
func (n *MLP) Equal(other *MLP) bool {
	if !sameSizes(n.sizes, other.sizes) {
		return false
	}
	for l := range n.weights {
		if !mat.Equal(n.weights[l], other.weights[l]) || !mat.Equal(n.biases[l], other.biases[l]) {
			return false
		}
	}
	return true
}

func sameSizes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
