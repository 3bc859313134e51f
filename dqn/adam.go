package dqn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Adam optimizer keeping first and second moment estimates per parameter
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t int
	m []*mat.Dense
	v []*mat.Dense
}

func NewAdam(learningRate float64, params []*mat.Dense) *Adam {
	a := &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		m:            make([]*mat.Dense, len(params)),
		v:            make([]*mat.Dense, len(params)),
	}
	for i, p := range params {
		r, c := p.Dims()
		a.m[i] = mat.NewDense(r, c, nil)
		a.v[i] = mat.NewDense(r, c, nil)
	}
	return a
}

// Step moves every parameter against its gradient
func (a *Adam) Step(params, grads []*mat.Dense) {
	a.t += 1
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))
	for i, p := range params {
		pd := p.RawMatrix().Data
		gd := grads[i].RawMatrix().Data
		md := a.m[i].RawMatrix().Data
		vd := a.v[i].RawMatrix().Data
		for j := range pd {
			g := gd[j]
			md[j] = a.Beta1*md[j] + (1-a.Beta1)*g
			vd[j] = a.Beta2*vd[j] + (1-a.Beta2)*g*g
			mHat := md[j] / c1
			vHat := vd[j] / c2
			pd[j] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
		}
	}
}

// Steps is the number of updates performed so far
func (a *Adam) Steps() int {
	return a.t
}
