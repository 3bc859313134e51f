package policies

import (
	"math"
	"time"

	"github.com/zeu5/ran-rl-opt/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// QEstimator returns one value per action
type QEstimator interface {
	QValues(observation []float64) []float64
}

// SoftMaxPolicy samples actions with probability proportional to exp(Q/temperature)
// while training and acts greedily otherwise.
type SoftMaxPolicy struct {
	estimator   QEstimator
	temperature float64
	rand        rand.Source
}

var _ types.Policy = &SoftMaxPolicy{}

func NewSoftMaxPolicy(estimator QEstimator, temperature float64, seed int64) *SoftMaxPolicy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if temperature <= 0 {
		temperature = 1
	}
	return &SoftMaxPolicy{
		estimator:   estimator,
		temperature: temperature,
		rand:        rand.NewSource(uint64(seed)),
	}
}

func (s *SoftMaxPolicy) Act(observation []float64, training bool) int {
	vals := s.estimator.QValues(observation)
	if !training {
		return floats.MaxIdx(vals)
	}
	i, ok := sampleuv.NewWeighted(s.Weights(vals), s.rand).Take()
	if !ok {
		return floats.MaxIdx(vals)
	}
	return i
}

// Weights of the Boltzmann distribution over vals, shifted by the max for stability
func (s *SoftMaxPolicy) Weights(vals []float64) []float64 {
	top := floats.Max(vals)
	weights := make([]float64, len(vals))
	for i, v := range vals {
		weights[i] = math.Exp((v - top) / s.temperature)
	}
	floats.Scale(1/floats.Sum(weights), weights)
	return weights
}
