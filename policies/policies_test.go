package policies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/types"
)

func TestRandomPolicyIsSeeded(t *testing.T) {
	a := NewRandomPolicy(ran.NumActions, 3)
	b := NewRandomPolicy(ran.NumActions, 3)
	counts := make(map[int]int)
	for i := 0; i < 2000; i++ {
		x := a.Act(nil, false)
		require.Equal(t, x, b.Act(nil, true))
		require.GreaterOrEqual(t, x, 0)
		require.Less(t, x, ran.NumActions)
		counts[x] += 1
	}
	assert.Len(t, counts, ran.NumActions)
}

func TestNoOpPolicyLeavesParametersAlone(t *testing.T) {
	p := NewNoOpPolicy()
	assert.Equal(t, ran.NoOpAction, p.Act([]float64{1, 2}, true))
	assert.True(t, ran.DecodeAction(p.Act(nil, false)).IsZero())
	assert.Equal(t, 4, NewConstantPolicy(4).Act(nil, false))
}

type fixedQ []float64

func (f fixedQ) QValues([]float64) []float64 { return f }

func TestSoftMaxPolicy(t *testing.T) {
	q := fixedQ{0, 2, 1}
	p := NewSoftMaxPolicy(q, 1, 7)
	assert.Equal(t, 1, p.Act(nil, false))

	w := p.Weights(q)
	assert.InDelta(t, 1.0, w[0]+w[1]+w[2], 1e-12)
	assert.Greater(t, w[1], w[2])
	assert.Greater(t, w[2], w[0])

	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		counts[p.Act(nil, true)] += 1
	}
	assert.Greater(t, counts[1], counts[2])
	assert.Greater(t, counts[2], counts[0])
}

func TestExploringForcesTrainingMode(t *testing.T) {
	var seen []bool
	p := Exploring(types.PolicyFunc(func(_ []float64, training bool) int {
		seen = append(seen, training)
		return 0
	}))
	p.Act(nil, false)
	p.Act(nil, true)
	assert.Equal(t, []bool{true, true}, seen)
}

func TestExploringSoftMaxSamplesUnderGreedyRunner(t *testing.T) {
	q := fixedQ{0, 2, 1}
	greedy := NewSoftMaxPolicy(q, 1, 11)
	exploring := Exploring(NewSoftMaxPolicy(q, 1, 11))

	nonGreedy := 0
	for i := 0; i < 500; i++ {
		// an episode runner always asks for the greedy action
		require.Equal(t, 1, greedy.Act(nil, false))
		if exploring.Act(nil, false) != 1 {
			nonGreedy += 1
		}
	}
	// weight of the greedy action is about 0.67
	assert.Greater(t, nonGreedy, 100)
	assert.Less(t, nonGreedy, 250)
}
