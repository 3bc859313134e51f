package policies

import "github.com/zeu5/ran-rl-opt/types"

// ExploringPolicy always runs the wrapped policy in training mode, so a
// stochastic policy keeps sampling when driven by a greedy episode runner.
type ExploringPolicy struct {
	policy types.Policy
}

var _ types.Policy = &ExploringPolicy{}

func Exploring(policy types.Policy) *ExploringPolicy {
	return &ExploringPolicy{policy: policy}
}

func (e *ExploringPolicy) Act(observation []float64, _ bool) int {
	return e.policy.Act(observation, true)
}
