package types

// Policy maps an observation to an action index.
// When training is false the policy must not explore.
type Policy interface {
	Act(observation []float64, training bool) int
}

// PolicyFunc adapts a plain function to the Policy interface
type PolicyFunc func([]float64, bool) int

var _ Policy = PolicyFunc(nil)

func (f PolicyFunc) Act(observation []float64, training bool) int {
	return f(observation, training)
}
