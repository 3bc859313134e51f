package policies

import (
	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/types"
)

// ConstantPolicy always returns the same action
type ConstantPolicy struct {
	action int
}

var _ types.Policy = &ConstantPolicy{}

func NewConstantPolicy(action int) *ConstantPolicy {
	return &ConstantPolicy{action: action}
}

// NewNoOpPolicy leaves every cell parameter as it is
func NewNoOpPolicy() *ConstantPolicy {
	return NewConstantPolicy(ran.NoOpAction)
}

func (c *ConstantPolicy) Act(_ []float64, _ bool) int {
	return c.action
}
