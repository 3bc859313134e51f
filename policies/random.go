package policies

import (
	"time"

	"github.com/zeu5/ran-rl-opt/types"
	"golang.org/x/exp/rand"
)

// RandomPolicy picks uniformly among the actions, training or not
type RandomPolicy struct {
	numActions int
	rand       *rand.Rand
}

var _ types.Policy = &RandomPolicy{}

// NewRandomPolicy seeds from the clock when seed is 0
func NewRandomPolicy(numActions int, seed int64) *RandomPolicy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPolicy{
		numActions: numActions,
		rand:       rand.New(rand.NewSource(uint64(seed))),
	}
}

func (r *RandomPolicy) Act(_ []float64, _ bool) int {
	return r.rand.Intn(r.numActions)
}
