package types

import "encoding/json"

// Trace of an episode as transitions (observation, action, reward, nextObservation, done)
type Trace struct {
	observations     [][]float64
	actions          []int
	rewards          []float64
	nextObservations [][]float64
	dones            []bool
	infos            []StepInfo
}

func NewTrace() *Trace {
	return &Trace{
		observations:     make([][]float64, 0),
		actions:          make([]int, 0),
		rewards:          make([]float64, 0),
		nextObservations: make([][]float64, 0),
		dones:            make([]bool, 0),
		infos:            make([]StepInfo, 0),
	}
}

func (t *Trace) Append(observation []float64, action int, result *StepResult) {
	t.observations = append(t.observations, observation)
	t.actions = append(t.actions, action)
	t.rewards = append(t.rewards, result.Reward)
	t.nextObservations = append(t.nextObservations, result.Observation)
	t.dones = append(t.dones, result.Done)
	t.infos = append(t.infos, result.Info)
}

func (t *Trace) Len() int {
	return len(t.actions)
}

func (t *Trace) Get(i int) ([]float64, int, float64, []float64, bool, bool) {
	if i < 0 || i >= len(t.actions) {
		return nil, 0, 0, nil, false, false
	}
	return t.observations[i], t.actions[i], t.rewards[i], t.nextObservations[i], t.dones[i], true
}

func (t *Trace) Info(i int) (StepInfo, bool) {
	if i < 0 || i >= len(t.infos) {
		return StepInfo{}, false
	}
	return t.infos[i], true
}

// TotalReward sums the rewards of every step
func (t *Trace) TotalReward() float64 {
	sum := 0.0
	for _, r := range t.rewards {
		sum += r
	}
	return sum
}

func (t *Trace) Actions() []int {
	out := make([]int, len(t.actions))
	copy(out, t.actions)
	return out
}

type traceStep struct {
	Action int      `json:"action"`
	Reward float64  `json:"reward"`
	Done   bool     `json:"done"`
	Info   StepInfo `json:"info"`
}

// MarshalJSON records the actions, rewards and step infos.
// Observations are left out since they can be rebuilt from the infos.
func (t *Trace) MarshalJSON() ([]byte, error) {
	steps := make([]traceStep, t.Len())
	for i := range steps {
		steps[i] = traceStep{
			Action: t.actions[i],
			Reward: t.rewards[i],
			Done:   t.dones[i],
			Info:   t.infos[i],
		}
	}
	return json.Marshal(map[string]interface{}{
		"steps":        steps,
		"total_reward": t.TotalReward(),
	})
}
