package types

// Environment is the simulated network the agent interacts with.
// Observations are fixed length vectors and actions are indices into
// a discrete action space.
type Environment interface {
	// Reset repopulates the network and returns the first observation
	Reset() []float64
	// Step applies the action to the currently selected cell
	Step(action int) *StepResult
	// NetworkStats aggregates the current state of all cells
	NetworkStats() NetworkStats
	// ObservationSize is the length of every observation vector
	ObservationSize() int
	// NumActions is the size of the discrete action space
	NumActions() int
}

// StepResult is returned by every call to Step
type StepResult struct {
	Observation []float64
	Reward      float64
	Done        bool
	Info        StepInfo
}

// StepInfo describes what happened to the cell that was acted upon
type StepInfo struct {
	CellID         int     `json:"cell_id"`
	CellType       string  `json:"cell_type"`
	Before         Metrics `json:"old_metrics"`
	After          Metrics `json:"new_metrics"`
	Delta          Delta   `json:"changes"`
	Recommendation string  `json:"optimized_action,omitempty"`
}

// Metrics of a single cell used to compute the reward
type Metrics struct {
	Throughput   float64 `json:"throughput"`
	DropRate     float64 `json:"drop_rate"`
	Power        float64 `json:"power"`
	Interference float64 `json:"interference"`
	Satisfaction float64 `json:"user_satisfaction"`
}

// Delta is the parameter adjustment encoded by an action
type Delta struct {
	Power    float64 `json:"power"`
	Tilt     float64 `json:"tilt"`
	Handover float64 `json:"handover"`
}

// IsZero is true for the action that leaves every parameter untouched
func (d Delta) IsZero() bool {
	return d.Power == 0 && d.Tilt == 0 && d.Handover == 0
}

// NetworkStats are aggregates over every cell of the network
type NetworkStats struct {
	AvgThroughput   float64        `json:"avg_throughput"`
	AvgDropRate     float64        `json:"avg_drop_rate"`
	TotalPower      float64        `json:"total_power"`
	AvgSatisfaction float64        `json:"avg_satisfaction"`
	AvgInterference float64        `json:"avg_interference"`
	CellTypes       map[string]int `json:"cell_types,omitempty"`
}

// Values flattens the numeric statistics, keyed by their json names
func (n NetworkStats) Values() map[string]float64 {
	return map[string]float64{
		"avg_throughput":   n.AvgThroughput,
		"avg_drop_rate":    n.AvgDropRate,
		"total_power":      n.TotalPower,
		"avg_satisfaction": n.AvgSatisfaction,
		"avg_interference": n.AvgInterference,
	}
}
