// Package ran simulates a radio access network made of cells whose radio
// parameters are tuned one at a time by an agent.
package ran

import (
	"math"

	"github.com/zeu5/ran-rl-opt/types"
)

// Physical bounds of the tunable parameters and observed metrics
const (
	MinTxPower           = 10.0
	MaxTxPower           = 50.0
	MinAntennaTilt       = 0.0
	MaxAntennaTilt       = 10.0
	MinHandoverThreshold = 50.0
	MaxHandoverThreshold = 90.0
	MaxDropRate          = 0.15
	MinThroughput        = 10.0
	MaxThroughput        = 1000.0
	MaxInterference      = 1.0
	MinUsers             = 1

	// PowerPerDBm converts tx power into power consumption
	PowerPerDBm = 0.5
)

type CellType string

const (
	Macro CellType = "Macro"
	Micro CellType = "Micro"
	Pico  CellType = "Pico"
	Femto CellType = "Femto"
)

// Sensitivity scales the effect of parameter changes. Smaller cells react less.
func (c CellType) Sensitivity() float64 {
	switch c {
	case Macro:
		return 1.0
	case Micro:
		return 0.8
	case Pico:
		return 0.6
	case Femto:
		return 0.4
	}
	return 1.0
}

// Recommended actions attached to recorded cells
const (
	ReducePower   = "Reduce_Power"
	IncreasePower = "Increase_Power"
	MaintainPower = "Maintain_Power"
)

// Cell is one simulated base station
type Cell struct {
	ID                int      `json:"id"`
	Type              CellType `json:"cell_type"`
	TxPower           float64  `json:"tx_power"`
	AntennaTilt       float64  `json:"antenna_tilt"`
	HandoverThreshold float64  `json:"handover_threshold"`
	NumUsers          int      `json:"num_users"`
	Throughput        float64  `json:"throughput"`
	DropRate          float64  `json:"drop_rate"`
	PowerConsumption  float64  `json:"power_consumption"`
	Interference      float64  `json:"interference"`
	// QoSSatisfaction is only set when measured, zero means derive it
	QoSSatisfaction float64 `json:"qos_satisfaction,omitempty"`
	OptimizedAction string  `json:"optimized_action,omitempty"`
	OptimizedPower  float64 `json:"optimized_power,omitempty"`
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// applyDelta moves the tunable parameters, clipped to their physical bounds
func (c *Cell) applyDelta(d types.Delta) {
	c.TxPower = clip(c.TxPower+d.Power, MinTxPower, MaxTxPower)
	c.AntennaTilt = clip(c.AntennaTilt+d.Tilt, MinAntennaTilt, MaxAntennaTilt)
	c.HandoverThreshold = clip(c.HandoverThreshold+d.Handover, MinHandoverThreshold, MaxHandoverThreshold)
	c.PowerConsumption = c.TxPower * PowerPerDBm
}

// clamp restores every bound after a mutation
func (c *Cell) clamp() {
	c.TxPower = clip(c.TxPower, MinTxPower, MaxTxPower)
	c.AntennaTilt = clip(c.AntennaTilt, MinAntennaTilt, MaxAntennaTilt)
	c.HandoverThreshold = clip(c.HandoverThreshold, MinHandoverThreshold, MaxHandoverThreshold)
	c.Throughput = clip(c.Throughput, MinThroughput, MaxThroughput)
	c.DropRate = clip(c.DropRate, 0, MaxDropRate)
	c.Interference = clip(c.Interference, 0, MaxInterference)
	c.QoSSatisfaction = clip(c.QoSSatisfaction, 0, 100)
	if c.NumUsers < MinUsers {
		c.NumUsers = MinUsers
	}
	c.PowerConsumption = c.TxPower * PowerPerDBm
}

// Satisfaction is the user satisfaction score in [0, 100].
// Measured QoS satisfaction takes precedence over the derived score.
func (c *Cell) Satisfaction() float64 {
	if c.QoSSatisfaction > 0 {
		return c.QoSSatisfaction
	}
	throughputScore := math.Min(c.Throughput/100.0, 1.0) * 50
	dropScore := (1 - math.Min(c.DropRate/0.1, 1.0)) * 30
	interferenceScore := (1 - math.Min(c.Interference/0.5, 1.0)) * 20
	return throughputScore + dropScore + interferenceScore
}

func (c *Cell) Metrics() types.Metrics {
	return types.Metrics{
		Throughput:   c.Throughput,
		DropRate:     c.DropRate,
		Power:        c.PowerConsumption,
		Interference: c.Interference,
		Satisfaction: c.Satisfaction(),
	}
}

// features is the normalised observation of the cell
func (c *Cell) features() []float64 {
	return []float64{
		math.Min(float64(c.NumUsers)/500.0, 1.0),
		math.Min(c.Throughput/1000.0, 1.0),
		math.Min(c.DropRate/MaxDropRate, 1.0),
		math.Min(c.PowerConsumption/50.0, 1.0),
		math.Min(c.Interference, 1.0),
	}
}

// FeaturesPerCell is the number of observation entries contributed by each cell
const FeaturesPerCell = 5

// matchesRecommendation checks the direction of the resulting tx power against the recorded target
func (c *Cell) matchesRecommendation() bool {
	target := c.OptimizedPower
	if target == 0 {
		target = c.TxPower
	}
	switch c.OptimizedAction {
	case ReducePower:
		return c.TxPower > target
	case IncreasePower:
		return c.TxPower < target
	case MaintainPower:
		return math.Abs(c.TxPower-target) < 3
	}
	return false
}
