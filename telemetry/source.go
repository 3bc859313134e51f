// Package telemetry provides the cell records a network is seeded with
// when real measurements are available.
package telemetry

import (
	"errors"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

var ErrNoRecords = errors.New("telemetry: no cell records")

// CellRecord is one measured cell as delivered by a telemetry collector.
// Zero valued optional fields are replaced with defaults by the consumer.
type CellRecord struct {
	CellID            int     `json:"cell_id" yaml:"cell_id"`
	CellType          string  `json:"cell_type" yaml:"cell_type"`
	TxPower           float64 `json:"tx_power" yaml:"tx_power"`
	AntennaTilt       float64 `json:"antenna_tilt,omitempty" yaml:"antenna_tilt,omitempty"`
	HandoverThreshold float64 `json:"handover_threshold,omitempty" yaml:"handover_threshold,omitempty"`
	NumUsers          int     `json:"num_users" yaml:"num_users"`
	Throughput        float64 `json:"throughput" yaml:"throughput"`
	DropRate          float64 `json:"drop_rate" yaml:"drop_rate"`
	Interference      float64 `json:"interference" yaml:"interference"`
	QoSSatisfaction   float64 `json:"qos_satisfaction,omitempty" yaml:"qos_satisfaction,omitempty"`
	OptimizedAction   string  `json:"optimized_action,omitempty" yaml:"optimized_action,omitempty"`
	OptimizedPower    float64 `json:"optimized_power,omitempty" yaml:"optimized_power,omitempty"`
}

// Source samples network states from recorded telemetry
type Source interface {
	// Sample returns n cell records chosen with the given seed
	Sample(n int, seed uint64) ([]CellRecord, error)
}

// sample picks n records without replacement, or with replacement
// when fewer than n records are available.
func sample(records []CellRecord, n int, seed uint64) ([]CellRecord, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	src := rand.NewSource(seed)
	out := make([]CellRecord, n)
	if n <= len(records) {
		idxs := make([]int, n)
		sampleuv.WithoutReplacement(idxs, len(records), src)
		for i, idx := range idxs {
			out[i] = records[idx]
		}
		return out, nil
	}
	r := rand.New(src)
	for i := 0; i < n; i++ {
		out[i] = records[r.Intn(len(records))]
	}
	return out, nil
}
