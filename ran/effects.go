package ran

import "github.com/zeu5/ran-rl-opt/types"

func (e *Environment) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*e.rand.Float64()
}

// simulateChanges applies the stochastic effect of a parameter change.
// Magnitudes scale with the sensitivity of the cell type.
func (e *Environment) simulateChanges(cell *Cell, d types.Delta) {
	m := cell.Type.Sensitivity()

	switch {
	case d.Power > 0:
		cell.Throughput += e.uniform(2, 8) * m
		cell.Interference += 0.05 * m
	case d.Power < 0:
		cell.Throughput -= e.uniform(1, 4) * m
		cell.Interference -= 0.03 * m
	}

	// tilt changes coverage in either direction
	if d.Tilt != 0 {
		cell.Throughput += e.uniform(-3, 5) * m
		cell.Interference += e.uniform(-0.02, 0.02)
	}

	// a lower threshold hands users over earlier, fewer drops but fewer users
	switch {
	case d.Handover < 0:
		cell.DropRate *= 0.9
		cell.NumUsers = int(float64(cell.NumUsers) * 0.95)
	case d.Handover > 0:
		cell.DropRate *= 1.05
		cell.NumUsers = int(float64(cell.NumUsers) * 1.05)
	}

	if n := e.config.Noise.Throughput; n > 0 {
		cell.Throughput += e.uniform(-n, n)
	}
	if n := e.config.Noise.DropRate; n > 0 {
		cell.DropRate += e.uniform(-n, n)
	}

	cell.clamp()
}
