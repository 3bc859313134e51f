package ran

import (
	"fmt"
	"io"
	"strings"

	"github.com/zeu5/ran-rl-opt/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NetworkStats aggregates the current cells, it has no side effects
func (e *Environment) NetworkStats() types.NetworkStats {
	return Aggregate(e.cells)
}

// Aggregate computes network statistics over any group of cells
func Aggregate(cells []*Cell) types.NetworkStats {
	if len(cells) == 0 {
		return types.NetworkStats{CellTypes: map[string]int{}}
	}
	throughput := make([]float64, len(cells))
	drop := make([]float64, len(cells))
	power := make([]float64, len(cells))
	satisfaction := make([]float64, len(cells))
	interference := make([]float64, len(cells))
	cellTypes := make(map[string]int)

	for i, c := range cells {
		throughput[i] = c.Throughput
		drop[i] = c.DropRate
		power[i] = c.PowerConsumption
		satisfaction[i] = c.Satisfaction()
		interference[i] = c.Interference
		cellTypes[string(c.Type)] += 1
	}

	return types.NetworkStats{
		AvgThroughput:   stat.Mean(throughput, nil),
		AvgDropRate:     stat.Mean(drop, nil),
		TotalPower:      floats.Sum(power),
		AvgSatisfaction: stat.Mean(satisfaction, nil),
		AvgInterference: stat.Mean(interference, nil),
		CellTypes:       cellTypes,
	}
}

// Render writes a short status of the first three cells
func (e *Environment) Render(w io.Writer) {
	mode := "Simulated"
	if e.external {
		mode = "Real Data"
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Step: %d | Mode: %s\n", e.step, mode)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for i, cell := range e.cells {
		if i == 3 {
			break
		}
		fmt.Fprintf(w, "\nCell %d (%s):\n", cell.ID, cell.Type)
		fmt.Fprintf(w, "  Users: %d\n", cell.NumUsers)
		fmt.Fprintf(w, "  Throughput: %.1f Mbps\n", cell.Throughput)
		fmt.Fprintf(w, "  Drop rate: %.2f%%\n", cell.DropRate*100)
		fmt.Fprintf(w, "  TX Power: %.1f dBm\n", cell.TxPower)
		fmt.Fprintf(w, "  Antenna tilt: %.1f degrees\n", cell.AntennaTilt)
		fmt.Fprintf(w, "  User satisfaction: %.1f/100\n", cell.Satisfaction())
		if e.external {
			fmt.Fprintf(w, "  Recommended action: %s\n", cell.OptimizedAction)
		}
	}
}
