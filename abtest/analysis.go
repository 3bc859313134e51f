package abtest

import (
	"fmt"
	"math"
	"time"

	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Measure aggregates a group of cells. An empty group measures as zero.
func Measure(cells []ran.Cell) GroupMetrics {
	if len(cells) == 0 {
		return GroupMetrics{}
	}
	throughput := make([]float64, len(cells))
	drop := make([]float64, len(cells))
	power := make([]float64, len(cells))
	satisfaction := make([]float64, len(cells))
	for i := range cells {
		throughput[i] = cells[i].Throughput
		drop[i] = cells[i].DropRate
		power[i] = cells[i].PowerConsumption
		satisfaction[i] = cells[i].Satisfaction()
	}
	return GroupMetrics{
		AvgThroughput:   stat.Mean(throughput, nil),
		AvgDropRate:     stat.Mean(drop, nil),
		TotalPower:      floats.Sum(power),
		AvgSatisfaction: stat.Mean(satisfaction, nil),
	}
}

// Improvement is the direction aware percent change of every metric of a group
func Improvement(before, after GroupMetrics) map[string]float64 {
	return map[string]float64{
		"throughput":   types.PercentImprovement(before.AvgThroughput, after.AvgThroughput, types.LowerIsBetter("throughput")),
		"drop_rate":    types.PercentImprovement(before.AvgDropRate, after.AvgDropRate, types.LowerIsBetter("drop_rate")),
		"satisfaction": types.PercentImprovement(before.AvgSatisfaction, after.AvgSatisfaction, types.LowerIsBetter("satisfaction")),
		"power":        types.PercentImprovement(before.TotalPower, after.TotalPower, types.LowerIsBetter("power")),
	}
}

// RelativeImprovement nets the control group's change out of the treatment group's change
func RelativeImprovement(beforeA, afterA, beforeB, afterB GroupMetrics) map[string]float64 {
	a := Improvement(beforeA, afterA)
	b := Improvement(beforeB, afterB)
	out := make(map[string]float64, len(a))
	for k, v := range a {
		out[k] = v - b[k]
	}
	return out
}

// Confidence grows linearly with the mean relative improvement and saturates at 99
func Confidence(mean float64) float64 {
	return math.Min(math.Abs(mean)/10*100, 99)
}

// Decide maps the mean relative improvement to a recommendation
func Decide(mean, threshold float64) (Recommendation, bool) {
	significant := math.Abs(mean) > threshold
	switch {
	case significant && mean > 0:
		return Adopt, true
	case mean > 0:
		return Caution, significant
	default:
		return Reject, significant
	}
}

// Analyze builds the report of a finished test
func Analyze(name string, now time.Time, threshold float64, beforeA, afterA, beforeB, afterB GroupMetrics) *TestResult {
	result := &TestResult{
		TestID:        fmt.Sprintf("%s_%s", name, now.Format("20060102_150405")),
		Timestamp:     now,
		GroupABefore:  beforeA,
		GroupBBefore:  beforeB,
		GroupAMetrics: afterA,
		GroupBMetrics: afterB,
		Improvement:   RelativeImprovement(beforeA, afterA, beforeB, afterB),
	}
	mean := result.MeanImprovement()
	result.Recommendation, result.IsSignificant = Decide(mean, threshold)
	result.Confidence = Confidence(mean)
	result.Message = result.Recommendation.Message()
	return result
}
