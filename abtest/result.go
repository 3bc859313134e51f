package abtest

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Recommendation is the rollout decision of a test
type Recommendation string

const (
	Adopt   Recommendation = "adopt"
	Caution Recommendation = "caution"
	Reject  Recommendation = "reject"
)

func (r Recommendation) Message() string {
	switch r {
	case Adopt:
		return "EXCELLENT! Apply changes to entire network"
	case Caution:
		return "WARNING: Slight improvement, apply with caution"
	default:
		return "FAIL: Do not apply - changes are not beneficial"
	}
}

// GroupMetrics aggregates one group of cells
type GroupMetrics struct {
	AvgThroughput   float64 `json:"avg_throughput"`
	AvgDropRate     float64 `json:"avg_drop_rate"`
	TotalPower      float64 `json:"total_power"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
}

// TestResult is the report of a single A/B test
type TestResult struct {
	TestID         string             `json:"test_id"`
	Timestamp      time.Time          `json:"timestamp"`
	GroupASize     int                `json:"group_a_size"`
	GroupBSize     int                `json:"group_b_size"`
	GroupABefore   GroupMetrics       `json:"group_a_initial_metrics"`
	GroupBBefore   GroupMetrics       `json:"group_b_initial_metrics"`
	GroupAMetrics  GroupMetrics       `json:"group_a_metrics"`
	GroupBMetrics  GroupMetrics       `json:"group_b_metrics"`
	Improvement    map[string]float64 `json:"improvement"`
	IsSignificant  bool               `json:"is_significant"`
	Confidence     float64            `json:"confidence"`
	Recommendation Recommendation     `json:"recommendation"`
	Message        string             `json:"recommendation_message"`
}

// MeanImprovement is the mean relative improvement over every metric, 0 when there are none
func (t *TestResult) MeanImprovement() float64 {
	if len(t.Improvement) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(t.Improvement))
	for _, k := range metricNames(t.Improvement) {
		vals = append(vals, t.Improvement[k])
	}
	return stat.Mean(vals, nil)
}

// Print writes a human readable report
func (t *TestResult) Print(w io.Writer) {
	fmt.Fprintln(w, "A/B Test Result")
	fmt.Fprintf(w, "Test ID: %s\n", t.TestID)
	fmt.Fprintf(w, "Time: %s\n", t.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Groups: %d treatment, %d control\n", t.GroupASize, t.GroupBSize)
	fmt.Fprintln(w, "Relative improvement (A vs B):")
	for _, k := range metricNames(t.Improvement) {
		v := t.Improvement[k]
		symbol := "UP"
		if v <= 0 {
			symbol = "DOWN"
		}
		fmt.Fprintf(w, "  [%s] %s: %+.2f%%\n", symbol, k, v)
	}
	significant := "NO"
	if t.IsSignificant {
		significant = "YES"
	}
	fmt.Fprintf(w, "Statistically significant: %s\n", significant)
	fmt.Fprintf(w, "Confidence level: %.1f%%\n", t.Confidence)
	fmt.Fprintf(w, "Recommendation: %s (%s)\n", t.Recommendation, t.Message)
}

func metricNames(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
