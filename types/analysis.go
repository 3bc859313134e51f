package types

import (
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// LowerIsBetter reports whether a decrease of the named metric is an improvement
func LowerIsBetter(metric string) bool {
	m := strings.ToLower(metric)
	return strings.Contains(m, "drop_rate") || strings.Contains(m, "power") || strings.Contains(m, "interference")
}

// PercentImprovement is the direction aware relative change in percent.
// A zero baseline yields zero rather than an infinite change.
func PercentImprovement(before, after float64, lowerIsBetter bool) float64 {
	if before == 0 || math.IsNaN(before) || math.IsNaN(after) {
		return 0
	}
	if lowerIsBetter {
		return (before - after) / before * 100
	}
	return (after - before) / before * 100
}

// MovingAverage over a trailing window. Returns nil when there are fewer values than the window.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nil
	}
	out := make([]float64, 0, len(values)-window+1)
	for i := window; i <= len(values); i++ {
		out = append(out, stat.Mean(values[i-window:i], nil))
	}
	return out
}

// PlotSeries draws one line per series and saves the figure to filePath.
// offsets shifts the x coordinate of a series, used for moving averages.
func PlotSeries(filePath, title, xLabel, yLabel string, names []string, series [][]float64, offsets ...int) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	for i := 0; i < len(series) && i < len(names); i++ {
		offset := 0
		if i < len(offsets) {
			offset = offsets[i]
		}
		points := make(plotter.XYs, len(series[i]))
		for j, v := range series[i] {
			points[j] = plotter.XY{
				X: float64(j + offset),
				Y: v,
			}
		}
		if len(points) == 0 {
			continue
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", names[i], err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(names[i], line)
	}
	if dir := path.Dir(filePath); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			os.MkdirAll(dir, os.ModePerm)
		}
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, filePath)
}

// RewardAnalyzer collects the total reward of each episode
type RewardAnalyzer struct {
	rewards []float64
}

var _ Analyzer = &RewardAnalyzer{}

func NewRewardAnalyzer() *RewardAnalyzer {
	return &RewardAnalyzer{rewards: make([]float64, 0)}
}

func (r *RewardAnalyzer) Analyze(_ int, _ string, result *EpisodeResult) {
	r.rewards = append(r.rewards, result.Reward)
}

func (r *RewardAnalyzer) DataSet() DataSet {
	out := make([]float64, len(r.rewards))
	copy(out, r.rewards)
	return out
}

func (r *RewardAnalyzer) Reset() {
	r.rewards = make([]float64, 0)
}

// StatsAnalyzer averages the end of episode network statistics
type StatsAnalyzer struct {
	results []*EpisodeResult
}

var _ Analyzer = &StatsAnalyzer{}

func NewStatsAnalyzer() *StatsAnalyzer {
	return &StatsAnalyzer{results: make([]*EpisodeResult, 0)}
}

func (s *StatsAnalyzer) Analyze(_ int, _ string, result *EpisodeResult) {
	s.results = append(s.results, result)
}

func (s *StatsAnalyzer) DataSet() DataSet {
	return MeanStats(s.results)
}

func (s *StatsAnalyzer) Reset() {
	s.results = make([]*EpisodeResult, 0)
}

// RewardPlotComparator plots the per episode reward of every experiment
func RewardPlotComparator(plotPath string) Comparator {
	return func(names []string, datasets []DataSet) {
		series := make([][]float64, len(datasets))
		for i, ds := range datasets {
			series[i] = ds.([]float64)
		}
		PlotSeries(path.Join(plotPath, "comparison_rewards.png"), "Comparison", "Episode", "Reward", names, series)
	}
}

// ImprovementComparator prints, for every experiment after the first, the
// direction aware improvement of the averaged network statistics relative to the first one.
func ImprovementComparator(w io.Writer) Comparator {
	return func(names []string, datasets []DataSet) {
		if len(datasets) == 0 {
			return
		}
		baseline := datasets[0].(NetworkStats).Values()
		keys := make([]string, 0, len(baseline))
		for k := range baseline {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for i := 0; i < len(names); i++ {
			fmt.Fprintf(w, "%s:\n", names[i])
			vals := datasets[i].(NetworkStats).Values()
			for _, k := range keys {
				fmt.Fprintf(w, "  %s: %.2f\n", k, vals[k])
			}
		}
		for i := 1; i < len(names); i++ {
			vals := datasets[i].(NetworkStats).Values()
			fmt.Fprintf(w, "Improvement of %s over %s (%%):\n", names[i], names[0])
			for _, k := range keys {
				improvement := PercentImprovement(baseline[k], vals[k], LowerIsBetter(k))
				symbol := "UP"
				if improvement <= 0 {
					symbol = "DOWN"
				}
				fmt.Fprintf(w, "  [%s] %s: %+.2f%%\n", symbol, k, improvement)
			}
		}
	}
}
