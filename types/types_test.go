package types

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterEnv counts steps, rewards the action index and reports the step count as throughput
type counterEnv struct {
	step    int
	horizon int
}

var _ Environment = &counterEnv{}

func (c *counterEnv) Reset() []float64 {
	c.step = 0
	return []float64{0}
}

func (c *counterEnv) Step(action int) *StepResult {
	c.step += 1
	return &StepResult{
		Observation: []float64{float64(c.step)},
		Reward:      float64(action),
		Done:        c.step >= c.horizon,
		Info:        StepInfo{CellID: c.step % 2},
	}
}

func (c *counterEnv) NetworkStats() NetworkStats {
	return NetworkStats{AvgThroughput: float64(c.step), TotalPower: 10}
}

func (c *counterEnv) ObservationSize() int { return 1 }
func (c *counterEnv) NumActions() int      { return 3 }

func constant(action int) Policy {
	return PolicyFunc(func([]float64, bool) int { return action })
}

func TestAgentRunsUntilDoneOrHorizon(t *testing.T) {
	results := NewAgent(&AgentConfig{
		Episodes:    3,
		Policy:      constant(2),
		Environment: &counterEnv{horizon: 5},
	}).Run()
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, 5, r.Trace.Len())
		assert.Equal(t, 10.0, r.Reward)
		assert.Equal(t, 5.0, r.Stats.AvgThroughput)
	}
	assert.Equal(t, []float64{10, 10, 10}, Rewards(results))

	capped := NewAgent(&AgentConfig{
		Episodes:    1,
		Horizon:     2,
		Policy:      constant(1),
		Environment: &counterEnv{horizon: 5},
	}).Run()
	assert.Equal(t, 2, capped[0].Trace.Len())
	assert.Equal(t, []int{1, 1}, capped[0].Trace.Actions())
}

func TestPolicyIsQueriedGreedily(t *testing.T) {
	policy := PolicyFunc(func(_ []float64, training bool) int {
		assert.False(t, training)
		return 0
	})
	NewAgent(&AgentConfig{Episodes: 1, Policy: policy, Environment: &counterEnv{horizon: 3}}).Run()
}

func TestMeanStats(t *testing.T) {
	results := []*EpisodeResult{
		{Stats: NetworkStats{AvgThroughput: 10, AvgDropRate: 0.1}},
		{Stats: NetworkStats{AvgThroughput: 30, AvgDropRate: 0.3}},
	}
	mean := MeanStats(results)
	assert.InDelta(t, 20, mean.AvgThroughput, 1e-9)
	assert.InDelta(t, 0.2, mean.AvgDropRate, 1e-9)
	assert.Equal(t, NetworkStats{}, MeanStats(nil))
}

func TestTrace(t *testing.T) {
	trace := NewTrace()
	trace.Append([]float64{0}, 4, &StepResult{Observation: []float64{1}, Reward: 1.5, Info: StepInfo{CellID: 3}})
	trace.Append([]float64{1}, 5, &StepResult{Observation: []float64{2}, Reward: -0.5, Done: true})

	obs, action, reward, next, done, ok := trace.Get(1)
	require.True(t, ok)
	assert.Equal(t, []float64{1}, obs)
	assert.Equal(t, 5, action)
	assert.Equal(t, -0.5, reward)
	assert.Equal(t, []float64{2}, next)
	assert.True(t, done)
	_, _, _, _, _, ok = trace.Get(2)
	assert.False(t, ok)

	info, ok := trace.Info(0)
	require.True(t, ok)
	assert.Equal(t, 3, info.CellID)
	assert.Equal(t, 1.0, trace.TotalReward())

	bs, err := json.Marshal(trace)
	require.NoError(t, err)
	decoded := struct {
		Steps       []map[string]interface{} `json:"steps"`
		TotalReward float64                  `json:"total_reward"`
	}{}
	require.NoError(t, json.Unmarshal(bs, &decoded))
	assert.Len(t, decoded.Steps, 2)
	assert.Equal(t, 1.0, decoded.TotalReward)
}

func TestPercentImprovement(t *testing.T) {
	for _, tc := range []struct {
		metric        string
		before, after float64
		want          float64
	}{
		{"avg_throughput", 100, 120, 20},
		{"avg_drop_rate", 0.1, 0.05, 50},
		{"total_power", 200, 220, -10},
		{"avg_interference", 0.5, 0.25, 50},
		{"avg_satisfaction", 0, 80, 0},
	} {
		got := PercentImprovement(tc.before, tc.after, LowerIsBetter(tc.metric))
		assert.InDelta(t, tc.want, got, 1e-9, tc.metric)
	}
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{2, 3, 4}, MovingAverage([]float64{1, 2, 3, 4, 5}, 3))
	assert.Nil(t, MovingAverage([]float64{1}, 3))
	assert.Nil(t, MovingAverage([]float64{1, 2}, 0))
}

func TestComparison(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	c := NewComparison(&ComparisonConfig{Episodes: 2, RecordPath: dir, RecordTraces: true})
	c.AddAnalysis("rewards", NewRewardAnalyzer(), RewardPlotComparator(dir))
	c.AddAnalysis("stats", NewStatsAnalyzer(), ImprovementComparator(&out))
	c.AddExperiment(NewExperiment("zero", constant(0), &counterEnv{horizon: 4}))
	c.AddExperiment(NewExperiment("two", constant(2), &counterEnv{horizon: 8}))

	datasets := c.Run()
	require.Len(t, datasets["rewards"], 2)
	assert.Equal(t, []float64{0, 0}, datasets["rewards"][0])
	assert.Equal(t, []float64{16, 16}, datasets["rewards"][1])
	assert.Equal(t, 8.0, datasets["stats"][1].(NetworkStats).AvgThroughput)

	assert.Contains(t, out.String(), "Improvement of two over zero")
	assert.Contains(t, out.String(), "[UP] avg_throughput: +100.00%")
	assert.FileExists(t, filepath.Join(dir, "comparison_rewards.png"))
	assert.FileExists(t, filepath.Join(dir, "traces", "zero_0.jsonl"))
}
