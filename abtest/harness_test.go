package abtest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quietEnvironment(cells int, seed int64) *ran.Environment {
	cfg := ran.DefaultConfig()
	cfg.NumCells = cells
	cfg.Seed = seed
	cfg.Noise = ran.NoiseConfig{}
	return ran.NewEnvironment(cfg, ran.WithLogger(quietLogger()))
}

func seededHarness(seed int64, opts ...Option) *Harness {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return NewHarness(cfg, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func ids(cells []ran.Cell) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.ID
	}
	return out
}

func TestCreateTestGroupsPartitionsCells(t *testing.T) {
	env := quietEnvironment(10, 1)
	cells := env.Cells()
	original := env.Cells()
	h := seededHarness(4)

	for _, tc := range []struct {
		ratio float64
		sizeA int
	}{
		{0.5, 5},
		{0.3, 3},
		{0.25, 2},
		{0, 0},
		{1, 10},
	} {
		a, b := h.CreateTestGroups(cells, tc.ratio)
		assert.Len(t, a, tc.sizeA)
		assert.Len(t, b, 10-tc.sizeA)

		seen := make(map[int]int)
		for _, id := range append(ids(a), ids(b)...) {
			seen[id] += 1
		}
		assert.Len(t, seen, 10)
		for id, n := range seen {
			assert.Equal(t, 1, n, "cell %d in both groups", id)
		}
	}
	assert.Equal(t, original, cells)
}

func TestCreateTestGroupsIsSeeded(t *testing.T) {
	cells := quietEnvironment(20, 1).Cells()
	a1, _ := seededHarness(9).CreateTestGroups(cells, 0.5)
	a2, _ := seededHarness(9).CreateTestGroups(cells, 0.5)
	assert.Equal(t, ids(a1), ids(a2))
}

func TestNoOpPolicyIsRejected(t *testing.T) {
	env := quietEnvironment(10, 3)
	h := seededHarness(3)
	noop := types.PolicyFunc(func([]float64, bool) int { return ran.NoOpAction })

	result, err := h.RunTest(env, noop, 50, "noop")
	require.NoError(t, err)
	require.Len(t, result.Improvement, 4)
	for metric, v := range result.Improvement {
		assert.InDelta(t, 0, v, 1e-9, metric)
	}
	assert.False(t, result.IsSignificant)
	assert.InDelta(t, 0, result.Confidence, 1e-9)
	assert.Equal(t, Reject, result.Recommendation)
	assert.Equal(t, Reject.Message(), result.Message)
	assert.Equal(t, 5, result.GroupASize)
	assert.Equal(t, 5, result.GroupBSize)
}

func TestNoOpPolicyStaysNearZeroWithNoise(t *testing.T) {
	noop := types.PolicyFunc(func([]float64, bool) int { return ran.NoOpAction })
	for seed := int64(1); seed <= 20; seed++ {
		cfg := ran.DefaultConfig()
		cfg.Seed = seed
		env := ran.NewEnvironment(cfg, ran.WithLogger(quietLogger()))

		result, err := seededHarness(seed).RunTest(env, noop, 50, "noisy-noop")
		require.NoError(t, err)
		require.Len(t, result.Improvement, 4)
		for metric, v := range result.Improvement {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "seed %d %s", seed, metric)
		}
		// noise never touches transmit power
		assert.InDelta(t, 0, result.Improvement["power"], 1e-9, "seed %d", seed)
		// drop rate swings on small baselines dominate the mean
		assert.Less(t, math.Abs(result.MeanImprovement()), 60.0, "seed %d", seed)
	}
}

func TestPolicyOnlyDrivesGroupA(t *testing.T) {
	env := quietEnvironment(10, 5)
	h := seededHarness(5)
	powerUp := ran.EncodeIndices(2, 1, 1)
	calls := 0
	policy := types.PolicyFunc(func(_ []float64, training bool) int {
		assert.False(t, training)
		calls += 1
		return powerUp
	})

	result, err := h.RunTest(env, policy, 30, "power_up")
	require.NoError(t, err)
	assert.Equal(t, 15, calls)

	raised := 0
	for _, c := range env.Cells() {
		if c.TxPower > 40 {
			raised += 1
		} else {
			assert.Equal(t, 40.0, c.TxPower)
		}
	}
	assert.Equal(t, result.GroupASize, raised)
	assert.Greater(t, result.Improvement["throughput"], 0.0)
	assert.Less(t, result.Improvement["power"], 0.0)
}

func TestRunTestWarnsOnSmallNetworks(t *testing.T) {
	var buf bytes.Buffer
	h := NewHarness(DefaultConfig(), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	noop := types.PolicyFunc(func([]float64, bool) int { return ran.NoOpAction })

	_, err := h.RunTest(quietEnvironment(4, 1), noop, 8, "small")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "minimum sample size")
}

func TestHistoryAndBestTest(t *testing.T) {
	h := seededHarness(1)
	_, err := h.GetBestTest()
	assert.ErrorIs(t, err, ErrNoResults)

	noop := types.PolicyFunc(func([]float64, bool) int { return ran.NoOpAction })
	_, err = h.RunTest(quietEnvironment(10, 1), noop, 20, "first")
	require.NoError(t, err)
	second, err := h.RunTest(quietEnvironment(10, 2), noop, 20, "second")
	require.NoError(t, err)

	second.Improvement["throughput"] = 40
	best, err := h.GetBestTest()
	require.NoError(t, err)
	assert.Same(t, second, best)
	assert.Len(t, h.History(), 2)
}

func TestResultsAreStoredAndExported(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "results.jsonl"))
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := seededHarness(2, WithStore(store), WithClock(func() time.Time { return now }))
	noop := types.PolicyFunc(func([]float64, bool) int { return ran.NoOpAction })

	result, err := h.RunTest(quietEnvironment(10, 2), noop, 10, "stored")
	require.NoError(t, err)
	assert.Equal(t, "stored_20260102_030405", result.TestID)

	stored, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, result.TestID, stored[0].TestID)
	assert.Equal(t, result.Recommendation, stored[0].Recommendation)

	path := filepath.Join(dir, "export", "ab.json")
	require.NoError(t, h.ExportResults(path))
	loaded, err := LoadResults(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, result.Improvement, loaded[0].Improvement)
	assert.Equal(t, result.GroupAMetrics, loaded[0].GroupAMetrics)
	assert.True(t, now.Equal(loaded[0].Timestamp))

	empty, err := NewFileStore(filepath.Join(dir, "missing.jsonl")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
