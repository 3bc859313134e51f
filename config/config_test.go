package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/ran-rl-opt/ran"
)

func TestDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, c.Environment.NumCells)
	assert.Equal(t, 100, c.Environment.Horizon)
	assert.Equal(t, ran.DefaultRewardConfig(), c.Reward)
	assert.Equal(t, 50, c.Agent.StateSize)
	assert.Equal(t, 27, c.Agent.ActionSize)
	assert.Equal(t, 0.99, c.Agent.Gamma)
	assert.Equal(t, 64, c.Agent.BatchSize)
	assert.Equal(t, 0.5, c.ABTest.Ratio)
	assert.Equal(t, 5.0, c.ABTest.SignificanceThreshold)
	assert.False(t, c.Telemetry.Enabled())
	assert.Equal(t, ":8080", c.Server.Addr)
}

func TestReadOverlaysDefaults(t *testing.T) {
	doc := `
environment:
  num_cells: 20
  noise:
    throughput: 0
reward:
  drop_rate: 50
agent:
  hidden: [32, 32]
  gamma: 0.9
abtest:
  ratio: 0.3
telemetry:
  file: cells.yaml
`
	c, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 20, c.Environment.NumCells)
	assert.Equal(t, 0.0, c.Environment.Noise.Throughput)
	assert.Equal(t, 0.005, c.Environment.Noise.DropRate)
	assert.Equal(t, 50.0, c.Reward.DropRate)
	assert.Equal(t, 50.0, c.Environment.Reward.DropRate)
	assert.Equal(t, 0.1, c.Environment.Reward.Throughput)
	assert.Equal(t, []int{32, 32}, c.Agent.Hidden)
	assert.Equal(t, 0.9, c.Agent.Gamma)
	assert.Equal(t, 0.995, c.Agent.EpsilonDecay)
	assert.Equal(t, 100, c.Agent.StateSize)
	assert.Equal(t, 0.3, c.ABTest.Ratio)
	assert.True(t, c.Telemetry.Enabled())
}

func TestReadRejectsUnknownFields(t *testing.T) {
	_, err := Read(strings.NewReader("environment:\n  cells: 3\n"))
	assert.Error(t, err)
}

func TestLoadFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment:\n  horizon: 40\n"), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, c.Environment.Horizon)

	c.SetSeed(7)
	c.SetCells(4)
	assert.Equal(t, int64(7), c.Environment.Seed)
	assert.Equal(t, int64(7), c.Agent.Seed)
	assert.Equal(t, int64(7), c.ABTest.Seed)
	assert.Equal(t, 20, c.Agent.StateSize)

	bs, err := c.Marshal()
	require.NoError(t, err)
	again, err := Read(strings.NewReader(string(bs)))
	require.NoError(t, err)
	assert.Equal(t, c, again)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
