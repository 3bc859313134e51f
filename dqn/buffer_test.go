package dqn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestReplayBufferEvictsOldest(t *testing.T) {
	b := NewReplayBuffer(3)
	for i := 0; i < 5; i++ {
		b.Add(Experience{Action: i})
	}
	require.Equal(t, 3, b.Len())
	assert.Equal(t, 3, b.Cap())
	for i := 0; i < 3; i++ {
		e, ok := b.At(i)
		require.True(t, ok)
		assert.Equal(t, i+2, e.Action)
	}
	_, ok := b.At(3)
	assert.False(t, ok)
}

func TestReplayBufferSampleIsDistinct(t *testing.T) {
	b := NewReplayBuffer(200)
	for i := 0; i < 100; i++ {
		b.Add(Experience{Action: i})
	}
	batch := b.Sample(64, rand.NewSource(5))
	require.Len(t, batch, 64)
	seen := make(map[int]bool)
	for _, e := range batch {
		assert.False(t, seen[e.Action], "action %d sampled twice", e.Action)
		seen[e.Action] = true
	}

	assert.Len(t, b.Sample(500, rand.NewSource(5)), 100)
}
