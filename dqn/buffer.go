package dqn

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Experience is a single transition
type Experience struct {
	Observation     []float64
	Action          int
	Reward          float64
	NextObservation []float64
	Done            bool
}

// ReplayBuffer is a fixed capacity FIFO of experiences.
// Once full, adding evicts the oldest experience.
type ReplayBuffer struct {
	data  []Experience
	start int
	size  int
}

func NewReplayBuffer(capacity int) *ReplayBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &ReplayBuffer{
		data: make([]Experience, capacity),
	}
}

func (b *ReplayBuffer) Add(e Experience) {
	if b.size < len(b.data) {
		b.data[(b.start+b.size)%len(b.data)] = e
		b.size += 1
		return
	}
	b.data[b.start] = e
	b.start = (b.start + 1) % len(b.data)
}

func (b *ReplayBuffer) Len() int {
	return b.size
}

func (b *ReplayBuffer) Cap() int {
	return len(b.data)
}

// At returns the i-th oldest experience
func (b *ReplayBuffer) At(i int) (Experience, bool) {
	if i < 0 || i >= b.size {
		return Experience{}, false
	}
	return b.data[(b.start+i)%len(b.data)], true
}

// Sample draws n distinct experiences uniformly at random
func (b *ReplayBuffer) Sample(n int, src rand.Source) []Experience {
	if n > b.size {
		n = b.size
	}
	idxs := make([]int, n)
	sampleuv.WithoutReplacement(idxs, b.size, src)
	out := make([]Experience, n)
	for i, idx := range idxs {
		out[i], _ = b.At(idx)
	}
	return out
}
