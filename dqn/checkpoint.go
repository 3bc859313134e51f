package dqn

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/zeu5/ran-rl-opt/util"
	"gonum.org/v1/gonum/mat"
)

// ErrIncompatibleCheckpoint is returned when a checkpoint was written for different layer sizes
var ErrIncompatibleCheckpoint = errors.New("dqn: checkpoint does not match the agent's layer sizes")

type matrixState struct {
	Rows, Cols int
	Data       []float64
}

type networkState struct {
	Sizes  []int
	Params []matrixState
}

type checkpoint struct {
	Online  networkState
	Target  networkState
	AdamT   int
	AdamM   []matrixState
	AdamV   []matrixState
	Epsilon float64
	Stats   TrainingStats
}

func toState(m *mat.Dense) matrixState {
	r, c := m.Dims()
	return matrixState{Rows: r, Cols: c, Data: append([]float64(nil), m.RawMatrix().Data...)}
}

func toStates(ms []*mat.Dense) []matrixState {
	out := make([]matrixState, len(ms))
	for i, m := range ms {
		out[i] = toState(m)
	}
	return out
}

func loadStates(dst []*mat.Dense, src []matrixState) error {
	if len(dst) != len(src) {
		return ErrIncompatibleCheckpoint
	}
	for i, m := range dst {
		r, c := m.Dims()
		if src[i].Rows != r || src[i].Cols != c || len(src[i].Data) != r*c {
			return ErrIncompatibleCheckpoint
		}
	}
	for i, m := range dst {
		copy(m.RawMatrix().Data, src[i].Data)
	}
	return nil
}

func (n *MLP) state() networkState {
	return networkState{Sizes: n.Sizes(), Params: toStates(n.params())}
}

func (n *MLP) load(s networkState) error {
	if !sameSizes(n.sizes, s.Sizes) {
		return fmt.Errorf("%w: have %v, checkpoint has %v", ErrIncompatibleCheckpoint, n.sizes, s.Sizes)
	}
	return loadStates(n.params(), s.Params)
}

// Save writes both networks, the optimizer moments, epsilon and the training history to path
func (a *Agent) Save(path string) error {
	c := checkpoint{
		Online:  a.online.state(),
		Target:  a.target.state(),
		AdamT:   a.optimizer.t,
		AdamM:   toStates(a.optimizer.m),
		AdamV:   toStates(a.optimizer.v),
		Epsilon: a.epsilon,
		Stats:   *a.stats,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing checkpoint %s: %w", path, err)
	}
	a.logger.Info("saved checkpoint", "path", path, "epsilon", a.epsilon)
	return nil
}

// Load restores a checkpoint written by Save.
// The agent is left unchanged when the checkpoint does not fit its layer sizes.
func (a *Agent) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading checkpoint %s: %w", path, err)
	}
	var c checkpoint
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return fmt.Errorf("decoding checkpoint %s: %w", path, err)
	}

	online := a.online.Clone()
	target := a.target.Clone()
	if err := online.load(c.Online); err != nil {
		return err
	}
	if err := target.load(c.Target); err != nil {
		return err
	}
	optimizer := NewAdam(a.optimizer.LearningRate, online.params())
	optimizer.t = c.AdamT
	if err := loadStates(optimizer.m, c.AdamM); err != nil {
		return err
	}
	if err := loadStates(optimizer.v, c.AdamV); err != nil {
		return err
	}

	a.online = online
	a.target = target
	a.optimizer = optimizer
	a.epsilon = c.Epsilon
	stats := c.Stats
	a.stats = &stats
	if a.stats.EpisodeRewards == nil {
		a.stats = newTrainingStats()
	}
	a.logger.Info("loaded checkpoint", "path", path, "epsilon", a.epsilon)
	return nil
}
