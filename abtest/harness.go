// Package abtest gates a trained policy before rollout. It splits the cells
// of a network into a treatment group driven by the policy and a control
// group held at the no-op action, then compares how both groups moved.
package abtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// ErrNoResults is returned when the history is empty
var ErrNoResults = errors.New("abtest: no test results")

// Network is the part of the simulated network a test drives
type Network interface {
	Reset() []float64
	Step(action int) *types.StepResult
	Cells() []ran.Cell
	Cursor() int
}

var _ Network = &ran.Environment{}

type Harness struct {
	config  Config
	src     rand.Source
	store   Store
	logger  *slog.Logger
	clock   func() time.Time
	history []*TestResult
}

type Option func(*Harness)

// WithStore appends every finished result to store
func WithStore(store Store) Option {
	return func(h *Harness) {
		h.store = store
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

func WithClock(clock func() time.Time) Option {
	return func(h *Harness) {
		h.clock = clock
	}
}

func NewHarness(config Config, opts ...Option) *Harness {
	defaults := DefaultConfig()
	if config.Ratio <= 0 || config.Ratio > 1 {
		config.Ratio = defaults.Ratio
	}
	if config.SignificanceThreshold <= 0 {
		config.SignificanceThreshold = defaults.SignificanceThreshold
	}
	h := &Harness{
		config:  config,
		logger:  slog.Default(),
		clock:   time.Now,
		history: make([]*TestResult, 0),
	}
	for _, o := range opts {
		o(h)
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	h.src = rand.NewSource(uint64(seed))
	return h
}

// CreateTestGroups splits cells uniformly at random. Group A receives
// int(len(cells) * ratio) cells and group B the rest. cells is not modified.
func (h *Harness) CreateTestGroups(cells []ran.Cell, ratio float64) ([]ran.Cell, []ran.Cell) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	n := len(cells)
	split := int(float64(n) * ratio)

	chosen := make([]int, split)
	if split > 0 {
		sampleuv.WithoutReplacement(chosen, n, h.src)
	}
	inA := make([]bool, n)
	for _, idx := range chosen {
		inA[idx] = true
	}

	groupA := make([]ran.Cell, 0, split)
	for _, idx := range chosen {
		groupA = append(groupA, cells[idx])
	}
	groupB := make([]ran.Cell, 0, n-split)
	for i := range cells {
		if !inA[i] {
			groupB = append(groupB, cells[i])
		}
	}
	return groupA, groupB
}

// RunTest resets the network, splits its cells and runs numSteps steps.
// The policy acts greedily whenever the cursor is on a group A cell,
// group B cells receive the no-op action.
func (h *Harness) RunTest(network Network, policy types.Policy, numSteps int, name string) (*TestResult, error) {
	if numSteps <= 0 {
		numSteps = h.config.Steps
	}
	observation := network.Reset()
	cells := network.Cells()
	if len(cells) < h.config.MinSampleSize {
		h.logger.Warn("network smaller than the minimum sample size",
			"test", name, "cells", len(cells), "min_sample_size", h.config.MinSampleSize)
	}

	groupA, groupB := h.CreateTestGroups(cells, h.config.Ratio)
	treated := make(map[int]bool, len(groupA))
	for _, c := range groupA {
		treated[c.ID] = true
	}
	h.logger.Info("created test groups", "test", name, "group_a", len(groupA), "group_b", len(groupB))

	beforeA, beforeB := Measure(groupA), Measure(groupB)

	for step := 0; step < numSteps; step++ {
		action := ran.NoOpAction
		if cursor := network.Cursor(); cursor < len(cells) && treated[cells[cursor].ID] {
			action = policy.Act(observation, false)
		}
		observation = network.Step(action).Observation
	}

	afterA, afterB := partition(network.Cells(), treated)
	result := Analyze(name, h.clock(), h.config.SignificanceThreshold, beforeA, Measure(afterA), beforeB, Measure(afterB))
	result.GroupASize = len(groupA)
	result.GroupBSize = len(groupB)
	h.history = append(h.history, result)

	h.logger.Info("finished test",
		"test", result.TestID,
		"mean_improvement", result.MeanImprovement(),
		"significant", result.IsSignificant,
		"confidence", result.Confidence,
		"recommendation", string(result.Recommendation))

	if h.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.store.Append(ctx, result); err != nil {
			return result, fmt.Errorf("storing result %s: %w", result.TestID, err)
		}
	}
	return result, nil
}

func partition(cells []ran.Cell, treated map[int]bool) ([]ran.Cell, []ran.Cell) {
	a := make([]ran.Cell, 0)
	b := make([]ran.Cell, 0)
	for _, c := range cells {
		if treated[c.ID] {
			a = append(a, c)
		} else {
			b = append(b, c)
		}
	}
	return a, b
}

// History of the results of this harness, oldest first
func (h *Harness) History() []*TestResult {
	out := make([]*TestResult, len(h.history))
	copy(out, h.history)
	return out
}

// GetBestTest returns the result with the highest mean relative improvement
func (h *Harness) GetBestTest() (*TestResult, error) {
	if len(h.history) == 0 {
		return nil, ErrNoResults
	}
	best := h.history[0]
	for _, r := range h.history[1:] {
		if r.MeanImprovement() > best.MeanImprovement() {
			best = r
		}
	}
	return best, nil
}
