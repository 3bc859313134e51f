// Package dqn implements a deep Q-learning agent: an MLP action value
// approximator trained from experience replay against a periodically
// synchronised target network, with epsilon-greedy exploration.
package dqn

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/zeu5/ran-rl-opt/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type Config struct {
	StateSize  int   `yaml:"-" json:"state_size"`
	ActionSize int   `yaml:"-" json:"action_size"`
	Hidden     []int `yaml:"hidden" json:"hidden"`

	Gamma        float64 `yaml:"gamma" json:"gamma"`
	Epsilon      float64 `yaml:"epsilon" json:"epsilon"`
	EpsilonMin   float64 `yaml:"epsilon_min" json:"epsilon_min"`
	EpsilonDecay float64 `yaml:"epsilon_decay" json:"epsilon_decay"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
	BatchSize    int     `yaml:"batch_size" json:"batch_size"`
	MemorySize   int     `yaml:"memory_size" json:"memory_size"`
	// UpdateTargetEvery is the number of episodes between target synchronisations in Train
	UpdateTargetEvery int `yaml:"update_target_every" json:"update_target_every"`
	// LogEvery is the number of episodes between progress logs, 0 disables them
	LogEvery int `yaml:"log_every" json:"log_every"`
	// Seed of the generator, 0 seeds from the clock
	Seed int64 `yaml:"seed" json:"seed"`
}

func DefaultConfig(stateSize, actionSize int) Config {
	return Config{
		StateSize:         stateSize,
		ActionSize:        actionSize,
		Hidden:            []int{128, 128, 64},
		Gamma:             0.99,
		Epsilon:           1.0,
		EpsilonMin:        0.01,
		EpsilonDecay:      0.995,
		LearningRate:      0.001,
		BatchSize:         64,
		MemorySize:        10000,
		UpdateTargetEvery: 10,
		LogEvery:          10,
	}
}

// TrainingStats are the per episode diagnostics of Train
type TrainingStats struct {
	EpisodeRewards []float64 `json:"episode_rewards"`
	EpisodeLosses  []float64 `json:"episode_losses"`
	EpsilonHistory []float64 `json:"epsilon_history"`
	AvgQValues     []float64 `json:"avg_q_values"`
}

func newTrainingStats() *TrainingStats {
	return &TrainingStats{
		EpisodeRewards: make([]float64, 0),
		EpisodeLosses:  make([]float64, 0),
		EpsilonHistory: make([]float64, 0),
		AvgQValues:     make([]float64, 0),
	}
}

// Agent learns a policy over a discrete action space.
// It exclusively owns its networks, optimizer and replay buffer and is not safe for concurrent use.
type Agent struct {
	config Config

	online    *MLP
	target    *MLP
	optimizer *Adam
	memory    *ReplayBuffer
	epsilon   float64

	src      rand.Source
	rand     *rand.Rand
	stats    *TrainingStats
	logger   *slog.Logger
	progress func(episode, total int)
}

var _ types.Policy = &Agent{}

type Option func(*Agent)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithProgress is called by Train after every episode
func WithProgress(progress func(episode, total int)) Option {
	return func(a *Agent) {
		a.progress = progress
	}
}

// WithSource injects the generator driving exploration, sampling and initialisation
func WithSource(src rand.Source) Option {
	return func(a *Agent) {
		a.src = src
	}
}

func NewAgent(config Config, opts ...Option) *Agent {
	defaults := DefaultConfig(config.StateSize, config.ActionSize)
	if len(config.Hidden) == 0 {
		config.Hidden = defaults.Hidden
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MemorySize <= 0 {
		config.MemorySize = defaults.MemorySize
	}
	if config.UpdateTargetEvery <= 0 {
		config.UpdateTargetEvery = defaults.UpdateTargetEvery
	}
	if config.EpsilonDecay <= 0 {
		config.EpsilonDecay = defaults.EpsilonDecay
	}

	a := &Agent{
		config:  config,
		memory:  NewReplayBuffer(config.MemorySize),
		epsilon: config.Epsilon,
		stats:   newTrainingStats(),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	if a.src == nil {
		seed := config.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		a.src = rand.NewSource(uint64(seed))
	}
	a.rand = rand.New(a.src)

	sizes := append([]int{config.StateSize}, config.Hidden...)
	sizes = append(sizes, config.ActionSize)
	a.online = NewMLP(sizes, a.rand)
	a.target = a.online.Clone()
	a.optimizer = NewAdam(config.LearningRate, a.online.params())
	return a
}

func (a *Agent) Config() Config {
	return a.config
}

func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

func (a *Agent) Stats() *TrainingStats {
	return a.stats
}

func (a *Agent) MemoryLen() int {
	return a.memory.Len()
}

// QValues of the online network
func (a *Agent) QValues(observation []float64) []float64 {
	return a.online.Forward(observation)
}

// TargetQValues of the target network
func (a *Agent) TargetQValues(observation []float64) []float64 {
	return a.target.Forward(observation)
}

// Act chooses an action epsilon-greedily when training, greedily otherwise
func (a *Agent) Act(observation []float64, training bool) int {
	if training && a.rand.Float64() < a.epsilon {
		return a.rand.Intn(a.config.ActionSize)
	}
	return floats.MaxIdx(a.online.Forward(observation))
}

// Remember stores a transition, evicting the oldest one when the memory is full
func (a *Agent) Remember(observation []float64, action int, reward float64, nextObservation []float64, done bool) {
	a.memory.Add(Experience{
		Observation:     observation,
		Action:          action,
		Reward:          reward,
		NextObservation: nextObservation,
		Done:            done,
	})
}

// UpdateTarget copies the online parameters into the target network
func (a *Agent) UpdateTarget() {
	a.target.CopyFrom(a.online)
}

// ReplayResult describes one training step
type ReplayResult struct {
	Loss float64
	// MeanMaxQ is the mean over the batch of the largest online action value
	MeanMaxQ float64
}

// Replay trains the online network on a minibatch sampled from memory.
// It does nothing and returns false until the memory holds a full batch.
func (a *Agent) Replay() (ReplayResult, bool) {
	if a.memory.Len() < a.config.BatchSize {
		return ReplayResult{}, false
	}
	batch := a.memory.Sample(a.config.BatchSize, a.src)
	n := len(batch)

	states := mat.NewDense(n, a.config.StateSize, nil)
	nextStates := mat.NewDense(n, a.config.StateSize, nil)
	for i, e := range batch {
		states.SetRow(i, e.Observation)
		nextStates.SetRow(i, e.NextObservation)
	}

	nextQ := a.target.ForwardBatch(nextStates)
	targets := make([]float64, n)
	for i, e := range batch {
		notDone := 1.0
		if e.Done {
			notDone = 0
		}
		targets[i] = e.Reward + notDone*a.config.Gamma*floats.Max(nextQ.RawRowView(i))
	}

	acts, pre := a.online.forward(states)
	q := acts[len(acts)-1]
	gradOut := mat.NewDense(n, a.config.ActionSize, nil)
	loss := 0.0
	maxQ := 0.0
	for i, e := range batch {
		pred := q.At(i, e.Action)
		diff := pred - targets[i]
		loss += diff * diff
		gradOut.Set(i, e.Action, 2*diff/float64(n))
		maxQ += floats.Max(q.RawRowView(i))
	}
	loss /= float64(n)

	grads := a.online.backward(acts, pre, gradOut)
	a.optimizer.Step(a.online.params(), grads)

	if a.epsilon > a.config.EpsilonMin {
		a.epsilon *= a.config.EpsilonDecay
		if a.epsilon < a.config.EpsilonMin {
			a.epsilon = a.config.EpsilonMin
		}
	}

	return ReplayResult{Loss: loss, MeanMaxQ: maxQ / float64(n)}, true
}

// Train runs episodes collecting experience and learning after every step.
// The target network is synchronised every UpdateTargetEvery episodes.
func (a *Agent) Train(env types.Environment, episodes int) *TrainingStats {
	a.logger.Info("starting training",
		"episodes", episodes,
		"state_size", a.config.StateSize,
		"actions", a.config.ActionSize)

	for episode := 0; episode < episodes; episode++ {
		observation := env.Reset()
		episodeReward := 0.0
		losses := make([]float64, 0)
		qValues := make([]float64, 0)

		done := false
		for !done {
			action := a.Act(observation, true)
			result := env.Step(action)
			a.Remember(observation, action, result.Reward, result.Observation, result.Done)

			if r, ok := a.Replay(); ok {
				losses = append(losses, r.Loss)
				qValues = append(qValues, r.MeanMaxQ)
			}

			episodeReward += result.Reward
			observation = result.Observation
			done = result.Done
		}

		if (episode+1)%a.config.UpdateTargetEvery == 0 {
			a.UpdateTarget()
		}

		a.stats.EpisodeRewards = append(a.stats.EpisodeRewards, episodeReward)
		a.stats.EpisodeLosses = append(a.stats.EpisodeLosses, meanOrZero(losses))
		a.stats.AvgQValues = append(a.stats.AvgQValues, meanOrZero(qValues))
		a.stats.EpsilonHistory = append(a.stats.EpsilonHistory, a.epsilon)

		if a.progress != nil {
			a.progress(episode+1, episodes)
		}
		if a.config.LogEvery > 0 && (episode+1)%a.config.LogEvery == 0 {
			rewards := a.stats.EpisodeRewards
			window := rewards[max(0, len(rewards)-a.config.LogEvery):]
			netStats := env.NetworkStats()
			a.logger.Info("training progress",
				"episode", fmt.Sprintf("%d/%d", episode+1, episodes),
				"avg_reward", stat.Mean(window, nil),
				"epsilon", a.epsilon,
				"memory", a.memory.Len(),
				"avg_throughput", netStats.AvgThroughput,
				"avg_drop_rate", netStats.AvgDropRate,
				"avg_satisfaction", netStats.AvgSatisfaction)
		}
	}
	return a.stats
}

// EvaluationResult aggregates greedy rollouts
type EvaluationResult struct {
	AvgReward       float64                `json:"avg_reward"`
	AvgThroughput   float64                `json:"avg_throughput"`
	AvgDropRate     float64                `json:"avg_drop_rate"`
	AvgSatisfaction float64                `json:"avg_satisfaction"`
	Rewards         []float64              `json:"rewards"`
	NetworkStats    []types.NetworkStats   `json:"network_stats_history"`
	Episodes        []*types.EpisodeResult `json:"-"`
}

// Evaluate runs greedy episodes. Nothing is remembered or learned.
func (a *Agent) Evaluate(env types.Environment, episodes int) *EvaluationResult {
	runner := types.NewAgent(&types.AgentConfig{
		Episodes:    episodes,
		Policy:      a,
		Environment: env,
	})
	results := runner.Run()
	mean := types.MeanStats(results)

	history := make([]types.NetworkStats, len(results))
	for i, r := range results {
		history[i] = r.Stats
	}
	rewards := types.Rewards(results)
	return &EvaluationResult{
		AvgReward:       meanOrZero(rewards),
		AvgThroughput:   mean.AvgThroughput,
		AvgDropRate:     mean.AvgDropRate,
		AvgSatisfaction: mean.AvgSatisfaction,
		Rewards:         rewards,
		NetworkStats:    history,
		Episodes:        results,
	}
}

func meanOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}
