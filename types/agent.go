package types

import "gonum.org/v1/gonum/stat"

type AgentConfig struct {
	Episodes int
	// Horizon caps the number of steps of an episode.
	// Episodes also end when the environment reports Done.
	Horizon     int
	Policy      Policy
	Environment Environment
}

// EpisodeResult summarises a single rollout
type EpisodeResult struct {
	Trace  *Trace
	Reward float64
	Stats  NetworkStats
}

// Agent rolls out a fixed policy in an environment.
// It never explores and never learns, the policy is queried with training set to false.
type Agent struct {
	config *AgentConfig
	// collects the results of the run
	// Only populated if the Run function is invoked
	results     []*EpisodeResult
	policy      Policy
	environment Environment
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		results:     make([]*EpisodeResult, 0, config.Episodes),
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// Run the agent for the specified number of episodes and horizon
func (a *Agent) Run() []*EpisodeResult {
	for i := 0; i < a.config.Episodes; i++ {
		a.results = append(a.results, a.RunEpisode())
	}
	return a.results
}

func (a *Agent) Results() []*EpisodeResult {
	return a.results
}

// RunEpisode resets the environment and runs until Done or the horizon
func (a *Agent) RunEpisode() *EpisodeResult {
	observation := a.environment.Reset()
	trace := NewTrace()

	for i := 0; a.config.Horizon <= 0 || i < a.config.Horizon; i++ {
		action := a.policy.Act(observation, false)
		result := a.environment.Step(action)
		trace.Append(observation, action, result)
		observation = result.Observation
		if result.Done {
			break
		}
	}

	return &EpisodeResult{
		Trace:  trace,
		Reward: trace.TotalReward(),
		Stats:  a.environment.NetworkStats(),
	}
}

// MeanStats averages the numeric network statistics of the given episodes
func MeanStats(results []*EpisodeResult) NetworkStats {
	if len(results) == 0 {
		return NetworkStats{}
	}
	collect := func(f func(NetworkStats) float64) float64 {
		vals := make([]float64, len(results))
		for i, r := range results {
			vals[i] = f(r.Stats)
		}
		return stat.Mean(vals, nil)
	}
	return NetworkStats{
		AvgThroughput:   collect(func(s NetworkStats) float64 { return s.AvgThroughput }),
		AvgDropRate:     collect(func(s NetworkStats) float64 { return s.AvgDropRate }),
		TotalPower:      collect(func(s NetworkStats) float64 { return s.TotalPower }),
		AvgSatisfaction: collect(func(s NetworkStats) float64 { return s.AvgSatisfaction }),
		AvgInterference: collect(func(s NetworkStats) float64 { return s.AvgInterference }),
	}
}

// Rewards returns the total reward of each episode
func Rewards(results []*EpisodeResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Reward
	}
	return out
}
