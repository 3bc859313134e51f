package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/zeu5/ran-rl-opt/util"
)

// Experiment encapsulates a named policy evaluated on its own environment
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

// Generic Dataset that contains information after processing the episodes
type DataSet interface{}

// Analyzer compresses the episodes of an experiment to a DataSet
type Analyzer interface {
	// episode, experiment, result
	Analyze(int, string, *EpisodeResult)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
type Comparator func([]string, []DataSet)

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Episodes int // number of episodes
	Horizon  int // maximum number of steps per episode

	RecordPath   string // path to store the results
	RecordTraces bool
}

// Comparison contains the different experiments to compare
// The episodes obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	order       []string
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance
func NewComparison(config *ComparisonConfig) *Comparison {
	if config.RecordPath != "" {
		if _, err := os.Stat(config.RecordPath); err != nil {
			os.MkdirAll(config.RecordPath, 0777)
		}
	}
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		order:       make([]string, 0),
		cConfig:     config,
	}
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	if _, ok := c.analyzers[name]; !ok {
		c.order = append(c.order, name)
	}
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) recordTrace(name string, episode int, trace *Trace) error {
	tracesFile := path.Join(c.cConfig.RecordPath, "traces", name+".jsonl")
	if episode == 0 {
		os.MkdirAll(path.Join(c.cConfig.RecordPath, "traces"), os.ModePerm)
	}
	bs, err := json.Marshal(trace)
	if err != nil {
		return err
	}
	return util.AppendToFile(tracesFile, string(bs))
}

// Run executes every experiment and returns the datasets keyed by analysis name,
// one entry per experiment in insertion order.
func (c *Comparison) Run() map[string][]DataSet {
	names := make([]string, len(c.Experiments))
	datasets := make(map[string][]DataSet)
	for _, a := range c.order {
		datasets[a] = make([]DataSet, len(c.Experiments))
	}

	for i, e := range c.Experiments {
		names[i] = e.Name
		agent := NewAgent(&AgentConfig{
			Episodes:    c.cConfig.Episodes,
			Horizon:     c.cConfig.Horizon,
			Policy:      e.policy,
			Environment: e.environment,
		})
		for ep := 0; ep < c.cConfig.Episodes; ep++ {
			fmt.Printf("\rExperiment: %s, Episode: %d/%d", e.Name, ep+1, c.cConfig.Episodes)
			result := agent.RunEpisode()
			for _, a := range c.order {
				c.analyzers[a].Analyze(ep, e.Name, result)
			}
			if c.cConfig.RecordTraces && c.cConfig.RecordPath != "" {
				c.recordTrace(e.Name+"_"+strconv.Itoa(i), ep, result.Trace)
			}
		}
		fmt.Println("")
		for _, a := range c.order {
			datasets[a][i] = c.analyzers[a].DataSet()
			c.analyzers[a].Reset()
		}
	}

	for _, a := range c.order {
		if comparator := c.comparators[a]; comparator != nil {
			comparator(names, datasets[a])
		}
	}
	return datasets
}
