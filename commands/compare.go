package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/ran-rl-opt/policies"
	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/types"
)

func CompareCommand() *cobra.Command {
	var checkpoint string
	var recordTraces bool
	var temperature float64
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the trained agent with baseline policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			agent, err := loadAgent(c, checkpoint)
			if err != nil {
				return err
			}

			comparison := types.NewComparison(&types.ComparisonConfig{
				Episodes:     c.Training.EvalEpisodes,
				Horizon:      c.Environment.Horizon,
				RecordPath:   c.Training.OutputDir,
				RecordTraces: recordTraces,
			})
			comparison.AddAnalysis("rewards", types.NewRewardAnalyzer(), types.RewardPlotComparator(c.Training.OutputDir))
			comparison.AddAnalysis("stats", types.NewStatsAnalyzer(), types.ImprovementComparator(os.Stdout))

			// with a configured seed every experiment sees the same sequence of networks
			experiments := []struct {
				name   string
				policy types.Policy
			}{
				{"random", policies.NewRandomPolicy(ran.NumActions, c.Agent.Seed)},
				{"noop", policies.NewNoOpPolicy()},
				{"agent", agent},
				// Boltzmann sampling over the agent's Q values
				{"softmax", policies.Exploring(policies.NewSoftMaxPolicy(agent, temperature, c.Agent.Seed))},
			}
			for _, e := range experiments {
				env, closeEnv := newEnvironment(c)
				defer closeEnv()
				comparison.AddExperiment(types.NewExperiment(e.name, e.policy, env))
			}
			comparison.Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint path, defaults to the configured one")
	cmd.Flags().BoolVar(&recordTraces, "record-traces", false, "Record the trace of every episode as jsonl")
	cmd.Flags().Float64Var(&temperature, "temperature", 1.0, "Temperature of the softmax experiment")
	return cmd
}
