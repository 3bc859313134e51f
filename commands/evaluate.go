package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zeu5/ran-rl-opt/util"
)

func EvaluateCommand() *cobra.Command {
	var checkpoint string
	var recordTraces bool
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the trained agent greedily and report network statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			agent, err := loadAgent(c, checkpoint)
			if err != nil {
				return err
			}
			env, closeEnv := newEnvironment(c)
			defer closeEnv()
			result := agent.Evaluate(env, c.Training.EvalEpisodes)

			fmt.Printf("Episodes: %d\n", len(result.Rewards))
			fmt.Printf("  avg_reward: %.2f\n", result.AvgReward)
			fmt.Printf("  avg_throughput: %.2f Mbps\n", result.AvgThroughput)
			fmt.Printf("  avg_drop_rate: %.2f%%\n", result.AvgDropRate*100)
			fmt.Printf("  avg_satisfaction: %.2f/100\n", result.AvgSatisfaction)
			env.Render(os.Stdout)

			bs, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			if err := util.WriteFileAtomic(path.Join(c.Training.OutputDir, "evaluation.json"), bs, 0644); err != nil {
				return err
			}

			if recordTraces {
				tracesDir := path.Join(c.Training.OutputDir, "traces")
				if err := os.MkdirAll(tracesDir, os.ModePerm); err != nil {
					return err
				}
				for i, ep := range result.Episodes {
					bs, err := json.Marshal(ep.Trace)
					if err != nil {
						return err
					}
					if err := util.AppendToFile(path.Join(tracesDir, "evaluate_"+strconv.Itoa(i)+".jsonl"), string(bs)); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint path, defaults to the configured one")
	cmd.Flags().BoolVar(&recordTraces, "record-traces", false, "Record the trace of every episode as jsonl")
	return cmd
}
