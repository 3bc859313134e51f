package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/ran-rl-opt/dqn"
	"github.com/zeu5/ran-rl-opt/types"
	"github.com/zeu5/ran-rl-opt/util"
)

func TrainCommand() *cobra.Command {
	var checkpoint string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the agent on the simulated network and save a checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if checkpoint != "" {
				c.Training.Checkpoint = checkpoint
			}
			stop := startProfiling(c.Training.OutputDir)
			defer stop()

			env, closeEnv := newEnvironment(c)
			defer closeEnv()
			agent := newAgent(c, dqn.WithProgress(func(episode, total int) {
				fmt.Printf("\rEpisode: %d/%d", episode, total)
				if episode == total {
					fmt.Println("")
				}
			}))
			stats := agent.Train(env, c.Training.Episodes)

			if err := agent.Save(c.Training.Checkpoint); err != nil {
				return err
			}
			return writeTrainingResults(c.Training.OutputDir, stats)
		},
	}
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint path, defaults to the configured one")
	return cmd
}

// writeTrainingResults stores the diagnostics as JSON and plots the training curves
func writeTrainingResults(dir string, stats *dqn.TrainingStats) error {
	bs, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path.Join(dir, "training_stats.json"), bs, 0644); err != nil {
		return err
	}

	window := 50
	if len(stats.EpisodeRewards) < 2*window {
		window = 10
	}
	series := [][]float64{stats.EpisodeRewards}
	names := []string{"reward"}
	if avg := types.MovingAverage(stats.EpisodeRewards, window); avg != nil {
		series = append(series, avg)
		names = append(names, fmt.Sprintf("moving average (%d)", window))
	}
	plots := []struct {
		file, title, y string
		names          []string
		series         [][]float64
		offsets        []int
	}{
		{"training_rewards.png", "Episode rewards", "Total reward", names, series, []int{0, window - 1}},
		{"training_loss.png", "Training loss", "Mean loss", []string{"loss"}, [][]float64{stats.EpisodeLosses}, nil},
		{"training_epsilon.png", "Exploration rate", "Epsilon", []string{"epsilon"}, [][]float64{stats.EpsilonHistory}, nil},
		{"training_q_values.png", "Mean max Q value", "Q", []string{"avg_q"}, [][]float64{stats.AvgQValues}, nil},
	}
	for _, p := range plots {
		if err := types.PlotSeries(path.Join(dir, p.file), p.title, "Episode", p.y, p.names, p.series, p.offsets...); err != nil {
			slog.Warn("could not plot", "file", p.file, "error", err)
		}
	}
	slog.Info("wrote training results", "dir", dir)
	return nil
}
