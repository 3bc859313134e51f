package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/ran-rl-opt/abtest"
)

func ABTestCommand() *cobra.Command {
	var checkpoint string
	var name string
	var store string
	cmd := &cobra.Command{
		Use:   "abtest",
		Short: "Validate the trained agent against a control group before rollout",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			agent, err := loadAgent(c, checkpoint)
			if err != nil {
				return err
			}

			opts := []abtest.Option{abtest.WithLogger(slog.Default())}
			switch store {
			case "file":
				opts = append(opts, abtest.WithStore(abtest.NewFileStore(path.Join(c.Training.OutputDir, "ab_results.jsonl"))))
			case "redis":
				if c.Telemetry.RedisAddr == "" {
					return fmt.Errorf("redis store needs telemetry.redis_addr")
				}
				redisStore := abtest.NewRedisStore(c.Telemetry.RedisAddr, "ran:abtest")
				defer redisStore.Close()
				opts = append(opts, abtest.WithStore(redisStore))
			case "", "none":
			default:
				return fmt.Errorf("unknown store %q", store)
			}

			harness := abtest.NewHarness(c.ABTest, opts...)
			env, closeEnv := newEnvironment(c)
			defer closeEnv()
			result, err := harness.RunTest(env, agent, c.ABTest.Steps, name)
			if err != nil {
				return err
			}
			result.Print(os.Stdout)

			if c.ABTest.ExportPath != "" {
				return harness.ExportResults(path.Join(c.Training.OutputDir, c.ABTest.ExportPath))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint path, defaults to the configured one")
	cmd.Flags().StringVar(&name, "name", "rl_optimization", "Name of the test")
	cmd.Flags().StringVar(&store, "store", "file", "Where results are appended (file, redis, none)")
	return cmd
}
