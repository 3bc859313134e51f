package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeu5/ran-rl-opt/server"
)

func ServeCommand() *cobra.Command {
	var addr string
	var checkpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulated network and the agent over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				c.Server.Addr = addr
			}
			if checkpoint != "" {
				c.Server.Checkpoint = checkpoint
			}

			opts := []server.Option{server.WithLogger(slog.Default())}
			if c.Server.Checkpoint != "" {
				agent, err := loadAgent(c, c.Server.Checkpoint)
				if err != nil {
					return err
				}
				opts = append(opts, server.WithPolicy(agent))
			} else {
				slog.Warn("no checkpoint configured, /act is disabled")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			env, closeEnv := newEnvironment(c)
			defer closeEnv()
			return server.NewServer(c.Server.Addr, env, opts...).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, defaults to the configured one")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "Checkpoint answering /act")
	return cmd
}
