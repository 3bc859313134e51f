package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zeu5/ran-rl-opt/config"
	"github.com/zeu5/ran-rl-opt/dqn"
	"github.com/zeu5/ran-rl-opt/ran"
	"github.com/zeu5/ran-rl-opt/telemetry"
)

func setupLogging(level string, asJSON bool) error {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info", "":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: l}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if asJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig reads the configuration file and applies the command line overrides
func loadConfig() (*config.Config, error) {
	c, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		c.SetSeed(seed)
	}
	if cells > 0 {
		c.SetCells(cells)
	}
	if episodes > 0 {
		c.Training.Episodes = episodes
		c.Training.EvalEpisodes = episodes
	}
	if saveDir != "" {
		c.Training.OutputDir = saveDir
	}
	if err := os.MkdirAll(c.Training.OutputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating output folder: %w", err)
	}
	return c, nil
}

func noClose() {}

// telemetrySource returns a nil source when none is configured or the file cannot be read.
// The returned func releases the connection held by a redis source.
func telemetrySource(c *config.Config) (telemetry.Source, func()) {
	t := c.Telemetry
	switch {
	case t.File != "":
		source, err := telemetry.LoadFile(t.File)
		if err != nil {
			slog.Warn("telemetry file unavailable, using synthetic cells", "file", t.File, "error", err)
			return nil, noClose
		}
		slog.Info("loaded telemetry", "file", t.File, "records", source.Len())
		return source, noClose
	case t.RedisAddr != "":
		source := telemetry.NewRedisSource(t.RedisAddr, t.RedisKey)
		return source, func() {
			if err := source.Close(); err != nil {
				slog.Warn("closing telemetry source", "addr", t.RedisAddr, "error", err)
			}
		}
	}
	return nil, noClose
}

// newEnvironment builds the configured network, the caller must run the returned
// func once the environment is no longer used.
func newEnvironment(c *config.Config) (*ran.Environment, func()) {
	opts := []ran.Option{ran.WithLogger(slog.Default())}
	source, closeSource := telemetrySource(c)
	if source != nil {
		opts = append(opts, ran.WithSource(source))
	}
	return ran.NewEnvironment(c.Environment, opts...), closeSource
}

func newAgent(c *config.Config, opts ...dqn.Option) *dqn.Agent {
	return dqn.NewAgent(c.Agent, append([]dqn.Option{dqn.WithLogger(slog.Default())}, opts...)...)
}

// loadAgent restores the configured checkpoint
func loadAgent(c *config.Config, path string) (*dqn.Agent, error) {
	if path == "" {
		path = c.Training.Checkpoint
	}
	agent := newAgent(c)
	if err := agent.Load(path); err != nil {
		return nil, err
	}
	return agent, nil
}
