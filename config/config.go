// Package config loads the YAML configuration of the optimizer. Every
// section defaults to the values of the package it configures.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeu5/ran-rl-opt/abtest"
	"github.com/zeu5/ran-rl-opt/dqn"
	"github.com/zeu5/ran-rl-opt/ran"
	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	// File with YAML cell records, takes precedence over redis
	File      string `yaml:"file"`
	RedisAddr string `yaml:"redis_addr"`
	RedisKey  string `yaml:"redis_key"`
}

// Enabled is true when an external cell source is configured
func (t TelemetryConfig) Enabled() bool {
	return t.File != "" || t.RedisAddr != ""
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Checkpoint loaded by the server to answer /act, optional
	Checkpoint string `yaml:"checkpoint"`
}

type TrainingConfig struct {
	Episodes int `yaml:"episodes"`
	// EvalEpisodes used by evaluate and compare
	EvalEpisodes int    `yaml:"eval_episodes"`
	Checkpoint   string `yaml:"checkpoint"`
	OutputDir    string `yaml:"output_dir"`
}

type Config struct {
	Environment ran.Config       `yaml:"environment"`
	Reward      ran.RewardConfig `yaml:"reward"`
	Agent       dqn.Config       `yaml:"agent"`
	Training    TrainingConfig   `yaml:"training"`
	ABTest      abtest.Config    `yaml:"abtest"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
	Server      ServerConfig     `yaml:"server"`
}

func Default() *Config {
	env := ran.DefaultConfig()
	return &Config{
		Environment: env,
		Reward:      env.Reward,
		Agent:       dqn.DefaultConfig(env.NumCells*ran.FeaturesPerCell, ran.NumActions),
		Training: TrainingConfig{
			Episodes:     500,
			EvalEpisodes: 10,
			Checkpoint:   "models/ran_agent.gob",
			OutputDir:    "results",
		},
		ABTest: abtest.DefaultConfig(),
		Telemetry: TelemetryConfig{
			RedisKey: "ran:cells",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load overlays the file at path onto the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()
	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Read decodes a YAML document onto the defaults
func Read(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	c.normalize()
	return c, nil
}

// normalize propagates the values shared between sections
func (c *Config) normalize() {
	c.Environment.Reward = c.Reward
	c.Agent.StateSize = c.Environment.NumCells * ran.FeaturesPerCell
	c.Agent.ActionSize = ran.NumActions
}

// SetSeed seeds every component that draws random numbers
func (c *Config) SetSeed(seed int64) {
	c.Environment.Seed = seed
	c.Agent.Seed = seed
	c.ABTest.Seed = seed
}

// SetCells resizes the network and the agent's input layer with it
func (c *Config) SetCells(cells int) {
	c.Environment.NumCells = cells
	c.normalize()
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
