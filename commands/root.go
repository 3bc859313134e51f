package commands

import (
	"github.com/spf13/cobra"
)

var (
	configFile string
	seed       int64
	episodes   int
	saveDir    string
	cells      int
	logLevel   string
	logJSON    bool
	cpuprofile string
	memprofile string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "ran-rl-opt",
		Short:        "Learn and validate radio parameter policies on a simulated RAN",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, logJSON)
		},
	}
	rootCommand.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCommand.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed of every random generator, 0 keeps the configured seeds")
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 0, "Number of episodes to run, 0 keeps the configured value")
	rootCommand.PersistentFlags().StringVarP(&saveDir, "save", "s", "", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&cells, "cells", 0, "Number of cells in the network, 0 keeps the configured value")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCommand.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON")
	rootCommand.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile to `file` in the save folder")
	rootCommand.PersistentFlags().StringVar(&memprofile, "memprofile", "", "write memory profile to `file` in the save folder")
	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(EvaluateCommand())
	rootCommand.AddCommand(ABTestCommand())
	rootCommand.AddCommand(CompareCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(ConfigCommand())
	return rootCommand
}
