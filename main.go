package main

import (
	"os"

	"github.com/zeu5/ran-rl-opt/commands"
)

// main entry point to all the commands
func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
