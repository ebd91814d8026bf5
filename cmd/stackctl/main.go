package main

import (
	"os"

	"github.com/selfhost-kit/stackctl/internal/cli"
	"github.com/selfhost-kit/stackctl/internal/logging"
)

// main is the entry point for the stackctl CLI binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(cli.ExitCode(err))
	}
}
