// Package cli defines the command-line interface for stackctl.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/selfhost-kit/stackctl/internal/logging"
	"github.com/selfhost-kit/stackctl/internal/workflow"
)

const (
	// defaultBaseDir is where stack work directories are created.
	defaultBaseDir = "/opt/stackctl"
)

// Options stores global CLI options shared between commands.
type Options struct {
	BaseDir  string
	LogLevel logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		BaseDir:  defaultBaseDir,
		LogLevel: logging.LevelInfo,
	}
	applyBaseEnv(rootOpts)

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// ExitCode maps an Execute error onto the process exit code: 130 for an
// operator interruption (after rollback has run), 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if workflow.IsInterrupted(err) {
		return 130
	}
	return 1
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stackctl",
		Short: "stackctl installs self-hosted Docker Compose stacks",
		Long:  "stackctl walks an operator through preparing a host, collecting configuration, rendering compose artifacts and starting self-hosted application stacks, rolling back everything it created when an install fails.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.BaseDir, "base-dir", opts.BaseDir, "Base directory for stack work directories")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newListCommand(opts),
		newInstallCommand(opts),
		newDestroyCommand(opts),
		newDoctorCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
