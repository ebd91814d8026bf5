package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/selfhost-kit/stackctl/internal/compose"
	"github.com/selfhost-kit/stackctl/internal/env"
	"github.com/selfhost-kit/stackctl/internal/logging"
	"github.com/selfhost-kit/stackctl/internal/stacks"
	"github.com/selfhost-kit/stackctl/internal/sysd"
	"github.com/selfhost-kit/stackctl/internal/workflow"
)

// installFlags holds the install command's flag values.
type installFlags struct {
	dir            string
	vars           string
	varFiles       []string
	mirror         bool
	nonInteractive bool
	skipVerify     bool
	bootUnit       bool
	timeout        time.Duration
}

// newInstallCommand creates the "install" subcommand that provisions a stack.
func newInstallCommand(opts *Options) *cobra.Command {
	var flags installFlags

	cmd := &cobra.Command{
		Use:   "install <stack>",
		Short: "Install a stack on this host",
		Long:  "install prepares the host, collects configuration, renders artifacts into a work directory and starts the stack. Every resource created along the way is rolled back if any step fails or the install is interrupted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())

			stack, err := stacks.Lookup(args[0])
			if err != nil {
				return err
			}

			var envCfg installEnv
			if err := parseEnv(&envCfg); err != nil {
				return err
			}
			if !cmd.Flags().Changed("vars") && envCfg.Vars != "" {
				flags.vars = envCfg.Vars
			}
			if !cmd.Flags().Changed("var-file") && envCfg.VarFile != "" {
				flags.varFiles = []string{envCfg.VarFile}
			}
			if !cmd.Flags().Changed("mirror") && envCfg.Mirror {
				flags.mirror = true
			}
			if !cmd.Flags().Changed("non-interactive") && envCfg.NonInteractive {
				flags.nonInteractive = true
			}

			preset, err := loadPreset(flags.vars, flags.varFiles)
			if err != nil {
				return err
			}

			workDir := flags.dir
			if workDir == "" {
				workDir = filepath.Join(opts.BaseDir, stack.DirName)
			}

			// The interrupt hook is armed exactly once here and disarmed
			// only after the session completes: any signal before that
			// routes through rollback.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session := workflow.NewSession(workDir, logger)
			runner := workflow.NewRunner(session, logger)

			composeClient := compose.NewClient(workDir)
			composeClient.Output = logging.NewWriter(logger)

			deps := installDeps{
				stack:   stack,
				compose: composeClient,
				units:   sysd.NewManager(),
				flags:   flags,
				preset:  preset,
				logger:  logger,
			}

			logger.Info("installing stack", "stack", stack.Name, "dir", workDir)
			runErr := runner.Run(ctx, buildInstallSteps(deps))
			if runErr != nil {
				stop()

				// The run context may already be cancelled; teardown gets
				// a fresh one so rollback is never starved by the very
				// signal that triggered it.
				rbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()
				failures := session.Rollback(rbCtx)
				reportFailure(logger, runErr, failures)
				return runErr
			}

			stop()
			printSummary(cmd.OutOrStdout(), stack, session)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", "", "Work directory for the stack (defaults under --base-dir)")
	cmd.Flags().StringVar(&flags.vars, "vars", "", "Configuration values in k=v,k2=v2 format")
	cmd.Flags().StringArrayVar(&flags.varFiles, "var-file", nil, "Path to a YAML/ENV file with configuration values (repeatable, later files win)")
	cmd.Flags().BoolVar(&flags.mirror, "mirror", false, "Use the mirrored Docker install script")
	cmd.Flags().BoolVar(&flags.nonInteractive, "non-interactive", false, "Fail instead of prompting for missing values")
	cmd.Flags().BoolVar(&flags.skipVerify, "skip-verify", false, "Do not wait for services to report running")
	cmd.Flags().BoolVar(&flags.bootUnit, "boot-unit", false, "Install a systemd unit that starts the stack on boot")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 2*time.Minute, "How long to wait for services during verification")

	return cmd
}

// loadPreset merges var-file values (in file order, later files winning)
// with inline vars, inline winning over all files.
func loadPreset(inline string, varFiles []string) (env.Vars, error) {
	inlineVars, err := env.ParseInlineVars(inline)
	if err != nil {
		return nil, err
	}
	if len(varFiles) == 0 {
		return inlineVars, nil
	}
	fileVars, err := env.LoadVarFiles("", varFiles)
	if err != nil {
		return nil, err
	}
	return env.Merge(fileVars, inlineVars), nil
}
