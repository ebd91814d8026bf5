package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/selfhost-kit/stackctl/internal/netutil"
	"github.com/selfhost-kit/stackctl/internal/system"
)

// newDoctorCommand creates the "doctor" subcommand that runs host preflight checks.
func newDoctorCommand(_ *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run host preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			ctx, cancel := cmdTimeout(cmd, 2*time.Minute)
			defer cancel()

			if err := runDoctorChecks(ctx, logger); err != nil {
				return err
			}

			logger.Info("doctor checks completed successfully")
			return nil
		},
	}
}

// runDoctorChecks probes everything an install will rely on, collecting
// failures instead of stopping at the first one.
func runDoctorChecks(ctx context.Context, logger *slog.Logger) error {
	var fatal []error

	if err := system.RequireRoot(); err != nil {
		// Doctor itself works unprivileged; installs will not.
		logger.Warn("not running as root, installs will require sudo")
	} else {
		logger.Info("privilege check passed")
	}

	if info, err := system.DetectOS(); err != nil {
		logger.Error("distribution detection failed", "error", err)
		fatal = append(fatal, err)
	} else if info.Family() == "" {
		err := fmt.Errorf("unsupported distribution %q", info.ID)
		logger.Error("distribution not supported", "os", info.PrettyName)
		fatal = append(fatal, err)
	} else {
		logger.Info("distribution supported", "os", info.PrettyName, "family", info.Family())
	}

	for _, name := range []string{"curl", "systemctl"} {
		if system.CommandExists(name) {
			logger.Info("command available", "command", name)
		} else {
			logger.Warn("command missing, install will add it where possible", "command", name)
		}
	}

	if err := runDockerChecks(ctx); err != nil {
		logger.Warn("docker not ready, install will set it up", "error", err)
	} else {
		logger.Info("docker engine ready")
	}

	if ip, err := netutil.NewResolver().PublicIP(ctx); err == nil && ip != "" {
		logger.Info("public address reachable", "ip", ip)
	} else {
		logger.Warn("public address could not be determined, mail stacks will ask for it")
	}

	if len(fatal) > 0 {
		return fmt.Errorf("doctor found %d fatal problem(s): %w", len(fatal), errors.Join(fatal...))
	}
	return nil
}

// runDockerChecks verifies the docker binary, daemon and compose plugin.
func runDockerChecks(ctx context.Context) error {
	if _, err := exec.LookPath("docker"); err != nil {
		return fmt.Errorf("docker binary not found in PATH: %w", err)
	}
	if err := exec.CommandContext(ctx, "docker", "info").Run(); err != nil {
		return fmt.Errorf("docker daemon not reachable: %w", err)
	}
	if err := exec.CommandContext(ctx, "docker", "compose", "version").Run(); err != nil {
		return fmt.Errorf("compose plugin missing: %w", err)
	}
	return nil
}
