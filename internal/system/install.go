package system

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/selfhost-kit/stackctl/internal/workflow"
)

// Installer installs host packages through the distribution package manager.
type Installer struct {
	family  string
	logger  *slog.Logger
	updated bool

	// run executes an external command; replaced in tests.
	run func(ctx context.Context, name string, args ...string) error
	// exists probes for a command; replaced in tests.
	exists func(name string) bool
}

// NewInstaller constructs an Installer for the detected distribution.
func NewInstaller(info OSInfo, logger *slog.Logger) (*Installer, error) {
	family := info.Family()
	if family == "" {
		return nil, &workflow.PreconditionError{
			Reason: fmt.Sprintf("unsupported distribution %q", info.ID),
			Remedy: "install Docker and Docker Compose manually, then re-run",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{
		family: family,
		logger: logger,
		run:    runCommand,
		exists: CommandExists,
	}, nil
}

// Install installs the given packages, refreshing the package index first
// where the package manager requires it.
func (i *Installer) Install(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}

	switch i.family {
	case "debian":
		if !i.updated {
			if err := i.run(ctx, "apt-get", "update"); err != nil {
				return fmt.Errorf("apt-get update: %w", err)
			}
			i.updated = true
		}
		args := append([]string{"install", "-y"}, packages...)
		if err := i.run(ctx, "apt-get", args...); err != nil {
			return fmt.Errorf("apt-get install: %w", err)
		}
	case "rhel":
		manager := "dnf"
		if !i.exists(manager) {
			manager = "yum"
		}
		args := append([]string{"install", "-y"}, packages...)
		if err := i.run(ctx, manager, args...); err != nil {
			return fmt.Errorf("%s install: %w", manager, err)
		}
	case "arch":
		args := append([]string{"-Sy", "--noconfirm"}, packages...)
		if err := i.run(ctx, "pacman", args...); err != nil {
			return fmt.Errorf("pacman install: %w", err)
		}
	default:
		return fmt.Errorf("no package manager for family %q", i.family)
	}
	return nil
}

// EnsureCommand installs pkg when cmd is missing and confirms the command
// resolves afterwards. A still-missing command after install is an
// InstallError.
func (i *Installer) EnsureCommand(ctx context.Context, cmd, pkg string) error {
	if i.exists(cmd) {
		i.logger.Debug("command already present", "command", cmd)
		return nil
	}
	i.logger.Info("installing package", "package", pkg, "provides", cmd)
	if err := i.Install(ctx, pkg); err != nil {
		return &workflow.InstallError{Name: pkg, Err: err}
	}
	if !i.exists(cmd) {
		return &workflow.InstallError{Name: cmd}
	}
	return nil
}

// runCommand executes an external command, streaming output to the
// current process.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
