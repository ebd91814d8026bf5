package system

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/selfhost-kit/stackctl/internal/workflow"
)

const (
	// dockerInstallScript is the upstream Docker convenience installer.
	dockerInstallScript = "https://get.docker.com"
	// dockerInstallScriptMirror is the mirrored installer for hosts with
	// slow access to the upstream endpoint.
	dockerInstallScriptMirror = "https://linuxmirrors.cn/docker.sh"
)

// DockerInstaller installs the Docker engine and verifies the compose
// plugin is usable.
type DockerInstaller struct {
	logger *slog.Logger
	// Mirror switches the install script to the mirrored endpoint.
	Mirror bool

	run    func(ctx context.Context, name string, args ...string) error
	probe  func(ctx context.Context, name string, args ...string) error
	exists func(name string) bool
}

// NewDockerInstaller constructs a DockerInstaller.
func NewDockerInstaller(logger *slog.Logger) *DockerInstaller {
	if logger == nil {
		logger = slog.Default()
	}
	return &DockerInstaller{
		logger: logger,
		run:    runCommand,
		probe:  probeCommand,
		exists: CommandExists,
	}
}

// Ensure makes sure the Docker engine is installed, the daemon is
// running, and the compose plugin responds. It is a no-op on hosts where
// everything is already present, so a re-run never reinstalls.
func (d *DockerInstaller) Ensure(ctx context.Context) error {
	if d.ready(ctx) {
		d.logger.Info("docker engine already installed and running")
		return nil
	}

	script := dockerInstallScript
	if d.Mirror {
		script = dockerInstallScriptMirror
	}

	d.logger.Info("installing docker engine", "script", script)
	if err := d.run(ctx, "sh", "-c", fmt.Sprintf("curl -fsSL %s | sh", script)); err != nil {
		return &workflow.InstallError{Name: "docker", Err: err}
	}

	if err := d.run(ctx, "systemctl", "enable", "--now", "docker"); err != nil {
		return &workflow.InstallError{Name: "docker", Err: fmt.Errorf("start docker daemon: %w", err)}
	}

	if !d.ready(ctx) {
		return &workflow.InstallError{Name: "docker"}
	}
	return nil
}

// ready reports whether the docker binary resolves, the daemon answers,
// and the compose plugin is available.
func (d *DockerInstaller) ready(ctx context.Context) bool {
	if !d.exists("docker") {
		return false
	}
	if err := d.probe(ctx, "docker", "info"); err != nil {
		return false
	}
	return d.probe(ctx, "docker", "compose", "version") == nil
}

// probeCommand executes a command discarding its output; probe output is
// noise to the operator.
func probeCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}
