package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/selfhost-kit/stackctl/internal/collect"
	"github.com/selfhost-kit/stackctl/internal/compose"
	"github.com/selfhost-kit/stackctl/internal/env"
	"github.com/selfhost-kit/stackctl/internal/netutil"
	"github.com/selfhost-kit/stackctl/internal/stacks"
	"github.com/selfhost-kit/stackctl/internal/sysd"
	"github.com/selfhost-kit/stackctl/internal/system"
	"github.com/selfhost-kit/stackctl/internal/workflow"
)

// installDeps bundles the collaborators the install steps work against.
type installDeps struct {
	stack   *stacks.Stack
	compose *compose.Client
	units   *sysd.Manager
	flags   installFlags
	preset  env.Vars
	logger  *slog.Logger
}

// buildInstallSteps assembles the fixed ordered step list for an install.
// Later steps assume the side effects of earlier ones, so the order is
// part of the contract.
func buildInstallSteps(d installDeps) []workflow.Step {
	steps := []workflow.Step{
		{Name: "check environment", Run: d.checkEnvironment},
		{Name: "install docker", Run: d.installDocker},
		{Name: "collect configuration", Run: d.collectConfiguration},
		{Name: "generate artifacts", Run: d.generateArtifacts},
	}
	if d.flags.bootUnit {
		steps = append(steps, workflow.Step{Name: "install boot unit", Run: d.installBootUnit})
	}
	steps = append(steps, workflow.Step{Name: "start services", Run: d.startServices})
	if !d.flags.skipVerify {
		steps = append(steps, workflow.Step{Name: "verify services", Run: d.verifyServices})
	}
	return steps
}

// checkEnvironment validates privileges and the host distribution before
// anything is created.
func (d installDeps) checkEnvironment(_ context.Context, _ *workflow.Session) error {
	if err := system.RequireRoot(); err != nil {
		return err
	}
	info, err := system.DetectOS()
	if err != nil {
		return err
	}
	if info.Family() == "" {
		return &workflow.PreconditionError{
			Reason: fmt.Sprintf("unsupported distribution %q", info.ID),
			Remedy: "install Docker and Docker Compose manually, then re-run with --skip-verify",
		}
	}
	d.logger.Info("host looks good", "os", info.PrettyName)
	return nil
}

// installDocker makes sure curl, the Docker engine and the compose
// plugin are present. Docker itself is never rolled back: uninstalling a
// system-wide engine over one failed stack would be far more destructive
// than leaving it installed.
func (d installDeps) installDocker(ctx context.Context, _ *workflow.Session) error {
	info, err := system.DetectOS()
	if err != nil {
		return err
	}
	installer, err := system.NewInstaller(info, d.logger)
	if err != nil {
		return err
	}
	if err := installer.EnsureCommand(ctx, "curl", "curl"); err != nil {
		return err
	}

	docker := system.NewDockerInstaller(d.logger)
	docker.Mirror = d.flags.mirror
	return docker.Ensure(ctx)
}

// collectConfiguration resolves every stack field from presets, prompts
// or defaults and stores the result on the session.
func (d installDeps) collectConfiguration(ctx context.Context, s *workflow.Session) error {
	fields := d.stack.Fields
	preset := d.preset.Clone()

	// Exported environment variables are the weakest preset source:
	// they fill in field keys that --vars and --var-file left unset.
	osEnv := env.FromOS()
	for _, f := range fields {
		if _, ok := preset[f.Key]; ok {
			continue
		}
		if v, ok := osEnv[f.Key]; ok && v != "" {
			preset[f.Key] = v
		}
	}

	if d.stack.WantsPublicIP && preset["PUBLIC_IP"] == "" {
		ip, err := netutil.NewResolver().PublicIP(ctx)
		if err == nil && ip != "" {
			d.logger.Info("detected public address", "ip", ip)
			fields = withDefault(fields, "PUBLIC_IP", ip)
		} else {
			d.logger.Warn("could not detect public address, it must be entered manually")
		}
	}

	collector := collect.NewCollector(!d.flags.nonInteractive, d.logger)
	values, err := collector.Collect(ctx, fields, preset)
	if err != nil {
		return err
	}
	for k, v := range values {
		s.Values[k] = v
	}
	return nil
}

// generateArtifacts creates the work directory and renders the stack's
// files into it. The directory is registered for rollback the moment it
// exists, before rendering can fail halfway.
func (d installDeps) generateArtifacts(_ context.Context, s *workflow.Session) error {
	if _, err := os.Stat(s.WorkDir); err == nil {
		return &workflow.PreconditionError{
			Reason: fmt.Sprintf("work directory %q already exists", s.WorkDir),
			Remedy: fmt.Sprintf("remove it or pick another one: stackctl destroy %s, or --dir", d.stack.Name),
		}
	}
	if err := os.MkdirAll(s.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create work directory %q: %w", s.WorkDir, err)
	}

	dir := s.WorkDir
	s.Register(workflow.NewResource(
		workflow.KindDirectory,
		dir,
		fmt.Sprintf("rm -rf %s", dir),
		func(context.Context) error { return os.RemoveAll(dir) },
	))

	if err := d.stack.Render(dir, s.Values); err != nil {
		return err
	}
	d.logger.Info("artifacts generated", "dir", dir)
	return nil
}

// installBootUnit writes a systemd unit that brings the stack up after a
// reboot without relying on container restart policies alone.
func (d installDeps) installBootUnit(ctx context.Context, s *workflow.Session) error {
	name := "stackctl-" + d.stack.Name
	unit := sysd.Unit{
		Name:             name,
		Description:      fmt.Sprintf("stackctl managed stack %s", d.stack.Name),
		WorkingDirectory: s.WorkDir,
		ExecStart:        "/usr/bin/docker compose up -d",
		ExecStop:         "/usr/bin/docker compose down",
		RemainAfterExit:  true,
	}
	if err := d.units.Install(ctx, unit); err != nil {
		return err
	}

	units := d.units
	s.Register(workflow.NewResource(
		workflow.KindServiceUnit,
		name+".service",
		units.RemoveHint(name),
		func(ctx context.Context) error { return units.Remove(ctx, name) },
	))
	return nil
}

// startServices pulls the stack's images and runs compose up. Pull
// happens before the stack handle is registered: it creates no
// containers, and downloaded images stay on the host like the engine
// itself. The handle is registered before the up attempt: a failed up
// can leave partial containers behind, and those must be swept by
// rollback too.
func (d installDeps) startServices(ctx context.Context, s *workflow.Session) error {
	client := d.compose
	if err := client.Pull(ctx); err != nil {
		return &workflow.OrchestratorError{Op: "pull", Err: err, LogsHint: client.LogsHint()}
	}

	s.Register(workflow.NewResource(
		workflow.KindStack,
		d.stack.Name,
		client.DownHint(),
		func(ctx context.Context) error { return client.Down(ctx, true) },
	))

	if err := client.Up(ctx); err != nil {
		return &workflow.OrchestratorError{Op: "up", Err: err, LogsHint: client.LogsHint()}
	}
	return nil
}

// verifyServices waits until every declared service reports a running
// container.
func (d installDeps) verifyServices(ctx context.Context, _ *workflow.Session) error {
	expected, err := d.compose.DefinedServices()
	if err != nil {
		return err
	}
	if err := d.compose.WaitRunning(ctx, expected, d.flags.timeout); err != nil {
		return &workflow.OrchestratorError{Op: "verify", Err: err, LogsHint: d.compose.LogsHint()}
	}
	d.logger.Info("all services running", "services", expected)
	return nil
}

// withDefault returns a copy of fields with the default of key replaced.
func withDefault(fields []collect.Field, key, value string) []collect.Field {
	out := make([]collect.Field, len(fields))
	copy(out, fields)
	for i := range out {
		if out[i].Key == key {
			out[i].Default = value
		}
	}
	return out
}

// reportFailure logs the failed step, the rollback outcome and the
// operator's next action. A fatal error must never leave the operator
// without a command to run.
func reportFailure(logger *slog.Logger, runErr error, failures []workflow.Failure) {
	if step, ok := workflow.FailedStep(runErr); ok {
		if workflow.IsInterrupted(runErr) {
			logger.Warn("installation interrupted", "step", step)
		} else {
			logger.Error("installation failed", "step", step, "error", runErr)
		}
	}

	for _, f := range failures {
		logger.Error("resource could not be removed automatically",
			"kind", f.Kind, "resource", f.Desc, "error", f.Err, "remove_manually", f.Remedy)
	}

	if remedy := workflow.Remediation(runErr); remedy != "" {
		logger.Info("suggested next action", "run", remedy)
	}
}
