// Package sysd manages systemd units created for installed stacks.
package sysd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
)

// unitDir is where generated unit files are written.
const unitDir = "/etc/systemd/system"

// Unit describes a generated service unit.
type Unit struct {
	// Name is the unit name without the .service suffix.
	Name string
	// Description is the unit description line.
	Description string
	// WorkingDirectory is the directory the command runs in.
	WorkingDirectory string
	// ExecStart is the command to run.
	ExecStart string
	// ExecStop is the optional stop command.
	ExecStop string
	// RemainAfterExit marks oneshot units that stay "active" after start.
	RemainAfterExit bool
}

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description={{ .Description }}
After=network-online.target docker.service
Requires=docker.service

[Service]
Type=oneshot
{{- if .RemainAfterExit }}
RemainAfterExit=yes
{{- end }}
WorkingDirectory={{ .WorkingDirectory }}
ExecStart={{ .ExecStart }}
{{- if .ExecStop }}
ExecStop={{ .ExecStop }}
{{- end }}

[Install]
WantedBy=multi-user.target
`))

// Manager installs and removes unit files via systemctl.
type Manager struct {
	// dir is the unit file directory; overridden in tests.
	dir string
	// run executes systemctl; replaced in tests.
	run func(ctx context.Context, args ...string) error
}

// NewManager constructs a Manager operating on the system unit directory.
func NewManager() *Manager {
	return &Manager{
		dir: unitDir,
		run: runSystemctl,
	}
}

// UnitPath returns the path of the unit file for name.
func (m *Manager) UnitPath(name string) string {
	return filepath.Join(m.dir, name+".service")
}

// Install renders the unit file, reloads the daemon and enables the unit
// so it starts on boot.
func (m *Manager) Install(ctx context.Context, unit Unit) error {
	var b strings.Builder
	if err := unitTemplate.Execute(&b, unit); err != nil {
		return fmt.Errorf("render unit %q: %w", unit.Name, err)
	}

	path := m.UnitPath(unit.Name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write unit file %q: %w", path, err)
	}

	if err := m.run(ctx, "daemon-reload"); err != nil {
		return fmt.Errorf("systemctl daemon-reload: %w", err)
	}
	if err := m.run(ctx, "enable", unit.Name+".service"); err != nil {
		return fmt.Errorf("enable unit %q: %w", unit.Name, err)
	}
	return nil
}

// Remove stops and disables the unit, deletes its file and reloads the
// daemon. Missing pieces are skipped so Remove stays usable as a
// best-effort rollback action.
func (m *Manager) Remove(ctx context.Context, name string) error {
	service := name + ".service"

	// Stop/disable may fail when the unit never started; keep going.
	_ = m.run(ctx, "stop", service)
	_ = m.run(ctx, "disable", service)

	path := m.UnitPath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove unit file %q: %w", path, err)
	}

	if err := m.run(ctx, "daemon-reload"); err != nil {
		return fmt.Errorf("systemctl daemon-reload: %w", err)
	}
	return nil
}

// RemoveHint returns the manual removal commands for the named unit.
func (m *Manager) RemoveHint(name string) string {
	return fmt.Sprintf("systemctl disable --now %s.service && rm %s && systemctl daemon-reload", name, m.UnitPath(name))
}

func runSystemctl(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "systemctl", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
