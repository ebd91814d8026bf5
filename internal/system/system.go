// Package system probes and prepares the host: command existence,
// privilege checks, OS detection and package installation.
package system

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/selfhost-kit/stackctl/internal/workflow"
)

// CommandExists reports whether the named command is resolvable in PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// RequireRoot returns a precondition error when the process is not
// running with root privileges.
func RequireRoot() error {
	if os.Geteuid() != 0 {
		return &workflow.PreconditionError{
			Reason: "root privileges are required to install packages and write unit files",
			Remedy: "re-run with: sudo stackctl install <stack>",
		}
	}
	return nil
}

// OSInfo describes the detected Linux distribution.
type OSInfo struct {
	// ID is the distribution identifier from /etc/os-release (e.g. "ubuntu").
	ID string
	// IDLike lists related distributions (e.g. "debian").
	IDLike []string
	// PrettyName is the human-readable distribution name.
	PrettyName string
}

// DetectOS parses /etc/os-release and returns the distribution info.
func DetectOS() (OSInfo, error) {
	return detectOSFrom("/etc/os-release")
}

func detectOSFrom(path string) (OSInfo, error) {
	var info OSInfo

	f, err := os.Open(path)
	if err != nil {
		return info, &workflow.PreconditionError{
			Reason: fmt.Sprintf("cannot detect distribution: %v", err),
			Remedy: "stackctl supports hosts with a standard /etc/os-release",
		}
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		value := strings.Trim(parts[1], `"'`)
		switch parts[0] {
		case "ID":
			info.ID = strings.ToLower(value)
		case "ID_LIKE":
			for _, v := range strings.Fields(strings.ToLower(value)) {
				info.IDLike = append(info.IDLike, v)
			}
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}
	if err := scanner.Err(); err != nil {
		return info, fmt.Errorf("read %s: %w", path, err)
	}
	return info, nil
}

// Family maps the distribution onto a package-manager family.
// Returns "debian", "rhel", "arch" or "" when unknown.
func (o OSInfo) Family() string {
	ids := append([]string{o.ID}, o.IDLike...)
	for _, id := range ids {
		switch id {
		case "debian", "ubuntu":
			return "debian"
		case "rhel", "centos", "fedora", "rocky", "almalinux":
			return "rhel"
		case "arch":
			return "arch"
		}
	}
	return ""
}
