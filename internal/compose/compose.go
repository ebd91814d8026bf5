// Package compose provides low-level integration with Docker Compose via
// the docker CLI plugin.
package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Execer runs the docker binary for a project directory. It is an
// interface so tests can substitute a fake instead of shelling out.
type Execer interface {
	// Run executes docker with the given args, streaming output.
	Run(ctx context.Context, dir string, stdin []byte, args ...string) error
	// Capture executes docker and returns its stdout.
	Capture(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// Client wraps docker compose execution against a single project
// directory. The client relies only on the idempotent up/down contract
// of compose, never on image internals.
type Client struct {
	// ProjectDir is the directory containing docker-compose.yml.
	ProjectDir string
	// Output receives subprocess output; defaults to os.Stdout.
	Output io.Writer
	// Exec runs the docker binary; defaults to the real CLI.
	Exec Execer
}

// NewClient constructs a compose client rooted at projectDir.
func NewClient(projectDir string) *Client {
	return &Client{ProjectDir: projectDir, Output: os.Stdout}
}

// Up starts the stack detached. Compose up is idempotent: re-running it
// against a running stack reconciles instead of duplicating containers.
func (c *Client) Up(ctx context.Context) error {
	return c.run(ctx, nil, "compose", "up", "-d")
}

// Down stops and removes the stack. When removeVolumes is true the
// stack's named volumes are deleted as well, fully reversing Up.
func (c *Client) Down(ctx context.Context, removeVolumes bool) error {
	args := []string{"compose", "down", "--remove-orphans"}
	if removeVolumes {
		args = append(args, "--volumes")
	}
	return c.run(ctx, nil, args...)
}

// Pull fetches the images referenced by the stack ahead of Up.
func (c *Client) Pull(ctx context.Context) error {
	return c.run(ctx, nil, "compose", "pull")
}

// psEntry mirrors one line of `docker compose ps --format json`.
type psEntry struct {
	Service string `json:"Service"`
	State   string `json:"State"`
}

// RunningServices returns the names of services whose container state is
// "running".
func (c *Client) RunningServices(ctx context.Context) ([]string, error) {
	out, err := c.capture(ctx, "compose", "ps", "--format", "json")
	if err != nil {
		return nil, fmt.Errorf("compose ps: %w", err)
	}

	var running []string
	dec := json.NewDecoder(bytes.NewReader(out))
	for dec.More() {
		var entry psEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decode compose ps output: %w", err)
		}
		if strings.EqualFold(entry.State, "running") {
			running = append(running, entry.Service)
		}
	}
	return running, nil
}

// WaitRunning polls until every service in want reports a running
// container or the timeout elapses.
func (c *Client) WaitRunning(ctx context.Context, want []string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	deadline := time.Now().Add(timeout)

	for {
		running, err := c.RunningServices(ctx)
		if err != nil {
			return err
		}
		missing := missingServices(want, running)
		if len(missing) == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("services not running after %s: %s", timeout, strings.Join(missing, ", "))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
}

// LogsHint returns the exact command the operator can run to inspect the
// stack's logs.
func (c *Client) LogsHint() string {
	return fmt.Sprintf("cd %s && docker compose logs -f", c.ProjectDir)
}

// DownHint returns the exact command to remove the stack by hand.
func (c *Client) DownHint() string {
	return fmt.Sprintf("cd %s && docker compose down --volumes --remove-orphans", c.ProjectDir)
}

func missingServices(want, running []string) []string {
	have := make(map[string]struct{}, len(running))
	for _, svc := range running {
		have[svc] = struct{}{}
	}
	var missing []string
	for _, svc := range want {
		if _, ok := have[svc]; !ok {
			missing = append(missing, svc)
		}
	}
	return missing
}

func (c *Client) run(ctx context.Context, stdin []byte, args ...string) error {
	return c.execer().Run(ctx, c.ProjectDir, stdin, args...)
}

func (c *Client) capture(ctx context.Context, args ...string) ([]byte, error) {
	return c.execer().Capture(ctx, c.ProjectDir, args...)
}

func (c *Client) execer() Execer {
	if c.Exec != nil {
		return c.Exec
	}
	out := c.Output
	if out == nil {
		out = os.Stdout
	}
	return &cliExecer{output: out}
}

// cliExecer shells out to the real docker binary.
type cliExecer struct {
	output io.Writer
}

func (e *cliExecer) Run(ctx context.Context, dir string, stdin []byte, args ...string) error {
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = dir
	cmd.Stdout = e.output
	cmd.Stderr = e.output
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker %v failed: %w", args, err)
	}
	return nil
}

func (e *cliExecer) Capture(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	return cmd.Output()
}
