package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_Run_Success(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	session := NewSession(t.TempDir(), testLogger())
	runner := NewRunner(session, testLogger())

	steps := []Step{
		{Name: "check environment", Run: func(context.Context, *Session) error { executed = append(executed, "check"); return nil }},
		{Name: "generate artifacts", Run: func(context.Context, *Session) error { executed = append(executed, "generate"); return nil }},
		{Name: "start services", Run: func(context.Context, *Session) error { executed = append(executed, "start"); return nil }},
	}

	err := runner.Run(context.Background(), steps)

	require.NoError(t, err)
	assert.Equal(t, []string{"check", "generate", "start"}, executed)
	assert.True(t, session.Completed())
	assert.Equal(t, StateCompleted, session.State())
	for _, rec := range session.Steps() {
		assert.Equal(t, StatusSucceeded, rec.Status)
	}
}

func TestRunner_Run_StopsOnError(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	session := NewSession(t.TempDir(), testLogger())
	runner := NewRunner(session, testLogger())

	steps := []Step{
		{Name: "first", Run: func(context.Context, *Session) error { executed = append(executed, "first"); return nil }},
		{Name: "second", Run: func(context.Context, *Session) error { return fmt.Errorf("daemon not reachable") }},
		{Name: "third", Run: func(context.Context, *Session) error { executed = append(executed, "third"); return nil }},
	}

	err := runner.Run(context.Background(), steps)

	require.Error(t, err)
	assert.Equal(t, []string{"first"}, executed)
	assert.False(t, session.Completed())
	assert.Equal(t, StateFailed, session.State())

	step, ok := FailedStep(err)
	require.True(t, ok)
	assert.Equal(t, "second", step)
	assert.Contains(t, err.Error(), "daemon not reachable")

	records := session.Steps()
	assert.Equal(t, StatusSucceeded, records[0].Status)
	assert.Equal(t, StatusFailed, records[1].Status)
	assert.Equal(t, StatusPending, records[2].Status)
}

func TestRunner_Run_CancelledBeforeStep(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	runner := NewRunner(session, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := runner.Run(ctx, []Step{
		{Name: "never runs", Run: func(context.Context, *Session) error { ran = true; return nil }},
	})

	require.Error(t, err)
	assert.False(t, ran)
	assert.True(t, IsInterrupted(err))
	assert.Equal(t, StateInterrupted, session.State())
}

func TestRunner_Run_CancelledMidStep(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	runner := NewRunner(session, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	err := runner.Run(ctx, []Step{
		{Name: "interruptible", Run: func(ctx context.Context, _ *Session) error {
			cancel()
			return ctx.Err()
		}},
	})

	require.Error(t, err)
	assert.True(t, IsInterrupted(err))
	assert.Equal(t, StateInterrupted, session.State())

	step, ok := FailedStep(err)
	require.True(t, ok)
	assert.Equal(t, "interruptible", step)
}

func TestRunner_Run_EmptyStepList(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	runner := NewRunner(session, testLogger())

	require.NoError(t, runner.Run(context.Background(), nil))
	assert.True(t, session.Completed())
}

func TestRunner_Run_NoRetries(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	runner := NewRunner(session, testLogger())

	attempts := 0
	err := runner.Run(context.Background(), []Step{
		{Name: "flaky", Run: func(context.Context, *Session) error {
			attempts++
			return fmt.Errorf("transient")
		}},
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestSession_Register_Order(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	session.Register(NewResource(KindDirectory, "/opt/x", "rm -rf /opt/x", nil))
	session.Register(NewResource(KindStack, "x", "docker compose down", nil))

	resources := session.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, KindDirectory, resources[0].Kind)
	assert.Equal(t, KindStack, resources[1].Kind)
}

func TestRemediation(t *testing.T) {
	t.Parallel()

	pre := &PreconditionError{Reason: "not root", Remedy: "sudo stackctl install nextcloud"}
	assert.Equal(t, "sudo stackctl install nextcloud", Remediation(pre))

	orch := &OrchestratorError{Op: "up", Err: fmt.Errorf("boom"), LogsHint: "docker compose logs -f"}
	assert.Equal(t, "docker compose logs -f", Remediation(orch))

	wrapped := &StepError{Step: "start services", Err: orch}
	assert.Equal(t, "docker compose logs -f", Remediation(wrapped))

	assert.Empty(t, Remediation(fmt.Errorf("plain")))
}

func TestIsPrecondition(t *testing.T) {
	t.Parallel()

	err := &StepError{Step: "check environment", Err: &PreconditionError{Reason: "unsupported"}}
	assert.True(t, IsPrecondition(err))
	assert.False(t, IsPrecondition(fmt.Errorf("other")))
}
