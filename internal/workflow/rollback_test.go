package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollback_ReverseOrder(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	var torn []string
	for _, name := range []string{"dir", "unit", "stack"} {
		name := name
		session.Register(NewResource(KindDirectory, name, "", func(context.Context) error {
			torn = append(torn, name)
			return nil
		}))
	}

	failures := session.Rollback(context.Background())

	assert.Empty(t, failures)
	assert.Equal(t, []string{"stack", "unit", "dir"}, torn)
	assert.Equal(t, StateAborted, session.State())
}

func TestRollback_BestEffort(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	var torn []string
	session.Register(NewResource(KindDirectory, "/opt/stackctl/pmail", "rm -rf /opt/stackctl/pmail", func(context.Context) error {
		torn = append(torn, "dir")
		return nil
	}))
	session.Register(NewResource(KindStack, "pmail", "docker compose down", func(context.Context) error {
		return fmt.Errorf("daemon gone")
	}))

	failures := session.Rollback(context.Background())

	// The failing stack does not stop teardown of the earlier directory.
	assert.Equal(t, []string{"dir"}, torn)
	require.Len(t, failures, 1)
	assert.Equal(t, KindStack, failures[0].Kind)
	assert.Equal(t, "pmail", failures[0].Desc)
	assert.Equal(t, "docker compose down", failures[0].Remedy)
	assert.EqualError(t, failures[0].Err, "daemon gone")
}

func TestRollback_FiresOnce(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	count := 0
	session.Register(NewResource(KindStack, "koishi", "", func(context.Context) error {
		count++
		return nil
	}))

	first := session.Rollback(context.Background())
	second := session.Rollback(context.Background())

	assert.Empty(t, first)
	assert.Empty(t, second)
	assert.Equal(t, 1, count)
}

func TestRollback_SkipsCompletedSession(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	runner := NewRunner(session, testLogger())

	called := false
	require.NoError(t, runner.Run(context.Background(), []Step{
		{Name: "create", Run: func(_ context.Context, s *Session) error {
			s.Register(NewResource(KindDirectory, "/opt/x", "", func(context.Context) error {
				called = true
				return nil
			}))
			return nil
		}},
	}))

	failures := session.Rollback(context.Background())

	assert.Empty(t, failures)
	assert.False(t, called)
	assert.Equal(t, StateCompleted, session.State())
}

func TestRollback_NothingRegistered(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	assert.Empty(t, session.Rollback(context.Background()))
	assert.Equal(t, StateAborted, session.State())
}

func TestRollback_AfterFailedRun(t *testing.T) {
	t.Parallel()

	session := NewSession(t.TempDir(), testLogger())
	runner := NewRunner(session, testLogger())

	var torn []string
	err := runner.Run(context.Background(), []Step{
		{Name: "generate artifacts", Run: func(_ context.Context, s *Session) error {
			s.Register(NewResource(KindDirectory, "workdir", "", func(context.Context) error {
				torn = append(torn, "workdir")
				return nil
			}))
			return nil
		}},
		{Name: "start services", Run: func(_ context.Context, s *Session) error {
			// Registered before the orchestrator call so a failed start is
			// still swept up.
			s.Register(NewResource(KindStack, "gemini-balance", "", func(context.Context) error {
				torn = append(torn, "stack")
				return nil
			}))
			return fmt.Errorf("compose up: exit status 1")
		}},
	})

	require.Error(t, err)
	failures := session.Rollback(context.Background())
	assert.Empty(t, failures)
	assert.Equal(t, []string{"stack", "workdir"}, torn)
}
