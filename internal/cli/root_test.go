package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfhost-kit/stackctl/internal/env"
	"github.com/selfhost-kit/stackctl/internal/workflow"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("step failed")))
	assert.Equal(t, 130, ExitCode(&workflow.StepError{Step: "start services", Err: workflow.ErrInterrupted}))
	assert.Equal(t, 130, ExitCode(context.Canceled))
}

func TestBuildInstallSteps_DefaultOrder(t *testing.T) {
	t.Parallel()

	deps := installDeps{logger: testLogger()}
	steps := buildInstallSteps(deps)

	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"check environment",
		"install docker",
		"collect configuration",
		"generate artifacts",
		"start services",
		"verify services",
	}, names)
}

func TestBuildInstallSteps_Flags(t *testing.T) {
	t.Parallel()

	deps := installDeps{
		logger: testLogger(),
		flags:  installFlags{bootUnit: true, skipVerify: true},
	}
	steps := buildInstallSteps(deps)

	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "install boot unit")
	assert.NotContains(t, names, "verify services")
	// The boot unit goes in before services start so rollback removes it
	// after the stack is down.
	assert.Equal(t, "start services", names[len(names)-1])
}

func TestLoadPreset_InlineOnly(t *testing.T) {
	t.Parallel()

	preset, err := loadPreset("DOMAIN=example.com,WEB_PORT=80", nil)
	require.NoError(t, err)
	assert.Equal(t, env.Vars{"DOMAIN": "example.com", "WEB_PORT": "80"}, preset)
}

func TestLoadPreset_InlineWinsOverFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vars.env")
	require.NoError(t, os.WriteFile(path, []byte("DOMAIN=file.example.com\nWEB_PORT=8080\n"), 0o644))

	preset, err := loadPreset("DOMAIN=flag.example.com", []string{path})
	require.NoError(t, err)
	assert.Equal(t, "flag.example.com", preset["DOMAIN"])
	assert.Equal(t, "8080", preset["WEB_PORT"])
}

func TestLoadPreset_LaterFileWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "base.env")
	override := filepath.Join(dir, "override.env")
	require.NoError(t, os.WriteFile(base, []byte("DOMAIN=base.example.com\nWEB_PORT=8080\n"), 0o644))
	require.NoError(t, os.WriteFile(override, []byte("DOMAIN=override.example.com\n"), 0o644))

	preset, err := loadPreset("", []string{base, override})
	require.NoError(t, err)
	assert.Equal(t, "override.example.com", preset["DOMAIN"])
	assert.Equal(t, "8080", preset["WEB_PORT"])
}

func TestLoadPreset_BadInline(t *testing.T) {
	t.Parallel()

	_, err := loadPreset("NOEQUALS", nil)
	require.Error(t, err)
}

func TestLoggerFromContext(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, LoggerFromContext(nil))
	assert.NotNil(t, LoggerFromContext(context.Background()))

	logger := testLogger()
	ctx := context.WithValue(context.Background(), loggerKey{}, logger)
	assert.Same(t, logger, LoggerFromContext(ctx))
}
