package collect

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfhost-kit/stackctl/internal/env"
)

func newNonInteractive() *Collector {
	return NewCollector(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCollect_PresetWins(t *testing.T) {
	t.Parallel()

	fields := []Field{
		{Key: "DOMAIN", Validate: Domain},
		{Key: "WEB_PORT", Default: "8080", Validate: Port},
	}
	preset := env.Vars{"DOMAIN": "mail.example.com", "WEB_PORT": "9090"}

	got, err := newNonInteractive().Collect(context.Background(), fields, preset)
	require.NoError(t, err)
	assert.Equal(t, env.Vars{"DOMAIN": "mail.example.com", "WEB_PORT": "9090"}, got)
}

func TestCollect_DefaultFillsMissing(t *testing.T) {
	t.Parallel()

	fields := []Field{{Key: "HTTP_PORT", Default: "5140", Validate: Port}}

	got, err := newNonInteractive().Collect(context.Background(), fields, nil)
	require.NoError(t, err)
	assert.Equal(t, "5140", got["HTTP_PORT"])
}

func TestCollect_MissingWithoutDefault(t *testing.T) {
	t.Parallel()

	fields := []Field{{Key: "API_KEYS", Validate: KeyList}}

	_, err := newNonInteractive().Collect(context.Background(), fields, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEYS")
	assert.Contains(t, err.Error(), "--vars")
}

func TestCollect_InvalidPresetFailsFast(t *testing.T) {
	t.Parallel()

	fields := []Field{{Key: "QQ_NUMBER", Validate: NumericID}}
	preset := env.Vars{"QQ_NUMBER": "not-a-number"}

	_, err := newNonInteractive().Collect(context.Background(), fields, preset)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QQ_NUMBER")
}

func TestCollect_FieldWithoutValidatorAcceptsAnything(t *testing.T) {
	t.Parallel()

	fields := []Field{{Key: "FREEFORM"}}
	preset := env.Vars{"FREEFORM": "whatever value"}

	got, err := newNonInteractive().Collect(context.Background(), fields, preset)
	require.NoError(t, err)
	assert.Equal(t, "whatever value", got["FREEFORM"])
}

func TestCollect_NoFields(t *testing.T) {
	t.Parallel()

	got, err := newNonInteractive().Collect(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
