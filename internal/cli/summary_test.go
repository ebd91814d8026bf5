package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfhost-kit/stackctl/internal/workflow"
)

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	session := workflow.NewSession("/opt/stackctl/teststack", testLogger())
	session.Values["HTTP_PORT"] = "8080"

	var buf bytes.Buffer
	printSummary(&buf, testStack(), session)

	out := buf.String()
	assert.Contains(t, out, "teststack installed")
	assert.Contains(t, out, "/opt/stackctl/teststack")
	assert.Contains(t, out, "http://localhost:8080")
	assert.Contains(t, out, "stackctl destroy teststack")
}

func TestPrintSummary_ShowsCollectedPort(t *testing.T) {
	t.Parallel()

	session := workflow.NewSession("/opt/stackctl/teststack", testLogger())
	session.Values["HTTP_PORT"] = "9001"

	var buf bytes.Buffer
	printSummary(&buf, testStack(), session)

	out := buf.String()
	// The operator's port wins over the catalog default.
	assert.Contains(t, out, "9001   test app")
	assert.NotContains(t, out, "8080   test app")
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	opts := &Options{BaseDir: t.TempDir()}
	cmd := newListCommand(opts)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	require.NoError(t, cmd.RunE(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "nextcloud")
	assert.Contains(t, out, "pmail")
	assert.Contains(t, out, "gemini-balance")
}
