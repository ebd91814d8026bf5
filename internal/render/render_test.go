package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfhost-kit/stackctl/internal/env"
)

func TestTemplate(t *testing.T) {
	t.Parallel()

	raw := []byte("domain: {{ .DOMAIN }}\nport: {{ .WEB_PORT }}\n")
	vars := env.Vars{"DOMAIN": "mail.example.com", "WEB_PORT": "8080"}

	got, err := Template("pmail", raw, vars)
	require.NoError(t, err)
	assert.Equal(t, "domain: mail.example.com\nport: 8080\n", string(got))
}

func TestTemplate_MissingKey(t *testing.T) {
	t.Parallel()

	raw := []byte("value: {{ .ABSENT }}\n")
	_, err := Template("broken", raw, env.Vars{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestTemplate_ParseError(t *testing.T) {
	t.Parallel()

	_, err := Template("bad", []byte("{{ .Unclosed"), env.Vars{})
	require.Error(t, err)
}

func TestTemplate_Functions(t *testing.T) {
	t.Parallel()

	vars := env.Vars{"TZ": "", "NAME": "StackCtl", "KEYS": "a,b"}
	raw := []byte(`tz: {{ default "UTC" .TZ }}
name: {{ toLower .NAME }}
quoted: {{ quote .NAME }}
count: {{ len (split "," .KEYS) }}
`)

	got, err := Template("funcs", raw, vars)
	require.NoError(t, err)
	assert.Equal(t, "tz: UTC\nname: stackctl\nquoted: \"StackCtl\"\ncount: 2\n", string(got))
}

func TestWriteFile_Permissions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := WriteFile(dir, ".env", []byte("SECRET=x\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".env"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWriteTOML(t *testing.T) {
	t.Parallel()

	type bot struct {
		Account int64  `toml:"qq_account"`
		Name    string `toml:"nickname"`
	}

	dir := t.TempDir()
	path, err := WriteTOML(dir, "config.toml", bot{Account: 123456789, Name: "mai"})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "qq_account = 123456789")
	assert.Contains(t, string(raw), "nickname = 'mai'")
}
