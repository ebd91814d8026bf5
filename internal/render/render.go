// Package render turns stack templates and collected values into the
// artifact files written to a work directory.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"github.com/selfhost-kit/stackctl/internal/env"
)

// Template renders a named text/template against the collected vars.
// Missing keys are an error so a half-collected configuration can never
// produce a silently broken artifact.
func Template(name string, raw []byte, vars env.Vars) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcMap()).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string(vars)); err != nil {
		return nil, fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

// funcMap is the common set of functions available to stack templates.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"default": funcDefault,
		"toLower": strings.ToLower,
		"quote":   func(s string) string { return fmt.Sprintf("%q", s) },
		"split":   func(sep, s string) []string { return strings.Split(s, sep) },
	}
}

func funcDefault(def, value string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// WriteFile writes an artifact into dir with conservative permissions:
// rendered files routinely carry passwords and API keys.
func WriteFile(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write artifact %q: %w", path, err)
	}
	return path, nil
}

// WriteTOML marshals v into a TOML artifact in dir.
func WriteTOML(dir, name string, v any) (string, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %q: %w", name, err)
	}
	return WriteFile(dir, name, data)
}
