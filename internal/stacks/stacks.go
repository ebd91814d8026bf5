// Package stacks defines the built-in catalog of installable stacks:
// which values each deployment needs, and how its artifacts are rendered
// into a work directory. The applications themselves live entirely in
// the container images; the catalog only describes prompts, artifacts
// and ports.
package stacks

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/selfhost-kit/stackctl/internal/collect"
	"github.com/selfhost-kit/stackctl/internal/compose"
	"github.com/selfhost-kit/stackctl/internal/env"
	"github.com/selfhost-kit/stackctl/internal/render"
)

//go:embed templates
var templates embed.FS

// Port documents a TCP port exposed by an installed stack.
type Port struct {
	// Number is the default host port.
	Number string
	// Purpose describes what listens there.
	Purpose string
	// Key names the collected value that overrides Number; empty for
	// fixed ports.
	Key string
}

// Resolve returns the host port actually in use: the collected value
// when the operator chose one, otherwise the default.
func (p Port) Resolve(vals env.Vars) string {
	if p.Key != "" {
		if v := vals[p.Key]; v != "" {
			return v
		}
	}
	return p.Number
}

// Stack describes one installable deployment.
type Stack struct {
	// Name is the catalog identifier (e.g. "nextcloud").
	Name string
	// Summary is a one-line description for the list command.
	Summary string
	// DirName is the default work directory name under the base dir.
	DirName string
	// Fields lists the configuration values to collect.
	Fields []collect.Field
	// Ports documents the host ports the stack exposes after install.
	Ports []Port
	// WantsPublicIP marks stacks whose setup needs the host's public
	// address (used to pre-fill the PUBLIC_IP field).
	WantsPublicIP bool
	// Render writes the stack's artifacts into dir using the collected
	// values.
	Render func(dir string, vals env.Vars) error
	// AccessURL builds the post-install access URL from the collected
	// values; empty when the stack has no web entry point.
	AccessURL func(vals env.Vars) string
}

// catalog holds the built-in stacks keyed by name.
var catalog = map[string]*Stack{}

func register(s *Stack) {
	catalog[s.Name] = s
}

// All returns the catalog sorted by stack name.
func All() []*Stack {
	out := make([]*Stack, 0, len(catalog))
	for _, s := range catalog {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the named stack or an error listing the valid names.
func Lookup(name string) (*Stack, error) {
	if s, ok := catalog[name]; ok {
		return s, nil
	}
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown stack %q (available: %v)", name, names)
}

// renderComposeFile renders the embedded compose template for a stack
// into dir.
func renderComposeFile(dir, templateName string, vals env.Vars) error {
	raw, err := templates.ReadFile("templates/" + templateName)
	if err != nil {
		return fmt.Errorf("load template %q: %w", templateName, err)
	}
	data, err := render.Template(templateName, raw, vals)
	if err != nil {
		return err
	}
	if _, err := render.WriteFile(dir, compose.FileName, data); err != nil {
		return err
	}
	return nil
}

// generatedSecret fills key in vals with a random hex secret when the
// operator did not provide one.
func generatedSecret(vals env.Vars, key string) error {
	if vals[key] != "" {
		return nil
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate secret for %s: %w", key, err)
	}
	vals[key] = hex.EncodeToString(buf)
	return nil
}
