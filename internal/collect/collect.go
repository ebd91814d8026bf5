// Package collect gathers stack configuration values from the operator,
// either interactively or from presets supplied via flags and env vars.
package collect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/huh"

	"github.com/selfhost-kit/stackctl/internal/env"
)

// Option is one choice of a select field.
type Option struct {
	// Value is the stored value.
	Value string
	// Label is the displayed text.
	Label string
}

// Field describes one configuration value a stack needs.
type Field struct {
	// Key is the variable name the value is stored under.
	Key string
	// Title is the prompt title.
	Title string
	// Description explains the value below the prompt.
	Description string
	// Placeholder is shown in the empty input.
	Placeholder string
	// Default pre-fills the value when the operator provides nothing.
	Default string
	// Secret masks the input (passwords, tokens).
	Secret bool
	// Options turns the field into a select when non-empty.
	Options []Option
	// Validate rejects malformed input; interactive prompts loop until
	// it passes.
	Validate func(string) error
}

// Collector resolves field values from presets and interactive prompts.
type Collector struct {
	// Interactive enables huh prompts for unresolved fields. When false
	// every field must be resolvable from presets or defaults.
	Interactive bool

	logger *slog.Logger
}

// NewCollector constructs a Collector.
func NewCollector(interactive bool, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{Interactive: interactive, logger: logger}
}

// Collect resolves every field into a Vars map. Preset values win over
// prompting; invalid presets fail fast in non-interactive mode and fall
// back to prompting otherwise. Validation failures never escalate out of
// an interactive prompt: the form loops until the value passes.
func (c *Collector) Collect(ctx context.Context, fields []Field, preset env.Vars) (env.Vars, error) {
	out := make(env.Vars, len(fields))
	var pending []Field

	for _, f := range fields {
		value, ok := preset[f.Key]
		if !ok && f.Default != "" && !c.Interactive {
			value, ok = f.Default, true
		}
		if ok {
			if f.Validate != nil {
				if err := f.Validate(value); err != nil {
					if !c.Interactive {
						return nil, fmt.Errorf("invalid value for %s: %w", f.Key, err)
					}
					c.logger.Warn("preset value rejected, prompting instead", "key", f.Key, "error", err)
					pending = append(pending, f)
					continue
				}
			}
			out[f.Key] = value
			continue
		}
		if !c.Interactive {
			return nil, fmt.Errorf("missing value for %s (pass --vars %s=...)", f.Key, f.Key)
		}
		pending = append(pending, f)
	}

	if len(pending) == 0 {
		return out, nil
	}

	values := make([]string, len(pending))
	inputs := make([]huh.Field, 0, len(pending))
	for i, f := range pending {
		values[i] = f.Default
		inputs = append(inputs, buildInput(f, &values[i]))
	}

	form := huh.NewForm(huh.NewGroup(inputs...))
	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("collect configuration: %w", err)
	}

	for i, f := range pending {
		out[f.Key] = values[i]
	}
	return out, nil
}

// buildInput maps a Field onto the matching huh prompt.
func buildInput(f Field, value *string) huh.Field {
	if len(f.Options) > 0 {
		opts := make([]huh.Option[string], 0, len(f.Options))
		for _, o := range f.Options {
			label := o.Label
			if label == "" {
				label = o.Value
			}
			opts = append(opts, huh.NewOption(label, o.Value))
		}
		return huh.NewSelect[string]().
			Title(f.Title).
			Description(f.Description).
			Options(opts...).
			Value(value)
	}

	input := huh.NewInput().
		Title(f.Title).
		Description(f.Description).
		Placeholder(f.Placeholder).
		Value(value)
	if f.Secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if f.Validate != nil {
		input = input.Validate(f.Validate)
	}
	return input
}
