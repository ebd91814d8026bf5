package cli

import (
	"strings"

	envparse "github.com/caarlos0/env/v11"

	"github.com/selfhost-kit/stackctl/internal/logging"
)

// baseEnv defines root CLI defaults sourced from STACKCTL_* env vars.
type baseEnv struct {
	// BaseDir is the work directory base from STACKCTL_BASE_DIR.
	BaseDir string `env:"STACKCTL_BASE_DIR"`
	// LogLevel is the logging level from STACKCTL_LOG_LEVEL.
	LogLevel string `env:"STACKCTL_LOG_LEVEL"`
}

// installEnv captures STACKCTL_* inputs for the install command.
type installEnv struct {
	// Vars is a k=v,k2=v2 list from STACKCTL_VARS.
	Vars string `env:"STACKCTL_VARS"`
	// VarFile is a var-file path from STACKCTL_VAR_FILE.
	VarFile string `env:"STACKCTL_VAR_FILE"`
	// AssumeYes skips confirmations from STACKCTL_ASSUME_YES.
	AssumeYes bool `env:"STACKCTL_ASSUME_YES"`
	// Mirror switches the Docker install script from STACKCTL_MIRROR.
	Mirror bool `env:"STACKCTL_MIRROR"`
	// NonInteractive disables prompts from STACKCTL_NON_INTERACTIVE.
	NonInteractive bool `env:"STACKCTL_NON_INTERACTIVE"`
}

// parseEnv fills target from STACKCTL_* env vars via caarlos0/env.
func parseEnv(target any) error {
	return envparse.Parse(target)
}

// applyBaseEnv overlays base defaults with STACKCTL_* values.
func applyBaseEnv(opts *Options) {
	var base baseEnv
	if err := parseEnv(&base); err != nil {
		return
	}
	if strings.TrimSpace(base.BaseDir) != "" {
		opts.BaseDir = base.BaseDir
	}
	if strings.TrimSpace(base.LogLevel) != "" {
		opts.LogLevel = logging.ParseLevel(base.LogLevel)
	}
}
