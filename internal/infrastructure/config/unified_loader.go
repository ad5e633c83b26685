package configinfra

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"vdpm.dev/cli/internal/core/domain"
	configdomain "vdpm.dev/cli/internal/core/domain/config"
	configports "vdpm.dev/cli/internal/core/ports/config"
)

// UnifiedLoader builds the effective configuration from defaults and every loader in order
type UnifiedLoader struct {
	loaders   []configports.Loader
	validator configports.Validator
}

// NewUnifiedLoader creates the standard loader chain: defaults, then the
// TOML file at configPath, then VDPM_* environment variables.
func NewUnifiedLoader(configPath string) *UnifiedLoader {
	return &UnifiedLoader{
		loaders: []configports.Loader{
			NewFileLoader(configPath),
			NewEnvLoader(),
		},
		validator: NewConfigValidator(),
	}
}

// NewUnifiedLoaderWith creates a loader chain from explicit parts
func NewUnifiedLoaderWith(validator configports.Validator, loaders ...configports.Loader) *UnifiedLoader {
	return &UnifiedLoader{loaders: loaders, validator: validator}
}

// Load returns the validated configuration with every path expanded
func (l *UnifiedLoader) Load(ctx context.Context) (*configdomain.Config, error) {
	cfg := configdomain.Default()

	for _, loader := range l.loaders {
		if err := loader.Apply(ctx, cfg); err != nil {
			return nil, err
		}
	}

	cfg.PluginDir = ExpandHome(cfg.PluginDir)
	cfg.RCFile = ExpandHome(cfg.RCFile)
	cfg.ConfigDir = ExpandHome(cfg.ConfigDir)
	cfg.LogsDir = ExpandHome(cfg.LogsDir)
	cfg.PluginExtension = strings.TrimPrefix(cfg.PluginExtension, ".")

	if l.validator != nil {
		if err := l.validator.Validate(cfg); err != nil {
			return nil, domain.NewConfigError("validate configuration", "", err)
		}
	}

	return cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
