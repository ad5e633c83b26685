package configinfra

import (
	"context"
	"os"
	"strconv"
	"time"

	"vdpm.dev/cli/internal/core/domain"
	configdomain "vdpm.dev/cli/internal/core/domain/config"
	configports "vdpm.dev/cli/internal/core/ports/config"
)

type EnvLoader struct {
	lookup func(string) (string, bool)
}

func NewEnvLoader() *EnvLoader { return &EnvLoader{lookup: os.LookupEnv} }

func (l *EnvLoader) Name() string { return "env" }

// Apply implements configports.Loader by overlaying the VDPM_* environment variables.
func (l *EnvLoader) Apply(ctx context.Context, cfg *configdomain.Config) error {
	str := func(key string, dst *string) {
		if v, ok := l.lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("VDPM_PLUGIN_DIR", &cfg.PluginDir)
	str("VDPM_PLUGIN_EXTENSION", &cfg.PluginExtension)
	str("VDPM_RC_FILE", &cfg.RCFile)
	str("VDPM_CONFIG_DIR", &cfg.ConfigDir)
	str("VDPM_REGISTRY_FILE", &cfg.RegistryFile)
	str("VDPM_LOGS_DIR", &cfg.LogsDir)
	str("VDPM_LOG_LEVEL", &cfg.LogLevel)
	str("VDPM_EDITOR", &cfg.Editor)
	str("VDPM_DOWNLOAD_BASE_URL", &cfg.Download.BaseURL)

	if v, ok := l.lookup("VDPM_DOWNLOAD_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.NewConfigError("parse VDPM_DOWNLOAD_TIMEOUT", "", err)
		}
		cfg.Download.Timeout = configdomain.Duration(d)
	}

	if v, ok := l.lookup("VDPM_DOWNLOAD_MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.NewConfigError("parse VDPM_DOWNLOAD_MAX_RETRIES", "", err)
		}
		cfg.Download.MaxRetries = n
	}

	if v, ok := l.lookup("VDPM_WATCH_DEBOUNCE"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return domain.NewConfigError("parse VDPM_WATCH_DEBOUNCE", "", err)
		}
		cfg.Watch.Debounce = configdomain.Duration(d)
	}

	return nil
}

var _ configports.Loader = (*EnvLoader)(nil)
