package configinfra

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	configdomain "vdpm.dev/cli/internal/core/domain/config"
	configports "vdpm.dev/cli/internal/core/ports/config"
)

// ConfigValidator validates configuration values
type ConfigValidator struct{}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate checks every field and reports the first problem found
func (v *ConfigValidator) Validate(cfg *configdomain.Config) error {
	required := []struct {
		field string
		value string
	}{
		{"plugin_dir", cfg.PluginDir},
		{"plugin_extension", cfg.PluginExtension},
		{"rc_file", cfg.RCFile},
		{"config_dir", cfg.ConfigDir},
		{"registry_file", cfg.RegistryFile},
		{"logs_dir", cfg.LogsDir},
		{"editor", cfg.Editor},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s cannot be empty", r.field)
		}
	}

	if strings.ContainsAny(cfg.PluginExtension, "./\\") {
		return fmt.Errorf("plugin_extension must be a bare extension such as \"py\": %q", cfg.PluginExtension)
	}

	if strings.ContainsAny(cfg.RegistryFile, "/\\") {
		return fmt.Errorf("registry_file must be a file name, not a path: %q", cfg.RegistryFile)
	}

	if err := v.ValidateLogLevel(cfg.LogLevel); err != nil {
		return err
	}

	if err := v.ValidateBaseURL(cfg.Download.BaseURL); err != nil {
		return err
	}

	if cfg.Download.Timeout.Std() <= 0 {
		return fmt.Errorf("download.timeout must be positive")
	}

	if cfg.Download.MaxRetries < 0 || cfg.Download.MaxRetries > 10 {
		return fmt.Errorf("download.max_retries must be between 0 and 10")
	}

	if cfg.Watch.Debounce.Std() < 0 {
		return fmt.Errorf("watch.debounce cannot be negative")
	}

	return nil
}

// ValidateBaseURL validates the plugin download location
func (v *ConfigValidator) ValidateBaseURL(endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("download.base_url cannot be empty")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (must be http or https)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must include host")
	}

	return nil
}

// ValidateLogLevel validates a zerolog level name
func (v *ConfigValidator) ValidateLogLevel(level string) error {
	if _, err := zerolog.ParseLevel(strings.ToLower(level)); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	return nil
}

var _ configports.Validator = (*ConfigValidator)(nil)
