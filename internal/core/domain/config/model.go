package configdomain

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config holds every vdpm setting
type Config struct {
	// PluginDir is where plugin source files live, one file per plugin.
	PluginDir string `toml:"plugin_dir"`
	// PluginExtension identifies plugin files inside PluginDir.
	PluginExtension string `toml:"plugin_extension"`
	// RCFile is the editor's startup script.
	RCFile string `toml:"rc_file"`
	// ConfigDir holds the registry file shared with the editor.
	ConfigDir string `toml:"config_dir"`
	// RegistryFile is the registry file name inside ConfigDir.
	RegistryFile string `toml:"registry_file"`
	LogsDir      string `toml:"logs_dir"`
	LogLevel     string `toml:"log_level"`
	// Editor is the interactive program that opens the registry file.
	Editor string `toml:"editor"`

	Download DownloadConfig `toml:"download"`
	Watch    WatchConfig    `toml:"watch"`
}

// DownloadConfig controls plugin downloads
type DownloadConfig struct {
	// BaseURL is the location plugin files are fetched from; "<name>.<ext>" is appended.
	BaseURL    string   `toml:"base_url"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

// WatchConfig controls registry file watching
type WatchConfig struct {
	// Debounce coalesces the burst of events one save produces.
	Debounce Duration `toml:"debounce"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		PluginDir:       "~/.visidata/plugins",
		PluginExtension: "py",
		RCFile:          "~/.visidatarc",
		ConfigDir:       "~/.vdpm",
		RegistryFile:    "plugins.csv",
		LogsDir:         "~/.vdpm/logs",
		LogLevel:        "info",
		Editor:          "vd",
		Download: DownloadConfig{
			BaseURL:    "https://raw.githubusercontent.com/visidata/dlc/main/plugins",
			Timeout:    Duration(30 * time.Second),
			MaxRetries: 3,
		},
		Watch: WatchConfig{
			Debounce: Duration(50 * time.Millisecond),
		},
	}
}

// RegistryPath returns the full path of the registry file
func (c *Config) RegistryPath() string {
	return filepath.Join(c.ConfigDir, c.RegistryFile)
}

// Duration is a time.Duration that reads and writes as a string such as "30s"
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}
