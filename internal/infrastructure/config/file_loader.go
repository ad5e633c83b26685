package configinfra

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"vdpm.dev/cli/internal/core/domain"
	configdomain "vdpm.dev/cli/internal/core/domain/config"
	configports "vdpm.dev/cli/internal/core/ports/config"
)

// ConfigFileName is the default config file name inside the vdpm home directory
const ConfigFileName = "config.toml"

// FileLoader overlays settings from a TOML file. Keys absent from the file
// keep the values already present in the config.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for path. An empty path resolves to
// $VDPM_CONFIG, then ~/.vdpm/config.toml.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Name() string { return "file" }

// Path returns the resolved config file path
func (l *FileLoader) Path() string {
	if l.path != "" {
		return ExpandHome(l.path)
	}
	if env := os.Getenv("VDPM_CONFIG"); env != "" {
		return ExpandHome(env)
	}
	return ExpandHome(filepath.Join("~", ".vdpm", ConfigFileName))
}

// Apply implements configports.Loader. A missing file is not an error.
func (l *FileLoader) Apply(ctx context.Context, cfg *configdomain.Config) error {
	path := l.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return domain.NewConfigError("read config file", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return domain.NewConfigError("parse config file", path, err)
	}

	return nil
}

// Save writes cfg as TOML to the loader's path
func (l *FileLoader) Save(cfg *configdomain.Config) error {
	path := l.Path()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return domain.NewConfigError("create config directory", filepath.Dir(path), err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return domain.NewConfigError("encode config", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return domain.NewConfigError("write config file", path, err)
	}
	return nil
}

var _ configports.Loader = (*FileLoader)(nil)

// EnsureFile writes the default configuration when no config file exists.
// It reports whether a file was created.
func (l *FileLoader) EnsureFile() (bool, error) {
	path := l.Path()
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, domain.NewConfigError("stat config file", path, err)
	}

	if err := l.Save(configdomain.Default()); err != nil {
		return false, err
	}
	return true, nil
}
