package plugininfra

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/ports"
)

// FileSystemPluginInstaller keeps one source file per plugin in the plugin directory
type FileSystemPluginInstaller struct {
	pluginDir string
	extension string
	logger    zerolog.Logger
}

// NewFileSystemPluginInstaller creates an installer for files named <name>.<extension> in pluginDir
func NewFileSystemPluginInstaller(pluginDir, extension string, logger zerolog.Logger) *FileSystemPluginInstaller {
	return &FileSystemPluginInstaller{
		pluginDir: pluginDir,
		extension: strings.TrimPrefix(extension, "."),
		logger:    logger.With().Str("component", "installer").Logger(),
	}
}

// PluginPath returns the file path for name
func (i *FileSystemPluginInstaller) PluginPath(name string) string {
	return filepath.Join(i.pluginDir, name+"."+i.extension)
}

// InstallPlugin writes data as the plugin file for name, replacing any previous content
func (i *FileSystemPluginInstaller) InstallPlugin(ctx context.Context, name string, data []byte) error {
	if err := plugindomain.ValidateName(name); err != nil {
		return err
	}

	if err := os.MkdirAll(i.pluginDir, 0755); err != nil {
		return domain.NewFileAccessError("create plugin directory", i.pluginDir, err)
	}

	target := i.PluginPath(name)
	tempFile := target + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return domain.NewFileAccessError("write plugin file", tempFile, err)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile)
		return domain.NewFileAccessError("install plugin file", target, err)
	}

	return nil
}

// UninstallPlugin removes the plugin file for name
func (i *FileSystemPluginInstaller) UninstallPlugin(ctx context.Context, name string) error {
	if err := plugindomain.ValidateName(name); err != nil {
		return err
	}

	target := i.PluginPath(name)
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.NewFileAccessError("remove plugin file", target, err)
	}
	return nil
}

// IsInstalled reports whether the plugin file for name exists
func (i *FileSystemPluginInstaller) IsInstalled(ctx context.Context, name string) (bool, error) {
	info, err := os.Stat(i.PluginPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, domain.NewFileAccessError("stat plugin file", i.PluginPath(name), err)
	}
	return info.Mode().IsRegular(), nil
}

// InstalledPlugins lists the stems of every plugin file, sorted. A missing
// plugin directory means nothing is installed. Package files such as
// __init__ and stems that are not valid plugin names are left out, so every
// listed name can be written to and read back from the registry file.
func (i *FileSystemPluginInstaller) InstalledPlugins(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(i.pluginDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.NewFileAccessError("scan plugin directory", i.pluginDir, err)
	}

	suffix := "." + i.extension
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem, ok := strings.CutSuffix(entry.Name(), suffix)
		if !ok || stem == "" || plugindomain.IsReservedName(stem) {
			continue
		}
		if err := plugindomain.ValidateName(stem); err != nil {
			i.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Ignoring plugin file")
			continue
		}
		names = append(names, stem)
	}

	sort.Strings(names)
	return names, nil
}

var _ ports.PluginInstaller = (*FileSystemPluginInstaller)(nil)
