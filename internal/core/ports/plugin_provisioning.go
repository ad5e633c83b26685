package ports

import (
	"context"

	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
)

// PluginDownloader fetches raw plugin content from a remote source
type PluginDownloader interface {
	// Download returns the plugin source for name
	Download(ctx context.Context, name string) ([]byte, error)
}

// PluginInstaller manages plugin files in the plugin directory
type PluginInstaller interface {
	// InstallPlugin writes the plugin file for name
	InstallPlugin(ctx context.Context, name string, data []byte) error

	// UninstallPlugin removes the plugin file for name. A missing file is not an error.
	UninstallPlugin(ctx context.Context, name string) error

	// IsInstalled reports whether the plugin file for name exists
	IsInstalled(ctx context.Context, name string) (bool, error)

	// InstalledPlugins returns the names of all installed plugins
	InstalledPlugins(ctx context.Context) ([]string, error)
}

// StartupScript reads and edits the editor's load-time script
type StartupScript interface {
	// Ensure creates the script if it does not exist
	Ensure(ctx context.Context) error

	// EnabledPlugins returns the names imported by the script
	EnabledPlugins(ctx context.Context) ([]string, error)

	// EnablePlugin adds the import line for name if absent
	EnablePlugin(ctx context.Context, name string) error

	// DisablePlugin removes every import line for name
	DisablePlugin(ctx context.Context, name string) error
}

// PluginRegistryStore persists a registry to the file shared with the editor
type PluginRegistryStore interface {
	// Path returns the registry file location
	Path() string

	// Load parses the registry file
	Load(ctx context.Context) (plugindomain.Registry, error)

	// Save replaces the registry file with r
	Save(ctx context.Context, r plugindomain.Registry) error
}

// RegistryWatcher observes the registry file and publishes a snapshot per edit
type RegistryWatcher interface {
	// Run watches until ctx is cancelled, then closes the snapshot channel
	Run(ctx context.Context) error

	// Ready is closed once edits are being observed
	Ready() <-chan struct{}

	// Snapshots returns the channel snapshots are published on
	Snapshots() <-chan plugindomain.Snapshot
}
