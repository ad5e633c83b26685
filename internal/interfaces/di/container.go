package di

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"vdpm.dev/cli/internal/application/commands"
	"vdpm.dev/cli/internal/application/services"
	configdomain "vdpm.dev/cli/internal/core/domain/config"
	configinfra "vdpm.dev/cli/internal/infrastructure/config"
	"vdpm.dev/cli/internal/infrastructure/logging"
	"vdpm.dev/cli/internal/infrastructure/monitoring"
	plugininfra "vdpm.dev/cli/internal/infrastructure/plugin"
	"vdpm.dev/cli/internal/infrastructure/plugins/provisioning"
	"vdpm.dev/cli/internal/infrastructure/process"
)

// Options are the command line settings that shape the container
type Options struct {
	ConfigPath string
	Debug      bool
	DebugTTY   string
}

// Container holds all application dependencies
type Container struct {
	// Configuration
	Config     *configdomain.Config
	ConfigFile string

	// Infrastructure
	RegistryStore *plugininfra.FileSystemRegistry
	Installer     *plugininfra.FileSystemPluginInstaller
	StartupScript *plugininfra.RCStartupScript
	Downloader    *provisioning.HTTPPluginDownloader

	// Application services
	Executor       *commands.Executor
	PluginService  *services.PluginService
	SessionService *services.SessionService

	// Logger writes to the per-run log file
	Logger zerolog.Logger

	logCloser io.Closer
}

// NewContainer loads configuration, opens the log file and wires every component
func NewContainer(ctx context.Context, opts Options) (*Container, error) {
	fileLoader := configinfra.NewFileLoader(opts.ConfigPath)
	created, err := fileLoader.EnsureFile()
	if err != nil {
		return nil, err
	}

	loader := configinfra.NewUnifiedLoaderWith(configinfra.NewConfigValidator(), fileLoader, configinfra.NewEnvLoader())
	cfg, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Options{
		Dir:      cfg.LogsDir,
		Level:    cfg.LogLevel,
		Debug:    opts.Debug,
		DebugTTY: opts.DebugTTY,
	})
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:     cfg,
		ConfigFile: fileLoader.Path(),
		Logger:     logger,
		logCloser:  closer,
	}
	c.initializeComponents()

	event := c.Logger.Info().Str("config", c.ConfigFile)
	if created {
		event = event.Bool("created", true)
	}
	event.Msg("Configuration loaded")

	return c, nil
}

// initializeComponents wires infrastructure into the application services
func (c *Container) initializeComponents() {
	cfg := c.Config

	c.RegistryStore = plugininfra.NewFileSystemRegistry(cfg.RegistryPath())
	c.Installer = plugininfra.NewFileSystemPluginInstaller(cfg.PluginDir, cfg.PluginExtension, c.Logger)
	c.StartupScript = plugininfra.NewRCStartupScript(cfg.RCFile)
	c.Downloader = provisioning.NewHTTPPluginDownloader(provisioning.DownloaderConfig{
		BaseURL:    cfg.Download.BaseURL,
		Extension:  cfg.PluginExtension,
		Timeout:    cfg.Download.Timeout.Std(),
		MaxRetries: cfg.Download.MaxRetries,
	}, c.Logger)

	c.Executor = commands.NewExecutor(c.Downloader, c.Installer, c.StartupScript, c.Logger)
	c.PluginService = services.NewPluginService(c.Installer, c.StartupScript, c.Executor, c.Logger)

	watcher := monitoring.NewRegistryWatcher(c.RegistryStore, cfg.Watch.Debounce.Std(), c.Logger)
	c.SessionService = services.NewSessionService(
		c.PluginService,
		c.RegistryStore,
		watcher,
		c.Executor,
		process.NewExecutor(),
		cfg.Editor,
		c.Logger,
	)
}

// Shutdown flushes and closes the log file
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.Debug().Msg("Shutting down")
	if c.logCloser == nil {
		return nil
	}
	return c.logCloser.Close()
}
