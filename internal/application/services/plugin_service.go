package services

import (
	"context"

	"github.com/rs/zerolog"

	"vdpm.dev/cli/internal/application/commands"
	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/ports"
)

// PluginService answers questions about the plugins on disk and runs
// one-off lifecycle operations
type PluginService struct {
	installer ports.PluginInstaller
	script    ports.StartupScript
	executor  OperationExecutor
	logger    zerolog.Logger
}

// NewPluginService creates a plugin service
func NewPluginService(installer ports.PluginInstaller, script ports.StartupScript, executor OperationExecutor, logger zerolog.Logger) *PluginService {
	return &PluginService{
		installer: installer,
		script:    script,
		executor:  executor,
		logger:    logger,
	}
}

// Generate builds the registry from disk: one installed row per plugin file,
// enabled when the startup script imports it. The startup script is created
// if it does not exist yet.
func (s *PluginService) Generate(ctx context.Context) (plugindomain.Registry, error) {
	if err := s.script.Ensure(ctx); err != nil {
		return plugindomain.Registry{}, err
	}

	installed, err := s.installer.InstalledPlugins(ctx)
	if err != nil {
		return plugindomain.Registry{}, err
	}

	enabledNames, err := s.script.EnabledPlugins(ctx)
	if err != nil {
		return plugindomain.Registry{}, err
	}
	enabled := make(map[string]bool, len(enabledNames))
	for _, name := range enabledNames {
		enabled[name] = true
	}

	plugins := make([]plugindomain.Plugin, 0, len(installed))
	for _, name := range installed {
		plugins = append(plugins, plugindomain.Plugin{
			Name:      name,
			Enabled:   enabled[name],
			Installed: true,
		})
	}

	registry := plugindomain.NewRegistry(plugins...)
	s.logger.Debug().Int("installed", registry.Len()).Int("enabled", len(enabledNames)).Msg("Registry generated")
	return registry, nil
}

// Run applies a single lifecycle action by name, outside of an interactive session
func (s *PluginService) Run(ctx context.Context, verb plugindomain.Verb, name string) (*commands.Result, error) {
	if err := plugindomain.ValidateName(name); err != nil {
		return nil, err
	}

	registry, err := s.Generate(ctx)
	if err != nil {
		return nil, err
	}
	current, exists := registry.Get(name)

	var op plugindomain.Operation
	switch verb {
	case plugindomain.VerbInstall:
		op = plugindomain.Install(plugindomain.Plugin{Name: name, Enabled: true, Installed: true})
	case plugindomain.VerbUninstall, plugindomain.VerbEnable, plugindomain.VerbDisable:
		if !exists {
			return nil, domain.NewNotFoundError(string(verb)+" plugin", name)
		}
		op = plugindomain.Operation{Verb: verb, Plugin: current}
	default:
		_, err := plugindomain.ParseVerb(string(verb))
		return nil, err
	}

	return s.executor.Execute(ctx, op)
}
