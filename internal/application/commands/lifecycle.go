package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/ports"
)

// Executor runs lifecycle operations against the plugin directory and the
// startup script. Every handler is idempotent so a batch that failed half
// way can be replayed in full.
type Executor struct {
	downloader ports.PluginDownloader
	installer  ports.PluginInstaller
	script     ports.StartupScript
	logger     zerolog.Logger
}

// NewExecutor creates an executor over the given collaborators
func NewExecutor(downloader ports.PluginDownloader, installer ports.PluginInstaller, script ports.StartupScript, logger zerolog.Logger) *Executor {
	return &Executor{
		downloader: downloader,
		installer:  installer,
		script:     script,
		logger:     logger.With().Str("component", "executor").Logger(),
	}
}

// Execute dispatches op to its handler. A failed operation returns both a
// failed Result and the handler's error unchanged.
func (e *Executor) Execute(ctx context.Context, op plugindomain.Operation) (*Result, error) {
	start := time.Now()

	var (
		message string
		err     error
	)
	switch op.Verb {
	case plugindomain.VerbInstall:
		message, err = e.install(ctx, op.Plugin)
	case plugindomain.VerbUninstall:
		message, err = e.uninstall(ctx, op.Name())
	case plugindomain.VerbEnable:
		message, err = e.enable(ctx, op.Name())
	case plugindomain.VerbDisable:
		message, err = e.disable(ctx, op.Name())
	default:
		err = fmt.Errorf("unknown plugin action: %q", op.Verb)
	}

	var result *Result
	if err != nil {
		result = NewErrorResult(op, err)
	} else {
		result = NewSuccessResult(op, message)
	}
	result.Duration = time.Since(start)

	event := e.logger.Info()
	if err != nil {
		event = e.logger.Error().Err(err)
	}
	event.Stringer("operation", op).Dur("duration", result.Duration).Msg(result.Message)

	return result, err
}

func (e *Executor) install(ctx context.Context, p plugindomain.Plugin) (string, error) {
	installed, err := e.installer.IsInstalled(ctx, p.Name)
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Plugin %s already present", p.Name)
	if !installed {
		data, err := e.downloader.Download(ctx, p.Name)
		if err != nil {
			return "", err
		}
		if err := e.installer.InstallPlugin(ctx, p.Name, data); err != nil {
			return "", err
		}
		message = fmt.Sprintf("Installed plugin %s (%d bytes)", p.Name, len(data))
	}

	if p.Enabled {
		if err := e.script.EnablePlugin(ctx, p.Name); err != nil {
			return "", err
		}
		message += " and enabled it"
	}

	return message, nil
}

func (e *Executor) uninstall(ctx context.Context, name string) (string, error) {
	if err := e.script.DisablePlugin(ctx, name); err != nil {
		return "", err
	}
	if err := e.installer.UninstallPlugin(ctx, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Uninstalled plugin %s", name), nil
}

func (e *Executor) enable(ctx context.Context, name string) (string, error) {
	installed, err := e.installer.IsInstalled(ctx, name)
	if err != nil {
		return "", err
	}
	if !installed {
		return "", domain.NewNotFoundError("enable plugin", name)
	}

	if err := e.script.EnablePlugin(ctx, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Enabled plugin %s", name), nil
}

func (e *Executor) disable(ctx context.Context, name string) (string, error) {
	if err := e.script.DisablePlugin(ctx, name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Disabled plugin %s", name), nil
}
