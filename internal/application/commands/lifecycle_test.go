package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	plugininfra "vdpm.dev/cli/internal/infrastructure/plugin"
)

func newMockExecutor() (*Executor, *MockDownloader, *MockInstaller, *MockStartupScript) {
	downloader := &MockDownloader{}
	installer := &MockInstaller{}
	script := &MockStartupScript{}
	return NewExecutor(downloader, installer, script, zerolog.Nop()), downloader, installer, script
}

func TestExecutor_Install(t *testing.T) {
	ctx := context.Background()

	t.Run("downloads_missing_plugin", func(t *testing.T) {
		executor, downloader, installer, script := newMockExecutor()
		installer.On("IsInstalled", ctx, "frequency").Return(false, nil)
		downloader.On("Download", ctx, "frequency").Return([]byte("code"), nil)
		installer.On("InstallPlugin", ctx, "frequency", []byte("code")).Return(nil)

		result, err := executor.Execute(ctx, plugindomain.Install(plugindomain.Plugin{Name: "frequency", Installed: true}))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, plugindomain.VerbInstall, result.Operation.Verb)

		downloader.AssertExpectations(t)
		installer.AssertExpectations(t)
		script.AssertNotCalled(t, "EnablePlugin", mock.Anything, mock.Anything)
	})

	t.Run("skips_download_when_present_and_enables", func(t *testing.T) {
		executor, downloader, installer, script := newMockExecutor()
		installer.On("IsInstalled", ctx, "frequency").Return(true, nil)
		script.On("EnablePlugin", ctx, "frequency").Return(nil)

		result, err := executor.Execute(ctx, plugindomain.Install(plugindomain.Plugin{Name: "frequency", Enabled: true, Installed: true}))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Contains(t, result.Message, "already present")

		downloader.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
		script.AssertExpectations(t)
	})

	t.Run("download_failure_is_returned_verbatim", func(t *testing.T) {
		executor, downloader, installer, _ := newMockExecutor()
		netErr := domain.NewNetworkError("download plugin", "http://x/p.py", errors.New("boom"))
		installer.On("IsInstalled", ctx, "p").Return(false, nil)
		downloader.On("Download", ctx, "p").Return(nil, netErr)

		result, err := executor.Execute(ctx, plugindomain.Install(plugindomain.Plugin{Name: "p"}))
		require.Error(t, err)
		assert.Same(t, netErr, err)
		assert.False(t, result.Success)
		installer.AssertNotCalled(t, "InstallPlugin", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExecutor_Uninstall_DisablesThenRemoves(t *testing.T) {
	ctx := context.Background()
	executor, _, installer, script := newMockExecutor()

	var order []string
	script.On("DisablePlugin", ctx, "p").Return(nil).Run(func(mock.Arguments) { order = append(order, "disable") })
	installer.On("UninstallPlugin", ctx, "p").Return(nil).Run(func(mock.Arguments) { order = append(order, "remove") })

	result, err := executor.Execute(ctx, plugindomain.Uninstall(plugindomain.Plugin{Name: "p", Enabled: true, Installed: true}))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"disable", "remove"}, order)
}

func TestExecutor_Enable(t *testing.T) {
	ctx := context.Background()

	t.Run("missing_file_is_not_found", func(t *testing.T) {
		executor, _, installer, script := newMockExecutor()
		installer.On("IsInstalled", ctx, "ghost").Return(false, nil)

		_, err := executor.Execute(ctx, plugindomain.Enable(plugindomain.Plugin{Name: "ghost"}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		script.AssertNotCalled(t, "EnablePlugin", mock.Anything, mock.Anything)
	})

	t.Run("writes_import_line", func(t *testing.T) {
		executor, _, installer, script := newMockExecutor()
		installer.On("IsInstalled", ctx, "p").Return(true, nil)
		script.On("EnablePlugin", ctx, "p").Return(nil)

		result, err := executor.Execute(ctx, plugindomain.Enable(plugindomain.Plugin{Name: "p", Installed: true}))
		require.NoError(t, err)
		assert.Equal(t, "Enabled plugin p", result.Message)
	})
}

func TestExecutor_Disable(t *testing.T) {
	ctx := context.Background()
	executor, _, _, script := newMockExecutor()
	script.On("DisablePlugin", ctx, "p").Return(nil)

	result, err := executor.Execute(ctx, plugindomain.Disable(plugindomain.Plugin{Name: "p", Enabled: true, Installed: true}))
	require.NoError(t, err)
	assert.True(t, result.Success)
	script.AssertExpectations(t)
}

func TestExecutor_UnknownVerb(t *testing.T) {
	executor, _, _, _ := newMockExecutor()

	result, err := executor.Execute(context.Background(), plugindomain.Operation{Verb: "upgrade", Plugin: plugindomain.Plugin{Name: "p"}})
	require.Error(t, err)
	assert.False(t, result.Success)
}

// TestExecutor_Idempotent_OnFilesystem runs every handler twice against real files
func TestExecutor_Idempotent_OnFilesystem(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	rcPath := filepath.Join(dir, ".visidatarc")
	installer := plugininfra.NewFileSystemPluginInstaller(filepath.Join(dir, "plugins"), "py", zerolog.Nop())
	script := plugininfra.NewRCStartupScript(rcPath)
	downloader := &MockDownloader{}
	downloader.On("Download", ctx, "p").Return([]byte("code"), nil).Once()

	executor := NewExecutor(downloader, installer, script, zerolog.Nop())
	plugin := plugindomain.Plugin{Name: "p", Enabled: true, Installed: true}

	for _, op := range []plugindomain.Operation{
		plugindomain.Install(plugin),
		plugindomain.Install(plugin),
		plugindomain.Disable(plugin),
		plugindomain.Disable(plugin),
		plugindomain.Enable(plugin),
		plugindomain.Enable(plugin),
	} {
		_, err := executor.Execute(ctx, op)
		require.NoError(t, err, op.String())
	}

	rc, err := os.ReadFile(rcPath)
	require.NoError(t, err)
	assert.Equal(t, "import plugins.p\n", string(rc))

	for i := 0; i < 2; i++ {
		_, err := executor.Execute(ctx, plugindomain.Uninstall(plugin))
		require.NoError(t, err)
	}

	installed, err := installer.IsInstalled(ctx, "p")
	require.NoError(t, err)
	assert.False(t, installed)
	names, err := script.EnabledPlugins(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	downloader.AssertExpectations(t)
}
