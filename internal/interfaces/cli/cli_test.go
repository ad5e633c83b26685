package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
)

type cliFixture struct {
	root       string
	configPath string
	pluginDir  string
	rcFile     string
}

func newCLIFixture(t *testing.T, baseURL string) cliFixture {
	t.Helper()
	root := t.TempDir()
	f := cliFixture{
		root:       root,
		configPath: filepath.Join(root, "config.toml"),
		pluginDir:  filepath.Join(root, "plugins"),
		rcFile:     filepath.Join(root, ".visidatarc"),
	}

	content := "plugin_dir = '" + f.pluginDir + "'\n" +
		"rc_file = '" + f.rcFile + "'\n" +
		"config_dir = '" + filepath.Join(root, "vdpm") + "'\n" +
		"logs_dir = '" + filepath.Join(root, "logs") + "'\n"
	if baseURL != "" {
		content += "[download]\nbase_url = '" + baseURL + "'\nmax_retries = 0\n"
	}
	require.NoError(t, os.WriteFile(f.configPath, []byte(content), 0644))
	require.NoError(t, os.MkdirAll(f.pluginDir, 0755))
	return f
}

func (f cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", f.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	f := newCLIFixture(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(f.pluginDir, "frequency.py"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(f.pluginDir, "vdplus.py"), nil, 0644))
	require.NoError(t, os.WriteFile(f.rcFile, []byte("import plugins.vdplus\n"), 0644))

	out, err := f.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "frequency")
	assert.Contains(t, out, "vdplus")
}

func TestListCommand_Empty(t *testing.T) {
	f := newCLIFixture(t, "")

	out, err := f.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No plugins installed.")
}

func TestLifecycleCommands(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/frequency.py" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("# frequency plugin\n"))
	}))
	defer server.Close()
	f := newCLIFixture(t, server.URL)

	out, err := f.run(t, "install", "frequency")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed plugin frequency")

	data, err := os.ReadFile(filepath.Join(f.pluginDir, "frequency.py"))
	require.NoError(t, err)
	assert.Equal(t, "# frequency plugin\n", string(data))
	rc, err := os.ReadFile(f.rcFile)
	require.NoError(t, err)
	assert.Equal(t, "import plugins.frequency\n", string(rc))

	_, err = f.run(t, "disable", "frequency")
	require.NoError(t, err)
	rc, err = os.ReadFile(f.rcFile)
	require.NoError(t, err)
	assert.Empty(t, string(rc))

	_, err = f.run(t, "enable", "frequency")
	require.NoError(t, err)

	_, err = f.run(t, "uninstall", "frequency")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.pluginDir, "frequency.py"))
	assert.True(t, os.IsNotExist(err))

	_, err = f.run(t, "install", "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network error")

	_, err = f.run(t, "enable", "frequency")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLifecycleCommands_RequireName(t *testing.T) {
	f := newCLIFixture(t, "")

	_, err := f.run(t, "install")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	f := newCLIFixture(t, "")

	out, err := f.run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, f.configPath)
	assert.Contains(t, out, f.pluginDir)
	assert.Contains(t, out, "editor = ")
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "vdpm version "+Version)
}

func TestRenderPluginTable(t *testing.T) {
	table := renderPluginTable(plugindomain.NewRegistry(
		plugindomain.Plugin{Name: "a-very-long-plugin", Enabled: true, Installed: true},
		plugindomain.Plugin{Name: "b", Installed: true},
	))

	assert.Contains(t, table, "a-very-long-plugin")
	assert.Contains(t, table, "yes")
	assert.Contains(t, table, "no")
	assert.Less(t, bytes.Index([]byte(table), []byte("a-very-long-plugin")), bytes.Index([]byte(table), []byte("b ")))
}
