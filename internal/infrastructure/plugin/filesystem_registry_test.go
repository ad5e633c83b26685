package plugininfra

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
)

func TestFileSystemRegistry_SaveAndLoad(t *testing.T) {
	store := NewFileSystemRegistry(filepath.Join(t.TempDir(), "nested", "plugins.csv"))
	registry := plugindomain.NewRegistry(
		plugindomain.Plugin{Name: "frequency", Enabled: true, Installed: true},
		plugindomain.Plugin{Name: "vdplus", Installed: true},
	)

	require.NoError(t, store.Save(context.Background(), registry))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "name,enabled,installed\nfrequency,true,true\nvdplus,false,true\n", string(data))

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, registry.Plugins(), loaded.Plugins())
}

func TestFileSystemRegistry_Load_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSystemRegistry(filepath.Join(dir, "missing.csv")).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFileAccess))

	path := filepath.Join(dir, "broken.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,enabled\nx,true\n"), 0644))
	_, err = NewFileSystemRegistry(path).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
	assert.Contains(t, err.Error(), `"installed"`)
}

func TestParseRegistry(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []plugindomain.Plugin
		wantErr string
	}{
		{
			name:  "columns_in_any_order",
			input: "installed,name,enabled\ntrue,a,false\n",
			want:  []plugindomain.Plugin{{Name: "a", Installed: true}},
		},
		{
			name:  "byte_order_mark_and_case",
			input: "\ufeffName,ENABLED,Installed\na,yes,1\n",
			want:  []plugindomain.Plugin{{Name: "a", Enabled: true, Installed: true}},
		},
		{
			name:  "extra_columns_and_blank_rows",
			input: "name,enabled,installed,notes\na,true,true,keep me\n,,,\nb,,\n",
			want: []plugindomain.Plugin{
				{Name: "a", Enabled: true, Installed: true},
				{Name: "b"},
			},
		},
		{
			name:  "short_row",
			input: "name,enabled,installed\nc\n",
			want:  []plugindomain.Plugin{{Name: "c"}},
		},
		{
			name:  "header_only",
			input: "name,enabled,installed\n",
			want:  nil,
		},
		{name: "empty", input: "", wantErr: "missing header row"},
		{name: "duplicate", input: "name,enabled,installed\na,true,true\na,false,true\n", wantErr: "line 3: duplicate plugin"},
		{name: "bad_bool", input: "name,enabled,installed\na,maybe,true\n", wantErr: "line 2: enabled"},
		{name: "bad_name", input: "name,enabled,installed\n../x,true,true\n", wantErr: "invalid plugin name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegistry(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, plugindomain.NewRegistry(tt.want...).Plugins(), got.Plugins())
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", " t ", "yes", "Y", "1", "on"} {
		v, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "F", "no", "n", "0", "off", ""} {
		v, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBool("2")
	assert.Error(t, err)
}

// TestRegistryCSV_PropertyBased_RoundTrip tests that every registry survives the file format
func TestRegistryCSV_PropertyBased_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		plugins := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) plugindomain.Plugin {
			return plugindomain.Plugin{
				Name:      rapid.StringMatching(`[A-Za-z0-9_][A-Za-z0-9_-]{0,8}`).Draw(t, "name"),
				Enabled:   rapid.Bool().Draw(t, "enabled"),
				Installed: rapid.Bool().Draw(t, "installed"),
			}
		}), 0, 10).Draw(t, "plugins")
		registry := plugindomain.NewRegistry(plugins...)

		var buf bytes.Buffer
		require.NoError(t, WriteRegistry(&buf, registry))

		parsed, err := ParseRegistry(&buf)
		require.NoError(t, err)
		assert.Equal(t, plugindomain.ComputeFingerprint(registry), plugindomain.ComputeFingerprint(parsed))
	})
}
