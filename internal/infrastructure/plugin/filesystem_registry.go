package plugininfra

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/ports"
)

// Registry file columns
const (
	ColumnName      = "name"
	ColumnEnabled   = "enabled"
	ColumnInstalled = "installed"
)

// FileSystemRegistry persists the plugin registry as a CSV file that the
// interactive editor opens and rewrites
type FileSystemRegistry struct {
	filePath string
}

// NewFileSystemRegistry creates a registry store for filePath
func NewFileSystemRegistry(filePath string) *FileSystemRegistry {
	return &FileSystemRegistry{filePath: filePath}
}

// Path returns the registry file location
func (r *FileSystemRegistry) Path() string {
	return r.filePath
}

// Load reads and parses the registry file
func (r *FileSystemRegistry) Load(ctx context.Context) (plugindomain.Registry, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return plugindomain.Registry{}, domain.NewFileAccessError("read registry file", r.filePath, err)
	}

	registry, err := ParseRegistry(bytes.NewReader(data))
	if err != nil {
		return plugindomain.Registry{}, domain.NewParseError("parse registry file", r.filePath, err)
	}

	return registry, nil
}

// Save writes the registry atomically: the editor never sees a half-written file
func (r *FileSystemRegistry) Save(ctx context.Context, registry plugindomain.Registry) error {
	dir := filepath.Dir(r.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.NewFileAccessError("create registry directory", dir, err)
	}

	var buf bytes.Buffer
	if err := WriteRegistry(&buf, registry); err != nil {
		return domain.NewFileAccessError("encode registry", r.filePath, err)
	}

	tempFile := r.filePath + ".tmp"
	if err := os.WriteFile(tempFile, buf.Bytes(), 0644); err != nil {
		return domain.NewFileAccessError("write registry file", tempFile, err)
	}

	if err := os.Rename(tempFile, r.filePath); err != nil {
		os.Remove(tempFile)
		return domain.NewFileAccessError("save registry file", r.filePath, err)
	}

	return nil
}

// WriteRegistry encodes registry as CSV with a header row, plugins in name order
func WriteRegistry(w io.Writer, registry plugindomain.Registry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnName, ColumnEnabled, ColumnInstalled}); err != nil {
		return err
	}
	for _, p := range registry.Plugins() {
		row := []string{p.Name, strconv.FormatBool(p.Enabled), strconv.FormatBool(p.Installed)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseRegistry decodes a registry CSV. Columns are located by header name
// and may appear in any order; unknown columns are ignored. Rows whose name
// cell is empty are skipped, which tolerates a row the user is still typing.
func ParseRegistry(rd io.Reader) (plugindomain.Registry, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return plugindomain.Registry{}, fmt.Errorf("missing header row")
		}
		return plugindomain.Registry{}, err
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		columns[key] = i
	}
	for _, required := range []string{ColumnName, ColumnEnabled, ColumnInstalled} {
		if _, ok := columns[required]; !ok {
			return plugindomain.Registry{}, fmt.Errorf("missing %q column", required)
		}
	}

	var plugins []plugindomain.Plugin
	seen := make(map[string]bool)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return plugindomain.Registry{}, err
		}
		line, _ := cr.FieldPos(0)

		cell := func(column string) string {
			i := columns[column]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := cell(ColumnName)
		if name == "" {
			continue
		}
		if err := plugindomain.ValidateName(name); err != nil {
			return plugindomain.Registry{}, fmt.Errorf("line %d: %w", line, err)
		}
		if seen[name] {
			return plugindomain.Registry{}, fmt.Errorf("line %d: duplicate plugin %q", line, name)
		}

		enabled, err := ParseBool(cell(ColumnEnabled))
		if err != nil {
			return plugindomain.Registry{}, fmt.Errorf("line %d: %s: %w", line, ColumnEnabled, err)
		}
		installed, err := ParseBool(cell(ColumnInstalled))
		if err != nil {
			return plugindomain.Registry{}, fmt.Errorf("line %d: %s: %w", line, ColumnInstalled, err)
		}

		seen[name] = true
		plugins = append(plugins, plugindomain.Plugin{Name: name, Enabled: enabled, Installed: installed})
	}

	return plugindomain.NewRegistry(plugins...), nil
}

// ParseBool accepts the spellings a human is likely to type in a spreadsheet cell.
// An empty cell is false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1", "on":
		return true, nil
	case "false", "f", "no", "n", "0", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

var _ ports.PluginRegistryStore = (*FileSystemRegistry)(nil)
