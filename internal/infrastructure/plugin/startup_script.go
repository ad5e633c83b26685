package plugininfra

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/ports"
)

// ImportPrefix starts every line that enables a plugin in the startup script
const ImportPrefix = "import plugins."

// ImportLine returns the startup script line that enables name
func ImportLine(name string) string {
	return ImportPrefix + name
}

// RCStartupScript edits VisiData's .visidatarc. Only lines of the exact form
// "import plugins.<name>" are recognised; everything else is preserved.
type RCStartupScript struct {
	path string
}

// NewRCStartupScript creates a startup script editor for path
func NewRCStartupScript(path string) *RCStartupScript {
	return &RCStartupScript{path: path}
}

// Path returns the startup script location
func (s *RCStartupScript) Path() string {
	return s.path
}

// Ensure creates an empty startup script if none exists
func (s *RCStartupScript) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return domain.NewFileAccessError("create startup script directory", filepath.Dir(s.path), err)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return domain.NewFileAccessError("create startup script", s.path, err)
	}
	return f.Close()
}

// EnabledPlugins returns the plugin names imported by the script, in file order
func (s *RCStartupScript) EnabledPlugins(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, domain.NewFileAccessError("read startup script", s.path, err)
	}

	var names []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		name, ok := importedPlugin(scanner.Text())
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewParseError("parse startup script", s.path, err)
	}

	return names, nil
}

// EnablePlugin appends the import line for name unless it is already present
func (s *RCStartupScript) EnablePlugin(ctx context.Context, name string) error {
	if err := plugindomain.ValidateName(name); err != nil {
		return err
	}

	lines, err := s.readLines()
	if err != nil {
		return err
	}

	for _, line := range lines {
		if imported, ok := importedPlugin(line); ok && imported == name {
			return nil
		}
	}

	return s.writeLines(append(lines, ImportLine(name)))
}

// DisablePlugin removes every import line for name
func (s *RCStartupScript) DisablePlugin(ctx context.Context, name string) error {
	lines, err := s.readLines()
	if err != nil {
		return err
	}

	kept := lines[:0:0]
	for _, line := range lines {
		if imported, ok := importedPlugin(line); ok && imported == name {
			continue
		}
		kept = append(kept, line)
	}

	if len(kept) == len(lines) {
		return nil
	}
	return s.writeLines(kept)
}

func importedPlugin(line string) (string, bool) {
	line = strings.TrimRight(line, " \t\r")
	name, ok := strings.CutPrefix(line, ImportPrefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func (s *RCStartupScript) readLines() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.NewFileAccessError("read startup script", s.path, err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (s *RCStartupScript) writeLines(lines []string) error {
	mode := fs.FileMode(0644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, []byte(content), mode); err != nil {
		return domain.NewFileAccessError("write startup script", tempFile, err)
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		os.Remove(tempFile)
		return domain.NewFileAccessError("save startup script", s.path, err)
	}
	return nil
}

var _ ports.StartupScript = (*RCStartupScript)(nil)
