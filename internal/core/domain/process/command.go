package process

import (
	"fmt"
	"strings"
)

// Command is the external editor invocation for an interactive session
type Command struct {
	executable string
	args       []string
}

// NewEditorCommand builds the command that opens registryPath in editor.
// editor may carry leading arguments, e.g. "vd --theme=light"; the registry
// path is always the last argument.
func NewEditorCommand(editor, registryPath string) (Command, error) {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("editor command cannot be empty")
	}
	if registryPath == "" {
		return Command{}, fmt.Errorf("registry path cannot be empty")
	}

	args := append([]string(nil), fields[1:]...)
	args = append(args, registryPath)

	return Command{
		executable: fields[0],
		args:       args,
	}, nil
}

// Executable returns the command executable
func (c Command) Executable() string {
	return c.executable
}

// Args returns a copy of the command arguments
func (c Command) Args() []string {
	return append([]string(nil), c.args...)
}

// String returns a string representation of the command
func (c Command) String() string {
	if len(c.args) == 0 {
		return c.executable
	}
	return fmt.Sprintf("%s %s", c.executable, strings.Join(c.args, " "))
}
