package ports

import (
	"context"

	"vdpm.dev/cli/internal/core/domain/process"
)

// ProcessExecutor starts the external editor attached to the terminal
type ProcessExecutor interface {
	// Execute starts cmd with the parent's standard streams and returns a handle
	Execute(ctx context.Context, cmd process.Command) (Process, error)
}

// Process represents the running editor process
type Process interface {
	// PID returns the process ID
	PID() int

	// Signal sends a signal to the process
	Signal(signal process.ProcessSignal) error

	// Kill forcefully terminates the process
	Kill() error

	// ExitCode returns the exit code if the process has finished
	ExitCode() int

	// Done is closed once the process has exited
	Done() <-chan struct{}
}
