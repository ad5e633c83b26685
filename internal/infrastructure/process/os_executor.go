package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"vdpm.dev/cli/internal/core/domain/process"
	"vdpm.dev/cli/internal/core/ports"
)

// Executor implements ports.ProcessExecutor for interactive terminal programs
type Executor struct {
	env    []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewExecutor creates an executor that hands the parent's standard streams to the child
func NewExecutor() *Executor {
	return &Executor{
		env:    os.Environ(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// NewExecutorWithStreams creates an executor with custom streams, used in tests
func NewExecutorWithStreams(stdin io.Reader, stdout, stderr io.Writer) *Executor {
	return &Executor{
		env:    os.Environ(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// Execute starts a new process and returns a Process handle.
// The process is not bound to ctx: the editor owns the terminal and only
// its own exit ends the session.
func (e *Executor) Execute(ctx context.Context, cmd process.Command) (ports.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	execCmd := exec.Command(cmd.Executable(), cmd.Args()...)
	execCmd.Env = e.env
	execCmd.Stdin = e.stdin
	execCmd.Stdout = e.stdout
	execCmd.Stderr = e.stderr

	if err := execCmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Executable(), err)
	}

	p := &processImpl{
		cmd:  execCmd,
		done: make(chan struct{}),
	}

	go p.monitor()

	return p, nil
}

// processImpl implements the Process interface
type processImpl struct {
	cmd *exec.Cmd

	mu       sync.RWMutex
	exitCode int
	done     chan struct{}
}

func (p *processImpl) PID() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}

func (p *processImpl) Done() <-chan struct{} {
	return p.done
}

func (p *processImpl) Signal(signal process.ProcessSignal) error {
	if p.cmd == nil || p.cmd.Process == nil {
		return fmt.Errorf("process not running")
	}
	return p.cmd.Process.Signal(ConvertSignal(signal))
}

func (p *processImpl) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return fmt.Errorf("process not running")
	}
	return p.cmd.Process.Kill()
}

func (p *processImpl) ExitCode() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitCode
}

// ConvertSignal converts domain signal to OS signal
func ConvertSignal(signal process.ProcessSignal) os.Signal {
	switch signal {
	case process.SignalTerminate:
		return syscall.SIGTERM
	case process.SignalInterrupt:
		return syscall.SIGINT
	case process.SignalKill:
		return syscall.SIGKILL
	default:
		return syscall.SIGTERM
	}
}

func (p *processImpl) monitor() {
	err := p.cmd.Wait()

	p.mu.Lock()
	if exitError, ok := err.(*exec.ExitError); ok {
		p.exitCode = exitError.ExitCode()
	} else if err == nil {
		p.exitCode = 0
	} else {
		p.exitCode = -1
	}
	p.mu.Unlock()

	close(p.done)
}

var _ ports.ProcessExecutor = (*Executor)(nil)
