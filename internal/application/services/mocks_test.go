package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"
	"vdpm.dev/cli/internal/application/commands"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/domain/process"
	"vdpm.dev/cli/internal/core/ports"
)

type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, op plugindomain.Operation) (*commands.Result, error) {
	args := m.Called(ctx, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commands.Result), args.Error(1)
}

// succeed configures op to succeed
func (m *MockExecutor) succeed(op plugindomain.Operation) *mock.Call {
	return m.On("Execute", mock.Anything, op).Return(commands.NewSuccessResult(op, "ok"), nil)
}

// fail configures op to fail with err
func (m *MockExecutor) fail(op plugindomain.Operation, err error) *mock.Call {
	return m.On("Execute", mock.Anything, op).Return(commands.NewErrorResult(op, err), err)
}

// modelExecutor applies operations to an in-memory registry
type modelExecutor struct {
	mu    sync.Mutex
	state plugindomain.Registry
	calls []plugindomain.Operation
}

func (e *modelExecutor) Execute(ctx context.Context, op plugindomain.Operation) (*commands.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, op)
	e.state = plugindomain.Apply(e.state, []plugindomain.Operation{op})
	return commands.NewSuccessResult(op, "ok"), nil
}

func (e *modelExecutor) Calls() []plugindomain.Operation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]plugindomain.Operation(nil), e.calls...)
}

// memoryStore keeps the registry in memory
type memoryStore struct {
	mu       sync.Mutex
	path     string
	registry plugindomain.Registry
	saves    int
}

func (s *memoryStore) Path() string { return s.path }

func (s *memoryStore) Load(ctx context.Context) (plugindomain.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry, nil
}

func (s *memoryStore) Save(ctx context.Context, r plugindomain.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = r
	s.saves++
	return nil
}

// channelWatcher publishes whatever the test pushes
type channelWatcher struct {
	ready     chan struct{}
	snapshots chan plugindomain.Snapshot
	runErr    error
}

func newChannelWatcher() *channelWatcher {
	return &channelWatcher{
		ready:     make(chan struct{}),
		snapshots: make(chan plugindomain.Snapshot, 1),
	}
}

func (w *channelWatcher) Run(ctx context.Context) error {
	defer close(w.snapshots)
	if w.runErr != nil {
		return w.runErr
	}
	close(w.ready)
	<-ctx.Done()
	return nil
}

func (w *channelWatcher) Ready() <-chan struct{} { return w.ready }

func (w *channelWatcher) Snapshots() <-chan plugindomain.Snapshot { return w.snapshots }

// fakeProcess exits when the test closes done. With ignoreSignals set only
// Kill ends it.
type fakeProcess struct {
	done          chan struct{}
	once          sync.Once
	signals       chan process.ProcessSignal
	ignoreSignals bool
	killed        atomic.Bool
	exitCode      int
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{done: make(chan struct{}), signals: make(chan process.ProcessSignal, 4)}
}

func (p *fakeProcess) exit() { p.once.Do(func() { close(p.done) }) }

func (p *fakeProcess) PID() int              { return 4242 }
func (p *fakeProcess) ExitCode() int         { return p.exitCode }
func (p *fakeProcess) Done() <-chan struct{} { return p.done }

func (p *fakeProcess) Kill() error {
	p.killed.Store(true)
	p.exit()
	return nil
}

func (p *fakeProcess) Signal(signal process.ProcessSignal) error {
	p.signals <- signal
	if !p.ignoreSignals {
		p.exit()
	}
	return nil
}

type fakeProcessExecutor struct {
	proc     *fakeProcess
	err      error
	launched chan process.Command
}

func (e *fakeProcessExecutor) Execute(ctx context.Context, cmd process.Command) (ports.Process, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.launched <- cmd
	return e.proc, nil
}
