package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vdpm.dev/cli/internal/core/domain/process"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/ports"
)

// EditorKillGrace is how long the editor has to exit after SIGTERM before it is killed
const EditorKillGrace = 5 * time.Second

// SessionService runs an interactive session: the registry is written to
// disk, the editor is opened on it and every save is reconciled until the
// editor exits
type SessionService struct {
	plugins   *PluginService
	store     ports.PluginRegistryStore
	watcher   ports.RegistryWatcher
	executor  OperationExecutor
	processes ports.ProcessExecutor
	editor    string
	killGrace time.Duration
	root      zerolog.Logger
	logger    zerolog.Logger
}

// NewSessionService creates a session service
func NewSessionService(
	plugins *PluginService,
	store ports.PluginRegistryStore,
	watcher ports.RegistryWatcher,
	executor OperationExecutor,
	processes ports.ProcessExecutor,
	editor string,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		plugins:   plugins,
		store:     store,
		watcher:   watcher,
		executor:  executor,
		processes: processes,
		editor:    editor,
		killGrace: EditorKillGrace,
		root:      logger,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// Run executes one session and returns once the editor has exited and the
// watcher and dispatcher have stopped
func (s *SessionService) Run(ctx context.Context) error {
	registry, err := s.plugins.Generate(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate plugin registry: %w", err)
	}
	if err := s.store.Save(ctx, registry); err != nil {
		return fmt.Errorf("failed to write plugin registry: %w", err)
	}

	initial := plugindomain.NewSnapshot(registry)
	dispatcher := NewDispatcher(initial, s.executor, s.root)
	s.logger.Info().Stringer("snapshot", initial).Str("path", s.store.Path()).Msg("Session started")

	cmd, err := process.NewEditorCommand(s.editor, s.store.Path())
	if err != nil {
		return fmt.Errorf("invalid editor command: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	sessionCtx, cancel := context.WithCancel(groupCtx)
	defer cancel()

	group.Go(func() error {
		return s.watcher.Run(sessionCtx)
	})
	group.Go(func() error {
		return dispatcher.Run(sessionCtx, s.watcher.Snapshots())
	})

	select {
	case <-s.watcher.Ready():
	case <-sessionCtx.Done():
		cancel()
		return group.Wait()
	}

	proc, err := s.processes.Execute(ctx, cmd)
	if err != nil {
		cancel()
		_ = group.Wait()
		return fmt.Errorf("failed to launch editor: %w", err)
	}
	s.logger.Info().Str("command", cmd.String()).Int("pid", proc.PID()).Msg("Editor launched")

	group.Go(func() error {
		defer cancel()
		select {
		case <-proc.Done():
		case <-sessionCtx.Done():
			s.logger.Warn().Msg("Session ending, terminating editor")
			_ = proc.Signal(process.SignalTerminate)
			s.awaitEditor(proc)
		}
		s.logger.Info().Int("exit_code", proc.ExitCode()).Msg("Editor exited")
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	s.finalSync(ctx, dispatcher)
	return nil
}

// awaitEditor waits for a terminated editor, killing it once the grace period runs out
func (s *SessionService) awaitEditor(proc ports.Process) {
	grace := time.NewTimer(s.killGrace)
	defer grace.Stop()

	select {
	case <-proc.Done():
		return
	case <-grace.C:
	}

	s.logger.Warn().Dur("grace", s.killGrace).Int("pid", proc.PID()).Msg("Editor ignored SIGTERM, killing it")
	if err := proc.Kill(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to kill editor")
	}
	<-proc.Done()
}

// finalSync reconciles a save that landed after the watcher stopped
func (s *SessionService) finalSync(ctx context.Context, dispatcher *Dispatcher) {
	registry, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Skipping final sync, registry unreadable")
		return
	}

	if _, err := dispatcher.Process(ctx, plugindomain.NewSnapshot(registry)); err != nil {
		return
	}
	s.logger.Info().Stringer("snapshot", dispatcher.Last()).Msg("Session finished")
}
