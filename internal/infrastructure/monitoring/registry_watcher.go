package monitoring

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"vdpm.dev/cli/internal/core/domain"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/core/ports"
)

// RegistryWatcher turns edits of the registry file into snapshots.
//
// The parent directory is watched rather than the file itself so that
// editors which save by writing a new file and renaming it over the old one
// keep being observed. Snapshots are published on a single-slot channel:
// when the consumer is busy a pending snapshot is replaced by the newer one.
type RegistryWatcher struct {
	store    ports.PluginRegistryStore
	path     string
	debounce time.Duration
	logger   zerolog.Logger

	snapshots chan plugindomain.Snapshot
	ready     chan struct{}
}

// NewRegistryWatcher creates a watcher for the file behind store
func NewRegistryWatcher(store ports.PluginRegistryStore, debounce time.Duration, logger zerolog.Logger) *RegistryWatcher {
	return &RegistryWatcher{
		store:     store,
		path:      filepath.Clean(store.Path()),
		debounce:  debounce,
		logger:    logger.With().Str("component", "watcher").Logger(),
		snapshots: make(chan plugindomain.Snapshot, 1),
		ready:     make(chan struct{}),
	}
}

// Snapshots returns the channel snapshots are published on. It is closed when Run returns.
func (w *RegistryWatcher) Snapshots() <-chan plugindomain.Snapshot {
	return w.snapshots
}

// Ready is closed once the directory watch is in place
func (w *RegistryWatcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches the registry file until ctx is cancelled
func (w *RegistryWatcher) Run(ctx context.Context) error {
	defer close(w.snapshots)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return domain.NewFileAccessError("create file watcher", w.path, err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return domain.NewFileAccessError("watch registry directory", dir, err)
	}
	close(w.ready)

	w.logger.Info().Str("path", w.path).Dur("debounce", w.debounce).Msg("Watching plugin registry")

	// timerC is nil while no reload is pending
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("Registry watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return domain.NewChannelError("receive file events", errors.New("event channel closed"))
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug().Str("event", event.Op.String()).Msg("Registry file changed")

			if w.debounce <= 0 {
				w.reload(ctx)
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return domain.NewChannelError("receive file watcher errors", errors.New("error channel closed"))
			}
			w.logger.Error().Err(err).Msg("File watcher error")
		}
	}
}

func (w *RegistryWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *RegistryWatcher) reload(ctx context.Context) {
	registry, err := w.store.Load(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Ignoring unreadable registry file")
		return
	}

	snapshot := plugindomain.NewSnapshot(registry)
	w.publish(snapshot)
}

// publish never blocks: a snapshot still waiting in the slot is stale and
// gets replaced. Run is the only sender.
func (w *RegistryWatcher) publish(snapshot plugindomain.Snapshot) {
	for {
		select {
		case w.snapshots <- snapshot:
			w.logger.Debug().Stringer("snapshot", snapshot).Msg("Snapshot published")
			return
		default:
		}

		select {
		case stale := <-w.snapshots:
			w.logger.Debug().Stringer("snapshot", stale).Msg("Replacing unprocessed snapshot")
		default:
		}
	}
}
