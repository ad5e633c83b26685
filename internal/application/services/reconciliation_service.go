package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vdpm.dev/cli/internal/application/commands"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
)

// OperationExecutor runs a single lifecycle operation
type OperationExecutor interface {
	Execute(ctx context.Context, op plugindomain.Operation) (*commands.Result, error)
}

// BatchResult describes what one snapshot caused
type BatchResult struct {
	ID         string
	Snapshot   plugindomain.Snapshot
	Operations []plugindomain.Operation
	Results    []*commands.Result
	// Skipped is set when the snapshot matched the last applied one.
	Skipped bool
	Elapsed time.Duration
}

// Dispatcher reconciles plugin state with incoming registry snapshots.
//
// The dispatcher owns the last fully applied snapshot. A batch that fails
// part way leaves it untouched, so the next snapshot is diffed against the
// same baseline and the already applied operations are replayed. Handlers
// are idempotent, which makes the replay safe.
type Dispatcher struct {
	executor OperationExecutor
	logger   zerolog.Logger
	last     plugindomain.Snapshot
}

// NewDispatcher creates a dispatcher whose baseline is initial
func NewDispatcher(initial plugindomain.Snapshot, executor OperationExecutor, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		executor: executor,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
		last:     initial,
	}
}

// Last returns the last fully applied snapshot. Not safe to call while Run is active.
func (d *Dispatcher) Last() plugindomain.Snapshot {
	return d.last
}

// Run processes snapshots until the channel is closed or ctx is done. An
// in-flight batch always runs to completion.
func (d *Dispatcher) Run(ctx context.Context, snapshots <-chan plugindomain.Snapshot) error {
	d.logger.Info().Stringer("baseline", d.last).Msg("Dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug().Msg("Dispatcher stopped")
			return nil
		case snapshot, ok := <-snapshots:
			if !ok {
				d.logger.Debug().Msg("Snapshot channel closed")
				return nil
			}
			// failures are logged by Process and retried on the next snapshot
			_, _ = d.Process(ctx, snapshot)
		}
	}
}

// Process applies one snapshot. Operations run in order and the batch stops
// at the first failure, whose error is returned.
func (d *Dispatcher) Process(ctx context.Context, snapshot plugindomain.Snapshot) (*BatchResult, error) {
	batch := &BatchResult{
		ID:       uuid.NewString(),
		Snapshot: snapshot,
	}
	logger := d.logger.With().Str("batch_id", batch.ID).Logger()

	if snapshot.SameContent(d.last) {
		batch.Skipped = true
		logger.Debug().Stringer("snapshot", snapshot).Msg("Snapshot unchanged, skipping")
		return batch, nil
	}

	batch.Operations = plugindomain.Diff(d.last.Registry, snapshot.Registry)
	logger.Info().
		Stringer("from", d.last).
		Stringer("to", snapshot).
		Int("operations", len(batch.Operations)).
		Dur("snapshot_age", time.Since(snapshot.TakenAt)).
		Msg("Applying registry change")

	start := time.Now()
	runCtx := context.WithoutCancel(ctx)
	for i, op := range batch.Operations {
		result, err := d.executor.Execute(runCtx, op)
		if result != nil {
			batch.Results = append(batch.Results, result)
		}
		if err != nil {
			batch.Elapsed = time.Since(start)
			logger.Error().
				Err(err).
				Stringer("operation", op).
				Int("completed", i).
				Int("remaining", len(batch.Operations)-i-1).
				Msg("Batch aborted, keeping previous state")
			return batch, err
		}
	}
	batch.Elapsed = time.Since(start)

	d.last = snapshot
	logger.Info().Dur("elapsed", batch.Elapsed).Stringer("state", snapshot).Msg("Batch applied")
	return batch, nil
}
