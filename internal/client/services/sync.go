package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/offsync/internal/client/repositories/records"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/metrics"
	"github.com/dmitrijs2005/offsync/internal/timex"
)

// RecordPusher is the record half of the remote store client. UpsertRecord
// must be idempotent on id.
type RecordPusher interface {
	UpsertRecord(ctx context.Context, id string, fields map[string]string) error
}

// Report summarizes one reconciliation cycle.
type Report struct {
	// Attempted counts upserts sent, including a failed one.
	Attempted int
	// Pushed counts records acknowledged remotely and marked locally.
	Pushed int
	// Remaining counts snapshot records still unsynchronized when the cycle ended.
	Remaining int
}

// SyncEngine pushes unsynchronized local records to the remote store and
// marks each one synchronized only after the remote acknowledged it. A cycle
// never overlaps with another one; a crash between acknowledgement and
// marking only causes a repeated, idempotent upsert on the next cycle.
type SyncEngine struct {
	records       records.Repository
	meta          metadata.Repository
	remote        RecordPusher
	online        OnlineChecker
	metrics       metrics.SyncRecorder
	log           logging.Logger
	clock         timex.Clock
	remoteTimeout time.Duration

	running atomic.Bool
	trigger chan struct{}
}

type SyncOption func(*SyncEngine)

func WithSyncMetrics(m metrics.SyncRecorder) SyncOption {
	return func(e *SyncEngine) { e.metrics = m }
}

func WithSyncLogger(l logging.Logger) SyncOption {
	return func(e *SyncEngine) { e.log = l }
}

func WithSyncClock(c timex.Clock) SyncOption {
	return func(e *SyncEngine) { e.clock = c }
}

// WithRemoteTimeout bounds every upsert.
func WithRemoteTimeout(d time.Duration) SyncOption {
	return func(e *SyncEngine) { e.remoteTimeout = d }
}

// WithMetadata lets the engine record the time of the last complete cycle.
func WithMetadata(m metadata.Repository) SyncOption {
	return func(e *SyncEngine) { e.meta = m }
}

func NewSyncEngine(repo records.Repository, remote RecordPusher, online OnlineChecker, opts ...SyncOption) *SyncEngine {
	e := &SyncEngine{
		records:       repo,
		remote:        remote,
		online:        online,
		metrics:       metrics.NopSync{},
		log:           logging.Nop(),
		clock:         timex.Real{},
		remoteTimeout: DefaultRemoteTimeout,
		trigger:       make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With("component", "sync")
	return e
}

// RunCycle performs one reconciliation pass.
//
// It returns common.ErrorSyncInProgress if another cycle is running,
// common.ErrorOffline if the remote store is unreachable (nothing is read or
// written) and common.ErrorRemoteWrite when an upsert fails, in which case the
// rest of the snapshot is left for the next cycle.
func (e *SyncEngine) RunCycle(ctx context.Context) (Report, error) {
	if !e.running.CompareAndSwap(false, true) {
		e.metrics.RecordCycle(metrics.ResultInProgress, 0)
		return Report{}, common.ErrorSyncInProgress
	}
	defer e.running.Store(false)

	start := e.clock.Now()
	rep, err := e.cycle(ctx)

	result := metrics.ResultOK
	switch {
	case errors.Is(err, common.ErrorOffline):
		result = metrics.ResultOffline
	case err != nil:
		result = metrics.ResultFailed
	}
	e.metrics.RecordCycle(result, e.clock.Now().Sub(start))
	if rep.Pushed > 0 {
		e.metrics.RecordPushed(rep.Pushed)
	}
	if !errors.Is(err, common.ErrorOffline) {
		e.updatePending(ctx)
	}
	return rep, err
}

func (e *SyncEngine) cycle(ctx context.Context) (Report, error) {
	var rep Report

	if !e.online.IsOnline(ctx) {
		return rep, common.ErrorOffline
	}

	pending, err := e.records.ListUnsynchronized(ctx)
	if err != nil {
		return rep, fmt.Errorf("failed to list unsynchronized records: %w", err)
	}

	vanished := 0
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			rep.Remaining = len(pending) - rep.Pushed - vanished
			return rep, err
		}

		rep.Attempted++
		if err := e.push(ctx, rec.ID, rec.Fields); err != nil {
			e.metrics.RecordPushFailure()
			rep.Remaining = len(pending) - rep.Pushed - vanished
			return rep, fmt.Errorf("%w: record %s: %w", common.ErrorRemoteWrite, rec.ID, err)
		}

		if err := e.records.MarkSynchronized(ctx, rec.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				e.log.Error(ctx, "acknowledged record missing locally", "id", rec.ID)
				vanished++
				continue
			}
			rep.Remaining = len(pending) - rep.Pushed - vanished
			return rep, fmt.Errorf("failed to mark record synchronized: %w", err)
		}
		rep.Pushed++
	}

	if e.meta != nil {
		if err := e.meta.SetTime(ctx, common.MetaLastSyncAt, e.clock.Now()); err != nil {
			e.log.Warn(ctx, "failed to save last sync time", "error", err)
		}
	}
	return rep, nil
}

func (e *SyncEngine) push(ctx context.Context, id string, fields map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()
	return e.remote.UpsertRecord(ctx, id, fields)
}

func (e *SyncEngine) updatePending(ctx context.Context) {
	n, err := e.records.CountUnsynchronized(ctx)
	if err != nil {
		e.log.Warn(ctx, "failed to count backlog", "error", err)
		return
	}
	e.metrics.SetPending(n)
}

// Trigger asks Run for an extra cycle without waiting for it. Requests made
// while one is already pending are merged.
func (e *SyncEngine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Run performs a cycle immediately, then on every tick and every Trigger,
// until ctx is done. Failures are logged and retried on the next tick.
func (e *SyncEngine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runLogged(ctx)
		case <-e.trigger:
			e.runLogged(ctx)
		}
	}
}

func (e *SyncEngine) runLogged(ctx context.Context) {
	rep, err := e.RunCycle(ctx)
	switch {
	case err == nil:
		if rep.Attempted > 0 {
			e.log.Info(ctx, "sync cycle finished", "pushed", rep.Pushed)
		}
	case errors.Is(err, common.ErrorOffline), errors.Is(err, common.ErrorSyncInProgress):
		e.log.Debug(ctx, "sync cycle skipped", "reason", err)
	case ctx.Err() != nil:
	default:
		e.log.Warn(ctx, "sync cycle failed", "pushed", rep.Pushed, "remaining", rep.Remaining, "error", err)
	}
}

// LastSync returns the time of the last cycle that drained its snapshot,
// or the zero time.
func (e *SyncEngine) LastSync(ctx context.Context) (time.Time, error) {
	if e.meta == nil {
		return time.Time{}, nil
	}
	return e.meta.GetTime(ctx, common.MetaLastSyncAt)
}
