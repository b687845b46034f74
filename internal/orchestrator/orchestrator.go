// Package orchestrator implements the Orchestrator (C10): two independent
// driver state machines (Update, Broadcast), each serialized across a
// process fleet by a named Postgres advisory lock, wired to cron.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"papersorter/internal/dispatcher"
	"papersorter/internal/domain/entity"
	"papersorter/internal/infra/embedder"
	"papersorter/internal/infra/fetcher"
	"papersorter/internal/repository"
	"papersorter/internal/scoring"

	"github.com/robfig/cron/v3"
)

// Driver states, per spec §4.10.
const (
	StateIdle        = "idle"
	StateFetching    = "fetching"
	StateEmbedding   = "embedding"
	StateScoring     = "scoring"
	StateEnqueueing  = "enqueueing"
	StateDispatching = "dispatching"
	StatePurging     = "purging"
)

// UpdateLockName and BroadcastLockName are the fixed named advisory locks
// that serialize each driver across a fleet of worker processes.
const (
	UpdateLockName    = "papersorter/update"
	BroadcastLockName = "papersorter/broadcast"
)

// schemaMismatchStreak is how many consecutive ticks a driver tolerates a
// recurring SchemaMismatchError before treating it as a process-level
// backstop (resolving spec §7/§4.10's tension — see DESIGN.md).
const schemaMismatchStreak = 2

// Config tunes the Orchestrator's cadence.
type Config struct {
	UpdateInterval    time.Duration // default 3h
	BroadcastInterval time.Duration // default 1h
	FeedCheckInterval time.Duration // passed through to FeedFetcher.Run
	CronTimezone      string
}

func (c Config) withDefaults() Config {
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = 3 * time.Hour
	}
	if c.BroadcastInterval <= 0 {
		c.BroadcastInterval = 1 * time.Hour
	}
	if c.FeedCheckInterval <= 0 {
		c.FeedCheckInterval = 1 * time.Hour
	}
	if c.CronTimezone == "" {
		c.CronTimezone = "UTC"
	}
	return c
}

// Orchestrator drives the Update and Broadcast state machines.
type Orchestrator struct {
	locks    repository.LockRepository
	events   repository.EventRepository
	fetch    *fetcher.Service
	embed    *embedder.Service
	score    *scoring.Service
	dispatch *dispatcher.Service
	cfg      Config

	mu               sync.RWMutex
	updateState      string
	broadcastState   string
	updateMismatches int
}

func New(
	locks repository.LockRepository,
	events repository.EventRepository,
	fetch *fetcher.Service,
	embed *embedder.Service,
	score *scoring.Service,
	dispatch *dispatcher.Service,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		locks:    locks,
		events:   events,
		fetch:    fetch,
		embed:    embed,
		score:    score,
		dispatch: dispatch,
		cfg:      cfg.withDefaults(),

		updateState:    StateIdle,
		broadcastState: StateIdle,
	}
}

// UpdateState returns the Update driver's current state (for health
// reporting).
func (o *Orchestrator) UpdateState() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.updateState
}

// BroadcastState returns the Broadcast driver's current state.
func (o *Orchestrator) BroadcastState() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.broadcastState
}

func (o *Orchestrator) setUpdateState(s string) {
	o.mu.Lock()
	o.updateState = s
	o.mu.Unlock()
}

func (o *Orchestrator) setBroadcastState(s string) {
	o.mu.Lock()
	o.broadcastState = s
	o.mu.Unlock()
}

// Schedule wires both drivers onto a cron scheduler and starts it. The
// caller is responsible for stopping the returned *cron.Cron.
func (o *Orchestrator) Schedule(ctx context.Context, updateCron, broadcastCron string) (*cron.Cron, error) {
	loc, err := time.LoadLocation(o.cfg.CronTimezone)
	if err != nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(updateCron, func() { o.RunUpdate(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule update: %w", err)
	}
	if _, err := c.AddFunc(broadcastCron, func() { o.RunBroadcast(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule broadcast: %w", err)
	}
	c.Start()
	return c, nil
}

// RunUpdate executes one Update driver tick: fetching -> embedding ->
// scoring -> enqueueing -> idle. Every stage failure logs and returns to
// idle without crashing the process, except a recurring SchemaMismatchError
// (spec §7/§4.10).
func (o *Orchestrator) RunUpdate(ctx context.Context) {
	acquired, unlock, err := o.locks.TryLock(ctx, UpdateLockName)
	if err != nil {
		slog.Error("orchestrator: update lock error", slog.Any("error", err))
		return
	}
	if !acquired {
		slog.Debug("orchestrator: update already running elsewhere, skipping tick")
		return
	}
	defer func() { _ = unlock(context.WithoutCancel(ctx)) }()

	defer o.setUpdateState(StateIdle)

	o.setUpdateState(StateFetching)
	if _, err := o.fetch.Run(ctx, o.cfg.FeedCheckInterval); err != nil {
		o.recordTickFailure(ctx, "update", "fetching", err)
		return
	}

	o.setUpdateState(StateEmbedding)
	if _, err := o.embed.Run(ctx); err != nil {
		if o.handleSchemaMismatch(ctx, err) {
			return
		}
		o.recordTickFailure(ctx, "update", "embedding", err)
		return
	}
	o.updateMismatches = 0

	o.setUpdateState(StateScoring)
	if _, err := o.score.Run(ctx, false); err != nil {
		o.recordTickFailure(ctx, "update", "scoring", err)
		return
	}

	// Enqueueing happens inside scoring.Run as each channel's threshold is
	// evaluated (spec §4.5 step 5 -> §4.6); this state exists to name the
	// transition the spec's state machine prescribes.
	o.setUpdateState(StateEnqueueing)
}

// RunBroadcast executes one Broadcast driver tick: dispatching -> purging
// -> idle.
func (o *Orchestrator) RunBroadcast(ctx context.Context) {
	acquired, unlock, err := o.locks.TryLock(ctx, BroadcastLockName)
	if err != nil {
		slog.Error("orchestrator: broadcast lock error", slog.Any("error", err))
		return
	}
	if !acquired {
		slog.Debug("orchestrator: broadcast already running elsewhere, skipping tick")
		return
	}
	defer func() { _ = unlock(context.WithoutCancel(ctx)) }()

	defer o.setBroadcastState(StateIdle)

	o.setBroadcastState(StateDispatching)
	stats, err := o.dispatch.Run(ctx)
	if err != nil {
		o.recordTickFailure(ctx, "broadcast", "dispatching", err)
		return
	}

	o.setBroadcastState(StatePurging)
	slog.Info("orchestrator: broadcast tick complete",
		slog.Int("channels", stats.ChannelsProcessed),
		slog.Int("delivered", stats.Delivered),
		slog.Int("suppressed", stats.Suppressed),
		slog.Int64("purged", stats.Purged))
}

// handleSchemaMismatch returns true when the tick should abort early
// because a SchemaMismatchError recurred on consecutive ticks, which is
// fatal to the process per spec §4.10.
func (o *Orchestrator) handleSchemaMismatch(ctx context.Context, err error) bool {
	var mismatch *entity.SchemaMismatchError
	if !errors.As(err, &mismatch) {
		o.updateMismatches = 0
		return false
	}

	o.updateMismatches++
	o.recordEvent(ctx, repository.EventSeverityError, "update",
		fmt.Sprintf("schema mismatch (streak %d/%d): %s", o.updateMismatches, schemaMismatchStreak, err))

	if o.updateMismatches >= schemaMismatchStreak {
		slog.Error("orchestrator: schema mismatch recurred across ticks, exiting process",
			slog.Any("error", err))
		panic(fmt.Sprintf("papersorter: fatal schema mismatch: %v", err))
	}
	return true
}

func (o *Orchestrator) recordTickFailure(ctx context.Context, driver, stage string, err error) {
	slog.Error("orchestrator: driver tick failed",
		slog.String("driver", driver), slog.String("stage", stage), slog.Any("error", err))
	o.recordEvent(ctx, repository.EventSeverityError, driver, fmt.Sprintf("%s failed: %s", stage, err))
}

func (o *Orchestrator) recordEvent(ctx context.Context, severity repository.EventSeverity, source, message string) {
	if o.events == nil {
		return
	}
	if err := o.events.Record(context.WithoutCancel(ctx), &repository.Event{
		Severity: severity,
		Source:   source,
		Message:  message,
	}); err != nil {
		slog.Warn("orchestrator: event record failed", slog.Any("error", err))
	}
}
