package repository

import "context"

// LockRepository exposes named advisory locks, grounded on Postgres
// pg_advisory_lock semantics. FeedFetcher takes a per-source lock so two
// overlapping poll ticks never fetch the same source concurrently (§5);
// Dispatcher takes a per-channel lock for the same reason; Orchestrator
// takes the fixed named locks "papersorter/update" and
// "papersorter/broadcast" so at most one instance of each driver loop runs
// at a time across a fleet of worker processes (§4.10).
//
// TryLock is non-blocking: it returns acquired=false immediately if the
// lock is already held elsewhere, rather than waiting.
type LockRepository interface {
	TryLock(ctx context.Context, name string) (acquired bool, unlock func(context.Context) error, err error)
}
