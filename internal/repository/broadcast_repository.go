package repository

import (
	"context"
	"time"

	"papersorter/internal/domain/entity"
)

// BroadcastRepository is the broadcast queue and delivery log (§9 Design
// Note "queue as table"): a row exists from the moment it is enqueued until
// it is purged by retention, and its BroadcastedAt transitions from nil to
// non-nil exactly once.
type BroadcastRepository interface {
	// Enqueue inserts a queued entry. It is idempotent on the
	// (article_id, channel_id) primary key: a second enqueue of the same
	// pair is a no-op, never an error (§4.6 QueueManager.enqueue).
	Enqueue(ctx context.Context, articleID, channelID int64) (inserted bool, err error)

	// QueueDepth returns the count of queued (undelivered, unsuppressed)
	// entries for a channel.
	QueueDepth(ctx context.Context, channelID int64) (int64, error)

	// Claim atomically selects and locks up to `limit` queued entries for a
	// channel, ordered by the articles' published time descending with a
	// stable article-id secondary order, and returns their Articles in that
	// order. Claimed entries remain queued until MarkDelivered or
	// MarkSuppressed is called.
	Claim(ctx context.Context, channelID int64, limit int) ([]*entity.Article, error)

	MarkDelivered(ctx context.Context, articleID, channelID int64, at time.Time) error

	// MarkSuppressed terminalizes an entry without delivery, e.g. when the
	// time-window duplicate check (§4.7 step 4) rejects it.
	MarkSuppressed(ctx context.Context, articleID, channelID int64, reason entity.BroadcastReason) error

	// FindRecentDelivered returns delivered entries for channelID within
	// window, for time-window duplicate suppression.
	FindRecentDelivered(ctx context.Context, channelID int64, since time.Time) ([]*entity.Article, error)

	// PurgeDelivered deletes delivered (or suppressed) rows older than
	// olderThan, per the retention Design Note.
	PurgeDelivered(ctx context.Context, olderThan time.Time) (purged int64, err error)
}
