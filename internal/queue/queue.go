// Package queue implements QueueManager (C6): the idempotent broadcast
// queue surfaced to the Scorer (enqueue) and the Dispatcher (depth, claim).
package queue

import (
	"context"
	"fmt"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// Manager wraps BroadcastRepository with the idempotency and ordering
// semantics spec'd for QueueManager; the repository layer already enforces
// the (article_id, channel_id) uniqueness, so Manager mostly adds logging
// and a stable entry point for the Scorer and Dispatcher to depend on.
type Manager struct {
	broadcasts repository.BroadcastRepository
}

func New(broadcasts repository.BroadcastRepository) *Manager {
	return &Manager{broadcasts: broadcasts}
}

// Enqueue inserts a queued (article, channel) pair. Re-enqueuing an already
// queued or already-delivered pair is a no-op, never an error (spec §4.6).
func (m *Manager) Enqueue(ctx context.Context, articleID, channelID int64) error {
	_, err := m.broadcasts.Enqueue(ctx, articleID, channelID)
	if err != nil {
		return fmt.Errorf("queue.Enqueue: %w", err)
	}
	return nil
}

// Depth returns the number of queued (undelivered, unsuppressed) entries
// for a channel.
func (m *Manager) Depth(ctx context.Context, channelID int64) (int64, error) {
	depth, err := m.broadcasts.QueueDepth(ctx, channelID)
	if err != nil {
		return 0, fmt.Errorf("queue.Depth: %w", err)
	}
	return depth, nil
}

// Claim atomically selects up to limit queued entries for a channel, newest
// published first, for the Dispatcher to attempt delivery on.
func (m *Manager) Claim(ctx context.Context, channelID int64, limit int) ([]*entity.Article, error) {
	articles, err := m.broadcasts.Claim(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("queue.Claim: %w", err)
	}
	return articles, nil
}
