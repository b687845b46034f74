package entity

import "time"

// BroadcastReason records why a BroadcastEntry reached its terminal state
// without ever being marked delivered — e.g. suppressed as a time-window
// duplicate (§4.7 step 4). Empty for ordinary deliveries.
type BroadcastReason string

const (
	BroadcastReasonNone       BroadcastReason = ""
	BroadcastReasonSuppressed BroadcastReason = "suppressed"
)

// BroadcastEntry is both the broadcast queue and the delivery log: a
// composite-key (ArticleID, ChannelID) row whose BroadcastedAt is nil while
// queued and non-nil once delivered. The transition queued -> delivered
// happens exactly once and is never reversed by the core (§3 invariant).
type BroadcastEntry struct {
	ArticleID    int64
	ChannelID    int64
	QueuedAt     time.Time
	BroadcastedAt *time.Time
	Reason       BroadcastReason
}

// IsQueued reports whether the entry is still awaiting delivery.
func (b *BroadcastEntry) IsQueued() bool {
	return b.BroadcastedAt == nil
}
