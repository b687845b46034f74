// Package dispatcher implements the Dispatcher component (C7): per-channel
// delivery loop with hour gating, time-window duplicate suppression,
// provider dispatch, retry/permanent-failure handling, and retention purge.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"papersorter/internal/domain/entity"
	"papersorter/internal/notify/providers"
	"papersorter/internal/queue"
	"papersorter/internal/repository"
	"papersorter/internal/utils/text"
)

// DuplicateWindow mirrors the Deduper's window, applied across delivered
// history instead of ingestion history (spec §4.7 step 4).
const DuplicateWindow = 90 * 24 * time.Hour

// DuplicateThreshold matches the Deduper's Jaro-Winkler threshold (spec:
// "same rule as Deduper, same threshold").
const DuplicateThreshold = 0.92

// MaxConsecutiveFailures is how many retriable-failure ticks a channel
// tolerates before being skipped for the rest of the broadcast cycle
// (spec §4.7 step 8).
const MaxConsecutiveFailures = 3

// DefaultGlobalCap bounds how many entries any single channel claims per
// tick, in addition to its own BroadcastLimit.
const DefaultGlobalCap = 100

// DefaultRetention is how long delivered/suppressed entries are kept
// before PurgeDelivered removes them (Design Note "retention").
const DefaultRetention = 30 * 24 * time.Hour

// LabelingURLBuilder builds the "more like this" action URL for an article,
// bound to the Admin API's public base URL.
type LabelingURLBuilder func(articleID int64) string

// Config tunes Service.
type Config struct {
	GlobalCap int
	Retention time.Duration
	LabelFunc LabelingURLBuilder
}

func (c Config) withDefaults() Config {
	if c.GlobalCap <= 0 {
		c.GlobalCap = DefaultGlobalCap
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.LabelFunc == nil {
		c.LabelFunc = func(articleID int64) string { return fmt.Sprintf("/articles/%d", articleID) }
	}
	return c
}

// Service drives the per-channel dispatch loop.
type Service struct {
	channels   repository.ChannelRepository
	broadcasts repository.BroadcastRepository
	events     repository.EventRepository
	locks      repository.LockRepository
	queue      *queue.Manager
	chatA      providers.Provider
	chatB      providers.Provider
	email      *providers.Email
	cfg        Config

	failureCounts map[int64]int
}

func New(
	channels repository.ChannelRepository,
	broadcasts repository.BroadcastRepository,
	events repository.EventRepository,
	locks repository.LockRepository,
	qm *queue.Manager,
	chatA, chatB providers.Provider,
	email *providers.Email,
	cfg Config,
) *Service {
	return &Service{
		channels:      channels,
		broadcasts:    broadcasts,
		events:        events,
		locks:         locks,
		queue:         qm,
		chatA:         chatA,
		chatB:         chatB,
		email:         email,
		cfg:           cfg.withDefaults(),
		failureCounts: make(map[int64]int),
	}
}

// RunStats summarizes one broadcast tick.
type RunStats struct {
	ChannelsProcessed int
	Delivered         int
	Suppressed        int
	Purged            int64
}

// Run processes every active channel once, then purges expired delivered
// entries.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	channels, err := s.channels.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("dispatcher.Run: ListActive: %w", err)
	}

	stats := &RunStats{}
	for _, ch := range channels {
		delivered, suppressed := s.processChannel(ctx, ch)
		stats.ChannelsProcessed++
		stats.Delivered += delivered
		stats.Suppressed += suppressed
	}

	purged, err := s.broadcasts.PurgeDelivered(ctx, time.Now().Add(-s.cfg.Retention))
	if err != nil {
		slog.Warn("dispatcher: purge failed", slog.Any("error", err))
	}
	stats.Purged = purged

	return stats, nil
}

func (s *Service) processChannel(ctx context.Context, ch *entity.Channel) (delivered, suppressed int) {
	if !ch.IsActive {
		return 0, 0
	}
	if s.failureCounts[ch.ID] >= MaxConsecutiveFailures {
		slog.Debug("dispatcher: channel skipped after consecutive failures", slog.Int64("channel_id", ch.ID))
		return 0, 0
	}

	now := time.Now().In(ch.Location())
	if !ch.BroadcastHours.Allows(now.Hour()) {
		return 0, 0
	}

	lockName := fmt.Sprintf("papersorter/dispatch/channel/%d", ch.ID)
	acquired, unlock, err := s.locks.TryLock(ctx, lockName)
	if err != nil || !acquired {
		return 0, 0
	}
	defer func() { _ = unlock(context.WithoutCancel(ctx)) }()

	limit := ch.BroadcastLimit
	if limit > s.cfg.GlobalCap {
		limit = s.cfg.GlobalCap
	}

	candidates, err := s.queue.Claim(ctx, ch.ID, limit)
	if err != nil {
		slog.Warn("dispatcher: claim failed", slog.Int64("channel_id", ch.ID), slog.Any("error", err))
		return 0, 0
	}
	if len(candidates) == 0 {
		return 0, 0
	}

	recent, err := s.broadcasts.FindRecentDelivered(ctx, ch.ID, time.Now().Add(-DuplicateWindow))
	if err != nil {
		slog.Warn("dispatcher: recent-delivered lookup failed", slog.Int64("channel_id", ch.ID), slog.Any("error", err))
		recent = nil
	}
	normalizedRecent := make([]string, 0, len(recent))
	for _, a := range recent {
		normalizedRecent = append(normalizedRecent, text.Normalize(a.Title))
	}

	provider := providers.Select(ch.Endpoint, s.chatA, s.chatB, s.email)
	if provider == nil {
		slog.Warn("dispatcher: no provider configured", slog.Int64("channel_id", ch.ID))
		return 0, 0
	}

	deliverable := make([]*entity.Article, 0, len(candidates))
	for _, article := range candidates {
		if isDuplicate(text.Normalize(article.Title), normalizedRecent) {
			_ = s.broadcasts.MarkSuppressed(ctx, article.ID, ch.ID, entity.BroadcastReasonSuppressed)
			suppressed++
			continue
		}
		deliverable = append(deliverable, article)
	}
	if len(deliverable) == 0 {
		return 0, suppressed
	}

	if email, ok := provider.(*providers.Email); ok {
		return s.sendDigest(ctx, ch, email, deliverable), suppressed
	}

	var channelFailed bool
	for _, article := range deliverable {
		if channelFailed {
			break
		}
		ok, result := s.send(ctx, ch, provider, article)
		if ok {
			if err := s.broadcasts.MarkDelivered(ctx, article.ID, ch.ID, time.Now()); err != nil {
				slog.Warn("dispatcher: mark delivered failed",
					slog.Int64("article_id", article.ID), slog.Int64("channel_id", ch.ID), slog.Any("error", err))
				continue
			}
			delivered++
			s.failureCounts[ch.ID] = 0
			continue
		}

		switch result {
		case providers.ResultPermanent:
			s.deactivateChannel(ctx, ch)
			channelFailed = true
		case providers.ResultRetriable:
			s.failureCounts[ch.ID]++
			channelFailed = true
		}
	}

	return delivered, suppressed
}

func (s *Service) send(ctx context.Context, ch *entity.Channel, provider providers.Provider, article *entity.Article) (bool, providers.Result) {
	rc := &providers.RenderContext{
		ArticleID:   article.ID,
		Title:       article.Title,
		Origin:      article.Origin,
		Authors:     article.Authors,
		Link:        article.Link,
		TLDR:        article.TLDR,
		LabelingURL: s.cfg.LabelFunc(article.ID),
		ChannelName: ch.Name,
	}

	payload := provider.Render(rc)
	result, err := provider.Send(ctx, payload)
	if err != nil {
		slog.Warn("dispatcher: send failed",
			slog.Int64("article_id", article.ID), slog.Int64("channel_id", ch.ID),
			slog.String("result", resultString(result)), slog.Any("error", err))
	}
	return result == providers.ResultOK, result
}

// sendDigest batches every deliverable article for an email-backed channel
// into a single RenderDigest/Send call, keyed by channel, per dispatch
// cycle (spec §4.8) — unlike chat providers, an email channel never sends
// one message per article.
func (s *Service) sendDigest(ctx context.Context, ch *entity.Channel, email *providers.Email, deliverable []*entity.Article) int {
	entries := make([]providers.DigestEntry, 0, len(deliverable))
	for _, article := range deliverable {
		entries = append(entries, providers.DigestEntry{
			ArticleID:   article.ID,
			Title:       article.Title,
			Authors:     article.Authors,
			Origin:      article.Origin,
			Link:        article.Link,
			TLDR:        article.TLDR,
			LabelingURL: s.cfg.LabelFunc(article.ID),
		})
	}

	payload, err := email.RenderDigest(ch.Endpoint, ch.Name, entries)
	if err != nil {
		slog.Warn("dispatcher: render digest failed", slog.Int64("channel_id", ch.ID), slog.Any("error", err))
		return 0
	}

	result, err := email.Send(ctx, payload)
	if err != nil {
		slog.Warn("dispatcher: digest send failed",
			slog.Int64("channel_id", ch.ID), slog.Int("article_count", len(deliverable)),
			slog.String("result", resultString(result)), slog.Any("error", err))
	}

	if result != providers.ResultOK {
		switch result {
		case providers.ResultPermanent:
			s.deactivateChannel(ctx, ch)
		case providers.ResultRetriable:
			s.failureCounts[ch.ID]++
		}
		return 0
	}

	delivered := 0
	for _, article := range deliverable {
		if err := s.broadcasts.MarkDelivered(ctx, article.ID, ch.ID, time.Now()); err != nil {
			slog.Warn("dispatcher: mark delivered failed",
				slog.Int64("article_id", article.ID), slog.Int64("channel_id", ch.ID), slog.Any("error", err))
			continue
		}
		delivered++
	}
	s.failureCounts[ch.ID] = 0
	return delivered
}

func (s *Service) deactivateChannel(ctx context.Context, ch *entity.Channel) {
	if err := s.channels.Deactivate(ctx, ch.ID); err != nil {
		slog.Warn("dispatcher: deactivate failed", slog.Int64("channel_id", ch.ID), slog.Any("error", err))
	}
	if s.events != nil {
		_ = s.events.Record(ctx, &repository.Event{
			Severity: repository.EventSeverityError,
			Source:   "dispatcher",
			Message:  fmt.Sprintf("channel %d deactivated after permanent provider failure", ch.ID),
		})
	}
}

func isDuplicate(normalizedTitle string, recentNormalized []string) bool {
	for _, other := range recentNormalized {
		if text.JaroWinkler(normalizedTitle, other) >= DuplicateThreshold {
			return true
		}
	}
	return false
}

func resultString(r providers.Result) string {
	switch r {
	case providers.ResultOK:
		return "ok"
	case providers.ResultRetriable:
		return "retriable"
	case providers.ResultPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}
