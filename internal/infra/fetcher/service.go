package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"papersorter/internal/dedup"
	"papersorter/internal/domain/entity"
	"papersorter/internal/observability/metrics"
	"papersorter/internal/repository"

	"golang.org/x/sync/errgroup"
)

// Feed fetches and normalizes a single feed source's content.
type Feed interface {
	Fetch(ctx context.Context, feedURL, origin string) ([]*entity.Article, error)
}

// ContentEnricher optionally replaces a thin feed body with the full
// article text before the candidate is admitted (C13).
type ContentEnricher interface {
	Enrich(ctx context.Context, link, feedContent string) string
}

// TLDRHook asynchronously generates an admitted article's TLDR without
// blocking the fetch pipeline (C12).
type TLDRHook interface {
	GenerateAsync(ctx context.Context, article *entity.Article)
}

// Config tunes Service's concurrency.
type Config struct {
	// WorkerCount bounds how many sources are fetched in parallel.
	WorkerCount int
}

func (c Config) withDefaults() Config {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 8
	}
	return c
}

// Service drives the FeedFetcher pipeline: for every FeedSource due for a
// check, fetch candidates, optionally enrich their content, run them
// through Deduper, and persist survivors — all under a per-source
// advisory lock so a single source is never processed by two workers at
// once (spec §4.2, §5).
type Service struct {
	sources  repository.FeedSourceRepository
	articles repository.ArticleRepository
	locks    repository.LockRepository
	dedupe   *dedup.Deduper
	feed     Feed
	enricher ContentEnricher
	tldr     TLDRHook
	cfg      Config
}

func New(
	sources repository.FeedSourceRepository,
	articles repository.ArticleRepository,
	locks repository.LockRepository,
	dedupe *dedup.Deduper,
	feed Feed,
	enricher ContentEnricher,
	tldr TLDRHook,
	cfg Config,
) *Service {
	return &Service{
		sources:  sources,
		articles: articles,
		locks:    locks,
		dedupe:   dedupe,
		feed:     feed,
		enricher: enricher,
		tldr:     tldr,
		cfg:      cfg.withDefaults(),
	}
}

// RunStats summarizes one Update call's FeedFetcher pass.
type RunStats struct {
	SourcesDue int64
	Candidates int64
	Inserted   int64
	Rejected   int64
	Errors     int64
}

// Run fetches every active source whose CheckInterval has elapsed,
// fanning work out across cfg.WorkerCount workers. A source already held
// by another worker (or process) is skipped this tick, not retried.
func (s *Service) Run(ctx context.Context, checkInterval time.Duration) (*RunStats, error) {
	all, err := s.sources.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: ListActive: %w", err)
	}

	now := time.Now()
	var due []*entity.FeedSource
	for _, src := range all {
		if src.NeedsCheck(now, checkInterval) {
			due = append(due, src)
		}
	}

	stats := &RunStats{SourcesDue: int64(len(due))}
	sem := make(chan struct{}, s.cfg.WorkerCount)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, src := range due {
		src := src
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			s.processSource(egCtx, src, stats)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

// processSource fetches and admits candidates from a single source. Per
// spec §4.2, network/parse errors are logged and last_checked is still
// advanced — a failing source never tight-loops.
func (s *Service) processSource(ctx context.Context, src *entity.FeedSource, stats *RunStats) {
	lockName := fmt.Sprintf("papersorter/fetch/source/%d", src.ID)
	acquired, unlock, err := s.locks.TryLock(ctx, lockName)
	if err != nil {
		slog.Warn("fetch: advisory lock error", slog.Int64("source_id", src.ID), slog.Any("error", err))
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	if !acquired {
		slog.Debug("fetch: source already locked, skipping this tick", slog.Int64("source_id", src.ID))
		return
	}
	defer func() { _ = unlock(context.WithoutCancel(ctx)) }()

	start := time.Now()
	candidates, err := s.feed.Fetch(ctx, src.URL, src.Name)
	if err != nil {
		slog.Warn("fetch: source fetch failed",
			slog.Int64("source_id", src.ID), slog.String("url", src.URL), slog.Any("error", err))
		metrics.RecordFeedCrawlError(src.ID, "fetch_failed")
		atomic.AddInt64(&stats.Errors, 1)
		s.touchChecked(ctx, src)
		return
	}

	atomic.AddInt64(&stats.Candidates, int64(len(candidates)))

	var inserted, rejected int64
	for _, candidate := range candidates {
		if s.enricher != nil {
			candidate.Content = s.enricher.Enrich(ctx, candidate.Link, candidate.Content)
		}

		admitted, err := s.dedupe.Admit(ctx, candidate)
		if err != nil {
			slog.Warn("fetch: dedup check failed",
				slog.Int64("source_id", src.ID), slog.String("link", candidate.Link), slog.Any("error", err))
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		if !admitted {
			rejected++
			continue
		}

		wasInserted, err := s.articles.UpsertByExternalID(ctx, candidate)
		if err != nil {
			slog.Warn("fetch: article upsert failed",
				slog.Int64("source_id", src.ID), slog.String("external_id", candidate.ExternalID), slog.Any("error", err))
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		if wasInserted && s.tldr != nil {
			s.tldr.GenerateAsync(ctx, candidate)
		}
		inserted++
	}

	atomic.AddInt64(&stats.Inserted, inserted)
	atomic.AddInt64(&stats.Rejected, rejected)
	metrics.RecordFeedCrawl(src.ID, time.Since(start), int64(len(candidates)), inserted, rejected)

	s.touchChecked(ctx, src)
}

// touchChecked advances last_checked even when the fetch failed, using a
// cancellation-free context so a caller-cancelled Run still records the
// attempt (spec §4.2: "prevents tight-loop retry").
func (s *Service) touchChecked(ctx context.Context, src *entity.FeedSource) {
	safeCtx := context.WithoutCancel(ctx)
	if err := s.sources.MarkChecked(safeCtx, src.ID, time.Now()); err != nil {
		slog.Warn("fetch: mark checked failed", slog.Int64("source_id", src.ID), slog.Any("error", err))
	}
}
