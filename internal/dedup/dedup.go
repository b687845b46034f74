// Package dedup implements the Deduper component (C3): it rejects
// near-duplicate articles by external id, link, and fuzzy-title match
// before an Article is allowed into the store.
package dedup

import (
	"context"
	"fmt"
	"time"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
	"papersorter/internal/utils/text"
)

// DefaultWindow is the lookback window for fuzzy-title comparison (spec
// §4.3: "N configurable, default 30 days").
const DefaultWindow = 30 * 24 * time.Hour

// DefaultThreshold is the Jaro-Winkler similarity threshold T above which
// two normalized titles are considered the same article (spec §4.3:
// "default 0.92").
const DefaultThreshold = 0.92

// Config tunes the Deduper's window and threshold. Zero values fall back
// to the spec defaults.
type Config struct {
	Window    time.Duration
	Threshold float64
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	return c
}

// Deduper rejects candidate articles that duplicate an existing one.
type Deduper struct {
	articles repository.ArticleRepository
	events   repository.EventRepository
	cfg      Config
}

func New(articles repository.ArticleRepository, events repository.EventRepository, cfg Config) *Deduper {
	return &Deduper{articles: articles, events: events, cfg: cfg.withDefaults()}
}

// Reason explains why a candidate was rejected.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonExternalID Reason = "external_id"
	ReasonLink       Reason = "link"
	ReasonFuzzyTitle Reason = "fuzzy_title"
)

// Check reports whether candidate duplicates an existing article,
// per spec §4.3 steps 1-3: external_id match, link match, then a
// fuzzy-matching normalized title within the configured window.
func (d *Deduper) Check(ctx context.Context, candidate *entity.Article) (Reason, error) {
	if candidate.ExternalID != "" {
		existing, err := d.articles.GetByExternalID(ctx, candidate.ExternalID)
		if err != nil {
			return ReasonNone, fmt.Errorf("Check: GetByExternalID: %w", err)
		}
		if existing != nil {
			return ReasonExternalID, nil
		}
	}

	if candidate.Link != "" {
		existing, err := d.articles.GetByLink(ctx, candidate.Link)
		if err != nil {
			return ReasonNone, fmt.Errorf("Check: GetByLink: %w", err)
		}
		if existing != nil {
			return ReasonLink, nil
		}
	}

	since := time.Now().Add(-d.cfg.Window)
	recent, err := d.articles.FindRecentByNormalizedTitle(ctx, since, 0)
	if err != nil {
		return ReasonNone, fmt.Errorf("Check: FindRecentByNormalizedTitle: %w", err)
	}

	candidateNorm := text.Normalize(candidate.Title)
	for _, other := range recent {
		if text.JaroWinkler(candidateNorm, text.Normalize(other.Title)) >= d.cfg.Threshold {
			return ReasonFuzzyTitle, nil
		}
	}

	return ReasonNone, nil
}

// Admit runs Check and, on rejection, records an admin-visible event
// (spec Scenario D: "an admin event records the rejection"). It returns
// true when the candidate was accepted.
func (d *Deduper) Admit(ctx context.Context, candidate *entity.Article) (bool, error) {
	reason, err := d.Check(ctx, candidate)
	if err != nil {
		return false, err
	}
	if reason == ReasonNone {
		return true, nil
	}

	if d.events != nil {
		_ = d.events.Record(ctx, &repository.Event{
			Severity: repository.EventSeverityInfo,
			Source:   "dedup",
			Message:  fmt.Sprintf("rejected duplicate candidate %q (%s): %s", candidate.Title, candidate.ExternalID, reason),
		})
	}
	return false, nil
}
