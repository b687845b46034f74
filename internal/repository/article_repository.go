// Package repository defines narrow, typed Store operations (C1 in the
// design). Every write is transactional; partial failure must never be
// observable by callers. Implementations live under
// internal/infra/adapter/persistence/postgres.
package repository

import (
	"context"
	"time"

	"papersorter/internal/domain/entity"
)

// ArticleFilter restricts SimilarArticles / listing queries.
type ArticleFilter struct {
	MinScore  *float64
	ModelID   *int64
	ChannelID *int64
}

// SimilarArticle is one row of a similarity search result.
type SimilarArticle struct {
	Article  *entity.Article
	Distance float64 // cosine distance, ascending order
}

// ArticleRepository is the Store's article-facing surface.
type ArticleRepository interface {
	// UpsertByExternalID inserts a new Article keyed by ExternalID. On
	// conflict, no mutation happens unless explicitly requested — this
	// prevents ingestion from clobbering enriched metadata (tldr, etc).
	UpsertByExternalID(ctx context.Context, article *entity.Article) (inserted bool, err error)

	Get(ctx context.Context, id int64) (*entity.Article, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Article, error)
	GetByLink(ctx context.Context, link string) (*entity.Article, error)

	// FindRecentByNormalizedTitle returns articles added within `window`
	// whose normalized title is a candidate for fuzzy comparison (Deduper
	// still applies the similarity threshold itself).
	FindRecentByNormalizedTitle(ctx context.Context, since time.Time, limit int) ([]*entity.Article, error)

	// GetArticlesMissingEmbedding returns up to `limit` articles that have
	// no Embedding row yet.
	GetArticlesMissingEmbedding(ctx context.Context, limit int) ([]*entity.Article, error)

	// GetArticlesMissingScore returns up to `limit` embedded articles with
	// id greater than afterID that have no PredictedScore row for modelID,
	// ordered by id ascending. When force is true, the missing-row filter is
	// dropped and every embedded article past afterID is returned instead —
	// the explicit opt-in for a full rescore after a model activation (spec
	// §9 Open Question: "minimal work unless forced"). Because force drops
	// the filter that would otherwise shrink the pending set page by page,
	// callers must drive a full scan themselves: track the highest id seen
	// and pass it back in as afterID until a page shorter than limit comes
	// back.
	GetArticlesMissingScore(ctx context.Context, modelID int64, afterID int64, limit int, force bool) ([]*entity.Article, error)

	SetTLDR(ctx context.Context, articleID int64, tldr string) error

	// SimilarArticles returns up to k articles ordered by cosine distance
	// ascending, honoring the optional filter.
	SimilarArticles(ctx context.Context, vector []float32, k int, filter ArticleFilter) ([]SimilarArticle, error)
}
