package repository

import (
	"context"

	"papersorter/internal/domain/entity"
)

// ScoreRepository manages PredictedScore rows, keyed (article_id, model_id).
type ScoreRepository interface {
	// UpsertBatch writes or overwrites scores for (article, model) pairs.
	UpsertBatch(ctx context.Context, scores []*entity.PredictedScore) error

	Get(ctx context.Context, articleID, modelID int64) (*entity.PredictedScore, error)

	// DeleteByArticleID removes every score row for an article — used when
	// its embedding is deleted or re-embedded (§4.5 edge policy).
	DeleteByArticleID(ctx context.Context, articleID int64) error

	// CoverageGap reports, for modelID, how many embedded articles are
	// still missing a score row. Used to verify the "score coverage"
	// testable property (spec §8, invariant 3) after an update tick.
	CoverageGap(ctx context.Context, modelID int64) (int64, error)

	// ListScored returns scored articles for modelID at or above minScore,
	// highest score first, for the Admin API's read-only article/score
	// listing surface (C11).
	ListScored(ctx context.Context, modelID int64, minScore float64, limit, offset int) ([]ScoredArticle, error)

	// CountScored reports the total number of scored articles for modelID
	// at or above minScore, for the same listing's pagination metadata.
	CountScored(ctx context.Context, modelID int64, minScore float64) (int64, error)
}

// ScoredArticle pairs an Article with its PredictedScore for one model.
type ScoredArticle struct {
	Article *entity.Article
	Score   float64
}
