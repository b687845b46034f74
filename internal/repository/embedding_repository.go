package repository

import (
	"context"

	"papersorter/internal/domain/entity"
)

// EmbeddingRepository manages the 1:1 Article -> Embedding relationship.
type EmbeddingRepository interface {
	// UpsertBatch persists all given embeddings in a single transaction.
	// Dimension mismatches against the configured D fail the whole batch
	// with SchemaMismatchError (fatal to the caller).
	UpsertBatch(ctx context.Context, embeddings []*entity.Embedding) error

	Get(ctx context.Context, articleID int64) (*entity.Embedding, error)

	// DeleteByArticleID invalidates an article's embedding (and, per §4.5
	// edge policy, its dependent PredictedScore rows must be invalidated by
	// the caller via ScoreRepository.DeleteByArticleID).
	DeleteByArticleID(ctx context.Context, articleID int64) error

	// Dimension returns the configured vector dimension for this store, as
	// fixed at install time.
	Dimension(ctx context.Context) (int, error)
}
