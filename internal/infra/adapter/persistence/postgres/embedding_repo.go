package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingRepo implements repository.EmbeddingRepository for PostgreSQL.
type EmbeddingRepo struct{ db *sql.DB }

func NewEmbeddingRepo(db *sql.DB) repository.EmbeddingRepository {
	return &EmbeddingRepo{db: db}
}

// UpsertBatch writes every embedding inside one transaction; a dimension
// mismatch against the embeddings.vector column fails the whole batch and
// the transaction is rolled back, surfacing as entity.SchemaMismatchError.
func (repo *EmbeddingRepo) UpsertBatch(ctx context.Context, embeddings []*entity.Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	expectedDim, err := repo.Dimension(ctx)
	if err != nil {
		return fmt.Errorf("UpsertBatch: %w", err)
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("UpsertBatch: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO embeddings (article_id, vector, updated_at)
VALUES ($1, $2, extract(epoch from now())::bigint)
ON CONFLICT (article_id) DO UPDATE SET
    vector = EXCLUDED.vector,
    updated_at = EXCLUDED.updated_at`

	for _, e := range embeddings {
		if expectedDim > 0 {
			if err := e.Validate(expectedDim); err != nil {
				return fmt.Errorf("UpsertBatch: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, query, e.ArticleID, pgvector.NewVector(e.Vector)); err != nil {
			return fmt.Errorf("UpsertBatch: article %d: %w", e.ArticleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UpsertBatch: Commit: %w", err)
	}
	return nil
}

func (repo *EmbeddingRepo) Get(ctx context.Context, articleID int64) (*entity.Embedding, error) {
	const query = `SELECT article_id, vector, updated_at FROM embeddings WHERE article_id = $1`
	var e entity.Embedding
	var vec pgvector.Vector
	err := repo.db.QueryRowContext(ctx, query, articleID).Scan(&e.ArticleID, &vec, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	e.Vector = vec.Slice()
	return &e, nil
}

func (repo *EmbeddingRepo) DeleteByArticleID(ctx context.Context, articleID int64) error {
	const query = `DELETE FROM embeddings WHERE article_id = $1`
	_, err := repo.db.ExecContext(ctx, query, articleID)
	if err != nil {
		return fmt.Errorf("DeleteByArticleID: %w", err)
	}
	return nil
}

// Dimension reads the configured vector width back from the column's
// Postgres type modifier rather than a separate config row, so it can
// never drift from what the table actually enforces.
func (repo *EmbeddingRepo) Dimension(ctx context.Context) (int, error) {
	const query = `
SELECT atttypmod
FROM pg_attribute
WHERE attrelid = 'embeddings'::regclass AND attname = 'vector'`
	var typmod int
	err := repo.db.QueryRowContext(ctx, query).Scan(&typmod)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("Dimension: %w", err)
	}
	return typmod, nil
}
