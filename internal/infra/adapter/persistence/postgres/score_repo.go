package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// ScoreRepo implements repository.ScoreRepository for PostgreSQL.
type ScoreRepo struct{ db *sql.DB }

func NewScoreRepo(db *sql.DB) repository.ScoreRepository {
	return &ScoreRepo{db: db}
}

func (repo *ScoreRepo) UpsertBatch(ctx context.Context, scores []*entity.PredictedScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("UpsertBatch: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO predicted_scores (article_id, model_id, score)
VALUES ($1, $2, $3)
ON CONFLICT (article_id, model_id) DO UPDATE SET score = EXCLUDED.score`

	for _, s := range scores {
		s.Clamp()
		if _, err := tx.ExecContext(ctx, query, s.ArticleID, s.ModelID, s.Score); err != nil {
			return fmt.Errorf("UpsertBatch: article %d model %d: %w", s.ArticleID, s.ModelID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UpsertBatch: Commit: %w", err)
	}
	return nil
}

func (repo *ScoreRepo) Get(ctx context.Context, articleID, modelID int64) (*entity.PredictedScore, error) {
	const query = `SELECT article_id, model_id, score FROM predicted_scores WHERE article_id = $1 AND model_id = $2`
	var s entity.PredictedScore
	err := repo.db.QueryRowContext(ctx, query, articleID, modelID).Scan(&s.ArticleID, &s.ModelID, &s.Score)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &s, nil
}

func (repo *ScoreRepo) DeleteByArticleID(ctx context.Context, articleID int64) error {
	const query = `DELETE FROM predicted_scores WHERE article_id = $1`
	_, err := repo.db.ExecContext(ctx, query, articleID)
	if err != nil {
		return fmt.Errorf("DeleteByArticleID: %w", err)
	}
	return nil
}

func (repo *ScoreRepo) ListScored(ctx context.Context, modelID int64, minScore float64, limit, offset int) ([]repository.ScoredArticle, error) {
	query := fmt.Sprintf(`
SELECT a.%s, ps.score
FROM predicted_scores ps
JOIN articles a ON a.id = ps.article_id
WHERE ps.model_id = $1 AND ps.score >= $2
ORDER BY ps.score DESC, a.id DESC
LIMIT $3 OFFSET $4`, articleColumns)

	rows, err := repo.db.QueryContext(ctx, query, modelID, minScore, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListScored: %w", err)
	}
	defer rows.Close()

	var out []repository.ScoredArticle
	for rows.Next() {
		var score float64
		article, err := scanArticle(func(dest ...any) error {
			return rows.Scan(append(dest, &score)...)
		})
		if err != nil {
			return nil, fmt.Errorf("ListScored: scan: %w", err)
		}
		out = append(out, repository.ScoredArticle{Article: article, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListScored: %w", err)
	}
	return out, nil
}

func (repo *ScoreRepo) CountScored(ctx context.Context, modelID int64, minScore float64) (int64, error) {
	const query = `SELECT COUNT(*) FROM predicted_scores WHERE model_id = $1 AND score >= $2`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, modelID, minScore).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountScored: %w", err)
	}
	return count, nil
}

func (repo *ScoreRepo) CoverageGap(ctx context.Context, modelID int64) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM embeddings e
LEFT JOIN predicted_scores ps ON ps.article_id = e.article_id AND ps.model_id = $1
WHERE ps.article_id IS NULL`
	var gap int64
	err := repo.db.QueryRowContext(ctx, query, modelID).Scan(&gap)
	if err != nil {
		return 0, fmt.Errorf("CoverageGap: %w", err)
	}
	return gap, nil
}
