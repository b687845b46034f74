package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// DefaultSearchTimeout bounds SimilarArticles queries.
const DefaultSearchTimeout = 5 * time.Second

// ArticleRepo implements repository.ArticleRepository for PostgreSQL.
type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

func scanArticle(scan func(dest ...any) error) (*entity.Article, error) {
	var a entity.Article
	var publishedAt sql.NullTime
	if err := scan(&a.ID, &a.ExternalID, &a.Title, &a.Content, &a.Authors,
		&a.Origin, &a.Link, &publishedAt, &a.AddedAt, &a.TLDR); err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		a.PublishedAt = publishedAt.Time
	}
	return &a, nil
}

const articleColumns = `id, external_id, title, content, authors, origin, link, published_at, added_at, tldr`

func (repo *ArticleRepo) UpsertByExternalID(ctx context.Context, article *entity.Article) (bool, error) {
	if err := article.Validate(); err != nil {
		return false, fmt.Errorf("UpsertByExternalID: %w", err)
	}

	const query = `
INSERT INTO articles (external_id, title, content, authors, origin, link, published_at, added_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (external_id) DO NOTHING
RETURNING id, added_at`

	err := repo.db.QueryRowContext(ctx, query,
		article.ExternalID, article.Title, article.Content, article.Authors,
		article.Origin, article.Link, nullTime(article.PublishedAt),
	).Scan(&article.ID, &article.AddedAt)

	if err == sql.ErrNoRows {
		existing, getErr := repo.GetByExternalID(ctx, article.ExternalID)
		if getErr != nil {
			return false, fmt.Errorf("UpsertByExternalID: %w", getErr)
		}
		if existing != nil {
			article.ID = existing.ID
			article.AddedAt = existing.AddedAt
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("UpsertByExternalID: %w", err)
	}
	return true, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (repo *ArticleRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE external_id = $1`
	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, externalID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByExternalID: %w", err)
	}
	return a, nil
}

func (repo *ArticleRepo) GetByLink(ctx context.Context, link string) (*entity.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE link = $1 LIMIT 1`
	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, link).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByLink: %w", err)
	}
	return a, nil
}

func (repo *ArticleRepo) FindRecentByNormalizedTitle(ctx context.Context, since time.Time, limit int) ([]*entity.Article, error) {
	if limit <= 0 {
		limit = 500
	}
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE added_at >= $1
ORDER BY added_at DESC
LIMIT $2`

	rows, err := repo.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("FindRecentByNormalizedTitle: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("FindRecentByNormalizedTitle: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) GetArticlesMissingEmbedding(ctx context.Context, limit int) ([]*entity.Article, error) {
	if limit <= 0 {
		limit = 64
	}
	const query = `
SELECT ` + qualify("a", articleColumns) + `
FROM articles a
LEFT JOIN embeddings e ON e.article_id = a.id
WHERE e.article_id IS NULL
ORDER BY a.id ASC
LIMIT $1`

	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("GetArticlesMissingEmbedding: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("GetArticlesMissingEmbedding: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) GetArticlesMissingScore(ctx context.Context, modelID int64, afterID int64, limit int, force bool) ([]*entity.Article, error) {
	if limit <= 0 {
		limit = 64
	}

	query := `
SELECT ` + qualify("a", articleColumns) + `
FROM articles a
INNER JOIN embeddings e ON e.article_id = a.id
LEFT JOIN predicted_scores ps ON ps.article_id = a.id AND ps.model_id = $1
WHERE ps.article_id IS NULL AND a.id > $2
ORDER BY a.id ASC
LIMIT $3`
	if force {
		query = `
SELECT ` + qualify("a", articleColumns) + `
FROM articles a
INNER JOIN embeddings e ON e.article_id = a.id
WHERE a.id > $2
ORDER BY a.id ASC
LIMIT $3`
	}

	rows, err := repo.db.QueryContext(ctx, query, modelID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("GetArticlesMissingScore: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("GetArticlesMissingScore: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) SetTLDR(ctx context.Context, articleID int64, tldr string) error {
	const query = `UPDATE articles SET tldr = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, tldr, articleID)
	if err != nil {
		return fmt.Errorf("SetTLDR: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetTLDR: no rows affected")
	}
	return nil
}

func (repo *ArticleRepo) SimilarArticles(ctx context.Context, vector []float32, k int, filter repository.ArticleFilter) ([]repository.SimilarArticle, error) {
	searchCtx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	if k <= 0 {
		k = 10
	}
	if k > 200 {
		k = 200
	}

	vec := pgvectorVector(vector)

	query := `
SELECT ` + qualify("a", articleColumns) + `, e.vector <=> $1 AS distance
FROM embeddings e
INNER JOIN articles a ON a.id = e.article_id`
	args := []any{vec}
	idx := 2

	var joins, where string
	if filter.ModelID != nil || filter.MinScore != nil {
		joins = `
INNER JOIN predicted_scores ps ON ps.article_id = a.id`
		if filter.ModelID != nil {
			where += fmt.Sprintf(" AND ps.model_id = $%d", idx)
			args = append(args, *filter.ModelID)
			idx++
		}
		if filter.MinScore != nil {
			where += fmt.Sprintf(" AND ps.score >= $%d", idx)
			args = append(args, *filter.MinScore)
			idx++
		}
	}
	if filter.ChannelID != nil {
		joins += `
INNER JOIN broadcasts b ON b.article_id = a.id`
		where += fmt.Sprintf(" AND b.channel_id = $%d", idx)
		args = append(args, *filter.ChannelID)
		idx++
	}

	query += joins
	if where != "" {
		query += "\nWHERE " + where[len(" AND "):]
	}
	query += fmt.Sprintf("\nORDER BY e.vector <=> $1\nLIMIT $%d", idx)
	args = append(args, k)

	rows, err := repo.db.QueryContext(searchCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SimilarArticles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]repository.SimilarArticle, 0, k)
	for rows.Next() {
		var publishedAt sql.NullTime
		var a entity.Article
		var distance float64
		if err := rows.Scan(&a.ID, &a.ExternalID, &a.Title, &a.Content, &a.Authors,
			&a.Origin, &a.Link, &publishedAt, &a.AddedAt, &a.TLDR, &distance); err != nil {
			return nil, fmt.Errorf("SimilarArticles: Scan: %w", err)
		}
		if publishedAt.Valid {
			a.PublishedAt = publishedAt.Time
		}
		results = append(results, repository.SimilarArticle{Article: &a, Distance: distance})
	}
	return results, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// qualify prefixes every column in a comma-separated column list literal
// with a table alias, e.g. qualify("a", "id, title") -> "a.id, a.title".
func qualify(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
