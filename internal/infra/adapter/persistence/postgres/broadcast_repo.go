package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// BroadcastRepo implements repository.BroadcastRepository for PostgreSQL.
// The broadcasts table is simultaneously the queue and the delivery log
// (§9 Design Note "queue as table").
type BroadcastRepo struct{ db *sql.DB }

func NewBroadcastRepo(db *sql.DB) repository.BroadcastRepository {
	return &BroadcastRepo{db: db}
}

func (repo *BroadcastRepo) Enqueue(ctx context.Context, articleID, channelID int64) (bool, error) {
	const query = `
INSERT INTO broadcasts (article_id, channel_id, queued_at)
VALUES ($1, $2, now())
ON CONFLICT (article_id, channel_id) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, query, articleID, channelID)
	if err != nil {
		return false, fmt.Errorf("Enqueue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Enqueue: RowsAffected: %w", err)
	}
	return n > 0, nil
}

func (repo *BroadcastRepo) QueueDepth(ctx context.Context, channelID int64) (int64, error) {
	const query = `
SELECT COUNT(*) FROM broadcasts
WHERE channel_id = $1 AND broadcasted_time IS NULL AND reason = ''`
	var depth int64
	err := repo.db.QueryRowContext(ctx, query, channelID).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("QueueDepth: %w", err)
	}
	return depth, nil
}

// Claim selects queued entries for a channel ordered by the underlying
// article's published time descending, with article id as a stable
// secondary order, per §4.7 ("deliveries are attempted newest-published
// first"). It uses FOR UPDATE SKIP LOCKED so concurrent dispatcher
// instances never double-claim the same entry.
func (repo *BroadcastRepo) Claim(ctx context.Context, channelID int64, limit int) ([]*entity.Article, error) {
	if limit <= 0 {
		return nil, nil
	}
	const query = `
SELECT ` + articleColumns + `
FROM articles a
INNER JOIN broadcasts b ON b.article_id = a.id
WHERE b.channel_id = $1 AND b.broadcasted_time IS NULL AND b.reason = ''
ORDER BY a.published_at DESC, a.id ASC
LIMIT $2
FOR UPDATE OF b SKIP LOCKED`

	rows, err := repo.db.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("Claim: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("Claim: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (repo *BroadcastRepo) MarkDelivered(ctx context.Context, articleID, channelID int64, at time.Time) error {
	const query = `
UPDATE broadcasts SET broadcasted_time = $1
WHERE article_id = $2 AND channel_id = $3 AND broadcasted_time IS NULL`
	res, err := repo.db.ExecContext(ctx, query, at, articleID, channelID)
	if err != nil {
		return fmt.Errorf("MarkDelivered: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &entity.InvariantViolationError{
			Invariant: "broadcast-at-most-once",
			Detail:    fmt.Sprintf("article %d channel %d already delivered or not queued", articleID, channelID),
		}
	}
	return nil
}

func (repo *BroadcastRepo) MarkSuppressed(ctx context.Context, articleID, channelID int64, reason entity.BroadcastReason) error {
	const query = `
UPDATE broadcasts SET reason = $1
WHERE article_id = $2 AND channel_id = $3 AND broadcasted_time IS NULL`
	_, err := repo.db.ExecContext(ctx, query, string(reason), articleID, channelID)
	if err != nil {
		return fmt.Errorf("MarkSuppressed: %w", err)
	}
	return nil
}

func (repo *BroadcastRepo) FindRecentDelivered(ctx context.Context, channelID int64, since time.Time) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
INNER JOIN broadcasts b ON b.article_id = a.id
WHERE b.channel_id = $1 AND b.broadcasted_time >= $2
ORDER BY b.broadcasted_time DESC`

	rows, err := repo.db.QueryContext(ctx, query, channelID, since)
	if err != nil {
		return nil, fmt.Errorf("FindRecentDelivered: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, 64)
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("FindRecentDelivered: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (repo *BroadcastRepo) PurgeDelivered(ctx context.Context, olderThan time.Time) (int64, error) {
	const query = `
DELETE FROM broadcasts
WHERE broadcasted_time IS NOT NULL AND broadcasted_time < $1`
	res, err := repo.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("PurgeDelivered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("PurgeDelivered: RowsAffected: %w", err)
	}
	return n, nil
}
