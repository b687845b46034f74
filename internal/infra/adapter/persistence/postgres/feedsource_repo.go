package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// FeedSourceRepo implements repository.FeedSourceRepository for PostgreSQL.
type FeedSourceRepo struct{ db *sql.DB }

func NewFeedSourceRepo(db *sql.DB) repository.FeedSourceRepository {
	return &FeedSourceRepo{db: db}
}

const feedSourceColumns = `id, name, url, type, last_checked_at, is_active, credential_ref`

func scanFeedSource(scan func(dest ...any) error) (*entity.FeedSource, error) {
	var f entity.FeedSource
	var lastChecked sql.NullTime
	var sourceType string
	if err := scan(&f.ID, &f.Name, &f.URL, &sourceType, &lastChecked, &f.IsActive, &f.CredentialRef); err != nil {
		return nil, err
	}
	f.Type = entity.FeedSourceType(sourceType)
	if lastChecked.Valid {
		f.LastCheckedAt = &lastChecked.Time
	}
	return &f, nil
}

func (repo *FeedSourceRepo) Get(ctx context.Context, id int64) (*entity.FeedSource, error) {
	const query = `SELECT ` + feedSourceColumns + ` FROM feed_sources WHERE id = $1`
	f, err := scanFeedSource(repo.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return f, nil
}

func (repo *FeedSourceRepo) ListActive(ctx context.Context) ([]*entity.FeedSource, error) {
	return repo.list(ctx, `SELECT `+feedSourceColumns+` FROM feed_sources WHERE is_active = TRUE ORDER BY id ASC`)
}

func (repo *FeedSourceRepo) List(ctx context.Context) ([]*entity.FeedSource, error) {
	return repo.list(ctx, `SELECT `+feedSourceColumns+` FROM feed_sources ORDER BY id ASC`)
}

func (repo *FeedSourceRepo) list(ctx context.Context, query string) ([]*entity.FeedSource, error) {
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.FeedSource, 0, 32)
	for rows.Next() {
		f, err := scanFeedSource(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list: Scan: %w", err)
		}
		sources = append(sources, f)
	}
	return sources, rows.Err()
}

func (repo *FeedSourceRepo) Create(ctx context.Context, source *entity.FeedSource) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	const query = `
INSERT INTO feed_sources (name, url, type, is_active, credential_ref)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	return repo.db.QueryRowContext(ctx, query,
		source.Name, source.URL, string(source.Type), source.IsActive, source.CredentialRef,
	).Scan(&source.ID)
}

func (repo *FeedSourceRepo) Update(ctx context.Context, source *entity.FeedSource) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	const query = `
UPDATE feed_sources SET
    name = $1, url = $2, type = $3, is_active = $4, credential_ref = $5
WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		source.Name, source.URL, string(source.Type), source.IsActive, source.CredentialRef, source.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *FeedSourceRepo) MarkChecked(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE feed_sources SET last_checked_at = $1 WHERE id = $2`
	_, err := repo.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("MarkChecked: %w", err)
	}
	return nil
}

func (repo *FeedSourceRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM feed_sources WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
