package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// UserRepo implements repository.UserRepository for PostgreSQL.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) repository.UserRepository {
	return &UserRepo{db: db}
}

const userColumns = `id, username, is_admin, timezone, theme, bookmark_article_id, min_score_threshold, primary_channel_id`

func scanUser(scan func(dest ...any) error) (*entity.User, error) {
	var u entity.User
	var bookmark sql.NullInt64
	var primaryChannel sql.NullInt64
	if err := scan(&u.ID, &u.Username, &u.IsAdmin, &u.Timezone, &u.Theme,
		&bookmark, &u.MinScoreThreshold, &primaryChannel); err != nil {
		return nil, err
	}
	if bookmark.Valid {
		u.BookmarkArticleID = &bookmark.Int64
	}
	if primaryChannel.Valid {
		u.PrimaryChannelID = &primaryChannel.Int64
	}
	return &u, nil
}

func (repo *UserRepo) Get(ctx context.Context, id int64) (*entity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(repo.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return u, nil
}

func (repo *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(repo.db.QueryRowContext(ctx, query, username).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return u, nil
}

func (repo *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*entity.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	const query = `
INSERT INTO users (username, is_admin, timezone, theme, bookmark_article_id, min_score_threshold, primary_channel_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	return repo.db.QueryRowContext(ctx, query,
		user.Username, user.IsAdmin, user.Timezone, user.Theme,
		nullInt64(user.BookmarkArticleID), user.MinScoreThreshold, nullInt64(user.PrimaryChannelID),
	).Scan(&user.ID)
}

func (repo *UserRepo) Update(ctx context.Context, user *entity.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	const query = `
UPDATE users SET
    username = $1, is_admin = $2, timezone = $3, theme = $4,
    bookmark_article_id = $5, min_score_threshold = $6, primary_channel_id = $7
WHERE id = $8`
	res, err := repo.db.ExecContext(ctx, query,
		user.Username, user.IsAdmin, user.Timezone, user.Theme,
		nullInt64(user.BookmarkArticleID), user.MinScoreThreshold, nullInt64(user.PrimaryChannelID), user.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *UserRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
