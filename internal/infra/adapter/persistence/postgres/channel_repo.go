package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// ChannelRepo implements repository.ChannelRepository for PostgreSQL.
type ChannelRepo struct{ db *sql.DB }

func NewChannelRepo(db *sql.DB) repository.ChannelRepository {
	return &ChannelRepo{db: db}
}

const channelColumns = `id, name, endpoint, score_threshold, model_id, is_active, broadcast_limit, broadcast_hours, timezone`

func scanChannel(scan func(dest ...any) error) (*entity.Channel, error) {
	var c entity.Channel
	var hours uint32
	if err := scan(&c.ID, &c.Name, &c.Endpoint, &c.ScoreThreshold, &c.ModelID,
		&c.IsActive, &c.BroadcastLimit, &hours, &c.Timezone); err != nil {
		return nil, err
	}
	c.BroadcastHours = entity.BroadcastHours(hours)
	return &c, nil
}

func (repo *ChannelRepo) Get(ctx context.Context, id int64) (*entity.Channel, error) {
	const query = `SELECT ` + channelColumns + ` FROM channels WHERE id = $1`
	c, err := scanChannel(repo.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return c, nil
}

func (repo *ChannelRepo) ListActive(ctx context.Context) ([]*entity.Channel, error) {
	return repo.list(ctx, `SELECT `+channelColumns+` FROM channels WHERE is_active = TRUE ORDER BY id ASC`)
}

func (repo *ChannelRepo) List(ctx context.Context) ([]*entity.Channel, error) {
	return repo.list(ctx, `SELECT `+channelColumns+` FROM channels ORDER BY id ASC`)
}

func (repo *ChannelRepo) list(ctx context.Context, query string) ([]*entity.Channel, error) {
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	channels := make([]*entity.Channel, 0, 16)
	for rows.Next() {
		c, err := scanChannel(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list: Scan: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

func (repo *ChannelRepo) Create(ctx context.Context, channel *entity.Channel) error {
	if err := channel.Validate(); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	const query = `
INSERT INTO channels (name, endpoint, score_threshold, model_id, is_active, broadcast_limit, broadcast_hours, timezone)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	return repo.db.QueryRowContext(ctx, query,
		channel.Name, channel.Endpoint, channel.ScoreThreshold, channel.ModelID,
		channel.IsActive, channel.BroadcastLimit, uint32(channel.BroadcastHours), channel.Timezone,
	).Scan(&channel.ID)
}

func (repo *ChannelRepo) Update(ctx context.Context, channel *entity.Channel) error {
	if err := channel.Validate(); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	const query = `
UPDATE channels SET
    name = $1, endpoint = $2, score_threshold = $3, model_id = $4,
    is_active = $5, broadcast_limit = $6, broadcast_hours = $7, timezone = $8
WHERE id = $9`
	res, err := repo.db.ExecContext(ctx, query,
		channel.Name, channel.Endpoint, channel.ScoreThreshold, channel.ModelID,
		channel.IsActive, channel.BroadcastLimit, uint32(channel.BroadcastHours), channel.Timezone, channel.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *ChannelRepo) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE channels SET is_active = FALSE WHERE id = $1`
	_, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Deactivate: %w", err)
	}
	return nil
}

func (repo *ChannelRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM channels WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
