package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"papersorter/internal/repository"
)

// EventRepo implements repository.EventRepository for PostgreSQL.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) repository.EventRepository {
	return &EventRepo{db: db}
}

func (repo *EventRepo) Record(ctx context.Context, event *repository.Event) error {
	const query = `
INSERT INTO events (severity, source, message, created_at)
VALUES ($1, $2, $3, now())
RETURNING id, created_at`
	return repo.db.QueryRowContext(ctx, query, string(event.Severity), event.Source, event.Message).
		Scan(&event.ID, &event.CreatedAt)
}

func (repo *EventRepo) List(ctx context.Context, limit int) ([]*repository.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
SELECT id, severity, source, message, created_at
FROM events
ORDER BY created_at DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]*repository.Event, 0, limit)
	for rows.Next() {
		var e repository.Event
		var severity string
		if err := rows.Scan(&e.ID, &severity, &e.Source, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		e.Severity = repository.EventSeverity(severity)
		events = append(events, &e)
	}
	return events, rows.Err()
}
