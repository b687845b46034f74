package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// PreferenceRepo implements repository.PreferenceRepository for PostgreSQL.
type PreferenceRepo struct{ db *sql.DB }

func NewPreferenceRepo(db *sql.DB) repository.PreferenceRepository {
	return &PreferenceRepo{db: db}
}

func (repo *PreferenceRepo) Label(ctx context.Context, pref *entity.Preference) error {
	if err := pref.Validate(); err != nil {
		return fmt.Errorf("Label: %w", err)
	}
	const query = `
INSERT INTO preferences (article_id, user_id, score, source, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING id, created_at`
	return repo.db.QueryRowContext(ctx, query, pref.ArticleID, pref.UserID, pref.Score, string(pref.Source)).
		Scan(&pref.ID, &pref.CreatedAt)
}

// LabeledSet returns the latest preference row per (article_id, user_id)
// using DISTINCT ON, ordered by recency — the row that "wins" for
// training, per the append-only design.
func (repo *PreferenceRepo) LabeledSet(ctx context.Context, filter repository.PreferenceFilter) ([]*entity.Preference, error) {
	query := `
SELECT DISTINCT ON (article_id, user_id)
    id, article_id, user_id, score, source, created_at
FROM preferences`
	var args []any
	if len(filter.UserIDs) > 0 {
		placeholders := make([]string, len(filter.UserIDs))
		for i, id := range filter.UserIDs {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, id)
		}
		query += " WHERE user_id IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY article_id, user_id, created_at DESC"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("LabeledSet: %w", err)
	}
	defer func() { _ = rows.Close() }()

	prefs := make([]*entity.Preference, 0, 64)
	for rows.Next() {
		var p entity.Preference
		var source string
		if err := rows.Scan(&p.ID, &p.ArticleID, &p.UserID, &p.Score, &source, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("LabeledSet: Scan: %w", err)
		}
		p.Source = entity.PreferenceSource(source)
		prefs = append(prefs, &p)
	}
	return prefs, rows.Err()
}
