package repository

import (
	"context"

	"papersorter/internal/domain/entity"
)

// PreferenceFilter restricts LabeledSet to specific users.
type PreferenceFilter struct {
	UserIDs []int64
}

// PreferenceRepository is append-only: Label never deletes prior rows.
type PreferenceRepository interface {
	Label(ctx context.Context, pref *entity.Preference) error

	// LabeledSet returns the latest row per (article_id, user_id) matching
	// filter, for training consumers.
	LabeledSet(ctx context.Context, filter PreferenceFilter) ([]*entity.Preference, error)
}
