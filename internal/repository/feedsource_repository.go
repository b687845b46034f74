package repository

import (
	"context"
	"time"

	"papersorter/internal/domain/entity"
)

// FeedSourceRepository manages configured polling targets.
type FeedSourceRepository interface {
	Get(ctx context.Context, id int64) (*entity.FeedSource, error)
	ListActive(ctx context.Context) ([]*entity.FeedSource, error)
	List(ctx context.Context) ([]*entity.FeedSource, error)
	Create(ctx context.Context, source *entity.FeedSource) error
	Update(ctx context.Context, source *entity.FeedSource) error
	MarkChecked(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}
