package repository

import (
	"context"

	"papersorter/internal/domain/entity"
)

// ModelRepository manages Model metadata rows. The binary artifact itself
// lives on disk at entity.ArtifactPath(modelDir, id) and is not stored here.
type ModelRepository interface {
	Get(ctx context.Context, id int64) (*entity.Model, error)
	ListActive(ctx context.Context) ([]*entity.Model, error)
	List(ctx context.Context) ([]*entity.Model, error)
	Create(ctx context.Context, model *entity.Model) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}
