package repository

import (
	"context"

	"papersorter/internal/domain/entity"
)

// ChannelRepository manages notification Channel configuration.
type ChannelRepository interface {
	Get(ctx context.Context, id int64) (*entity.Channel, error)
	ListActive(ctx context.Context) ([]*entity.Channel, error)
	List(ctx context.Context) ([]*entity.Channel, error)
	Create(ctx context.Context, channel *entity.Channel) error
	Update(ctx context.Context, channel *entity.Channel) error

	// Deactivate is used by the Dispatcher on permanent provider failure
	// (§4.7/§7): the channel is marked inactive and an admin event is raised
	// by the caller.
	Deactivate(ctx context.Context, id int64) error

	Delete(ctx context.Context, id int64) error
}
