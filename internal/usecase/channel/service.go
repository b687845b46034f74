// Package channel provides the AdminAPI's Channel CRUD use cases, following
// the teacher's usecase/source thin-service-over-repository pattern.
package channel

import (
	"context"
	"fmt"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// CreateInput represents the input parameters for creating a new channel.
type CreateInput struct {
	Name           string
	Endpoint       string
	ScoreThreshold float64
	ModelID        int64
	BroadcastLimit int
	BroadcastHours entity.BroadcastHours
	Timezone       string
}

// UpdateInput represents the input parameters for updating an existing
// channel. Nil pointer fields are left unchanged.
type UpdateInput struct {
	ID             int64
	Name           *string
	Endpoint       *string
	ScoreThreshold *float64
	ModelID        *int64
	IsActive       *bool
	BroadcastLimit *int
	BroadcastHours *entity.BroadcastHours
	Timezone       *string
}

// Service provides channel management use cases for the AdminAPI.
type Service struct {
	Repo repository.ChannelRepository
}

func (s *Service) List(ctx context.Context) ([]*entity.Channel, error) {
	channels, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return channels, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Channel, error) {
	ch, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) error {
	ch := &entity.Channel{
		Name:           in.Name,
		Endpoint:       in.Endpoint,
		ScoreThreshold: in.ScoreThreshold,
		ModelID:        in.ModelID,
		IsActive:       true,
		BroadcastLimit: in.BroadcastLimit,
		BroadcastHours: in.BroadcastHours,
		Timezone:       in.Timezone,
	}
	if ch.BroadcastLimit == 0 {
		ch.BroadcastLimit = 20
	}
	if ch.BroadcastHours == 0 {
		ch.BroadcastHours = entity.AllHours()
	}
	if err := ch.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, ch); err != nil {
		return fmt.Errorf("create channel: %w", err)
	}
	return nil
}

// Update applies non-nil fields from in onto the stored channel and
// persists the result. Returns ErrChannelNotFound when the channel does
// not exist.
func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	ch, err := s.Get(ctx, in.ID)
	if err != nil {
		return err
	}

	if in.Name != nil {
		ch.Name = *in.Name
	}
	if in.Endpoint != nil {
		ch.Endpoint = *in.Endpoint
	}
	if in.ScoreThreshold != nil {
		ch.ScoreThreshold = *in.ScoreThreshold
	}
	if in.ModelID != nil {
		ch.ModelID = *in.ModelID
	}
	if in.IsActive != nil {
		ch.IsActive = *in.IsActive
	}
	if in.BroadcastLimit != nil {
		ch.BroadcastLimit = *in.BroadcastLimit
	}
	if in.BroadcastHours != nil {
		ch.BroadcastHours = *in.BroadcastHours
	}
	if in.Timezone != nil {
		ch.Timezone = *in.Timezone
	}

	if err := ch.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Update(ctx, ch); err != nil {
		return fmt.Errorf("update channel: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}
