// Package model provides the AdminAPI's Model CRUD use cases, including the
// force-rescore-on-activation behavior from DESIGN.md's Open Question
// resolution #1.
package model

import (
	"context"
	"fmt"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// CreateInput represents the input parameters for registering a new model.
// The binary artifact itself is written to entity.ArtifactPath(modelDir, id)
// out of band; this only records metadata.
type CreateInput struct {
	Name      string
	Notes     string
	ScoreName string
}

// Rescorer lets the model usecase trigger a full rescoring pass after a
// model is activated, without importing the scoring package's concrete
// Service type.
type Rescorer interface {
	Run(ctx context.Context, force bool) error
}

// Service provides model management use cases for the AdminAPI.
type Service struct {
	Repo     repository.ModelRepository
	Rescorer Rescorer // optional; nil disables force-rescore-on-activate
}

func (s *Service) List(ctx context.Context) ([]*entity.Model, error) {
	models, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Model, error) {
	m, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get model: %w", err)
	}
	if m == nil {
		return nil, ErrModelNotFound
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) error {
	m := &entity.Model{
		Name:      in.Name,
		Notes:     in.Notes,
		ScoreName: in.ScoreName,
		IsActive:  false,
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return fmt.Errorf("create model: %w", err)
	}
	return nil
}

// Activate marks a model active and, when a Rescorer is wired, immediately
// runs one force-rescore pass so the newly active model's scores are
// populated without waiting for the next scheduled Update tick (spec §9).
func (s *Service) Activate(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.SetActive(ctx, id, true); err != nil {
		return fmt.Errorf("activate model: %w", err)
	}
	if s.Rescorer != nil {
		if err := s.Rescorer.Run(ctx, true); err != nil {
			return fmt.Errorf("force rescore after activation: %w", err)
		}
	}
	return nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivate model: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	return nil
}
