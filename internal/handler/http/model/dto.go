// Package model provides HTTP handlers for model lifecycle endpoints.
package model

import (
	"time"

	"papersorter/internal/domain/entity"
)

// DTO represents the JSON structure for model metadata.
type DTO struct {
	ID        int64     `json:"id" example:"1"`
	Name      string    `json:"name" example:"gbtree-v3"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
	Notes     string    `json:"notes"`
	ScoreName string    `json:"score_name" example:"relevance"`
}

func toDTO(m *entity.Model) DTO {
	return DTO{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		IsActive:  m.IsActive,
		Notes:     m.Notes,
		ScoreName: m.ScoreName,
	}
}
