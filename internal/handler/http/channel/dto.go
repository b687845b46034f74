// Package channel provides HTTP handlers for channel management endpoints.
package channel

import "papersorter/internal/domain/entity"

// DTO represents the JSON structure for channel data transfer.
type DTO struct {
	ID             int64  `json:"id" example:"1"`
	Name           string `json:"name" example:"ml-highlights"`
	Endpoint       string `json:"endpoint" example:"https://hooks.slack.com/services/..."`
	ScoreThreshold float64 `json:"score_threshold" example:"0.75"`
	ModelID        int64  `json:"model_id" example:"1"`
	IsActive       bool   `json:"is_active" example:"true"`
	BroadcastLimit int    `json:"broadcast_limit" example:"20"`
	BroadcastHours uint32 `json:"broadcast_hours" example:"16777215"`
	Timezone       string `json:"timezone" example:"Asia/Tokyo"`
}

func toDTO(ch *entity.Channel) DTO {
	return DTO{
		ID:             ch.ID,
		Name:           ch.Name,
		Endpoint:       ch.Endpoint,
		ScoreThreshold: ch.ScoreThreshold,
		ModelID:        ch.ModelID,
		IsActive:       ch.IsActive,
		BroadcastLimit: ch.BroadcastLimit,
		BroadcastHours: uint32(ch.BroadcastHours),
		Timezone:       ch.Timezone,
	}
}
