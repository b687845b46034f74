package channel

import (
	"encoding/json"
	"errors"
	"net/http"

	"papersorter/internal/domain/entity"
	"papersorter/internal/handler/http/pathutil"
	"papersorter/internal/handler/http/respond"
	chUC "papersorter/internal/usecase/channel"
)

type UpdateHandler struct{ Svc *chUC.Service }

// ServeHTTP updates an existing channel. Only present fields are changed.
// @Summary      Update channel
// @Tags         channels
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Channel ID"
// @Param        channel body object true "Fields to update"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      404 {string} string "Not found - channel not found"
// @Router       /channels/{id} [put]
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/channels/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name           *string `json:"name"`
		Endpoint       *string `json:"endpoint"`
		ScoreThreshold *float64 `json:"score_threshold"`
		ModelID        *int64  `json:"model_id"`
		IsActive       *bool   `json:"is_active"`
		BroadcastLimit *int    `json:"broadcast_limit"`
		BroadcastHours *uint32 `json:"broadcast_hours"`
		Timezone       *string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var hoursPtr *entity.BroadcastHours
	if req.BroadcastHours != nil {
		hours := entity.BroadcastHours(*req.BroadcastHours)
		hoursPtr = &hours
	}

	err = h.Svc.Update(r.Context(), chUC.UpdateInput{
		ID:             id,
		Name:           req.Name,
		Endpoint:       req.Endpoint,
		ScoreThreshold: req.ScoreThreshold,
		ModelID:        req.ModelID,
		IsActive:       req.IsActive,
		BroadcastLimit: req.BroadcastLimit,
		BroadcastHours: hoursPtr,
		Timezone:       req.Timezone,
	})
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, chUC.ErrChannelNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
