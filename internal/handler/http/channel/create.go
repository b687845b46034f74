package channel

import (
	"encoding/json"
	"net/http"

	"papersorter/internal/domain/entity"
	"papersorter/internal/handler/http/respond"
	chUC "papersorter/internal/usecase/channel"
)

type CreateHandler struct{ Svc *chUC.Service }

// ServeHTTP creates a new broadcast channel.
// @Summary      Create channel
// @Tags         channels
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        channel body object true "Channel configuration"
// @Success      201 "Created"
// @Failure      400 {string} string "Bad request - invalid input"
// @Router       /channels [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string  `json:"name"`
		Endpoint       string  `json:"endpoint"`
		ScoreThreshold float64 `json:"score_threshold"`
		ModelID        int64   `json:"model_id"`
		BroadcastLimit int     `json:"broadcast_limit"`
		BroadcastHours uint32  `json:"broadcast_hours"`
		Timezone       string  `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Create(r.Context(), chUC.CreateInput{
		Name:           req.Name,
		Endpoint:       req.Endpoint,
		ScoreThreshold: req.ScoreThreshold,
		ModelID:        req.ModelID,
		BroadcastLimit: req.BroadcastLimit,
		BroadcastHours: entity.BroadcastHours(req.BroadcastHours),
		Timezone:       req.Timezone,
	}); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
