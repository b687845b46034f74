package model

import (
	"encoding/json"
	"net/http"

	"papersorter/internal/handler/http/respond"
	modUC "papersorter/internal/usecase/model"
)

type CreateHandler struct{ Svc *modUC.Service }

// ServeHTTP registers a new model's metadata. The binary artifact itself is
// uploaded out of band to the path entity.ArtifactPath(modelDir, id).
// @Summary      Register model
// @Tags         models
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        model body object true "Model metadata"
// @Success      201 "Created"
// @Failure      400 {string} string "Bad request - invalid input"
// @Router       /models [post]
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Notes     string `json:"notes"`
		ScoreName string `json:"score_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Create(r.Context(), modUC.CreateInput{
		Name:      req.Name,
		Notes:     req.Notes,
		ScoreName: req.ScoreName,
	}); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
