package model

import (
	"errors"
	"net/http"

	"papersorter/internal/handler/http/pathutil"
	"papersorter/internal/handler/http/respond"
	modUC "papersorter/internal/usecase/model"
)

type GetHandler struct{ Svc *modUC.Service }

// ServeHTTP returns a single model's metadata.
// @Summary      Get model
// @Tags         models
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Model ID"
// @Success      200 {object} DTO
// @Failure      404 {string} string "Not found - model not found"
// @Router       /models/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/models/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, modUC.ErrModelNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(m))
}
