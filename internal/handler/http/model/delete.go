package model

import (
	"net/http"

	"papersorter/internal/handler/http/pathutil"
	"papersorter/internal/handler/http/respond"
	modUC "papersorter/internal/usecase/model"
)

type DeleteHandler struct{ Svc *modUC.Service }

// ServeHTTP deletes a model's metadata record. The on-disk artifact is not
// removed.
// @Summary      Delete model
// @Tags         models
// @Security     BearerAuth
// @Param        id path int true "Model ID"
// @Success      204 "No Content"
// @Router       /models/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/models/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
