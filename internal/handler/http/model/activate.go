package model

import (
	"errors"
	"net/http"
	"strings"

	"papersorter/internal/handler/http/pathutil"
	"papersorter/internal/handler/http/respond"
	modUC "papersorter/internal/usecase/model"
)

// ActivateHandler flips a model active and, per DESIGN.md's Open Question
// resolution #1, triggers a one-time force rescore pass so the newly active
// model's scores populate without waiting for the next Update tick.
type ActivateHandler struct{ Svc *modUC.Service }

// ServeHTTP activates a model.
// @Summary      Activate model
// @Description  Marks a model active and forces an immediate full rescore pass.
// @Tags         models
// @Security     BearerAuth
// @Param        id path int true "Model ID"
// @Success      204 "No Content"
// @Failure      404 {string} string "Not found - model not found"
// @Router       /models/{id}/activate [post]
func (h ActivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := extractModelID(r.URL.Path, "/activate")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Activate(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, modUC.ErrModelNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeactivateHandler marks a model inactive; the Scorer simply skips it on
// the next Update tick.
type DeactivateHandler struct{ Svc *modUC.Service }

// ServeHTTP deactivates a model.
// @Summary      Deactivate model
// @Tags         models
// @Security     BearerAuth
// @Param        id path int true "Model ID"
// @Success      204 "No Content"
// @Failure      404 {string} string "Not found - model not found"
// @Router       /models/{id}/deactivate [post]
func (h DeactivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := extractModelID(r.URL.Path, "/deactivate")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Deactivate(r.Context(), id); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, modUC.ErrModelNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// extractModelID parses the {id} segment out of "/models/{id}<suffix>".
func extractModelID(path, suffix string) (int64, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, "/models/"), suffix)
	return pathutil.ExtractID("/"+trimmed, "/")
}
