package channel

import (
	"net/http"

	"papersorter/internal/handler/http/pathutil"
	"papersorter/internal/handler/http/respond"
	chUC "papersorter/internal/usecase/channel"
)

type DeleteHandler struct{ Svc *chUC.Service }

// ServeHTTP deletes a channel.
// @Summary      Delete channel
// @Tags         channels
// @Security     BearerAuth
// @Param        id path int true "Channel ID"
// @Success      204 "No Content"
// @Failure      400 {string} string "Bad request - invalid ID"
// @Router       /channels/{id} [delete]
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/channels/")
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
