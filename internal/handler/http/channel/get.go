package channel

import (
	"errors"
	"net/http"

	"papersorter/internal/handler/http/pathutil"
	"papersorter/internal/handler/http/respond"
	chUC "papersorter/internal/usecase/channel"
)

type GetHandler struct{ Svc *chUC.Service }

// ServeHTTP returns a single channel by ID.
// @Summary      Get channel
// @Tags         channels
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Channel ID"
// @Success      200 {object} DTO
// @Failure      400 {string} string "Bad request - invalid channel ID"
// @Failure      404 {string} string "Not found - channel not found"
// @Router       /channels/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/channels/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	ch, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, chUC.ErrChannelNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(ch))
}
