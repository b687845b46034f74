// Package preference provides the HTTP handler for label ingestion (C9).
package preference

import (
	"encoding/json"
	"net/http"

	"papersorter/internal/domain/entity"
	"papersorter/internal/handler/http/auth"
	"papersorter/internal/handler/http/respond"
	prefUC "papersorter/internal/usecase/preference"
)

type LabelHandler struct{ Svc *prefUC.Store }

// ServeHTTP records an explicit preference label for an article. The caller
// (UI layer) supplies the user, article, a binary score, and the source
// channel the label came from (star click, interactive feedback, alert
// reaction).
// @Summary      Label an article
// @Description  Records a user's binary relevance label on an article.
// @Tags         preferences
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        label body object true "Preference label"
// @Success      201 "Created"
// @Failure      400 {string} string "Bad request - invalid input"
// @Router       /preferences [post]
func (h LabelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ArticleID int64  `json:"article_id"`
		UserID    int64  `json:"user_id"`
		Score     int    `json:"score"`
		Source    string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Label(r.Context(), req.ArticleID, req.UserID, req.Score, entity.PreferenceSource(req.Source)); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Register registers the preference-labeling HTTP handler with the given
// mux. Allowed for both RoleAdmin and RoleViewer (see
// internal/handler/http/auth/roles.go) since any authenticated user can
// label articles for themselves.
func Register(mux *http.ServeMux, svc *prefUC.Store) {
	mux.Handle("POST /preferences", auth.Authz(LabelHandler{svc}))
}
