package model

import (
	"net/http"

	"papersorter/internal/common/pagination"
	"papersorter/internal/handler/http/auth"
	modUC "papersorter/internal/usecase/model"
)

// Register registers all model lifecycle HTTP handlers with the given mux.
// Every route requires admin-role JWT auth.
func Register(mux *http.ServeMux, svc *modUC.Service) {
	mux.Handle("GET    /models", auth.Authz(ListHandler{Svc: svc, PaginationCfg: pagination.DefaultConfig()}))
	mux.Handle("POST   /models", auth.Authz(CreateHandler{svc}))
	mux.Handle("POST   /models/{id}/activate", auth.Authz(ActivateHandler{svc}))
	mux.Handle("POST   /models/{id}/deactivate", auth.Authz(DeactivateHandler{svc}))
	mux.Handle("GET    /models/", auth.Authz(GetHandler{svc}))
	mux.Handle("DELETE /models/", auth.Authz(DeleteHandler{svc}))
}
