package channel

import (
	"net/http"

	"papersorter/internal/common/pagination"
	"papersorter/internal/handler/http/auth"
	chUC "papersorter/internal/usecase/channel"
)

// Register registers all channel management HTTP handlers with the given
// mux. Every route requires admin-role JWT auth; there is no public read
// path for channel configuration.
func Register(mux *http.ServeMux, svc *chUC.Service) {
	mux.Handle("GET    /channels", auth.Authz(ListHandler{Svc: svc, PaginationCfg: pagination.DefaultConfig()}))
	mux.Handle("GET    /channels/", auth.Authz(GetHandler{svc}))
	mux.Handle("POST   /channels", auth.Authz(CreateHandler{svc}))
	mux.Handle("PUT    /channels/", auth.Authz(UpdateHandler{svc}))
	mux.Handle("DELETE /channels/", auth.Authz(DeleteHandler{svc}))
}
