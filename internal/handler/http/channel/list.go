package channel

import (
	"net/http"

	"papersorter/internal/common/pagination"
	"papersorter/internal/handler/http/respond"
	chUC "papersorter/internal/usecase/channel"
)

// resourceName labels every pagination metric this handler records.
const resourceName = "channel"

type ListHandler struct {
	Svc           *chUC.Service
	PaginationCfg pagination.Config
}

// ServeHTTP lists configured broadcast channels, paginated with the shared
// offset-pagination framework. Channels are an admin-managed, low-cardinality
// set, so pagination is applied in-memory over the full List result rather
// than pushed down to the repository.
// @Summary      List channels
// @Description  Returns every configured broadcast channel, active or not.
// @Tags         channels
// @Security     BearerAuth
// @Produce      json
// @Param        page  query int false "Page number" default(1) minimum(1)
// @Param        limit query int false "Page size" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {string} string "Bad request - invalid pagination parameters"
// @Failure      401 {string} string "Authentication required"
// @Failure      403 {string} string "Forbidden - admin role required"
// @Failure      500 {string} string "internal server error"
// @Router       /channels [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.config()
	params, err := pagination.ParseQueryParams(r, cfg)
	if err != nil {
		pagination.RecordError(resourceName, "validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	channels, err := h.Svc.List(r.Context())
	if err != nil {
		pagination.RecordError(resourceName, "database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	total := int64(len(channels))
	page := paginateSlice(channels, params)

	out := make([]DTO, 0, len(page))
	for _, ch := range page {
		out = append(out, toDTO(ch))
	}

	metadata := pagination.Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.CalculateTotalPages(total, params.Limit),
	}
	pagination.RecordRequest(resourceName, http.StatusOK, params.Page)
	pagination.UpdateTotalCount(resourceName, total)
	respond.JSON(w, http.StatusOK, pagination.NewResponse(out, metadata))
}

func (h ListHandler) config() pagination.Config {
	if h.PaginationCfg == (pagination.Config{}) {
		return pagination.DefaultConfig()
	}
	return h.PaginationCfg
}

// paginateSlice applies offset-pagination to an already-loaded slice. Out of
// range pages return an empty slice rather than an error.
func paginateSlice[T any](items []T, params pagination.Params) []T {
	offset := pagination.CalculateOffset(params.Page, params.Limit)
	if offset >= len(items) {
		return nil
	}
	end := offset + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
