package model

import (
	"net/http"

	"papersorter/internal/common/pagination"
	"papersorter/internal/domain/entity"
	"papersorter/internal/handler/http/respond"
	modUC "papersorter/internal/usecase/model"
)

// resourceName labels every pagination metric this handler records.
const resourceName = "model"

type ListHandler struct {
	Svc           *modUC.Service
	PaginationCfg pagination.Config
}

// ServeHTTP lists registered scoring models, paginated with the shared
// offset-pagination framework. Models are an admin-managed, low-cardinality
// set, so pagination is applied in-memory over the full List result rather
// than pushed down to the repository.
// @Summary      List models
// @Tags         models
// @Security     BearerAuth
// @Produce      json
// @Param        page  query int false "Page number" default(1) minimum(1)
// @Param        limit query int false "Page size" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {string} string "Bad request - invalid pagination parameters"
// @Router       /models [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.config()
	params, err := pagination.ParseQueryParams(r, cfg)
	if err != nil {
		pagination.RecordError(resourceName, "validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	models, err := h.Svc.List(r.Context())
	if err != nil {
		pagination.RecordError(resourceName, "database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	total := int64(len(models))
	offset := pagination.CalculateOffset(params.Page, params.Limit)
	var page []*entity.Model
	if offset < len(models) {
		end := offset + params.Limit
		if end > len(models) {
			end = len(models)
		}
		page = models[offset:end]
	}

	out := make([]DTO, 0, len(page))
	for _, m := range page {
		out = append(out, toDTO(m))
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
