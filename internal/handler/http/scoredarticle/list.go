package scoredarticle

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"papersorter/internal/common/pagination"
	"papersorter/internal/handler/http/auth"
	"papersorter/internal/handler/http/requestid"
	"papersorter/internal/handler/http/respond"
	"papersorter/internal/observability/logging"
	"papersorter/internal/repository"
)

// resourceName labels every pagination metric this handler records.
const resourceName = "scored_article"

type ListHandler struct {
	Scores        repository.ScoreRepository
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

// ServeHTTP lists scored articles for a model at or above a minimum score,
// highest score first, paginated with the shared offset-pagination
// framework. Query params: model_id (required), min_score (default 0),
// page (default 1), limit (default 20, max 100).
// @Summary      List scored articles
// @Description  Read-only listing for the external UI layer; not the excluded HTML UI itself.
// @Tags         articles
// @Security     BearerAuth
// @Produce      json
// @Param        model_id  query int     true  "Model ID"
// @Param        min_score query number  false "Minimum score" default(0)
// @Param        page      query int     false "Page number" default(1) minimum(1)
// @Param        limit     query int     false "Page size" default(20) minimum(1) maximum(100)
// @Success      200 {object} pagination.Response[DTO]
// @Failure      400 {string} string "Bad request - invalid query parameters"
// @Router       /articles/scored [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	reqID := requestid.FromContext(ctx)
	logger := logging.WithRequestID(ctx, h.logger())
	cfg := h.config()

	q := r.URL.Query()

	modelID, err := strconv.ParseInt(q.Get("model_id"), 10, 64)
	if err != nil || modelID <= 0 {
		pagination.RecordError(resourceName, "validation")
		respond.SafeError(w, http.StatusBadRequest, errInvalidModelID)
		return
	}

	minScore := 0.0
	if v := q.Get("min_score"); v != "" {
		minScore, err = strconv.ParseFloat(v, 64)
		if err != nil {
			pagination.RecordError(resourceName, "validation")
			respond.SafeError(w, http.StatusBadRequest, errInvalidMinScore)
			return
		}
	}

	params, err := pagination.ParseQueryParams(r, cfg)
	if err != nil {
		logger.Warn("invalid pagination parameters", "error", err.Error(), "request_id", reqID)
		pagination.RecordError(resourceName, "validation")
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	offset := pagination.CalculateOffset(params.Page, params.Limit)
	scored, err := h.Scores.ListScored(ctx, modelID, minScore, params.Limit, offset)
	if err != nil {
		pagination.RecordError(resourceName, "database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	total, err := h.Scores.CountScored(ctx, modelID, minScore)
	if err != nil {
		pagination.RecordError(resourceName, "database")
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(scored))
	for _, sa := range scored {
		out = append(out, toDTO(sa))
	}

	metadata := pagination.Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.CalculateTotalPages(total, params.Limit),
	}
	response := pagination.NewResponse(out, metadata)

	duration := time.Since(start)
	pagination.RecordRequest(resourceName, http.StatusOK, params.Page)
	pagination.RecordDuration("handler", duration.Seconds())
	pagination.UpdateTotalCount(resourceName, total)
	pagination.LogResponse(logger, reqID, params, len(out), duration, http.StatusOK)

	respond.JSON(w, http.StatusOK, response)
}

func (h ListHandler) config() pagination.Config {
	if h.PaginationCfg == (pagination.Config{}) {
		return pagination.DefaultConfig()
	}
	return h.PaginationCfg
}

func (h ListHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// Register registers the read-only scored-article listing with the given
// mux. Reachable by both RoleAdmin and RoleViewer.
func Register(mux *http.ServeMux, scores repository.ScoreRepository) {
	mux.Handle("GET /articles/scored", auth.Authz(ListHandler{Scores: scores, PaginationCfg: pagination.DefaultConfig()}))
}
