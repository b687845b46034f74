package pagination

import (
	"log/slog"
	"time"
)

// LogRequest logs a pagination request with structured fields.
func LogRequest(logger *slog.Logger, requestID string, params Params) {
	logger.Info("paginated request",
		"request_id", requestID,
		"page", params.Page,
		"limit", params.Limit)
}

// LogResponse logs a pagination response with duration and status.
func LogResponse(logger *slog.Logger, requestID string, params Params, returnedCount int, duration time.Duration, statusCode int) {
	logger.Info("paginated response",
		"request_id", requestID,
		"page", params.Page,
		"limit", params.Limit,
		"returned_count", returnedCount,
		"duration_ms", duration.Milliseconds(),
		"status", statusCode)
}

// LogError logs a pagination error with structured fields.
func LogError(logger *slog.Logger, requestID string, params Params, err error, errorType string) {
	logger.Error("pagination error",
		"request_id", requestID,
		"page", params.Page,
		"limit", params.Limit,
		"error", err.Error(),
		"error_type", errorType)
}
