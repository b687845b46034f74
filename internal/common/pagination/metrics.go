package pagination

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This package backs more than one resource's list handler (scored
// articles, channels, models), so every metric here carries a "resource"
// label instead of the teacher's single hardcoded entity prefix.
var (
	// RequestsTotal counts pagination requests by resource, status, and
	// page bucket.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagination_requests_total",
			Help: "Total number of pagination requests",
		},
		[]string{"resource", "status", "page_range"},
	)

	// DurationSeconds tracks request duration distribution by operation
	// (handler, service, repository).
	DurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagination_duration_seconds",
			Help:    "Request duration distribution",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
		[]string{"operation"},
	)

	// TotalCount tracks the current total item count per resource, updated
	// on each COUNT query.
	TotalCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pagination_total_count",
			Help: "Current total number of items for a paginated resource",
		},
		[]string{"resource"},
	)

	// ErrorsTotal counts pagination errors by resource and error type
	// (validation, database, timeout).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagination_errors_total",
			Help: "Total number of pagination errors",
		},
		[]string{"resource", "type"},
	)
)

// RecordRequest records a pagination request metric for a resource.
func RecordRequest(resource string, statusCode int, page int) {
	RequestsTotal.WithLabelValues(resource, fmt.Sprintf("%d", statusCode), getPageRangeBucket(page)).Inc()
}

// RecordDuration records operation duration in seconds.
func RecordDuration(operation string, duration float64) {
	DurationSeconds.WithLabelValues(operation).Observe(duration)
}

// UpdateTotalCount updates the total-item gauge for a resource.
func UpdateTotalCount(resource string, count int64) {
	TotalCount.WithLabelValues(resource).Set(float64(count))
}

// RecordError records a pagination error metric for a resource.
// errorType should be one of: "validation", "database", "timeout".
func RecordError(resource string, errorType string) {
	ErrorsTotal.WithLabelValues(resource, errorType).Inc()
}

func getPageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
