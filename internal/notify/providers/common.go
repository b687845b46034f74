package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// sendTimeout bounds every provider's transport call (spec §4.8: "10s
// timeout").
const sendTimeout = 10 * time.Second

// RateLimitError is a 429 response, retriable after RetryAfter.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
}

// ClientError is a non-429 4xx response; not retriable (spec §4.7 step 9).
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError is a 5xx response; retriable (spec §4.7 step 8).
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// classifyStatus maps an HTTP status code to a Result, following the
// teacher's notifier error taxonomy (RateLimitError/ClientError/ServerError).
func classifyStatus(status int, body string) (Result, error) {
	if status >= 200 && status < 300 {
		return ResultOK, nil
	}
	if status == http.StatusTooManyRequests {
		return ResultRetriable, &RateLimitError{RetryAfter: 5 * time.Second, Message: "rate limit exceeded"}
	}
	if status >= 400 && status < 500 {
		return ResultPermanent, &ClientError{StatusCode: status, Message: fmt.Sprintf("client error %d: %s", status, body)}
	}
	if status >= 500 {
		return ResultRetriable, &ServerError{StatusCode: status, Message: fmt.Sprintf("server error %d: %s", status, body)}
	}
	return ResultRetriable, fmt.Errorf("unexpected status %d: %s", status, body)
}

// resultFromError classifies a transport-level (non-HTTP-status) error as
// retriable, since network/timeout failures are transient by nature.
func resultFromError(err error) (Result, error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ResultRetriable, err
	}
	return ResultRetriable, err
}

// truncate trims s to max characters, appending "..." when shortened.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// newRateLimiter builds a token-bucket limiter, mirroring the teacher's
// RateLimiter(requestsPerSecond, burst) wrapper around golang.org/x/time/rate.
func newRateLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
