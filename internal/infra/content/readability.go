package content

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"papersorter/internal/observability/metrics"
	"papersorter/internal/resilience/circuitbreaker"

	"github.com/go-shiori/go-readability"
)

// Fetcher implements ContentEnricher using the Mozilla Readability
// algorithm (via go-shiori/go-readability): it fetches the article's own
// page and extracts clean body text, guarded by SSRF validation, a size
// limit, a redirect cap, and a circuit breaker.
type Fetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	cfg            Config
}

// NewFetcher builds a Fetcher from cfg.
func NewFetcher(cfg Config) *Fetcher {
	f := &Fetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "content-fetch",
			MaxRequests:      5,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      5,
		}),
		cfg: cfg,
	}

	f.client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			return validateURL(req.URL.String(), f.cfg.DenyPrivateIPs)
		},
	}
	return f
}

// Enrich returns the extracted full article text for link when
// feedContent is shorter than the configured threshold, otherwise it
// returns feedContent unchanged. Any fetch or extraction error falls back
// to feedContent — enrichment must never break the ingestion pipeline
// (spec §4.4/§4.2 content feeds the embedder's input, nothing else).
func (f *Fetcher) Enrich(ctx context.Context, link, feedContent string) string {
	if !f.cfg.Enabled {
		return feedContent
	}
	if len(feedContent) >= f.cfg.Threshold {
		metrics.RecordContentFetchSkipped()
		return feedContent
	}
	if link == "" {
		return feedContent
	}

	start := time.Now()
	full, err := f.FetchContent(ctx, link)
	if err != nil {
		slog.Debug("content enrich failed, using feed content",
			slog.String("url", link), slog.Any("error", err))
		metrics.RecordContentFetchFailed(time.Since(start))
		return feedContent
	}

	if len(full) <= len(feedContent) {
		return feedContent
	}
	metrics.RecordContentFetchSuccess(time.Since(start), len(full))
	return full
}

// FetchContent fetches and extracts article content from urlStr.
func (f *Fetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(urlStr, f.cfg.DenyPrivateIPs); err != nil {
		return "", err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (f *Fetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", "PaperSorterBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: exceeded %v", ErrTimeout, f.cfg.Timeout)
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, f.cfg.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.cfg.MaxBodySize {
		return "", fmt.Errorf("%w: %d bytes exceeds limit %d", ErrBodyTooLarge, len(htmlBytes), f.cfg.MaxBodySize)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		parsedURL = nil
	}
	if resp.Request != nil && resp.Request.URL != nil {
		parsedURL = resp.Request.URL
	}

	article, err := readability.FromReader(io.NopCloser(bytes.NewReader(htmlBytes)), parsedURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}
	if article.TextContent != "" {
		return article.TextContent, nil
	}
	if article.Content != "" {
		return article.Content, nil
	}
	return "", fmt.Errorf("%w: no readable content found", ErrReadabilityFailed)
}
