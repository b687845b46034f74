// Package content implements the ContentEnricher component (C13): when a
// feed-supplied body is too thin, it fetches the article's own page and
// extracts clean text with Mozilla's Readability algorithm, falling back
// to the original feed content on any error.
package content

import "time"

// Config tunes fetch behavior and SSRF defenses.
type Config struct {
	// Enabled toggles enrichment entirely; when false Enrich is a no-op.
	Enabled bool

	// Threshold is the minimum feed content length (characters) below
	// which a full fetch is attempted.
	Threshold int

	// Timeout bounds a single fetch.
	Timeout time.Duration

	// MaxBodySize caps the response body read into memory.
	MaxBodySize int64

	// MaxRedirects bounds the redirect chain followed.
	MaxRedirects int

	// DenyPrivateIPs blocks requests to loopback/private/link-local
	// addresses (SSRF prevention). Should always be true in production.
	DenyPrivateIPs bool
}

// DefaultConfig returns production defaults: enrichment on, a 1500
// character threshold, 10s timeout, 10MB body cap, 5 redirects, private
// IPs denied.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Threshold:      1500,
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}
