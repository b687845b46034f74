package entity

import "time"

// FeedSourceType enumerates the feed formats FeedFetcher understands.
type FeedSourceType string

const (
	FeedSourceRSS  FeedSourceType = "RSS"
	FeedSourceAtom FeedSourceType = "Atom"
)

// FeedSource is a configured polling target.
type FeedSource struct {
	ID            int64
	Name          string
	URL           string
	Type          FeedSourceType
	LastCheckedAt *time.Time
	IsActive      bool
	CredentialRef string // optional, opaque reference to stored credentials
}

// Validate checks required FeedSource fields.
func (f *FeedSource) Validate() error {
	if f.Name == "" {
		return &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	if err := ValidateURL(f.URL); err != nil {
		return err
	}
	switch f.Type {
	case FeedSourceRSS, FeedSourceAtom, "":
	default:
		return &ValidationError{Field: "type", Message: "unrecognized feed source type"}
	}
	return nil
}

// NeedsCheck reports whether this source is due for polling, i.e. it has
// never been checked or the last check is older than interval.
func (f *FeedSource) NeedsCheck(now time.Time, interval time.Duration) bool {
	if f.LastCheckedAt == nil {
		return true
	}
	return now.Sub(*f.LastCheckedAt) >= interval
}
