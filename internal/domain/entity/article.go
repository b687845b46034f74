// Package entity defines the core domain entities and validation logic for the
// recommendation pipeline. It contains the fundamental business objects —
// Article, Embedding, Model, PredictedScore, Preference, Channel,
// BroadcastEntry, FeedSource and User — along with their validation rules and
// domain-specific errors.
package entity

import "time"

// Article is one canonical record per ingested paper.
//
// ExternalID is unique and is the key used by Store.upsertArticle; Link is
// indexed for lookup. Insertion order does not guarantee ID monotonicity
// beyond "later insert implies larger ID".
type Article struct {
	ID          int64
	ExternalID  string
	Title       string
	Content     string
	Authors     string
	Origin      string
	Link        string
	PublishedAt time.Time
	AddedAt     time.Time
	TLDR        string // optional, empty when not yet generated
}

// Validate checks the invariants required before an Article can be inserted.
func (a *Article) Validate() error {
	if a.ExternalID == "" {
		return &ValidationError{Field: "external_id", Message: "external_id is required"}
	}
	if a.Title == "" {
		return &ValidationError{Field: "title", Message: "title must not be empty"}
	}
	if err := ValidateURL(a.Link); err != nil {
		return err
	}
	return nil
}

// EmbeddingInput builds the text fed to the embedding service: title,
// authors, origin, a blank line, then content — in that order, per §4.4.
func (a *Article) EmbeddingInput() string {
	return a.Title + "\n" + a.Authors + "\n" + a.Origin + "\n\n" + a.Content
}
