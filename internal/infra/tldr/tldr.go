// Package tldr implements the TLDRGenerator component (C12, added): it
// produces the optional Article.TLDR field by summarizing title+content
// with a pluggable backend. Grounded on the teacher's summarizer package,
// generalized from a fixed-language digest to a one-sentence English
// TL;DR.
package tldr

import "context"

// maxInputChars bounds the text sent to any backend, mirroring the
// teacher's truncate-before-call guard.
const maxInputChars = 10000

// Generator produces a short TL;DR for an article's title+content.
type Generator interface {
	Generate(ctx context.Context, title, content string) (string, error)
}

func truncate(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}
	return s[:max], true
}
