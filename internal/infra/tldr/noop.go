package tldr

import "context"

// NoOp disables TLDR generation: it returns the empty string, leaving
// Article.TLDR unset, useful for development or when no LLM backend is
// configured.
type NoOp struct{}

func NewNoOp() *NoOp { return &NoOp{} }

func (n *NoOp) Generate(_ context.Context, _, _ string) (string, error) {
	return "", nil
}
