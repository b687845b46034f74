package tldr

import (
	"context"
	"log/slog"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// DefaultParallelism bounds concurrent TLDR generation, mirroring the
// teacher's fixed AI-summarization parallelism (rate-limited backend).
const DefaultParallelism = 5

// Service generates and persists TLDRs asynchronously, fire-and-forget,
// so it never blocks the FeedFetcher pipeline that produced the article
// (following the teacher's EmbeddingHook pattern).
type Service struct {
	articles  repository.ArticleRepository
	generator Generator
	sem       chan struct{}
}

func New(articles repository.ArticleRepository, generator Generator) *Service {
	return &Service{
		articles:  articles,
		generator: generator,
		sem:       make(chan struct{}, DefaultParallelism),
	}
}

// GenerateAsync spawns a goroutine that generates and stores a.TLDR. It
// never blocks the caller and never returns an error — failures are
// logged, since TLDR is an optional, best-effort enrichment.
func (s *Service) GenerateAsync(ctx context.Context, a *entity.Article) {
	if s.generator == nil {
		return
	}
	go func() {
		s.sem <- struct{}{}
		defer func() { <-s.sem }()

		safeCtx := context.WithoutCancel(ctx)
		tldr, err := s.generator.Generate(safeCtx, a.Title, a.Content)
		if err != nil {
			slog.Warn("tldr: generation failed", slog.Int64("article_id", a.ID), slog.Any("error", err))
			return
		}
		if tldr == "" {
			return
		}
		if err := s.articles.SetTLDR(safeCtx, a.ID, tldr); err != nil {
			slog.Warn("tldr: persist failed", slog.Int64("article_id", a.ID), slog.Any("error", err))
		}
	}()
}
