// Package embedder implements the Embedder component (C4): it ensures
// every Article has exactly one Embedding of the configured dimension,
// batching calls to an OpenAI-compatible embeddings endpoint.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
	"papersorter/internal/resilience/circuitbreaker"
	"papersorter/internal/resilience/retry"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// DefaultBatchSize is B in spec §4.4: "up to B articles lacking
// embeddings (B default 64)".
const DefaultBatchSize = 64

// maxInputChars truncates an embedding input to the provider's documented
// character budget (spec §4.4 "truncate to the provider's documented
// character budget").
const maxInputChars = 32000

// Config configures the embedding client.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int // optional; 0 omits the field from the request
	BatchSize  int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

// Service fetches articles missing embeddings and persists vectors in
// batches, per spec §4.4.
type Service struct {
	articles       repository.ArticleRepository
	embeddings     repository.EmbeddingRepository
	scores         repository.ScoreRepository
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	cfg            Config
}

func New(
	articles repository.ArticleRepository,
	embeddings repository.EmbeddingRepository,
	scores repository.ScoreRepository,
	httpClient *http.Client,
	cfg Config,
) *Service {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}

	return &Service{
		articles:       articles,
		embeddings:     embeddings,
		scores:         scores,
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(circuitbreaker.EmbedderConfig()),
		retryConfig:    retry.EmbedderConfig(),
		cfg:            cfg.withDefaults(),
	}
}

// RunStats summarizes one Run call.
type RunStats struct {
	Candidates int
	Embedded   int
	Requeued   int
}

// Run embeds up to cfg.BatchSize articles lacking embeddings. Cancellation
// between batches is honored within 1s per spec §4.4 (a single call to Run
// processes one batch; callers loop until Candidates < BatchSize).
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	candidates, err := s.articles.GetArticlesMissingEmbedding(ctx, s.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("Run: GetArticlesMissingEmbedding: %w", err)
	}
	stats := &RunStats{Candidates: len(candidates)}
	if len(candidates) == 0 {
		return stats, nil
	}

	dim, err := s.embeddings.Dimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: Dimension: %w", err)
	}

	inputs := make([]string, len(candidates))
	for i, a := range candidates {
		inputs[i] = truncate(a.EmbeddingInput(), maxInputChars)
	}

	vectors, err := s.embed(ctx, inputs)
	if err != nil {
		return stats, fmt.Errorf("Run: embed: %w", err)
	}

	// Partial failure: the provider may return fewer vectors than
	// requested. Persist the successful prefix and re-queue the rest for
	// the next tick by simply not advancing them (spec §4.4).
	n := len(vectors)
	if n > len(candidates) {
		n = len(candidates)
	}

	toPersist := make([]*entity.Embedding, 0, n)
	for i := 0; i < n; i++ {
		if len(vectors[i]) != dim && dim > 0 {
			return stats, &entity.SchemaMismatchError{Resource: "embeddings", Expected: dim, Actual: len(vectors[i])}
		}
		toPersist = append(toPersist, &entity.Embedding{
			ArticleID: candidates[i].ID,
			Vector:    vectors[i],
		})
	}

	if len(toPersist) > 0 {
		if err := s.embeddings.UpsertBatch(ctx, toPersist); err != nil {
			return stats, fmt.Errorf("Run: UpsertBatch: %w", err)
		}
		// Re-embedding invalidates prior scores (spec §4.5 edge policy).
		for _, e := range toPersist {
			if err := s.scores.DeleteByArticleID(ctx, e.ArticleID); err != nil {
				slog.Warn("embedder: invalidate scores failed",
					slog.Int64("article_id", e.ArticleID), slog.Any("error", err))
			}
		}
	}

	stats.Embedded = len(toPersist)
	stats.Requeued = len(candidates) - len(toPersist)
	if stats.Requeued > 0 {
		slog.Warn("embedder: partial batch, requeuing remainder",
			slog.Int("requeued", stats.Requeued))
	}
	return stats, nil
}

// embed calls the embeddings endpoint once, wrapped in circuit breaker and
// retry logic per spec §4.4's backoff policy (base 1s, cap 60s, ×2, ±25%
// jitter, 5 attempts on 429/5xx).
func (s *Service) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	var vectors [][]float32

	retryErr := retry.WithBackoff(ctx, s.retryConfig, func() error {
		cbResult, err := s.circuitBreaker.Execute(func() (interface{}, error) {
			return s.doEmbed(ctx, inputs)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("embedder circuit breaker open, request rejected",
					slog.String("state", s.circuitBreaker.State().String()))
			}
			return err
		}
		vectors = cbResult.([][]float32)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return vectors, nil
}

func (s *Service) doEmbed(ctx context.Context, inputs []string) ([][]float32, error) {
	req := openai.EmbeddingRequestStrings{
		Input: inputs,
		Model: openai.EmbeddingModel(s.cfg.Model),
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return nil, err
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
