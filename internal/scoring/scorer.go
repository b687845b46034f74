package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// Enqueuer is the QueueManager surface the Scorer calls into once an
// article clears a channel's threshold (spec §4.5 step 5 -> §4.6 enqueue).
type Enqueuer interface {
	Enqueue(ctx context.Context, articleID, channelID int64) error
}

// Service is the Scorer (C5): for each active model, loads its artifact,
// standardizes and predicts every article missing a score, persists the
// batch, and enqueues broadcast candidates for channels bound to that model
// whose threshold the new score clears.
type Service struct {
	models     repository.ModelRepository
	articles   repository.ArticleRepository
	embeddings repository.EmbeddingRepository
	scores     repository.ScoreRepository
	channels   repository.ChannelRepository
	queue      Enqueuer
	cache      *Cache
	batchSize  int
}

func New(
	models repository.ModelRepository,
	articles repository.ArticleRepository,
	embeddings repository.EmbeddingRepository,
	scores repository.ScoreRepository,
	channels repository.ChannelRepository,
	queue Enqueuer,
	cache *Cache,
	batchSize int,
) *Service {
	if batchSize <= 0 {
		batchSize = 256
	}
	return &Service{
		models:     models,
		articles:   articles,
		embeddings: embeddings,
		scores:     scores,
		channels:   channels,
		queue:      queue,
		cache:      cache,
		batchSize:  batchSize,
	}
}

// RunStats summarizes one Update call's Scorer pass.
type RunStats struct {
	ModelsScored int
	Scored       int
	Enqueued     int
}

// Run scores missing rows for every active model. force bypasses the
// missing-row filter, paging through every embedded article regardless of
// whether it already has a score — used after a model activation (spec §9
// Open Question) so the new model covers the whole store, not just one
// batch of it.
func (s *Service) Run(ctx context.Context, force bool) (*RunStats, error) {
	models, err := s.models.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("scoring.Run: ListActive: %w", err)
	}

	channels, err := s.channels.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("scoring.Run: channels.ListActive: %w", err)
	}

	stats := &RunStats{}
	for _, model := range models {
		n, enq, err := s.runModel(ctx, model, channels, force)
		if err != nil {
			slog.Warn("scoring: model run failed", slog.Int64("model_id", model.ID), slog.Any("error", err))
			continue
		}
		stats.ModelsScored++
		stats.Scored += n
		stats.Enqueued += enq
	}
	return stats, nil
}

func (s *Service) runModel(ctx context.Context, model *entity.Model, channels []*entity.Channel, force bool) (int, int, error) {
	artifact, err := s.cache.Load(model)
	if err != nil {
		return 0, 0, fmt.Errorf("load artifact: %w", err)
	}

	boundChannels := make([]*entity.Channel, 0)
	for _, ch := range channels {
		if ch.ModelID == model.ID {
			boundChannels = append(boundChannels, ch)
		}
	}

	var totalScored, totalEnqueued int
	var afterID int64
	for {
		pending, err := s.articles.GetArticlesMissingScore(ctx, model.ID, afterID, s.batchSize, force)
		if err != nil {
			return totalScored, totalEnqueued, fmt.Errorf("GetArticlesMissingScore: %w", err)
		}
		if len(pending) == 0 {
			return totalScored, totalEnqueued, nil
		}

		n, enq, err := s.scoreBatch(ctx, model, artifact, pending, boundChannels)
		totalScored += n
		totalEnqueued += enq
		if err != nil {
			return totalScored, totalEnqueued, err
		}

		// force drops the missing-row filter, so the page no longer shrinks
		// the pending set on its own; the id cursor is what keeps this
		// loop making progress instead of re-fetching the same page.
		afterID = pending[len(pending)-1].ID
		if len(pending) < s.batchSize {
			return totalScored, totalEnqueued, nil
		}
	}
}

func (s *Service) scoreBatch(
	ctx context.Context,
	model *entity.Model,
	artifact *Artifact,
	articles []*entity.Article,
	boundChannels []*entity.Channel,
) (int, int, error) {
	batch := make([]*entity.PredictedScore, 0, len(articles))
	for _, a := range articles {
		emb, err := s.embeddings.Get(ctx, a.ID)
		if err != nil {
			slog.Warn("scoring: embedding fetch failed", slog.Int64("article_id", a.ID), slog.Any("error", err))
			continue
		}
		if err := emb.Validate(artifact.Dim); err != nil {
			return len(batch), 0, err
		}
		score := &entity.PredictedScore{
			ArticleID: a.ID,
			ModelID:   model.ID,
			Score:     artifact.Score(emb.Vector),
		}
		score.Clamp()
		batch = append(batch, score)
	}

	if len(batch) == 0 {
		return 0, 0, nil
	}
	if err := s.scores.UpsertBatch(ctx, batch); err != nil {
		return 0, 0, fmt.Errorf("UpsertBatch: %w", err)
	}

	enqueued := s.enqueueCandidates(ctx, batch, boundChannels)
	return len(batch), enqueued, nil
}

// enqueueCandidates runs the threshold gate (spec §4.5 step 5) for every
// channel bound to this model and enqueues survivors. A failed enqueue on
// one (article, channel) pair does not block the others.
func (s *Service) enqueueCandidates(ctx context.Context, batch []*entity.PredictedScore, boundChannels []*entity.Channel) int {
	var enqueued int
	for _, score := range batch {
		for _, ch := range boundChannels {
			if score.Score < ch.ScoreThreshold {
				continue
			}
			if err := s.queue.Enqueue(ctx, score.ArticleID, ch.ID); err != nil {
				slog.Warn("scoring: enqueue failed",
					slog.Int64("article_id", score.ArticleID), slog.Int64("channel_id", ch.ID), slog.Any("error", err))
				continue
			}
			enqueued++
		}
	}
	return enqueued
}
