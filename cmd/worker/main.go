package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "papersorter/internal/config"
	"papersorter/internal/dedup"
	"papersorter/internal/dispatcher"
	pgRepo "papersorter/internal/infra/adapter/persistence/postgres"
	"papersorter/internal/infra/content"
	"papersorter/internal/infra/db"
	"papersorter/internal/infra/embedder"
	"papersorter/internal/infra/fetcher"
	"papersorter/internal/infra/tldr"
	workerPkg "papersorter/internal/infra/worker"
	"papersorter/internal/notify/providers"
	"papersorter/internal/orchestrator"
	"papersorter/internal/queue"
	"papersorter/internal/scoring"
)

func main() {
	logger := initLogger()
	slog.SetDefault(logger)

	cfg, err := appconfig.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database := db.Open()
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	articles := pgRepo.NewArticleRepo(database)
	sources := pgRepo.NewFeedSourceRepo(database)
	embeddings := pgRepo.NewEmbeddingRepo(database)
	scores := pgRepo.NewScoreRepo(database)
	channels := pgRepo.NewChannelRepo(database)
	models := pgRepo.NewModelRepo(database)
	broadcasts := pgRepo.NewBroadcastRepo(database)
	events := pgRepo.NewEventRepo(database)
	locks := pgRepo.NewLockRepo(database)

	dedupe := dedup.New(articles, events, dedup.Config{})
	enricher := content.NewFetcher(content.DefaultConfig())
	tldrGen := selectTLDRGenerator(logger)
	tldrHook := tldr.New(articles, tldrGen)

	feed := fetcher.NewRSSFetcher(&http.Client{Timeout: cfg.FeedDefaults.Timeout})
	fetchSvc := fetcher.New(sources, articles, locks, dedupe, feed, enricher, tldrHook, fetcher.Config{})

	embedSvc := embedder.New(articles, embeddings, scores, &http.Client{Timeout: cfg.EmbeddingAPI.Timeout}, embedder.Config{
		BaseURL: cfg.EmbeddingAPI.BaseURL,
		APIKey:  cfg.EmbeddingAPI.APIKey,
		Model:   cfg.EmbeddingAPI.Model,
	})

	queueMgr := queue.New(broadcasts)
	scoreSvc := scoring.New(models, articles, embeddings, scores, channels, queueMgr, scoring.NewCache(cfg.Scoring.ModelDir), cfg.Scoring.BatchSize)

	chatA := providers.NewChatA(cfg.Notification.ChatAWebhookURL)
	chatB := providers.NewChatB(cfg.Notification.ChatBWebhookURL)
	email := providers.NewEmail(providers.EmailConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dispatchSvc := dispatcher.New(channels, broadcasts, events, locks, queueMgr, chatA, chatB, email, dispatcher.Config{
		Retention: cfg.Retention.Delivered,
	})

	orch := orchestrator.New(locks, events, fetchSvc, embedSvc, scoreSvc, dispatchSvc, orchestrator.Config{
		FeedCheckInterval: cfg.FeedDefaults.CheckInterval,
		CronTimezone:      cfg.Scheduler.Timezone,
	})

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%s", envOr("HEALTH_PORT", "9091")), logger)
	healthServer.SetDriverStates(orch.UpdateState, orch.BroadcastState)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	cronScheduler, err := orch.Schedule(ctx, cfg.Scheduler.UpdateCron, cfg.Scheduler.BroadcastCron)
	if err != nil {
		logger.Error("failed to schedule orchestrator", slog.Any("error", err))
		os.Exit(1)
	}
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("update_cron", cfg.Scheduler.UpdateCron),
		slog.String("broadcast_cron", cfg.Scheduler.BroadcastCron))

	<-ctx.Done()
	logger.Info("shutting down worker")
	shutdownCtx := cronScheduler.Stop()
	select {
	case <-shutdownCtx.Done():
	case <-time.After(10 * time.Second):
	}
}

func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// selectTLDRGenerator picks a TLDRGenerator backend from TLDR_PROVIDER
// (spec §4.12's pluggable-backend note), defaulting to a no-op so the
// worker runs without an LLM key configured.
func selectTLDRGenerator(logger *slog.Logger) tldr.Generator {
	switch os.Getenv("TLDR_PROVIDER") {
	case "openai":
		return tldr.NewOpenAI(os.Getenv("OPENAI_API_KEY"), tldr.OpenAIConfig{})
	case "claude":
		return tldr.NewClaude(os.Getenv("ANTHROPIC_API_KEY"), tldr.ClaudeConfig{})
	default:
		logger.Info("TLDR_PROVIDER not set, using no-op TLDR generator")
		return tldr.NewNoOp()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
