// Package config assembles the process-wide configuration document
// described in spec §6: db, embedding_api, scoring, notification, smtp,
// feed_defaults, retention, and scheduler sections, loaded from environment
// variables with fail-open defaults in the style of pkg/config.GetEnv*.
package config

import (
	"fmt"
	"time"

	pkgconfig "papersorter/pkg/config"
)

// DBConfig is the connection pool section.
type DBConfig struct {
	DSN             string
	MaxOpenConns    int // default 16, per §5's bounded connection pool
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// EmbeddingAPIConfig points at the external embedding backend.
type EmbeddingAPIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ScoringConfig tunes the Scorer (C5).
type ScoringConfig struct {
	ModelDir  string
	BatchSize int
}

// NotificationConfig holds chat provider settings.
type NotificationConfig struct {
	ChatAWebhookURL string
	ChatBWebhookURL string
}

// SMTPConfig holds the Email provider's transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// FeedDefaultsConfig bounds FeedFetcher's default poll behavior.
type FeedDefaultsConfig struct {
	CheckInterval time.Duration
	Timeout       time.Duration
	MaxItems      int
}

// RetentionConfig bounds how long delivered/suppressed dispatcher rows and
// admin events are kept.
type RetentionConfig struct {
	Delivered time.Duration
	Events    time.Duration
}

// SchedulerConfig drives the Orchestrator's cron cadence.
type SchedulerConfig struct {
	UpdateCron    string
	BroadcastCron string
	Timezone      string
}

// AppConfig is the full configuration document (spec §6).
type AppConfig struct {
	DB           DBConfig
	EmbeddingAPI EmbeddingAPIConfig
	Scoring      ScoringConfig
	Notification NotificationConfig
	SMTP         SMTPConfig
	FeedDefaults FeedDefaultsConfig
	Retention    RetentionConfig
	Scheduler    SchedulerConfig
}

// Load reads AppConfig from the environment, falling back to documented
// defaults for anything unset (fail-open, matching the teacher's worker
// config strategy).
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		DB: DBConfig{
			DSN:             pkgconfig.GetEnvString("DB_DSN", "postgres://localhost:5432/papersorter?sslmode=disable"),
			MaxOpenConns:    pkgconfig.GetEnvInt("DB_MAX_OPEN_CONNS", 16),
			MaxIdleConns:    pkgconfig.GetEnvInt("DB_MAX_IDLE_CONNS", 4),
			ConnMaxLifetime: pkgconfig.GetEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		EmbeddingAPI: EmbeddingAPIConfig{
			BaseURL: pkgconfig.GetEnvString("EMBEDDING_API_BASE_URL", "http://localhost:11434"),
			APIKey:  pkgconfig.GetEnvString("EMBEDDING_API_KEY", ""),
			Model:   pkgconfig.GetEnvString("EMBEDDING_API_MODEL", "text-embedding-3-small"),
			Timeout: pkgconfig.GetEnvDuration("EMBEDDING_API_TIMEOUT", 30*time.Second),
		},
		Scoring: ScoringConfig{
			ModelDir:  pkgconfig.GetEnvString("SCORING_MODEL_DIR", "./models"),
			BatchSize: pkgconfig.GetEnvInt("SCORING_BATCH_SIZE", 200),
		},
		Notification: NotificationConfig{
			ChatAWebhookURL: pkgconfig.GetEnvString("NOTIFICATION_CHAT_A_WEBHOOK_URL", ""),
			ChatBWebhookURL: pkgconfig.GetEnvString("NOTIFICATION_CHAT_B_WEBHOOK_URL", ""),
		},
		SMTP: SMTPConfig{
			Host:     pkgconfig.GetEnvString("SMTP_HOST", "localhost"),
			Port:     pkgconfig.GetEnvInt("SMTP_PORT", 587),
			Username: pkgconfig.GetEnvString("SMTP_USERNAME", ""),
			Password: pkgconfig.GetEnvString("SMTP_PASSWORD", ""),
			From:     pkgconfig.GetEnvString("SMTP_FROM", "papersorter@localhost"),
		},
		FeedDefaults: FeedDefaultsConfig{
			CheckInterval: pkgconfig.GetEnvDuration("FEED_CHECK_INTERVAL", 1*time.Hour),
			Timeout:       pkgconfig.GetEnvDuration("FEED_TIMEOUT", 15*time.Second),
			MaxItems:      pkgconfig.GetEnvInt("FEED_MAX_ITEMS", 100),
		},
		Retention: RetentionConfig{
			Delivered: pkgconfig.GetEnvDuration("RETENTION_DELIVERED", 30*24*time.Hour),
			Events:    pkgconfig.GetEnvDuration("RETENTION_EVENTS", 90*24*time.Hour),
		},
		Scheduler: SchedulerConfig{
			UpdateCron:    pkgconfig.GetEnvString("SCHEDULER_UPDATE_CRON", "0 */3 * * *"),
			BroadcastCron: pkgconfig.GetEnvString("SCHEDULER_BROADCAST_CRON", "0 * * * *"),
			Timezone:      pkgconfig.GetEnvString("SCHEDULER_TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants Load's fail-open env readers can't enforce
// themselves (cross-field and required-value checks).
func (c *AppConfig) Validate() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("config: DB_DSN is required")
	}
	if c.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("config: DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Scoring.BatchSize <= 0 {
		return fmt.Errorf("config: SCORING_BATCH_SIZE must be positive")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("config: SCHEDULER_TIMEZONE invalid: %w", err)
	}
	return nil
}
