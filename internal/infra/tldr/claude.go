package tldr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"papersorter/internal/resilience/circuitbreaker"
	"papersorter/internal/resilience/retry"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"
)

// ClaudeConfig configures the Claude-backed Generator.
type ClaudeConfig struct {
	Model     string // default Claude Sonnet
	MaxTokens int
	Timeout   time.Duration
}

func (c ClaudeConfig) withDefaults() ClaudeConfig {
	if c.Model == "" {
		c.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

// Claude generates TL;DRs via Anthropic's Messages API, wrapped in circuit
// breaker and retry logic, following the teacher's summarizer.Claude.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	cfg            ClaudeConfig
}

func NewClaude(apiKey string, cfg ClaudeConfig) *Claude {
	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		cfg:            cfg.withDefaults(),
	}
}

func (c *Claude) Generate(ctx context.Context, title, content string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doGenerate(ctx, title, content)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("tldr circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("claude tldr failed after retries: %w", retryErr)
	}
	return result, nil
}

func (c *Claude) doGenerate(ctx context.Context, title, content string) (string, error) {
	truncated, wasTruncated := truncate(content, maxInputChars)
	if wasTruncated {
		slog.Debug("tldr: content truncated", slog.String("title", title))
	}

	prompt := fmt.Sprintf(
		"Write a single-sentence TL;DR (max 240 characters) for this paper.\nTitle: %s\nContent: %s",
		title, truncated)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	return message.Content[0].Text, nil
}
