package tldr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"papersorter/internal/resilience/circuitbreaker"
	"papersorter/internal/resilience/retry"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// OpenAIConfig configures the OpenAI-backed Generator.
type OpenAIConfig struct {
	Model   string // default "gpt-4o-mini"
	Timeout time.Duration
}

func (c OpenAIConfig) withDefaults() OpenAIConfig {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

// OpenAI generates TL;DRs via OpenAI's chat completion API, wrapped in
// circuit breaker and retry logic, following the teacher's summarizer.OpenAI.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	cfg            OpenAIConfig
}

func NewOpenAI(apiKey string, cfg OpenAIConfig) *OpenAI {
	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		cfg:            cfg.withDefaults(),
	}
}

func (o *OpenAI) Generate(ctx context.Context, title, content string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doGenerate(ctx, title, content)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("tldr circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("openai tldr failed after retries: %w", retryErr)
	}
	return result, nil
}

func (o *OpenAI) doGenerate(ctx context.Context, title, content string) (string, error) {
	truncated, wasTruncated := truncate(content, maxInputChars)
	if wasTruncated {
		slog.Debug("tldr: content truncated", slog.String("title", title))
	}

	prompt := fmt.Sprintf(
		"Write a single-sentence TL;DR (max 240 characters) for this paper.\nTitle: %s\nContent: %s",
		title, truncated)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
