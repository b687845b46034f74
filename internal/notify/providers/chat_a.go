package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// ChatA renders a Block Kit-style payload (blocks array, action buttons),
// grounded on the teacher's SlackNotifier. It is the default provider for
// any endpoint that does not match a chat-B hostname (spec §4.8).
type ChatA struct {
	webhookURL  string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewChatA(webhookURL string) *ChatA {
	return &ChatA{
		webhookURL:  webhookURL,
		httpClient:  &http.Client{Timeout: sendTimeout},
		rateLimiter: newRateLimiter(1.0, 5),
	}
}

// ChatAPayload is a Slack-Block-Kit-shaped webhook body.
type ChatAPayload struct {
	Text   string       `json:"text"`
	Blocks []ChatABlock `json:"blocks"`
}

type ChatABlock struct {
	Type      string            `json:"type"`
	Text      *ChatATextObject  `json:"text,omitempty"`
	Elements  []ChatATextObject `json:"elements,omitempty"`
	Accessory *ChatAButton      `json:"accessory,omitempty"`
}

type ChatATextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ChatAButton struct {
	Type  string          `json:"type"`
	Text  ChatATextObject `json:"text"`
	URL   string          `json:"url"`
	Style string          `json:"style,omitempty"`
}

const (
	maxChatASectionLength  = 3000
	maxChatAFallbackLength = 150
)

func (p *ChatA) Render(rc *RenderContext) Payload {
	fallback := truncate(fmt.Sprintf("%s - %s", rc.Title, rc.Origin), maxChatAFallbackLength)

	header := fmt.Sprintf("*<%s|%s>*\n%d%% match — %s", rc.Link, rc.Title, rc.ScorePercent(), rc.Origin)
	if rc.Authors != "" {
		header += "\n" + truncate(rc.Authors, 200)
	}
	if rc.TLDR != "" {
		header += "\n\n" + rc.TLDR
	}
	sectionText := truncate(header, maxChatASectionLength)

	sectionBlock := ChatABlock{
		Type: "section",
		Text: &ChatATextObject{Type: "mrkdwn", Text: sectionText},
	}

	actions := ChatABlock{
		Type: "actions",
		Elements: []ChatATextObject{
			{Type: "mrkdwn", Text: fmt.Sprintf("<%s|Open paper>", rc.Link)},
			{Type: "mrkdwn", Text: fmt.Sprintf("<%s|More like this>", rc.LabelingURL)},
			{Type: "mrkdwn", Text: fmt.Sprintf("<%s&vote=up|I'm interested>", rc.LabelingURL)},
			{Type: "mrkdwn", Text: fmt.Sprintf("<%s&vote=down|Not interested>", rc.LabelingURL)},
		},
	}

	return ChatAPayload{
		Text:   fallback,
		Blocks: []ChatABlock{sectionBlock, actions},
	}
}

func (p *ChatA) Send(ctx context.Context, payload Payload) (Result, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return ResultRetriable, fmt.Errorf("chat-a rate limiter: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return ResultPermanent, fmt.Errorf("marshal chat-a payload: %w", err)
	}

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return ResultPermanent, fmt.Errorf("build chat-a request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return resultFromError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return classifyStatus(resp.StatusCode, string(respBody))
}
