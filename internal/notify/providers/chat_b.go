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

// ChatB renders a rich-embed payload with a color band by score bucket and
// markdown action links, grounded on the teacher's DiscordNotifier. Chat-B
// has a documented 30 req/min limit per webhook (spec §4.7).
type ChatB struct {
	webhookURL  string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewChatB(webhookURL string) *ChatB {
	return &ChatB{
		webhookURL:  webhookURL,
		httpClient:  &http.Client{Timeout: sendTimeout},
		rateLimiter: newRateLimiter(0.5, 3), // 30 req/min = 0.5 req/s
	}
}

type ChatBPayload struct {
	Embeds []ChatBEmbed `json:"embeds"`
}

type ChatBEmbed struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	URL         string           `json:"url"`
	Color       int              `json:"color"`
	Fields      []ChatBField     `json:"fields,omitempty"`
	Footer      ChatBEmbedFooter `json:"footer"`
}

type ChatBField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type ChatBEmbedFooter struct {
	Text string `json:"text"`
}

const (
	maxChatBTitleLength       = 256
	maxChatBDescriptionLength = 4096

	colorRed   = 0xE74C3C // score < 0.5
	colorAmber = 0xF39C12 // 0.5 <= score < 0.8
	colorGreen = 0x2ECC71 // score >= 0.8
)

func scoreColor(score float64) int {
	switch {
	case score >= 0.8:
		return colorGreen
	case score >= 0.5:
		return colorAmber
	default:
		return colorRed
	}
}

func (p *ChatB) Render(rc *RenderContext) Payload {
	title := truncate(rc.Title, maxChatBTitleLength)
	desc := rc.TLDR
	if desc == "" {
		desc = rc.Authors
	}
	desc = truncate(desc, maxChatBDescriptionLength)

	embed := ChatBEmbed{
		Title:       title,
		Description: desc,
		URL:         rc.Link,
		Color:       scoreColor(rc.Score),
		Fields: []ChatBField{
			{Name: "Score", Value: fmt.Sprintf("%d%%", rc.ScorePercent()), Inline: true},
			{Name: "Authors", Value: truncate(rc.Authors, 1024), Inline: true},
			{Name: "Actions", Value: fmt.Sprintf("[More like this](%s)", rc.LabelingURL), Inline: false},
		},
		Footer: ChatBEmbedFooter{Text: rc.Origin},
	}

	return ChatBPayload{Embeds: []ChatBEmbed{embed}}
}

func (p *ChatB) Send(ctx context.Context, payload Payload) (Result, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return ResultRetriable, fmt.Errorf("chat-b rate limiter: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return ResultPermanent, fmt.Errorf("marshal chat-b payload: %w", err)
	}

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return ResultPermanent, fmt.Errorf("build chat-b request: %w", err)
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
