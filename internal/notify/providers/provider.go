// Package providers implements NotificationProviders (C8): endpoint-
// polymorphic renderers and transports for chat-A, chat-B, and email,
// following the teacher's internal/infra/notifier split between render and
// send.
package providers

import (
	"context"
	"net/url"
	"strings"
)

// Result classifies a send outcome per spec §4.8's capability set.
type Result int

const (
	ResultOK Result = iota
	ResultRetriable
	ResultPermanent
)

// Provider is a notification transport bound to one channel endpoint.
type Provider interface {
	// Render builds the transport-specific payload for a single candidate.
	Render(ctx *RenderContext) Payload

	// Send delivers payload, with a 10s timeout enforced internally.
	Send(ctx context.Context, payload Payload) (Result, error)
}

// Payload is an opaque, provider-specific rendered message body.
type Payload interface{}

// RenderContext carries everything a provider's Render needs: the article,
// its score, and channel/labeling-UI context.
type RenderContext struct {
	ArticleID   int64
	Title       string
	Origin      string
	Authors     string
	Link        string
	TLDR        string
	Score       float64 // fraction in [0,1]; providers format as percentage
	LabelingURL string  // "more like this" action target
	ChannelName string
}

// ScorePercent renders Score as a rounded integer percentage.
func (c *RenderContext) ScorePercent() int {
	return int(c.Score*100 + 0.5)
}

// chatBHosts lists hostnames that select the chat-B provider; anything else
// with an http(s) scheme defaults to chat-A for backward compatibility
// (spec §4.8 "unknown endpoints default to chat-A").
var chatBHosts = map[string]bool{
	"discord.com":        true,
	"discordapp.com":     true,
	"ptb.discord.com":    true,
	"canary.discord.com": true,
}

// Select returns the Provider appropriate for a channel endpoint, detected
// by scheme (mailto: -> email) or hostname (chat-B hosts; everything else
// defaults to chat-A).
func Select(endpoint string, chatA, chatB Provider, email Provider) Provider {
	if strings.HasPrefix(strings.ToLower(endpoint), "mailto:") {
		return email
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return chatA
	}
	if chatBHosts[strings.ToLower(u.Hostname())] {
		return chatB
	}
	return chatA
}
