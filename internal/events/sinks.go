package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/svodka-hq/svodka-news-bot/internal/logger"
	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
)

// Sink delivers events to a downstream consumer.
type Sink interface {
	ID() string
	Deliver(ctx context.Context, evt Event) error
}

// WebhookSink POSTs events as JSON to a configured URL.
type WebhookSink struct {
	url    string
	client httpclient.Client
}

// NewWebhookSink builds a webhook sink for the given URL.
func NewWebhookSink(url string, client httpclient.Client) *WebhookSink {
	return &WebhookSink{url: url, client: client}
}

func (w *WebhookSink) ID() string { return w.url }

func (w *WebhookSink) Deliver(ctx context.Context, evt Event) error {
	resp, err := w.client.Post(ctx, w.url, nil, evt)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}
	return nil
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}

// LogSink writes events to the application log. Useful when no webhooks are
// configured but event visibility is still wanted.
type LogSink struct{}

func (LogSink) ID() string { return "log" }

func (LogSink) Deliver(_ context.Context, evt Event) error {
	fields := map[string]any{
		"kind":       evt.Kind,
		"channel_id": evt.ChannelID,
		"message_id": evt.MessageID,
		"new_items":  evt.NewItems,
	}
	if evt.Article != nil {
		fields["article_url"] = evt.Article.URL
	}
	logger.InfoObj("pipeline event", "event", fields)
	return nil
}
