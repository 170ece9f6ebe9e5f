package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
	"github.com/svodka-hq/svodka-news-bot/internal/logger"
	"github.com/svodka-hq/svodka-news-bot/internal/storage"
	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram publishes messages to a channel through the Bot API. Every send
// attempt, successful or not, is recorded as a delivery log entry.
type Telegram struct {
	token  string
	client httpclient.Client
	store  storage.Store
	now    func() time.Time
}

// NewTelegram builds the publisher. An empty token leaves it unconfigured;
// sends then fail fast without touching the network.
func NewTelegram(token string, client httpclient.Client, store storage.Store) *Telegram {
	return &Telegram{token: token, client: client, store: store, now: time.Now}
}

// Configured reports whether a bot token is present.
func (t *Telegram) Configured() bool { return t.token != "" }

// normalizeChannel prefixes bare channel names with @. Numeric chat IDs
// (leading -) and already-prefixed names pass through unchanged.
func normalizeChannel(channel string) string {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return channel
	}
	if strings.HasPrefix(channel, "@") || strings.HasPrefix(channel, "-") {
		return channel
	}
	return "@" + channel
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (t *Telegram) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", telegramAPIBase, t.token, name)
}

func (t *Telegram) callAPI(ctx context.Context, method string, payload map[string]any) (*apiResponse, error) {
	resp, err := t.client.Post(ctx, t.method(method), nil, payload)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("%s rejected: %s", method, parsed.Description)
	}
	return &parsed, nil
}

// Send posts the message to the channel and records the delivery attempt.
// The returned message ID is needed later for edits.
func (t *Telegram) Send(ctx context.Context, articleID uint64, channel, text string) (domain.Result, string) {
	if !t.Configured() {
		return domain.Fail("telegram bot token is not configured"), ""
	}

	channel = normalizeChannel(channel)
	payload := map[string]any{
		"chat_id":                  channel,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	}

	parsed, err := t.callAPI(ctx, "sendMessage", payload)

	entry := &domain.DeliveryLogEntry{
		ArticleID: articleID,
		ChannelID: channel,
		PostedAt:  t.now(),
	}
	if err != nil {
		entry.Status = domain.DeliveryStatusFailed
		entry.Error = err.Error()
		t.logDelivery(entry)
		return domain.Fail(err.Error()), ""
	}

	messageID := fmt.Sprintf("%d", parsed.Result.MessageID)
	entry.Status = domain.DeliveryStatusSuccess
	entry.MessageID = messageID
	t.logDelivery(entry)
	return domain.OK(), messageID
}

// Edit replaces the text of an already posted message.
func (t *Telegram) Edit(ctx context.Context, channel, messageID, text string) error {
	if !t.Configured() {
		return fmt.Errorf("telegram bot token is not configured")
	}

	id, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", messageID, err)
	}
	payload := map[string]any{
		"chat_id":    normalizeChannel(channel),
		"message_id": id,
		"text":       text,
		"parse_mode": "HTML",
	}
	if _, err := t.callAPI(ctx, "editMessageText", payload); err != nil {
		return fmt.Errorf("edit message %s: %w", messageID, err)
	}
	return nil
}

// CheckChannel verifies the bot can see the channel.
func (t *Telegram) CheckChannel(ctx context.Context, channel string) error {
	if !t.Configured() {
		return fmt.Errorf("telegram bot token is not configured")
	}
	payload := map[string]any{"chat_id": normalizeChannel(channel)}
	if _, err := t.callAPI(ctx, "getChat", payload); err != nil {
		return fmt.Errorf("check channel: %w", err)
	}
	return nil
}

// logDelivery persists the attempt. A log write failure must not mask the
// delivery outcome, so it is only logged.
func (t *Telegram) logDelivery(entry *domain.DeliveryLogEntry) {
	if err := t.store.CreateDeliveryLog(entry); err != nil {
		logger.ErrorObj("failed to record delivery log", "entry", map[string]any{
			"article_id": entry.ArticleID,
			"status":     entry.Status,
			"error":      err.Error(),
		})
	}
}
