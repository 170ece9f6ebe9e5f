package publisher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
)

type mockResponse struct {
	status int
	body   []byte
}

func (m *mockResponse) Body() []byte    { return m.body }
func (m *mockResponse) StatusCode() int { return m.status }

type mockHTTPClient struct {
	body   string
	err    error
	urls   []string
	bodies []any
}

func (m *mockHTTPClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, errors.New("not used")
}

func (m *mockHTTPClient) Post(_ context.Context, url string, _ map[string]string, body any) (httpclient.Response, error) {
	m.urls = append(m.urls, url)
	m.bodies = append(m.bodies, body)
	if m.err != nil {
		return nil, m.err
	}
	return &mockResponse{status: 200, body: []byte(m.body)}, nil
}

type mockStore struct {
	logs []domain.DeliveryLogEntry
}

func (m *mockStore) Close() error { return nil }
func (m *mockStore) FindArticleByURL(string) (*domain.Article, error) {
	return nil, errors.New("not used")
}
func (m *mockStore) GetArticle(uint64) (*domain.Article, error)       { return nil, errors.New("not used") }
func (m *mockStore) CreateArticle(*domain.Article) error              { return nil }
func (m *mockStore) UpdateArticle(*domain.Article) error              { return nil }
func (m *mockStore) ListUnposted(bool, int) ([]domain.Article, error) { return nil, nil }
func (m *mockStore) DeleteArticlesBefore(time.Time) (int, error)      { return 0, nil }
func (m *mockStore) ListDeliveryLogs(uint64) ([]domain.DeliveryLogEntry, error) {
	return m.logs, nil
}
func (m *mockStore) CountSuccessfulDeliveriesSince(time.Time) (int, error) { return 0, nil }
func (m *mockStore) SaveAnnotationStats(*domain.AnnotationStats) error     { return nil }

func (m *mockStore) CreateDeliveryLog(e *domain.DeliveryLogEntry) error {
	m.logs = append(m.logs, *e)
	return nil
}

func TestNormalizeChannel(t *testing.T) {
	cases := map[string]string{
		"news":       "@news",
		"@news":      "@news",
		"-100123456": "-100123456",
		" news ":     "@news",
	}
	for in, want := range cases {
		if got := normalizeChannel(in); got != want {
			t.Fatalf("normalizeChannel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSendRecordsSuccessLog(t *testing.T) {
	client := &mockHTTPClient{body: `{"ok":true,"result":{"message_id":42}}`}
	store := &mockStore{}
	tg := NewTelegram("token", client, store)

	result, messageID := tg.Send(context.Background(), 7, "news", "текст")
	if !result.Success {
		t.Fatalf("Send failed: %s", result.Error)
	}
	if messageID != "42" {
		t.Fatalf("got message id %q", messageID)
	}
	if len(client.urls) != 1 || !strings.HasSuffix(client.urls[0], "/bottoken/sendMessage") {
		t.Fatalf("unexpected urls %v", client.urls)
	}

	if len(store.logs) != 1 {
		t.Fatalf("expected one delivery log, got %d", len(store.logs))
	}
	entry := store.logs[0]
	if entry.Status != domain.DeliveryStatusSuccess || entry.MessageID != "42" || entry.ArticleID != 7 {
		t.Fatalf("unexpected log entry %+v", entry)
	}
	if entry.ChannelID != "@news" {
		t.Fatalf("expected normalized channel, got %q", entry.ChannelID)
	}
}

func TestSendRecordsFailureLog(t *testing.T) {
	client := &mockHTTPClient{body: `{"ok":false,"description":"chat not found"}`}
	store := &mockStore{}
	tg := NewTelegram("token", client, store)

	result, messageID := tg.Send(context.Background(), 7, "@news", "текст")
	if result.Success {
		t.Fatalf("expected failure")
	}
	if messageID != "" {
		t.Fatalf("expected empty message id, got %q", messageID)
	}
	if len(store.logs) != 1 || store.logs[0].Status != domain.DeliveryStatusFailed {
		t.Fatalf("expected failed log entry, got %+v", store.logs)
	}
	if store.logs[0].Error == "" {
		t.Fatalf("expected error recorded in log")
	}
}

func TestSendWithoutToken(t *testing.T) {
	store := &mockStore{}
	tg := NewTelegram("", &mockHTTPClient{}, store)

	result, _ := tg.Send(context.Background(), 1, "@news", "текст")
	if result.Success {
		t.Fatalf("expected failure without token")
	}
	if len(store.logs) != 0 {
		t.Fatalf("unconfigured publisher must not write logs")
	}
}

func TestEditUsesEditMessageText(t *testing.T) {
	client := &mockHTTPClient{body: `{"ok":true,"result":{"message_id":42}}`}
	tg := NewTelegram("token", client, &mockStore{})

	if err := tg.Edit(context.Background(), "news", "42", "новый текст"); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !strings.HasSuffix(client.urls[0], "/editMessageText") {
		t.Fatalf("unexpected url %q", client.urls[0])
	}
}

func TestCheckChannel(t *testing.T) {
	client := &mockHTTPClient{body: `{"ok":true}`}
	tg := NewTelegram("token", client, &mockStore{})

	if err := tg.CheckChannel(context.Background(), "news"); err != nil {
		t.Fatalf("CheckChannel: %v", err)
	}
	if !strings.HasSuffix(client.urls[0], "/getChat") {
		t.Fatalf("unexpected url %q", client.urls[0])
	}
}
