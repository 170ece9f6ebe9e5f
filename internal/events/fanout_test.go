package events

import (
	"context"
	"errors"
	"testing"

	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
)

type stubSink struct {
	id    string
	err   error
	calls int
}

func (s *stubSink) ID() string { return s.id }
func (s *stubSink) Deliver(context.Context, Event) error {
	s.calls++
	return s.err
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	a := &stubSink{id: "a"}
	b := &stubSink{id: "b"}
	f := NewFanout([]Sink{a, nil, b})

	if f.Size() != 2 {
		t.Fatalf("expected nil sink skipped, size=%d", f.Size())
	}
	delivered := f.Emit(context.Background(), NewScrapeFinished(3))
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("expected each sink called once, got %d and %d", a.calls, b.calls)
	}
}

func TestFanoutIsolatesSinkFailures(t *testing.T) {
	bad := &stubSink{id: "bad", err: errors.New("down")}
	good := &stubSink{id: "good"}
	f := NewFanout([]Sink{bad, good})

	delivered := f.Emit(context.Background(), NewScrapeFinished(1))
	if delivered != 1 {
		t.Fatalf("expected failing sink not counted, got %d", delivered)
	}
	if good.calls != 1 {
		t.Fatalf("expected healthy sink still called")
	}
}

type mockResponse struct {
	status int
	body   []byte
}

func (m *mockResponse) Body() []byte    { return m.body }
func (m *mockResponse) StatusCode() int { return m.status }

type mockClient struct {
	status int
	err    error
	posted []string
}

func (m *mockClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, errors.New("not used")
}

func (m *mockClient) Post(_ context.Context, url string, _ map[string]string, _ any) (httpclient.Response, error) {
	m.posted = append(m.posted, url)
	if m.err != nil {
		return nil, m.err
	}
	return &mockResponse{status: m.status}, nil
}

func TestWebhookSinkPostsEvent(t *testing.T) {
	client := &mockClient{status: 200}
	sink := NewWebhookSink("https://hooks.example.com/news", client)

	if err := sink.Deliver(context.Background(), NewScrapeFinished(2)); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(client.posted) != 1 || client.posted[0] != "https://hooks.example.com/news" {
		t.Fatalf("unexpected posts: %v", client.posted)
	}
}

func TestWebhookSinkRejectsNon2xx(t *testing.T) {
	sink := NewWebhookSink("https://hooks.example.com/news", &mockClient{status: 500})
	if err := sink.Deliver(context.Background(), NewScrapeFinished(0)); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}
