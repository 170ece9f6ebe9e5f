package annotate

import (
	"context"
	"errors"
	"testing"

	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
)

type mockResponse struct {
	status int
	body   []byte
}

func (m *mockResponse) Body() []byte    { return m.body }
func (m *mockResponse) StatusCode() int { return m.status }

type postCall struct {
	url     string
	headers map[string]string
}

type mockHTTPClient struct {
	responses []*mockResponse
	err       error
	calls     []postCall
}

func (m *mockHTTPClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, errors.New("not used")
}

func (m *mockHTTPClient) Post(_ context.Context, url string, headers map[string]string, _ any) (httpclient.Response, error) {
	m.calls = append(m.calls, postCall{url: url, headers: headers})
	if m.err != nil {
		return nil, m.err
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

const chatBody = `{"choices":[{"message":{"content":"сводка"}}]}`

func TestOpenRouterFallsBackToNextKey(t *testing.T) {
	client := &mockHTTPClient{responses: []*mockResponse{
		{status: 429, body: []byte(`{}`)},
		{status: 200, body: []byte(chatBody)},
	}}
	provider := NewOpenRouter(client, "test-model", "https://site", "Site", []string{"key-one", "key-two", "key-three"})

	got, err := provider.Generate(context.Background(), Request{Prompt: "p", MaxTokens: 10, Temperature: 0.7})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "сводка" {
		t.Fatalf("got %q", got)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected second key to stop the fallback, calls=%d", len(client.calls))
	}
	if auth := client.calls[1].headers["Authorization"]; auth != "Bearer key-two" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if ref := client.calls[0].headers["HTTP-Referer"]; ref != "https://site" {
		t.Fatalf("unexpected referer %q", ref)
	}
}

func TestOpenRouterAllKeysFail(t *testing.T) {
	client := &mockHTTPClient{responses: []*mockResponse{{status: 500, body: []byte(`{}`)}}}
	provider := NewOpenRouter(client, "test-model", "", "", []string{"a", "b"})

	if _, err := provider.Generate(context.Background(), Request{Prompt: "p"}); err == nil {
		t.Fatalf("expected error when every key fails")
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected each key tried once, calls=%d", len(client.calls))
	}
}

func TestOpenRouterWithoutKeys(t *testing.T) {
	provider := NewOpenRouter(&mockHTTPClient{}, "m", "", "", nil)
	if provider.Available() {
		t.Fatalf("expected unavailable without keys")
	}
	if _, err := provider.Generate(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGeminiParsesCandidates(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[{"text":"ответ"}]}}]}`
	client := &mockHTTPClient{responses: []*mockResponse{{status: 200, body: []byte(body)}}}
	provider := NewGemini(client, "", "api-key")

	got, err := provider.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "ответ" {
		t.Fatalf("got %q", got)
	}
	if provider.Model() != "gemini-2.0-flash-001" {
		t.Fatalf("unexpected default model %q", provider.Model())
	}
}

func TestGeminiWithoutKey(t *testing.T) {
	provider := NewGemini(&mockHTTPClient{}, "", "")
	if _, err := provider.Generate(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
