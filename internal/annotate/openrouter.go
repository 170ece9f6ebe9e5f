package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/svodka-hq/svodka-news-bot/internal/logger"
	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter calls the OpenRouter chat-completions API with an ordered key
// list: the primary key first, then the backups. The first key that returns
// a parseable response wins; a failing key is logged and the next one tried.
type OpenRouter struct {
	client   httpclient.Client
	endpoint string
	model    string
	keys     []string
	siteURL  string
	siteName string
}

// NewOpenRouter builds the OpenRouter provider. keys are tried in order.
func NewOpenRouter(client httpclient.Client, model, siteURL, siteName string, keys []string) *OpenRouter {
	return &OpenRouter{
		client:   client,
		endpoint: openRouterEndpoint,
		model:    model,
		keys:     keys,
		siteURL:  siteURL,
		siteName: siteName,
	}
}

func (o *OpenRouter) Name() string    { return "openrouter" }
func (o *OpenRouter) Model() string   { return o.model }
func (o *OpenRouter) Available() bool { return len(o.keys) > 0 }

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate tries each key in order until one produces a non-empty response.
// There is no retry beyond the key-fallback loop.
func (o *OpenRouter) Generate(ctx context.Context, req Request) (string, error) {
	if !o.Available() {
		return "", ErrNotConfigured
	}

	payload := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}

	for _, key := range o.keys {
		content, err := o.call(ctx, payload, key)
		if err != nil {
			logger.WarnObj("openrouter key failed", "key_error", map[string]any{
				"key":   truncatedKey(key),
				"error": err.Error(),
			})
			continue
		}
		return content, nil
	}
	return "", fmt.Errorf("openrouter: all %d keys failed", len(o.keys))
}

func (o *OpenRouter) call(ctx context.Context, payload map[string]any, key string) (string, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + key,
		"HTTP-Referer":  o.siteURL,
		"X-Title":       o.siteName,
	}
	resp, err := o.client.Post(ctx, o.endpoint, headers, payload)
	if err != nil {
		return "", fmt.Errorf("post chat completion: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("openrouter returned status %d", resp.StatusCode())
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openrouter returned no content")
	}
	return parsed.Choices[0].Message.Content, nil
}
