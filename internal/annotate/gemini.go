package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
)

const geminiEndpointFmt = "https://generativelanguage.googleapis.com/v1/models/%s:generateContent?key=%s"

// Gemini calls the Google generative-language API with a single key. A
// missing key fails immediately without attempting the network.
type Gemini struct {
	client httpclient.Client
	model  string
	apiKey string
}

// NewGemini builds the Gemini provider.
func NewGemini(client httpclient.Client, model, apiKey string) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash-001"
	}
	return &Gemini{client: client, model: model, apiKey: apiKey}
}

func (g *Gemini) Name() string    { return "gemini" }
func (g *Gemini) Model() string   { return g.model }
func (g *Gemini) Available() bool { return g.apiKey != "" }

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	if !g.Available() {
		return "", ErrNotConfigured
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": req.Prompt}}},
		},
	}

	endpoint := fmt.Sprintf(geminiEndpointFmt, g.model, g.apiKey)
	resp, err := g.client.Post(ctx, endpoint, nil, payload)
	if err != nil {
		return "", fmt.Errorf("post generate content: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode())
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("decode generate content: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
