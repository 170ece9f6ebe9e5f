package annotate

import (
	"context"
	"errors"
)

// Provider is an AI text-generation backend reachable over HTTP. The active
// implementation is selected once at construction from configuration.
type Provider interface {
	Name() string
	Model() string
	// Available reports whether the provider has usable credentials.
	Available() bool
	// Generate sends the prompt and returns the raw response text.
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one prompt request to a provider.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ErrNotConfigured is returned when a provider is missing its credentials.
// The caller fails fast for that call path without attempting the network.
var ErrNotConfigured = errors.New("ai provider not configured")

// truncatedKey renders a log-safe key identity; secrets are never logged whole.
func truncatedKey(key string) string {
	const show = 12
	if len(key) <= show {
		return key
	}
	return key[:show] + "..."
}
