package sources

import (
	"context"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
)

// Source is a single news-site adapter. Implementations are best-effort
// heuristic parsers; concrete behavior is driven by SourceConfig.
type Source interface {
	ID() string
	// ListLatest returns up to limit listing-page candidates.
	ListLatest(ctx context.Context, limit int) ([]domain.NewsItem, error)
	// FetchArticle retrieves and extracts one full article page.
	FetchArticle(ctx context.Context, url string) (*domain.Article, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client
