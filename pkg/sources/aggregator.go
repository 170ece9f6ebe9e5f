package sources

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
	"github.com/svodka-hq/svodka-news-bot/internal/logger"
)

// Aggregator merges listings from all configured sources. Sources are
// queried concurrently; a single source failure is isolated and contributes
// zero items for the cycle.
type Aggregator struct {
	sources []Source
}

// NewAggregator wires the aggregator over the given source adapters.
func NewAggregator(srcs ...Source) *Aggregator {
	return &Aggregator{sources: srcs}
}

// Size returns the number of configured sources.
func (g *Aggregator) Size() int { return len(g.sources) }

// FetchAll returns the union of per-source listings sorted by publication
// time descending. The overall limit is split evenly across sources.
func (g *Aggregator) FetchAll(ctx context.Context, limit int) []domain.NewsItem {
	if len(g.sources) == 0 {
		return nil
	}
	perSource := limit / len(g.sources)
	if perSource < 1 {
		perSource = 1
	}

	var (
		mu    sync.Mutex
		items []domain.NewsItem
		wg    sync.WaitGroup
	)
	for _, src := range g.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			got, err := src.ListLatest(ctx, perSource)
			if err != nil {
				logger.WarnObj("source listing failed", "source_error", map[string]any{
					"source_id": src.ID(),
					"error":     err.Error(),
				})
				return
			}
			mu.Lock()
			items = append(items, got...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	return items
}

// FetchArticle resolves the adapter for sourceID and retrieves the full
// article. When the id is unknown it falls back to host matching against each
// source's base URL.
func (g *Aggregator) FetchArticle(ctx context.Context, sourceID, articleURL string) (*domain.Article, error) {
	for _, src := range g.sources {
		if src.ID() == sourceID {
			return src.FetchArticle(ctx, articleURL)
		}
	}
	if src := g.sourceForURL(articleURL); src != nil {
		return src.FetchArticle(ctx, articleURL)
	}
	return nil, fmt.Errorf("no source adapter for %q (url %s)", sourceID, articleURL)
}

func (g *Aggregator) sourceForURL(articleURL string) Source {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return nil
	}
	for _, src := range g.sources {
		scraper, ok := src.(*Scraper)
		if !ok {
			continue
		}
		base, err := url.Parse(scraper.cfg.BaseURL)
		if err != nil {
			continue
		}
		if base.Host == parsed.Host {
			return src
		}
	}
	return nil
}
