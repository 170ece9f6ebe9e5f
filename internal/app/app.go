package app

import (
	"context"
	"fmt"
	"time"

	"github.com/svodka-hq/svodka-news-bot/internal/annotate"
	"github.com/svodka-hq/svodka-news-bot/internal/cache"
	"github.com/svodka-hq/svodka-news-bot/internal/config"
	"github.com/svodka-hq/svodka-news-bot/internal/domain"
	"github.com/svodka-hq/svodka-news-bot/internal/events"
	"github.com/svodka-hq/svodka-news-bot/internal/logger"
	"github.com/svodka-hq/svodka-news-bot/internal/publisher"
	"github.com/svodka-hq/svodka-news-bot/internal/scheduler"
	"github.com/svodka-hq/svodka-news-bot/internal/storage"
	"github.com/svodka-hq/svodka-news-bot/pkg/httpclient"
	"github.com/svodka-hq/svodka-news-bot/pkg/sources"
)

// App wires the pipeline together and owns its lifecycle.
type App struct {
	cfg       *config.Config
	store     storage.Store
	scheduler *scheduler.Scheduler
}

const (
	httpTimeout = 30 * time.Second
	cacheTTL    = time.Hour
	cacheSize   = 100
)

// New builds the full pipeline from configuration.
func New(cfg *config.Config) (*App, error) {
	store, err := storage.NewStore("", cfg.BBoltPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	registry, err := sources.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load sources: %w", err)
	}

	client := httpclient.NewRestyClient(httpTimeout)

	// One shared cache pair across all sources, so the cap bounds total
	// memory rather than per-source memory.
	listCache := cache.New[[]domain.NewsItem](cacheSize, cacheTTL, cache.EvictOldest)
	pageCache := cache.New[domain.Article](cacheSize, cacheTTL, cache.EvictOldest)

	scrapers := make([]sources.Source, 0, len(registry.All()))
	for _, sc := range registry.All() {
		scrapers = append(scrapers, sources.NewScraper(sc, client, listCache, pageCache))
	}
	aggregator := sources.NewAggregator(scrapers...)

	provider, err := buildProvider(cfg, client)
	if err != nil {
		store.Close()
		return nil, err
	}
	responseCache := cache.New[string](cacheSize, cacheTTL, cache.EvictAny)
	annotator := annotate.NewService(provider, responseCache)

	telegram := publisher.NewTelegram(cfg.TelegramBotToken, client, store)

	sinks := []events.Sink{events.LogSink{}}
	for _, url := range cfg.Webhooks() {
		sinks = append(sinks, events.NewWebhookSink(url, client))
	}
	fanout := events.NewFanout(sinks)

	sched := scheduler.New(store, aggregator, annotator, telegram, fanout, cfg.Settings(), scheduler.Options{
		Tick:           cfg.Tick,
		ScrapeInterval: cfg.ScrapeInterval,
		SendDelay:      cfg.SendDelay,
		ScrapeLimit:    cfg.ScrapeLimit,
		RetentionDays:  cfg.RetentionDays,
	})

	logger.InfoObj("pipeline assembled", "setup", map[string]any{
		"sources":     aggregator.Size(),
		"ai_provider": provider.Name(),
		"model":       provider.Model(),
		"sinks":       fanout.Size(),
	})

	return &App{cfg: cfg, store: store, scheduler: sched}, nil
}

// buildProvider selects the AI backend once, at construction.
func buildProvider(cfg *config.Config, client httpclient.Client) (annotate.Provider, error) {
	switch cfg.AIProvider {
	case "gemini":
		return annotate.NewGemini(client, "", cfg.GeminiAPIKey), nil
	case "openrouter":
		return annotate.NewOpenRouter(client, cfg.OpenRouterModel, cfg.SiteURL, cfg.SiteName, cfg.OpenRouterKeys()), nil
	default:
		return nil, fmt.Errorf("unsupported ai_provider %q", cfg.AIProvider)
	}
}

// Scheduler exposes the trigger surface for manual operations.
func (a *App) Scheduler() *scheduler.Scheduler { return a.scheduler }

// Run starts the scheduler and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.PostingEnabled {
		if err := a.scheduler.CheckChannel(ctx); err != nil {
			logger.WarnObj("channel probe failed, posting may not work", "probe", map[string]any{
				"channel": a.cfg.ChannelID,
				"error":   err.Error(),
			})
		}
	}

	a.scheduler.Start(ctx)
	<-ctx.Done()
	a.scheduler.Stop()
	return nil
}

// Close releases held resources.
func (a *App) Close() error {
	return a.store.Close()
}
