package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
	"github.com/svodka-hq/svodka-news-bot/internal/events"
	"github.com/svodka-hq/svodka-news-bot/internal/logger"
	"github.com/svodka-hq/svodka-news-bot/internal/publisher"
	"github.com/svodka-hq/svodka-news-bot/internal/storage"
)

// Scheduler drives the pipeline: a coarse tick loop that fires ingestion,
// posting and nightly cleanup on their own cadences. All manual triggers run
// through the same code paths as the periodic ones.

const (
	postBatchSize = 5
	cleanupHour   = 3
	stopTimeout   = 5 * time.Second
)

// Fetcher lists news candidates and retrieves full articles.
type Fetcher interface {
	FetchAll(ctx context.Context, limit int) []domain.NewsItem
	FetchArticle(ctx context.Context, sourceID, url string) (*domain.Article, error)
}

// Annotator produces summaries and hashtag lines for articles.
type Annotator interface {
	Annotate(ctx context.Context, a *domain.Article, settings domain.Settings) domain.AnnotationResult
	ProviderName() string
}

// Publisher delivers formatted messages to the channel.
type Publisher interface {
	Configured() bool
	Send(ctx context.Context, articleID uint64, channel, text string) (domain.Result, string)
	Edit(ctx context.Context, channel, messageID, text string) error
	CheckChannel(ctx context.Context, channel string) error
}

// Scheduler owns the periodic loop and the manual trigger surface.
type Scheduler struct {
	store     storage.Store
	fetcher   Fetcher
	annotator Annotator
	pub       Publisher
	events    *events.Fanout
	settings  domain.Settings

	tick           time.Duration
	scrapeInterval time.Duration
	sendDelay      time.Duration
	scrapeLimit    int
	retentionDays  int

	now func() time.Time

	mu             sync.Mutex
	running        bool
	stopCh         chan struct{}
	done           chan struct{}
	lastScrape     time.Time
	lastPost       time.Time
	lastCleanupDay string
}

// Options carries the cadence knobs for the scheduler.
type Options struct {
	Tick           time.Duration
	ScrapeInterval time.Duration
	SendDelay      time.Duration
	ScrapeLimit    int
	RetentionDays  int
}

// New wires a scheduler over its collaborators.
func New(store storage.Store, fetcher Fetcher, annotator Annotator, pub Publisher, fanout *events.Fanout, settings domain.Settings, opts Options) *Scheduler {
	return &Scheduler{
		store:          store,
		fetcher:        fetcher,
		annotator:      annotator,
		pub:            pub,
		events:         fanout,
		settings:       settings,
		tick:           opts.Tick,
		scrapeInterval: opts.ScrapeInterval,
		sendDelay:      opts.SendDelay,
		scrapeLimit:    opts.ScrapeLimit,
		retentionDays:  opts.RetentionDays,
		now:            time.Now,
	}
}

func mskLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// Start launches the tick loop. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(ctx)
	logger.InfoObj("scheduler started", "cadence", map[string]any{
		"tick":            s.tick.String(),
		"scrape_interval": s.scrapeInterval.String(),
	})
}

// Stop signals the loop and waits for it to drain, bounded by a timeout.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(stopTimeout):
		logger.S.Warn("scheduler stop timed out, abandoning tick")
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.safeTick(ctx)
		}
	}
}

// safeTick runs one tick, converting a panic into a logged error so a single
// bad cycle cannot take the loop down.
func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorObj("tick panicked", "panic", map[string]any{"value": fmt.Sprint(r)})
		}
	}()
	s.tickOnce(ctx)
}

func (s *Scheduler) tickOnce(ctx context.Context) {
	now := s.now()

	if now.Sub(s.lastScrape) >= s.scrapeInterval {
		s.lastScrape = now
		s.scrapeAndProcess(ctx)
	}

	if s.settings.PostingEnabled && now.Sub(s.lastPost) >= s.settings.PostingInterval {
		s.lastPost = now
		s.postPending(ctx)
	}

	s.maybeCleanup(now)
}

// scrapeAndProcess runs one ingestion cycle: list candidates, skip known
// URLs, fetch and persist the rest, then annotate each new article.
func (s *Scheduler) scrapeAndProcess(ctx context.Context) (created int) {
	items := s.fetcher.FetchAll(ctx, s.scrapeLimit)

	var skipped, failed int
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		if _, err := s.store.FindArticleByURL(item.URL); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			logger.ErrorObj("dedup lookup failed", "item", map[string]any{"url": item.URL, "error": err.Error()})
			failed++
			continue
		}

		article, err := s.fetcher.FetchArticle(ctx, item.SourceID, item.URL)
		if err != nil {
			logger.WarnObj("article fetch failed", "item", map[string]any{"url": item.URL, "error": err.Error()})
			failed++
			continue
		}
		if article.Preview == "" {
			article.Preview = item.Preview
		}
		if article.PublishedAt.IsZero() {
			article.PublishedAt = item.PublishedAt
		}

		if err := s.store.CreateArticle(article); err != nil {
			if errors.Is(err, storage.ErrDuplicateURL) {
				skipped++
				continue
			}
			logger.ErrorObj("article create failed", "item", map[string]any{"url": item.URL, "error": err.Error()})
			failed++
			continue
		}
		created++

		s.annotateAndSave(ctx, article)
	}

	logger.InfoObj("ingestion cycle finished", "counts", map[string]any{
		"listed": len(items), "created": created, "skipped": skipped, "failed": failed,
	})
	s.events.Emit(ctx, events.NewScrapeFinished(created))
	return created
}

// annotateAndSave runs one annotation pass and persists both the article and
// the analytics record. An annotation failure leaves the article stored
// without a summary; a later regenerate can fill it in.
func (s *Scheduler) annotateAndSave(ctx context.Context, article *domain.Article) {
	result := s.annotator.Annotate(ctx, article, s.settings)
	article.Summary = result.Summary
	article.Hashtags = result.Hashtags

	if err := s.store.UpdateArticle(article); err != nil {
		logger.ErrorObj("annotation save failed", "article", map[string]any{"url": article.URL, "error": err.Error()})
		return
	}

	stats := &domain.AnnotationStats{
		ArticleID:       article.ID,
		Provider:        s.annotator.ProviderName(),
		SummaryLatency:  result.SummaryLatency,
		HashtagsLatency: result.HashtagsLatency,
		SummaryLength:   len([]rune(result.Summary)),
		HashtagCount:    strings.Count(result.Hashtags, "#"),
	}
	if err := s.store.SaveAnnotationStats(stats); err != nil {
		logger.WarnObj("annotation stats save failed", "article", map[string]any{"url": article.URL, "error": err.Error()})
	}
}

// postPending delivers annotated articles up to the remaining daily quota.
// The quota day boundary is Moscow midnight, derived from success logs so a
// restart cannot reset it.
func (s *Scheduler) postPending(ctx context.Context) {
	if !s.pub.Configured() || strings.TrimSpace(s.settings.ChannelID) == "" {
		return
	}

	budget, err := s.remainingQuota()
	if err != nil {
		logger.ErrorObj("quota check failed", "quota", map[string]any{"error": err.Error()})
		return
	}
	if budget <= 0 {
		return
	}

	batch := postBatchSize
	if budget < batch {
		batch = budget
	}
	articles, err := s.store.ListUnposted(true, batch)
	if err != nil {
		logger.ErrorObj("unposted listing failed", "listing", map[string]any{"error": err.Error()})
		return
	}

	for i := range articles {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			if !sleepCtx(ctx, s.sendDelay) {
				return
			}
		}
		s.deliver(ctx, &articles[i], s.settings.ChannelID)
	}
}

// deliver formats and sends one article, marking it posted on success.
func (s *Scheduler) deliver(ctx context.Context, article *domain.Article, channel string) domain.Result {
	text := publisher.FormatMessage(article.Hashtags, article.Summary)
	result, messageID := s.pub.Send(ctx, article.ID, channel, text)
	if !result.Success {
		logger.WarnObj("delivery failed", "article", map[string]any{"url": article.URL, "error": result.Error})
		return result
	}

	now := s.now()
	article.Posted = true
	article.PostedAt = &now
	if err := s.store.UpdateArticle(article); err != nil {
		logger.ErrorObj("posted flag save failed", "article", map[string]any{"url": article.URL, "error": err.Error()})
	}
	s.events.Emit(ctx, events.NewPosted(article, channel, messageID))
	return result
}

// remainingQuota counts today's successful deliveries against the daily cap.
func (s *Scheduler) remainingQuota() (int, error) {
	msk := s.now().In(mskLocation())
	midnight := time.Date(msk.Year(), msk.Month(), msk.Day(), 0, 0, 0, 0, msk.Location())

	posted, err := s.store.CountSuccessfulDeliveriesSince(midnight)
	if err != nil {
		return 0, fmt.Errorf("count deliveries: %w", err)
	}
	return s.settings.MaxArticlesPerDay - posted, nil
}

// maybeCleanup deletes expired records once a day during the quiet hour.
func (s *Scheduler) maybeCleanup(now time.Time) {
	msk := now.In(mskLocation())
	day := msk.Format("2006-01-02")
	if msk.Hour() != cleanupHour || day == s.lastCleanupDay {
		return
	}
	s.lastCleanupDay = day

	cutoff := now.AddDate(0, 0, -s.retentionDays)
	deleted, err := s.store.DeleteArticlesBefore(cutoff)
	if err != nil {
		logger.ErrorObj("retention cleanup failed", "cleanup", map[string]any{"error": err.Error()})
		return
	}
	logger.InfoObj("retention cleanup finished", "cleanup", map[string]any{"deleted": deleted})
}

// ManualScrape runs one ingestion cycle immediately. A cycle that finds no
// new articles is still a successful cycle.
func (s *Scheduler) ManualScrape(ctx context.Context) domain.Result {
	s.scrapeAndProcess(ctx)
	return domain.OK()
}

// ManualPost sends one article immediately. It does not consume or check the
// daily quota; the operator's explicit action overrides the cap. An empty
// channelOverride falls back to the configured channel.
func (s *Scheduler) ManualPost(ctx context.Context, articleID uint64, channelOverride string) domain.Result {
	article, err := s.store.GetArticle(articleID)
	if err != nil {
		return domain.Fail(fmt.Sprintf("article %d: %v", articleID, err))
	}
	if !article.Annotated() {
		return domain.Fail(fmt.Sprintf("article %d has no summary", articleID))
	}

	channel := channelOverride
	if strings.TrimSpace(channel) == "" {
		channel = s.settings.ChannelID
	}
	if strings.TrimSpace(channel) == "" {
		return domain.Fail("no channel configured")
	}
	return s.deliver(ctx, article, channel)
}

// RegenerateAnnotations re-runs the annotation pass on a stored article. If
// the article was already posted, the channel message is edited in place; an
// edit failure does not fail the regeneration.
func (s *Scheduler) RegenerateAnnotations(ctx context.Context, articleID uint64) domain.Result {
	article, err := s.store.GetArticle(articleID)
	if err != nil {
		return domain.Fail(fmt.Sprintf("article %d: %v", articleID, err))
	}

	s.annotateAndSave(ctx, article)
	if !article.Annotated() {
		return domain.Fail(fmt.Sprintf("article %d: annotation produced no summary", articleID))
	}

	if article.Posted {
		s.editPostedMessage(ctx, article)
	}
	return domain.OK()
}

// editPostedMessage rewrites the last successfully delivered channel message
// with the article's current annotation.
func (s *Scheduler) editPostedMessage(ctx context.Context, article *domain.Article) {
	logs, err := s.store.ListDeliveryLogs(article.ID)
	if err != nil {
		logger.WarnObj("delivery log lookup failed", "article", map[string]any{"id": article.ID, "error": err.Error()})
		return
	}

	var last *domain.DeliveryLogEntry
	for i := range logs {
		if logs[i].Status == domain.DeliveryStatusSuccess {
			last = &logs[i]
		}
	}
	if last == nil {
		return
	}

	text := publisher.FormatMessage(article.Hashtags, article.Summary)
	if err := s.pub.Edit(ctx, last.ChannelID, last.MessageID, text); err != nil {
		logger.WarnObj("message edit failed", "article", map[string]any{"id": article.ID, "error": err.Error()})
		return
	}
	s.events.Emit(ctx, events.NewEdited(article, last.ChannelID, last.MessageID))
}

// CheckChannel verifies the publisher can reach the configured channel.
func (s *Scheduler) CheckChannel(ctx context.Context) error {
	if strings.TrimSpace(s.settings.ChannelID) == "" {
		return fmt.Errorf("no channel configured")
	}
	return s.pub.CheckChannel(ctx, s.settings.ChannelID)
}

// sleepCtx waits d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
