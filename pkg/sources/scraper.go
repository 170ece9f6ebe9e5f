package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/svodka-hq/svodka-news-bot/internal/cache"
	"github.com/svodka-hq/svodka-news-bot/internal/domain"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	minTitleRunes    = 10
	previewMaxRunes  = 200
	// Structural extraction shorter than this falls back to readability.
	minStructuralBody = 200
)

var (
	contentClassRe = regexp.MustCompile(`(?i)(content|article|text|body|post)`)
	titleClassRe   = regexp.MustCompile(`(?i)(title|heading)`)
)

// ListCache caches listing results keyed by (listing URL, limit).
type ListCache = cache.Cache[[]domain.NewsItem]

// PageCache caches extracted article pages keyed by URL.
type PageCache = cache.Cache[domain.Article]

// Scraper is the generic heuristic adapter: one implementation of Source,
// parameterized by a SourceConfig. Listing and article fetches go through the
// shared caches.
type Scraper struct {
	cfg       SourceConfig
	client    HTTPClient
	listCache *ListCache
	pageCache *PageCache
	now       func() time.Time
}

// NewScraper builds a source adapter for cfg. Both caches are shared across
// adapters and must not be nil.
func NewScraper(cfg SourceConfig, client HTTPClient, listCache *ListCache, pageCache *PageCache) *Scraper {
	return &Scraper{
		cfg:       cfg,
		client:    client,
		listCache: listCache,
		pageCache: pageCache,
		now:       time.Now,
	}
}

func (s *Scraper) ID() string { return s.cfg.ID }

// ListLatest fetches the listing page and extracts up to limit candidates.
func (s *Scraper) ListLatest(ctx context.Context, limit int) ([]domain.NewsItem, error) {
	key := fmt.Sprintf("%s#limit=%d", s.cfg.ListingURL, limit)
	if items, ok := s.listCache.Get(key); ok {
		if len(items) > limit {
			items = items[:limit]
		}
		return append([]domain.NewsItem(nil), items...), nil
	}

	body, err := s.download(ctx, s.cfg.ListingURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s listing html: %w", s.cfg.ID, err)
	}

	items := s.extractListing(doc, limit)
	s.listCache.Put(key, items)
	return items, nil
}

// candidate pairs an article anchor with the listing container it came from,
// so preview/date extraction can look at the surrounding markup.
type candidate struct {
	link *goquery.Selection
	item *goquery.Selection
}

func (s *Scraper) candidates(doc *goquery.Document) []candidate {
	var out []candidate

	if s.cfg.linkClassRe != nil {
		doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
			if classMatches(sel, s.cfg.linkClassRe) {
				out = append(out, candidate{link: sel, item: sel})
			}
		})
		if len(out) > 0 {
			return out
		}
	}

	if s.cfg.itemClassRe != nil {
		doc.Find("article, div").Each(func(_ int, sel *goquery.Selection) {
			if !classMatches(sel, s.cfg.itemClassRe) {
				return
			}
			link := sel.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
				return s.cfg.linkRe == nil || s.cfg.linkRe.MatchString(a.AttrOr("href", ""))
			}).First()
			if link.Length() > 0 {
				out = append(out, candidate{link: link, item: sel})
			}
		})
		if len(out) > 0 {
			return out
		}
	}

	if s.cfg.linkRe != nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			if s.cfg.linkRe.MatchString(sel.AttrOr("href", "")) {
				out = append(out, candidate{link: sel, item: sel})
			}
		})
	}
	return out
}

func (s *Scraper) extractListing(doc *goquery.Document, limit int) []domain.NewsItem {
	seen := make(map[string]bool)
	var items []domain.NewsItem

	for _, c := range s.candidates(doc) {
		href := c.link.AttrOr("href", "")
		if href == "" {
			continue
		}
		itemURL := resolveURL(s.cfg.BaseURL, href)
		if !strings.HasPrefix(itemURL, "http") || seen[itemURL] {
			continue
		}

		title := strings.TrimSpace(c.link.Text())
		if title == "" {
			title = strings.TrimSpace(c.item.Find("h1, h2, h3, h4, span").First().Text())
		}
		if utf8.RuneCountInString(title) < minTitleRunes {
			continue
		}

		preview := ""
		c.item.Find("p, div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if classMatches(sel, prevClassRe) {
				preview = truncateRunes(strings.TrimSpace(sel.Text()), previewMaxRunes)
				return false
			}
			return true
		})

		published, ok := s.itemDate(c, itemURL)
		if !ok {
			published = s.now().UTC()
		}

		seen[itemURL] = true
		items = append(items, domain.NewsItem{
			SourceID:    s.cfg.ID,
			URL:         itemURL,
			Title:       title,
			Preview:     preview,
			PublishedAt: published,
		})
		if len(items) >= limit {
			break
		}
	}
	return items
}

func (s *Scraper) itemDate(c candidate, itemURL string) (time.Time, bool) {
	var dateText string
	c.item.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if classMatches(sel, dateClassRe) {
			dateText = sel.Text()
			return false
		}
		return true
	})
	if dateText != "" {
		if t, ok := ParseDate(dateText, s.now()); ok {
			return t, true
		}
	}
	if s.cfg.DateFromURL {
		if t, ok := dateFromURL(itemURL); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// FetchArticle retrieves one article page and extracts title, body, quotes
// and tags. Structural extraction runs first; readability is the fallback
// pass when it yields no usable body.
func (s *Scraper) FetchArticle(ctx context.Context, articleURL string) (*domain.Article, error) {
	if a, ok := s.pageCache.Get(articleURL); ok {
		clone := a
		return &clone, nil
	}

	body, err := s.download(ctx, articleURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s article html: %w", s.cfg.ID, err)
	}

	title := s.structuralTitle(doc)
	content := s.structuralBody(doc)

	if utf8.RuneCountInString(content) < minStructuralBody {
		fallbackTitle, fallbackBody := s.readabilityPass(body, articleURL)
		if fallbackBody != "" {
			content = fallbackBody
		}
		if title == "" {
			title = fallbackTitle
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("no usable body extracted from %s", articleURL)
	}
	if title == "" {
		title = firstLine(content)
	}

	published, ok := s.pageDate(doc, articleURL)
	if !ok {
		published = s.now().UTC()
	}

	article := domain.Article{
		URL:         articleURL,
		Title:       title,
		Content:     content,
		Quotes:      extractQuotes(doc, content),
		Tags:        extractTags(doc),
		PublishedAt: published,
	}
	s.pageCache.Put(articleURL, article)

	clone := article
	return &clone, nil
}

func (s *Scraper) structuralTitle(doc *goquery.Document) string {
	var title string
	doc.Find("h1, h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if classMatches(sel, titleClassRe) {
			title = strings.TrimSpace(sel.Text())
			return false
		}
		return true
	})
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return title
}

// structuralBody joins the paragraphs of the largest content-classed
// container.
func (s *Scraper) structuralBody(doc *goquery.Document) string {
	best := ""
	doc.Find("article, section, div").Each(func(_ int, sel *goquery.Selection) {
		if !classMatches(sel, contentClassRe) && !sel.Is("article") {
			return
		}
		var parts []string
		sel.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		joined := strings.Join(parts, "\n\n")
		if len(joined) > len(best) {
			best = joined
		}
	})
	return best
}

func (s *Scraper) readabilityPass(body []byte, articleURL string) (title, text string) {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return "", ""
	}
	art, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(art.Title), strings.TrimSpace(art.TextContent)
}

func (s *Scraper) pageDate(doc *goquery.Document, articleURL string) (time.Time, bool) {
	var dateText string
	doc.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if classMatches(sel, dateClassRe) {
			dateText = sel.Text()
			return false
		}
		return true
	})
	if dateText != "" {
		if t, ok := ParseDate(dateText, s.now()); ok {
			return t, true
		}
	}
	if s.cfg.DateFromURL {
		if t, ok := dateFromURL(articleURL); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *Scraper) download(ctx context.Context, pageURL string) ([]byte, error) {
	resp, err := s.client.Get(ctx, pageURL, BrowserHeaders())
	if err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", s.cfg.ID, err)
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", s.cfg.ID, resp.StatusCode(), responseSnippet(body))
	}
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return body, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
