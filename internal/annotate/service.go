package annotate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/svodka-hq/svodka-news-bot/internal/cache"
	"github.com/svodka-hq/svodka-news-bot/internal/domain"
	"github.com/svodka-hq/svodka-news-bot/internal/logger"
)

// ErrNoSummary is returned when the provider produced nothing usable: every
// key failed, or the cleaned summary did not pass the quality gate.
var ErrNoSummary = errors.New("no usable summary produced")

// Service produces article annotations through a single provider, caching
// responses keyed by the full request fingerprint.
type Service struct {
	provider Provider
	cache    *cache.Cache[string]
	now      func() time.Time
}

// NewService builds the annotation service around the given provider and a
// shared response cache.
func NewService(provider Provider, responseCache *cache.Cache[string]) *Service {
	return &Service{
		provider: provider,
		cache:    responseCache,
		now:      time.Now,
	}
}

// ProviderName reports the active provider, for analytics records.
func (s *Service) ProviderName() string { return s.provider.Name() }

// fingerprint identifies a generation request by its prompt, model and
// temperature. Identical requests hit the cache regardless of which article
// produced them.
func fingerprint(prompt, model string, temperature float64) string {
	sum := md5.Sum([]byte(prompt + "|" + model + "|" + strconv.FormatFloat(temperature, 'g', -1, 64)))
	return hex.EncodeToString(sum[:])
}

// Summarize generates and post-processes a summary for the article. The
// cached value is the cleaned summary, so a cache hit skips both the network
// call and the cleaning pipeline.
func (s *Service) Summarize(ctx context.Context, a *domain.Article, style string) (string, error) {
	prompt := BuildSummaryPrompt(a, style)
	key := fingerprint(prompt, s.provider.Model(), summaryTemperature)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	raw, err := s.provider.Generate(ctx, Request{
		Prompt:      prompt,
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	cleaned := CleanSummary(raw)
	if cleaned == "" {
		return "", ErrNoSummary
	}
	s.cache.Put(key, cleaned)
	return cleaned, nil
}

// Hashtags generates the hashtag line for the article. It never fails: any
// provider error or empty response falls back to keyword-derived hashtags.
func (s *Service) Hashtags(ctx context.Context, a *domain.Article, customTags string) string {
	prompt := BuildHashtagPrompt(a)
	key := fingerprint(prompt, s.provider.Model(), hashtagsTemperature)
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	raw, err := s.provider.Generate(ctx, Request{
		Prompt:      prompt,
		MaxTokens:   hashtagsMaxTokens,
		Temperature: hashtagsTemperature,
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		if err != nil {
			logger.WarnObj("hashtag generation failed, using fallback", "article", map[string]any{
				"url":   a.URL,
				"error": err.Error(),
			})
		}
		return FallbackHashtags(a, customTags)
	}

	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}

	content := a.Content
	if len([]rune(content)) > hashtagContentRunes {
		content = string([]rune(content)[:hashtagContentRunes])
	}
	line = ensureLeadingEmoji(line, content)
	line = appendCustomTags(line, customTags)

	s.cache.Put(key, line)
	return line
}

// Annotate produces the full annotation for an article. The summary may be
// empty when generation failed; the hashtag line is always set.
func (s *Service) Annotate(ctx context.Context, a *domain.Article, settings domain.Settings) domain.AnnotationResult {
	var result domain.AnnotationResult

	start := s.now()
	summary, err := s.Summarize(ctx, a, settings.SummaryStyle)
	result.SummaryLatency = s.now().Sub(start)
	if err != nil {
		logger.WarnObj("summary generation failed", "article", map[string]any{
			"url":   a.URL,
			"error": err.Error(),
		})
	} else {
		result.Summary = summary
	}

	start = s.now()
	result.Hashtags = s.Hashtags(ctx, a, settings.CustomHashtags)
	result.HashtagsLatency = s.now().Sub(start)

	return result
}
