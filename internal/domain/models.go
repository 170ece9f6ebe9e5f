package domain

import "time"

// Domain contains core models shared across the pipeline.

// Delivery statuses recorded in the delivery log.
const (
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// Article is a single ingested news article. The URL is its identity and is
// globally unique in the store.
type Article struct {
	ID          uint64     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Preview     string     `json:"preview,omitempty"`
	Quotes      []string   `json:"quotes,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Hashtags    string     `json:"hashtags,omitempty"`
	Posted      bool       `json:"posted"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	PublishedAt time.Time  `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Annotated reports whether the article has passed an annotation cycle.
func (a *Article) Annotated() bool {
	return a != nil && a.Summary != ""
}

// NewsItem is a listing-page candidate produced by a source before the full
// article content is fetched.
type NewsItem struct {
	SourceID    string
	URL         string
	Title       string
	Preview     string
	PublishedAt time.Time
}

// DeliveryLogEntry records one publish attempt. Entries are immutable after
// creation; a success entry always carries the provider message id.
type DeliveryLogEntry struct {
	ID        uint64 `json:"id"`
	ArticleID uint64 `json:"article_id"`
	ChannelID string `json:"channel_id"`
	// MessageID is the provider-assigned message identifier, empty on failure.
	MessageID string    `json:"message_id,omitempty"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	PostedAt  time.Time `json:"posted_at"`
}

// AnnotationResult is the ephemeral output of one annotation pass.
type AnnotationResult struct {
	Summary         string
	Hashtags        string
	SummaryLatency  time.Duration
	HashtagsLatency time.Duration
}

// AnnotationStats is the persisted analytics record derived from an
// AnnotationResult.
type AnnotationStats struct {
	ID              uint64        `json:"id"`
	ArticleID       uint64        `json:"article_id"`
	Provider        string        `json:"provider"`
	SummaryLatency  time.Duration `json:"summary_latency"`
	HashtagsLatency time.Duration `json:"hashtags_latency"`
	SummaryLength   int           `json:"summary_length"`
	HashtagCount    int           `json:"hashtag_count"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Settings is the read-only configuration snapshot the pipeline consumes on
// each cycle.
type Settings struct {
	ChannelID         string
	PostingEnabled    bool
	PostingInterval   time.Duration
	MaxArticlesPerDay int
	CustomHashtags    string
	SummaryStyle      string
	AIProvider        string
}

// Result is the outcome object returned by the manual trigger surface.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful Result.
func OK() Result { return Result{Success: true} }

// Fail builds a failed Result with the given reason.
func Fail(reason string) Result { return Result{Success: false, Error: reason} }
