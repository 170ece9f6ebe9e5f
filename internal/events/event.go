package events

import (
	"time"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
)

// Event kinds emitted by the pipeline.
const (
	KindArticlePosted  = "article_posted"
	KindArticleEdited  = "article_edited"
	KindScrapeFinished = "scrape_finished"
)

// Event is the payload delivered to downstream sinks after a pipeline action.
type Event struct {
	Kind       string          `json:"kind"`
	ChannelID  string          `json:"channel_id,omitempty"`
	MessageID  string          `json:"message_id,omitempty"`
	Article    *domain.Article `json:"article,omitempty"`
	NewItems   int             `json:"new_items,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewPosted builds the event emitted after a successful channel post.
func NewPosted(article *domain.Article, channelID, messageID string) Event {
	return Event{
		Kind:       KindArticlePosted,
		ChannelID:  channelID,
		MessageID:  messageID,
		Article:    article,
		OccurredAt: time.Now().UTC(),
	}
}

// NewEdited builds the event emitted after an in-place message edit.
func NewEdited(article *domain.Article, channelID, messageID string) Event {
	return Event{
		Kind:       KindArticleEdited,
		ChannelID:  channelID,
		MessageID:  messageID,
		Article:    article,
		OccurredAt: time.Now().UTC(),
	}
}

// NewScrapeFinished builds the event emitted after an ingestion cycle.
func NewScrapeFinished(newItems int) Event {
	return Event{
		Kind:       KindScrapeFinished,
		NewItems:   newItems,
		OccurredAt: time.Now().UTC(),
	}
}
