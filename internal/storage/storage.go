package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
)

// Package storage provides the persisted article/delivery-log store. The
// store is the single source of truth for "already ingested" and "already
// posted"; all check-then-create and check-then-publish sequences are
// serialized inside its transactions.

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateURL is returned by CreateArticle when the URL is already taken.
	ErrDuplicateURL = errors.New("article url already exists")
)

// Store persists articles, delivery logs and annotation analytics.
type Store interface {
	Close() error

	FindArticleByURL(url string) (*domain.Article, error)
	GetArticle(id uint64) (*domain.Article, error)
	CreateArticle(a *domain.Article) error
	UpdateArticle(a *domain.Article) error
	ListUnposted(withSummary bool, limit int) ([]domain.Article, error)
	DeleteArticlesBefore(cutoff time.Time) (int, error)

	CreateDeliveryLog(e *domain.DeliveryLogEntry) error
	ListDeliveryLogs(articleID uint64) ([]domain.DeliveryLogEntry, error)
	CountSuccessfulDeliveriesSince(since time.Time) (int, error)

	SaveAnnotationStats(s *domain.AnnotationStats) error
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}
