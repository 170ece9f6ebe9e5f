package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
)

const (
	articleBucket    = "articles"
	urlIndexBucket   = "article_urls"
	deliveryBucket   = "delivery_logs"
	statsBucket      = "annotation_stats"
	deliveryKeyBytes = 16
)

// mskLocation resolves Europe/Moscow, falling back to a fixed UTC+3 zone when
// the tz database is unavailable.
func mskLocation() *time.Location {
	if loc, err := time.LoadLocation("Europe/Moscow"); err == nil {
		return loc
	}
	return time.FixedZone("MSK", 3*60*60)
}

// boltStore implements Store backed by BoltDB.
type boltStore struct {
	db  *bolt.DB
	loc *time.Location
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{articleBucket, urlIndexBucket, deliveryBucket, statsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db, loc: mskLocation()}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// coerceTime is the single timestamp boundary: every persisted time is
// normalized to Europe/Moscow on write and on read.
func (b *boltStore) coerceTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(b.loc)
}

func (b *boltStore) coerceArticle(a *domain.Article) {
	a.CreatedAt = b.coerceTime(a.CreatedAt)
	a.PublishedAt = b.coerceTime(a.PublishedAt)
	if a.PostedAt != nil {
		t := b.coerceTime(*a.PostedAt)
		a.PostedAt = &t
	}
}

func idKey(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

// FindArticleByURL returns the article identified by url, or ErrNotFound.
func (b *boltStore) FindArticleByURL(url string) (*domain.Article, error) {
	var out *domain.Article
	err := b.db.View(func(tx *bolt.Tx) error {
		idx := tx.Bucket([]byte(urlIndexBucket))
		raw := idx.Get([]byte(url))
		if raw == nil {
			return ErrNotFound
		}
		value := tx.Bucket([]byte(articleBucket)).Get(raw)
		if value == nil {
			return ErrNotFound
		}
		var a domain.Article
		if err := json.Unmarshal(value, &a); err != nil {
			return fmt.Errorf("decode article: %w", err)
		}
		out = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.coerceArticle(out)
	return out, nil
}

// GetArticle returns the article with the given id, or ErrNotFound.
func (b *boltStore) GetArticle(id uint64) (*domain.Article, error) {
	var out *domain.Article
	err := b.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(articleBucket)).Get(idKey(id))
		if value == nil {
			return ErrNotFound
		}
		var a domain.Article
		if err := json.Unmarshal(value, &a); err != nil {
			return fmt.Errorf("decode article: %w", err)
		}
		out = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.coerceArticle(out)
	return out, nil
}

// CreateArticle persists a new article. The URL uniqueness check and the
// insert happen inside one write transaction, so two concurrent cycles cannot
// double-ingest the same URL.
func (b *boltStore) CreateArticle(a *domain.Article) error {
	if a == nil {
		return fmt.Errorf("article must not be nil")
	}
	if a.URL == "" {
		return fmt.Errorf("article url is required")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	b.coerceArticle(a)

	return b.db.Update(func(tx *bolt.Tx) error {
		idx := tx.Bucket([]byte(urlIndexBucket))
		if idx.Get([]byte(a.URL)) != nil {
			return ErrDuplicateURL
		}

		articles := tx.Bucket([]byte(articleBucket))
		id, err := articles.NextSequence()
		if err != nil {
			return fmt.Errorf("next article id: %w", err)
		}
		a.ID = id

		value, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode article: %w", err)
		}
		if err := articles.Put(idKey(id), value); err != nil {
			return err
		}
		return idx.Put([]byte(a.URL), idKey(id))
	})
}

// UpdateArticle rewrites an existing article record.
func (b *boltStore) UpdateArticle(a *domain.Article) error {
	if a == nil || a.ID == 0 {
		return fmt.Errorf("article with id is required")
	}
	b.coerceArticle(a)

	return b.db.Update(func(tx *bolt.Tx) error {
		articles := tx.Bucket([]byte(articleBucket))
		if articles.Get(idKey(a.ID)) == nil {
			return ErrNotFound
		}
		value, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode article: %w", err)
		}
		return articles.Put(idKey(a.ID), value)
	})
}

// ListUnposted returns up to limit unposted articles, newest first. When
// withSummary is set only annotated articles are returned.
func (b *boltStore) ListUnposted(withSummary bool, limit int) ([]domain.Article, error) {
	var out []domain.Article
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(articleBucket)).ForEach(func(_, value []byte) error {
			var a domain.Article
			if err := json.Unmarshal(value, &a); err != nil {
				return fmt.Errorf("decode article: %w", err)
			}
			if a.Posted {
				return nil
			}
			if withSummary && a.Summary == "" {
				return nil
			}
			out = append(out, a)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		b.coerceArticle(&out[i])
	}
	return out, nil
}

// DeleteArticlesBefore removes articles created before cutoff along with
// their delivery logs. Returns the number of deleted articles.
func (b *boltStore) DeleteArticlesBefore(cutoff time.Time) (int, error) {
	cutoff = b.coerceTime(cutoff)
	deleted := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		articles := tx.Bucket([]byte(articleBucket))
		idx := tx.Bucket([]byte(urlIndexBucket))
		logs := tx.Bucket([]byte(deliveryBucket))

		victims := make(map[uint64]string)
		cursor := articles.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var a domain.Article
			if err := json.Unmarshal(v, &a); err != nil {
				continue
			}
			if a.CreatedAt.Before(cutoff) {
				victims[a.ID] = a.URL
			}
		}

		for id, url := range victims {
			if err := articles.Delete(idKey(id)); err != nil {
				return err
			}
			if err := idx.Delete([]byte(url)); err != nil {
				return err
			}
			prefix := idKey(id)
			logCursor := logs.Cursor()
			for k, _ := logCursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = logCursor.Next() {
				if err := logCursor.Delete(); err != nil {
					return err
				}
			}
		}
		deleted = len(victims)
		return nil
	})
	return deleted, err
}

// CreateDeliveryLog appends one immutable delivery attempt record. The key is
// article id + sequence, so per-article lookups are a prefix scan.
func (b *boltStore) CreateDeliveryLog(e *domain.DeliveryLogEntry) error {
	if e == nil || e.ArticleID == 0 {
		return fmt.Errorf("delivery log entry with article id is required")
	}
	if e.Status == domain.DeliveryStatusSuccess && e.MessageID == "" {
		return fmt.Errorf("success delivery log requires a message id")
	}
	if e.PostedAt.IsZero() {
		e.PostedAt = time.Now()
	}
	e.PostedAt = b.coerceTime(e.PostedAt)

	return b.db.Update(func(tx *bolt.Tx) error {
		logs := tx.Bucket([]byte(deliveryBucket))
		seq, err := logs.NextSequence()
		if err != nil {
			return fmt.Errorf("next delivery log id: %w", err)
		}
		e.ID = seq

		key := make([]byte, deliveryKeyBytes)
		binary.BigEndian.PutUint64(key[:8], e.ArticleID)
		binary.BigEndian.PutUint64(key[8:], seq)

		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode delivery log: %w", err)
		}
		return logs.Put(key, value)
	})
}

// ListDeliveryLogs returns all delivery attempts for the article in creation order.
func (b *boltStore) ListDeliveryLogs(articleID uint64) ([]domain.DeliveryLogEntry, error) {
	var out []domain.DeliveryLogEntry
	err := b.db.View(func(tx *bolt.Tx) error {
		logs := tx.Bucket([]byte(deliveryBucket))
		prefix := idKey(articleID)
		cursor := logs.Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var e domain.DeliveryLogEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode delivery log: %w", err)
			}
			e.PostedAt = b.coerceTime(e.PostedAt)
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

// CountSuccessfulDeliveriesSince counts success entries with a timestamp at
// or after since. Used by the scheduler for the daily quota.
func (b *boltStore) CountSuccessfulDeliveriesSince(since time.Time) (int, error) {
	since = b.coerceTime(since)
	count := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(deliveryBucket)).ForEach(func(_, v []byte) error {
			var e domain.DeliveryLogEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode delivery log: %w", err)
			}
			if e.Status == domain.DeliveryStatusSuccess && !e.PostedAt.Before(since) {
				count++
			}
			return nil
		})
	})
	return count, err
}

// SaveAnnotationStats persists one analytics record for an annotation pass.
func (b *boltStore) SaveAnnotationStats(s *domain.AnnotationStats) error {
	if s == nil || s.ArticleID == 0 {
		return fmt.Errorf("annotation stats with article id is required")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.CreatedAt = b.coerceTime(s.CreatedAt)

	return b.db.Update(func(tx *bolt.Tx) error {
		stats := tx.Bucket([]byte(statsBucket))
		id, err := stats.NextSequence()
		if err != nil {
			return fmt.Errorf("next stats id: %w", err)
		}
		s.ID = id
		value, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode annotation stats: %w", err)
		}
		return stats.Put(idKey(id), value)
	})
}
