package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/desh/internal/news"
)

var (
	preferencesBucket = []byte("preferences")
	resultsBucket     = []byte("results")
	historyBucket     = []byte("history")

	filterKey = []byte("filter")
)

// ErrNotFound is returned when a key is absent from its bucket.
var ErrNotFound = errors.New("not found")

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore opens (or creates) the database at dbPath. timeout bounds the wait
// for the file lock held by another desh process; zero means one second.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{preferencesBucket, resultsBucket, historyBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveFilter remembers the last used filter.
func (s *Store) SaveFilter(f news.Filter) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(preferences{Filter: f, UpdatedAt: s.now()})
		if err != nil {
			return err
		}
		return tx.Bucket(preferencesBucket).Put(filterKey, data)
	})
}

// LoadFilter returns the remembered filter. ok is false when none was saved.
func (s *Store) LoadFilter() (f news.Filter, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(preferencesBucket).Get(filterKey)
		if data == nil {
			return nil
		}
		var p preferences
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		f, ok = p.Filter.Normalize(), true
		return nil
	})
	return f, ok, err
}

// SaveResults caches articles under a filter key.
func (s *Store) SaveResults(key string, articles []news.Article) error {
	data, err := json.Marshal(CachedResults{Key: key, Articles: articles, FetchedAt: s.now()})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(resultsBucket).Put([]byte(key), data)
	})
}

// GetResults returns the cached articles for key when they are younger than
// maxAge. ok is false on a miss or when the entry is stale.
func (s *Store) GetResults(key string, maxAge time.Duration) (articles []news.Article, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(resultsBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		var cached CachedResults
		if err := json.Unmarshal(data, &cached); err != nil {
			return err
		}
		if s.now().Sub(cached.FetchedAt) > maxAge {
			return nil
		}
		articles, ok = cached.Articles, true
		return nil
	})
	return articles, ok, err
}

// ClearResults drops every cached response. History is kept.
func (s *Store) ClearResults() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(resultsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(resultsBucket)
		return err
	})
}

// SaveHistory records articles seen for the given filter key.
func (s *Store) SaveHistory(key string, articles []news.Article) error {
	now := s.now()
	return s.db.Update(func(tx *bolt.Tx) error {
		return putHistory(tx.Bucket(historyBucket), key, articles, now)
	})
}

func putHistory(b *bolt.Bucket, key string, articles []news.Article, now time.Time) error {
	for _, a := range articles {
		id := a.ID()
		entry := Entry{ID: id, FirstSeen: now}
		if data := b.Get([]byte(id)); data != nil {
			// A corrupt entry is overwritten rather than failing the save.
			_ = json.Unmarshal(data, &entry)
		}
		entry.ID = id
		entry.Article = a
		entry.LastSeen = now
		if key != "" && !contains(entry.Queries, key) {
			entry.Queries = append(entry.Queries, key)
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(id), data); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// GetArticle returns the history entry with the given article ID.
func (s *Store) GetArticle(id string) (*Entry, error) {
	var entry Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(historyBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("article %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetHistory returns remembered articles, newest publication first. Undated
// articles sort by when they were last seen. limit <= 0 returns everything.
func (s *Store) GetHistory(limit int) ([]*Entry, error) {
	var entries []*Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(historyBucket).ForEach(func(_ []byte, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return nil
			}
			entries = append(entries, &entry)
			return nil
		})
	})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sortTime().After(entries[j].sortTime())
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, err
}

func (e *Entry) sortTime() time.Time {
	if e.Article.PublishedAt != nil {
		return *e.Article.PublishedAt
	}
	return e.LastSeen
}

// HistoryCount reports how many articles are remembered.
func (s *Store) HistoryCount() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(historyBucket).Stats().KeyN
		return nil
	})
	return n, err
}
