package storage

import (
	"time"

	"github.com/pders01/desh/internal/news"
)

// Entry is an article remembered in the history bucket.
type Entry struct {
	ID        string       `json:"id"`
	Article   news.Article `json:"article"`
	FirstSeen time.Time    `json:"first_seen"`
	LastSeen  time.Time    `json:"last_seen"`
	// Queries lists the filter keys the article was returned for.
	Queries []string `json:"queries,omitempty"`
}

// CachedResults is one provider response kept in the results bucket.
type CachedResults struct {
	Key       string         `json:"key"`
	Articles  []news.Article `json:"articles"`
	FetchedAt time.Time      `json:"fetched_at"`
}

type preferences struct {
	Filter    news.Filter `json:"filter"`
	UpdatedAt time.Time   `json:"updated_at"`
}
