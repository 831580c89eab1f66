package search

import (
	"github.com/pders01/desh/internal/news"
	"github.com/pders01/desh/internal/storage"
)

// Searcher answers free text queries over previously seen articles.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
	// Index adds or refreshes articles. Engines that read the store directly
	// may treat it as a no-op.
	Index(articles []news.Article) error
	DocCount() (int, error)
	Close() error
}

// History is the part of the store the engines read from.
type History interface {
	GetHistory(limit int) ([]*storage.Entry, error)
	GetArticle(id string) (*storage.Entry, error)
}

// Result is a matched article.
type Result struct {
	ID      string
	Article news.Article
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "description", "source", "author"
	Text   string
	Weight float64
}
