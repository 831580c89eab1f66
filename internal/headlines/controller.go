// Package headlines owns the filter state and the fetch cycle behind the
// headline list. The Controller is driven from a single goroutine (the UI
// loop); Service.Run is safe to call from any goroutine.
package headlines

import (
	"github.com/pders01/desh/internal/news"
)

// Event is a user intent that may change the filter.
type Event interface {
	apply(news.Filter) news.Filter
}

type (
	ToggleLanguage struct{}
	SetLanguage    struct{ Language news.Language }
	SetCategory    struct{ Category news.Category }
	// SetRegion selects a region; the empty string means all of India.
	SetRegion struct{ Region string }
	// Refresh repeats the current query. Force bypasses the result cache.
	Refresh struct{ Force bool }
)

func (ToggleLanguage) apply(f news.Filter) news.Filter { return f.ToggleLanguage() }
func (e SetLanguage) apply(f news.Filter) news.Filter  { return f.WithLanguage(e.Language) }
func (e SetCategory) apply(f news.Filter) news.Filter  { return f.WithCategory(e.Category) }
func (e SetRegion) apply(f news.Filter) news.Filter    { return f.WithRegion(e.Region) }
func (Refresh) apply(f news.Filter) news.Filter        { return f }

// Fetch is a command to load articles for a filter.
type Fetch struct {
	Seq    uint64
	Filter news.Filter
	Query  string
	Force  bool
}

// Snapshot is a read-only view of the controller state.
type Snapshot struct {
	Filter   news.Filter
	Loading  bool
	Articles []news.Article
	// Err is the error of the last completed fetch, nil after a success.
	Err error
	Seq uint64
	// Loaded is false until the first fetch has completed.
	Loaded bool
	// Succeeded is true once any fetch has completed without error.
	Succeeded bool
	Cached    bool
}

// Controller holds the filter, the loaded articles and the fetch sequence.
type Controller struct {
	filter    news.Filter
	loading   bool
	articles  []news.Article
	err       error
	seq       uint64
	loaded    bool
	succeeded bool
	cached    bool
}

// New returns a controller starting from filter f.
func New(f news.Filter) *Controller {
	return &Controller{filter: f.Normalize()}
}

// State returns the current snapshot.
func (c *Controller) State() Snapshot {
	return Snapshot{
		Filter:    c.filter,
		Loading:   c.loading,
		Articles:  append([]news.Article(nil), c.articles...),
		Err:       c.err,
		Seq:       c.seq,
		Loaded:    c.loaded,
		Succeeded: c.succeeded,
		Cached:    c.cached,
	}
}

// Start issues the initial fetch.
func (c *Controller) Start() *Fetch {
	return c.issue(false)
}

// Dispatch applies ev. It returns a fetch when the filter changed, or always
// for Refresh, and nil otherwise.
func (c *Controller) Dispatch(ev Event) *Fetch {
	next := ev.apply(c.filter)
	if r, ok := ev.(Refresh); ok {
		return c.issue(r.Force)
	}
	if next == c.filter {
		return nil
	}
	c.filter = next
	return c.issue(false)
}

func (c *Controller) issue(force bool) *Fetch {
	c.seq++
	c.loading = true
	return &Fetch{
		Seq:    c.seq,
		Filter: c.filter,
		Query:  c.filter.Query(),
		Force:  force,
	}
}

// Complete applies a fetch result. Results of superseded fetches are
// dropped and Complete reports false. A failed fetch keeps the current
// articles.
func (c *Controller) Complete(r Result) bool {
	if r.Seq != c.seq {
		return false
	}
	c.loading = false
	c.loaded = true
	c.err = r.Err
	if r.Err == nil {
		c.articles = r.Articles
		c.cached = r.Cached
		c.succeeded = true
	}
	return true
}

// Current reports whether seq is the newest issued fetch.
func (c *Controller) Current(seq uint64) bool {
	return seq == c.seq
}
