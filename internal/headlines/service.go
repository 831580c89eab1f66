package headlines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pders01/desh/internal/debuglog"
	"github.com/pders01/desh/internal/news"
	"github.com/pders01/desh/internal/source"
)

// Result is the outcome of a Fetch.
type Result struct {
	Seq      uint64
	Filter   news.Filter
	Articles []news.Article
	Err      error
	Cached   bool
	Duration time.Duration
}

// Cache stores provider responses by filter key.
type Cache interface {
	GetResults(key string, maxAge time.Duration) ([]news.Article, bool, error)
	SaveResults(key string, articles []news.Article) error
}

// HistoryRecorder remembers every freshly fetched batch.
type HistoryRecorder interface {
	SaveHistory(key string, articles []news.Article) error
}

// Indexer receives every freshly fetched batch for history search.
type Indexer interface {
	Index(articles []news.Article) error
}

// Service executes fetches against a provider.
type Service struct {
	provider source.Provider
	cache    Cache
	ttl      time.Duration
	history  HistoryRecorder
	index    Indexer
}

type Option func(*Service)

// WithCache saves every response in c. Cached responses younger than ttl
// answer non-forced fetches; ttl <= 0 disables reads.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithHistory records fetched articles in h. Cache hits are not recorded.
func WithHistory(h HistoryRecorder) Option {
	return func(s *Service) { s.history = h }
}

// WithIndex feeds fetched articles to idx.
func WithIndex(idx Indexer) Option {
	return func(s *Service) { s.index = idx }
}

func NewService(p source.Provider, opts ...Option) *Service {
	s := &Service{provider: p}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes f. Errors, including panics from the provider, are returned
// inside the Result.
func (s *Service) Run(ctx context.Context, f Fetch) (res Result) {
	start := time.Now()
	res = Result{Seq: f.Seq, Filter: f.Filter}
	logger := debuglog.WithFields(map[string]interface{}{
		"provider": s.provider.Name(),
		"seq":      f.Seq,
		"filter":   f.Filter.Key(),
	})

	defer func() {
		if r := recover(); r != nil {
			res.Articles = nil
			res.Err = fmt.Errorf("fetch panicked: %v", r)
			logger.Errorf("%v", res.Err)
		}
		res.Duration = time.Since(start)
	}()

	key := f.Filter.Key()
	if s.cache != nil && s.ttl > 0 && !f.Force {
		articles, ok, err := s.cache.GetResults(key, s.ttl)
		if err != nil {
			logger.Warnf("reading result cache: %v", err)
		} else if ok {
			logger.Debugf("serving %d cached articles", len(articles))
			res.Articles = articles
			res.Cached = true
			return res
		}
	}

	logger.Debugf("searching %q", f.Query)
	articles, err := s.provider.Search(ctx, source.Request{Query: f.Query, Language: f.Filter.Language})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debugf("fetch cancelled")
		} else {
			logger.Errorf("fetch failed: %v", err)
		}
		res.Err = err
		return res
	}
	if articles == nil {
		articles = []news.Article{}
	}
	res.Articles = articles
	logger.Infof("fetched %d articles", len(articles))

	if s.cache != nil {
		if err := s.cache.SaveResults(key, articles); err != nil {
			logger.Warnf("saving results: %v", err)
		}
	}
	if s.history != nil {
		if err := s.history.SaveHistory(key, articles); err != nil {
			logger.Warnf("recording history: %v", err)
		}
	}
	if s.index != nil {
		if err := s.index.Index(articles); err != nil {
			logger.Warnf("indexing results: %v", err)
		}
	}
	return res
}
