package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/headlines"
	"github.com/pders01/desh/internal/news"
	"github.com/pders01/desh/internal/search"
	"github.com/pders01/desh/internal/source"
	"github.com/pders01/desh/internal/storage"
)

const newsAPIBody = `{"status":"ok","totalResults":2,"articles":[
{"source":{"id":null,"name":"The Hindu"},"author":"PTI","title":"Monsoon reaches Kerala early","description":"The southwest monsoon set in over Kerala.","url":"https://example.com/monsoon","urlToImage":null,"publishedAt":"2025-06-05T09:30:00Z"},
{"source":{"id":null,"name":"Mint"},"author":null,"title":"Sensex closes higher","description":null,"url":"https://example.com/sensex","urlToImage":"https://example.com/sensex.jpg","publishedAt":"2025-06-05T08:00:00Z"}
]}`

const googleNewsBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Google News</title>
<item><title>ISRO schedules launch - NDTV</title><link>https://news.google.com/articles/isro</link>
<pubDate>Thu, 05 Jun 2025 10:00:00 GMT</pubDate><description>&lt;p&gt;PSLV launch window opens.&lt;/p&gt;</description></item>
</channel></rss>`

var (
	server   *httptest.Server
	requests atomic.Int64
)

func TestMain(m *testing.M) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/everything", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("apiKey") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"status":"error","code":"apiKeyMissing","message":"no key"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, newsAPIBody)
	})
	mux.HandleFunc("/rss/search", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, googleNewsBody)
	})
	server = httptest.NewServer(mux)

	code := m.Run()

	server.Close()
	os.Exit(code)
}

type pipeline struct {
	store    *storage.Store
	searcher search.Searcher
	service  *headlines.Service
}

func newPipeline(t *testing.T, cfg *config.Config) *pipeline {
	t.Helper()
	cfg.Source.Endpoint = server.URL + "/v2/everything"
	cfg.Source.GoogleNewsEndpoint = server.URL + "/rss/search"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "desh.db"), 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	searcher, err := search.New(store, search.MemoryIndex)
	if err != nil {
		t.Fatalf("search.New: %v", err)
	}
	t.Cleanup(func() { searcher.Close() })

	provider, err := source.New(cfg)
	if err != nil {
		t.Fatalf("source.New: %v", err)
	}

	return &pipeline{
		store:    store,
		searcher: searcher,
		service: headlines.NewService(provider,
			headlines.WithCache(store, cfg.Source.CacheTTL),
			headlines.WithHistory(store),
			headlines.WithIndex(searcher),
		),
	}
}

func (p *pipeline) run(t *testing.T, c *headlines.Controller, f *headlines.Fetch) headlines.Snapshot {
	t.Helper()
	if f == nil {
		t.Fatal("expected a fetch command")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if !c.Complete(p.service.Run(ctx, *f)) {
		t.Fatal("result of the newest fetch was dropped")
	}
	return c.State()
}

func TestNewsAPIFetchIndexAndSearch(t *testing.T) {
	p := newPipeline(t, config.TestConfig())
	c := headlines.New(news.DefaultFilter().WithLanguage(news.English))

	s := p.run(t, c, c.Start())
	if s.Err != nil {
		t.Fatalf("fetch failed: %v", s.Err)
	}
	if len(s.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(s.Articles))
	}

	n, err := p.store.HistoryCount()
	if err != nil || n != 2 {
		t.Fatalf("expected 2 history entries, got %d (%v)", n, err)
	}

	results, err := p.searcher.Search("monsoon", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Article.URL != "https://example.com/monsoon" {
		t.Fatalf("unexpected search results: %+v", results)
	}
}

func TestResultCacheServesRepeatQueries(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Source.CacheTTL = time.Minute
	p := newPipeline(t, cfg)
	c := headlines.New(news.DefaultFilter())

	before := requests.Load()
	if s := p.run(t, c, c.Start()); s.Cached {
		t.Fatal("first fetch cannot be cached")
	}

	s := p.run(t, c, c.Dispatch(headlines.Refresh{}))
	if !s.Cached {
		t.Error("expected refresh without force to be served from cache")
	}

	s = p.run(t, c, c.Dispatch(headlines.Refresh{Force: true}))
	if s.Cached {
		t.Error("forced refresh must reach the provider")
	}

	if got := requests.Load() - before; got != 2 {
		t.Errorf("expected 2 upstream requests, got %d", got)
	}
}

func TestFailureKeepsPreviousArticles(t *testing.T) {
	cfg := config.TestConfig()
	p := newPipeline(t, cfg)
	c := headlines.New(news.DefaultFilter())

	if s := p.run(t, c, c.Start()); len(s.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(s.Articles))
	}

	cfg.Source.APIKey = ""
	broken := newPipeline(t, cfg)
	s := broken.run(t, c, c.Dispatch(headlines.SetCategory{Category: news.Sports}))
	if s.Err == nil {
		t.Fatal("expected an error without an API key")
	}
	if kind, ok := source.KindOf(s.Err); !ok || kind != source.KindStatus {
		t.Errorf("expected a status error, got %v", s.Err)
	}
	if len(s.Articles) != 2 {
		t.Errorf("failed fetch must keep the previous %d articles, got %d", 2, len(s.Articles))
	}
}

func TestGoogleNewsProvider(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Source.Provider = config.ProviderGoogleNews
	p := newPipeline(t, cfg)
	c := headlines.New(news.DefaultFilter().WithCategory(news.Science))

	s := p.run(t, c, c.Start())
	if s.Err != nil {
		t.Fatalf("fetch failed: %v", s.Err)
	}
	if len(s.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(s.Articles))
	}
	a := s.Articles[0]
	if a.Title != "ISRO schedules launch" || a.Source != "NDTV" {
		t.Errorf("unexpected article: %+v", a)
	}

	results, err := p.searcher.Search("isro", 5)
	if err != nil || len(results) != 1 {
		t.Fatalf("expected the article to be searchable, got %v (%v)", results, err)
	}
}
