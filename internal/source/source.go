// Package source fetches articles for a search query from a news provider.
package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/news"
)

// Request is a single search against a provider.
type Request struct {
	Query    string
	Language news.Language
}

// Provider returns articles matching a request, most recent first.
type Provider interface {
	Name() string
	Search(ctx context.Context, req Request) ([]news.Article, error)
}

// New returns the provider selected in the configuration.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.Source.Provider {
	case config.ProviderNewsAPI, "":
		return NewNewsAPI(cfg), nil
	case config.ProviderGoogleNews:
		return NewGoogleNews(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Source.Provider)
	}
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Source.HTTPTimeout}
}
