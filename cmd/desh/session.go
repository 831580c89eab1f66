package main

import (
	"fmt"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/debuglog"
	"github.com/pders01/desh/internal/headlines"
	"github.com/pders01/desh/internal/news"
	"github.com/pders01/desh/internal/search"
	"github.com/pders01/desh/internal/source"
	"github.com/pders01/desh/internal/storage"
)

// session is the wired set of services shared by the browser and the
// one-shot commands.
type session struct {
	store    *storage.Store
	searcher search.Searcher
	provider source.Provider
	service  *headlines.Service
	filter   news.Filter
}

func openSession(cfg *config.Config) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}

	filter, err := cfg.InitialFilter()
	if err != nil {
		return nil, err
	}

	provider, err := source.New(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.Filter.Remember {
		saved, ok, err := store.LoadFilter()
		switch {
		case err != nil:
			debuglog.Warnf("loading saved filter: %v", err)
		case ok:
			filter = saved
		}
	}

	searcher, err := search.New(store, cfg.Database.SearchIndex)
	if err != nil {
		debuglog.Warnf("search index unavailable, scanning history instead: %v", err)
	}

	svc := headlines.NewService(provider,
		headlines.WithCache(store, cfg.Source.CacheTTL),
		headlines.WithHistory(store),
		headlines.WithIndex(searcher),
	)

	debuglog.Infof("desh %s started with provider %s", version, provider.Name())

	return &session{
		store:    store,
		searcher: searcher,
		provider: provider,
		service:  svc,
		filter:   filter,
	}, nil
}

func (r *session) Close() {
	if err := r.searcher.Close(); err != nil {
		debuglog.Warnf("closing search index: %v", err)
	}
	if err := r.store.Close(); err != nil {
		debuglog.Warnf("closing database: %v", err)
	}
	_ = debuglog.Close()
}
