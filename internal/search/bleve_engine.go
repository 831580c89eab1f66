package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/desh/internal/news"
)

// MemoryIndex selects an in-memory bleve index.
const MemoryIndex = ":memory:"

type bleveEngine struct {
	history History
	idx     bleve.Index
}

// NewBleveEngine creates or opens a bleve index at indexPath and indexes the
// current history. indexPath MemoryIndex (or "") keeps the index in memory.
func NewBleveEngine(history History, indexPath string) (Searcher, error) {
	idx, err := openIndex(indexPath)
	if err != nil {
		return nil, err
	}

	be := &bleveEngine{history: history, idx: idx}
	if err := be.reindexAll(); err != nil {
		idx.Close()
		return nil, err
	}
	return be, nil
}

func openIndex(indexPath string) (bleve.Index, error) {
	if indexPath == "" || indexPath == MemoryIndex {
		return bleve.NewMemOnly(buildIndexMapping())
	}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err == nil {
		return idx, nil
	}
	idx, err = bleve.New(indexPath, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return idx, nil
}

// New returns the bleve engine, or the scanning engine when the index cannot
// be opened (for example while another desh holds it).
func New(history History, indexPath string) (Searcher, error) {
	s, err := NewBleveEngine(history, indexPath)
	if err != nil {
		return NewEngine(history), err
	}
	return s, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name
	desc.Store = true
	desc.IncludeTermVectors = true

	source := bleve.NewTextFieldMapping()
	source.Analyzer = standard.Name
	source.Store = true
	source.IncludeTermVectors = true

	author := bleve.NewTextFieldMapping()
	author.Analyzer = standard.Name
	author.Store = true
	author.IncludeTermVectors = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("description", desc)
	dm.AddFieldMappingsAt("source", source)
	dm.AddFieldMappingsAt("author", author)
	// Stored only, for rebuilding a result without the store.
	for _, name := range []string{"url", "image_url", "published"} {
		stored := bleve.NewTextFieldMapping()
		stored.Index = false
		stored.Store = true
		dm.AddFieldMappingsAt(name, stored)
	}

	im.DefaultMapping = dm
	return im
}

func articleDoc(a news.Article) map[string]any {
	doc := map[string]any{
		"title":       a.Title,
		"description": a.Description,
		"source":      a.Source,
		"author":      a.Author,
		"url":         a.URL,
		"image_url":   a.ImageURL,
	}
	if a.PublishedAt != nil {
		doc["published"] = a.PublishedAt.UTC().Format(time.RFC3339)
	}
	return doc
}

func (b *bleveEngine) reindexAll() error {
	entries, err := b.history.GetHistory(0)
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, e := range entries {
		if err := batch.Index(e.ID, articleDoc(e.Article)); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *bleveEngine) Index(articles []news.Article) error {
	if len(articles) == 0 {
		return nil
	}
	batch := b.idx.NewBatch()
	for _, a := range articles {
		if err := batch.Index(a.ID(), articleDoc(a)); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *bleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	boosts := []struct {
		field  string
		match  float64
		prefix float64
	}{
		{"title", 4.0, 3.5},
		{"description", 2.0, 1.8},
		{"source", 1.0, 0.8},
		{"author", 0.5, 0.3},
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, f := range boosts {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(f.field)
			mq.SetBoost(f.match)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f.field)
			pq.SetBoost(f.prefix)
			qs = append(qs, pq)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"title", "description", "source", "author", "url", "image_url", "published"}
	req.IncludeLocations = true
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		r := &Result{ID: h.ID, Score: h.Score}
		if entry, err := b.history.GetArticle(h.ID); err == nil {
			r.Article = entry.Article
		} else {
			r.Article = articleFromFields(h.Fields)
		}
		for field := range h.Locations {
			r.Matches = append(r.Matches, Match{Field: field, Text: stringField(h.Fields, field)})
		}
		sort.Slice(r.Matches, func(i, j int) bool { return r.Matches[i].Field < r.Matches[j].Field })
		out = append(out, r)
	}
	return out, nil
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

func articleFromFields(fields map[string]any) news.Article {
	a := news.Article{
		Title:       stringField(fields, "title"),
		Description: stringField(fields, "description"),
		Source:      stringField(fields, "source"),
		Author:      stringField(fields, "author"),
		URL:         stringField(fields, "url"),
		ImageURL:    stringField(fields, "image_url"),
	}
	if ts := stringField(fields, "published"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			a.PublishedAt = &t
		}
	}
	return a
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *bleveEngine) Close() error {
	return b.idx.Close()
}
