package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pders01/desh/internal/news"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", f)
	}
}

type headlineRecord struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string     `json:"url" yaml:"url"`
	ImageURL    string     `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Source      string     `json:"source,omitempty" yaml:"source,omitempty"`
	Author      string     `json:"author,omitempty" yaml:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
}

type headlinesReport struct {
	Query    string           `json:"query" yaml:"query"`
	Language news.Language    `json:"language" yaml:"language"`
	Category news.Category    `json:"category" yaml:"category"`
	Region   string           `json:"region,omitempty" yaml:"region,omitempty"`
	Cached   bool             `json:"cached" yaml:"cached"`
	Count    int              `json:"count" yaml:"count"`
	Articles []headlineRecord `json:"articles" yaml:"articles"`
}

func newHeadlinesReport(f news.Filter, articles []news.Article, cached bool) headlinesReport {
	r := headlinesReport{
		Query:    f.Query(),
		Language: f.Language,
		Category: f.Category,
		Region:   f.Region,
		Cached:   cached,
		Count:    len(articles),
		Articles: make([]headlineRecord, len(articles)),
	}
	for i, a := range articles {
		r.Articles[i] = headlineRecord{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.ImageURL,
			Source:      a.Source,
			Author:      a.Author,
			PublishedAt: a.PublishedAt,
		}
	}
	return r
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
