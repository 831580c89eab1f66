package search

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pders01/desh/internal/news"
)

// historyScanLimit bounds how many history entries a scan looks at.
const historyScanLimit = 2000

// Engine scores history entries in memory without an index. It backs
// searching when the bleve index cannot be opened.
type Engine struct {
	history History
	now     func() time.Time
}

// NewEngine creates a scanning engine over the store's history.
func NewEngine(history History) *Engine {
	return &Engine{history: history, now: time.Now}
}

func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	entries, err := e.history.GetHistory(historyScanLimit)
	if err != nil {
		return nil, err
	}

	var results []*Result
	for _, entry := range entries {
		if r := e.scoreArticle(entry.ID, entry.Article, terms); r != nil {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Index is a no-op: the engine reads history on every search.
func (e *Engine) Index([]news.Article) error { return nil }

func (e *Engine) DocCount() (int, error) {
	entries, err := e.history.GetHistory(0)
	return len(entries), err
}

func (e *Engine) Close() error { return nil }

func (e *Engine) scoreArticle(id string, article news.Article, terms []string) *Result {
	var matches []Match
	var totalScore float64

	fields := []struct {
		name   string
		text   string
		weight float64
		max    int
	}{
		{"title", article.Title, 4.0, 0},
		{"description", article.Description, 2.0, 150},
		{"source", article.Source, 1.0, 0},
		{"author", article.Author, 0.5, 0},
	}
	for _, f := range fields {
		score := scoreField(f.text, terms, f.weight)
		if score <= 0 {
			continue
		}
		text := f.text
		if f.max > 0 {
			text = truncate(text, f.max)
		}
		matches = append(matches, Match{Field: f.name, Text: text, Weight: score})
		totalScore += score
	}

	if totalScore <= 0 {
		return nil
	}
	if article.PublishedAt != nil {
		totalScore *= 1.0 + recencyBoost(*article.PublishedAt, e.now())
	}
	return &Result{ID: id, Article: article, Score: totalScore, Matches: matches}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize breaks text into lower-cased searchable terms. Combining marks
// are kept so Devanagari words stay whole.
func tokenize(text string) []string {
	var terms []string
	var current strings.Builder

	flush := func() {
		if term := current.String(); len([]rune(term)) > 1 {
			terms = append(terms, term)
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			flush()
		}
	}
	flush()

	return terms
}

// truncate limits text length with ellipsis
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-1]) + "…"
}

// recencyBoost gives up to 10% to articles from the last week.
func recencyBoost(published, now time.Time) float64 {
	age := now.Sub(published)
	week := 7 * 24 * time.Hour
	if age < 0 {
		age = 0
	}
	if age >= week {
		return 0
	}
	return 0.1 * (1 - float64(age)/float64(week))
}
