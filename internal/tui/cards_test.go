package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/desh/internal/news"
)

var utcCards = CardOptions{MaxDescription: 150, DateFormat: "2 Jan 2006, 3:04 PM", Location: time.UTC}

func TestRenderCardsEmpty(t *testing.T) {
	assert.Equal(t, MsgNoArticles, RenderCards(nil, utcCards))
	assert.Equal(t, MsgNoArticles, RenderCards([]news.Article{}, utcCards))
}

func TestRenderCardFields(t *testing.T) {
	published := time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC)
	a := news.Article{
		Title:       "Monsoon arrives early",
		Description: "IMD says rains reach Kerala.",
		ImageURL:    "https://example.com/m.jpg",
		URL:         "https://example.com/monsoon",
		Source:      "The Hindu",
		Author:      "Staff Reporter",
		PublishedAt: &published,
	}

	lines := strings.Split(RenderCard(a, utcCards), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "Image: https://example.com/m.jpg")
	assert.Contains(t, lines[1], "Monsoon arrives early")
	assert.Contains(t, lines[2], "IMD says rains reach Kerala.")
	assert.Contains(t, lines[3], "Source: The Hindu")
	assert.Contains(t, lines[4], "Author: Staff Reporter")
	assert.Contains(t, lines[5], "Published: 1 Mar 2024, 3:04 PM")
	assert.Contains(t, lines[6], "Read more: https://example.com/monsoon")
}

func TestRenderCardDefaults(t *testing.T) {
	out := RenderCard(news.Article{Title: "Bare", URL: "https://example.com/bare"}, utcCards)

	assert.Contains(t, out, "Source: Unknown")
	assert.Contains(t, out, "Published: Unknown date")
	assert.NotContains(t, out, "Author:")
	assert.NotContains(t, out, "Image:")
	assert.Len(t, strings.Split(out, "\n"), 4)
}

func TestRenderCardKeepsEmptyTitle(t *testing.T) {
	lines := strings.Split(RenderCard(news.Article{URL: "https://example.com/x"}, utcCards), "\n")

	require.Len(t, lines, 4)
	assert.NotContains(t, lines[0], "Untitled")
	assert.Contains(t, lines[1], "Source: Unknown")
}

func TestRenderCardTruncatesDescription(t *testing.T) {
	opts := utcCards
	opts.MaxDescription = 10
	out := RenderCard(news.Article{Title: "T", Description: "एक लंबा विवरण जो कट जाएगा"}, opts)

	assert.Contains(t, out, "…")
	assert.NotContains(t, out, "कट जाएगा")
}

func TestRenderCardsPreservesOrder(t *testing.T) {
	articles := []news.Article{{Title: "first"}, {Title: "second"}, {Title: "third"}}

	out := RenderCards(articles, utcCards)
	cards := strings.Split(out, "\n\n")
	require.Len(t, cards, 3)
	for i, a := range articles {
		assert.Contains(t, cards[i], a.Title)
	}
	assert.Equal(t, out, RenderCards(articles, utcCards), "rendering is idempotent")
}

func TestArticleItemFilterValue(t *testing.T) {
	item := articleItem{article: news.Article{Title: "Budget", Source: "Mint"}}
	assert.Equal(t, "Budget Mint", item.FilterValue())
}
