package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/news"
)

const (
	unknownSource = "Unknown"
	unknownDate   = "Unknown date"
)

// CardOptions controls how articles are rendered.
type CardOptions struct {
	MaxDescription int
	DateFormat     string
	// Location for publish times; nil means local time.
	Location *time.Location
}

// CardOptionsFromConfig reads card settings from the UI section.
func CardOptionsFromConfig(cfg config.UIConfig) CardOptions {
	return CardOptions{
		MaxDescription: cfg.Card.MaxDescriptionLength,
		DateFormat:     cfg.DateFormat,
	}
}

// card holds the display strings for one article.
type card struct {
	Image       string
	Title       string
	Description string
	Source      string
	Author      string
	Published   string
	Link        string
}

func newCard(a news.Article, opts CardOptions) card {
	c := card{
		Image:       a.ImageURL,
		Title:       oneLine(a.Title),
		Description: oneLine(a.Description),
		Source:      oneLine(a.Source),
		Author:      oneLine(a.Author),
		Published:   formatPublished(a.PublishedAt, opts),
		Link:        a.URL,
	}
	if c.Source == "" {
		c.Source = unknownSource
	}
	if opts.MaxDescription > 0 {
		c.Description = truncateEnd(c.Description, opts.MaxDescription)
	}
	return c
}

func formatPublished(t *time.Time, opts CardOptions) string {
	if t == nil || t.IsZero() {
		return unknownDate
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	layout := opts.DateFormat
	if layout == "" {
		layout = time.RFC1123
	}
	return t.In(loc).Format(layout)
}

// RenderCard renders a single article as a block of lines.
func RenderCard(a news.Article, opts CardOptions) string {
	c := newCard(a, opts)

	var lines []string
	if c.Image != "" {
		lines = append(lines, CardMetaStyle.Render("🖼  Image: "+c.Image))
	}
	lines = append(lines, CardTitleStyle.Render(c.Title))
	if c.Description != "" {
		lines = append(lines, CardTextStyle.Render(c.Description))
	}
	lines = append(lines, CardMetaStyle.Render("Source: "+c.Source))
	if c.Author != "" {
		lines = append(lines, CardMetaStyle.Render("Author: "+c.Author))
	}
	lines = append(lines, CardMetaStyle.Render("Published: "+c.Published))
	lines = append(lines, "Read more: "+CardLinkStyle.Render(c.Link))

	return strings.Join(lines, "\n")
}

// RenderCards renders articles in order, one card each, separated by a blank
// line. An empty list renders the no-articles message.
func RenderCards(articles []news.Article, opts CardOptions) string {
	if len(articles) == 0 {
		return MsgNoArticles
	}
	cards := make([]string, len(articles))
	for i, a := range articles {
		cards[i] = RenderCard(a, opts)
	}
	return strings.Join(cards, "\n\n")
}

// articleItem is a headline in a bubbles list.
type articleItem struct {
	article news.Article
}

func (i articleItem) FilterValue() string {
	return i.article.Title + " " + i.article.Source
}

// cardDelegate draws compact cards of a fixed height for the list views.
type cardDelegate struct {
	opts CardOptions
}

const cardHeight = 5

func (d cardDelegate) Height() int                             { return cardHeight }
func (d cardDelegate) Spacing() int                            { return 1 }
func (d cardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ai, ok := item.(articleItem)
	if !ok {
		return
	}
	c := newCard(ai.article, d.opts)
	width := m.Width() - 3
	if width < 10 {
		width = 10
	}

	titleStyle := CardTitleStyle
	if index == m.Index() {
		titleStyle = SelectedCardTitleStyle
	}
	title := c.Title
	if c.Image != "" {
		title = "🖼 " + title
	}

	meta := "Source: " + c.Source
	if c.Author != "" {
		meta += " • Author: " + c.Author
	}

	lines := []string{
		titleStyle.Render(truncateEnd(title, width)),
		CardTextStyle.Render(truncateEnd(c.Description, width)),
		CardMetaStyle.Render(truncateEnd(meta, width)),
		TimeStyle.Render(truncateEnd("Published: "+c.Published, width)),
		"Read more: " + CardLinkStyle.Render(truncateMiddle(c.Link, width-11)),
	}

	border := CardBorderStyle
	if index == m.Index() {
		border = border.BorderForeground(PrimaryColor)
	}
	fmt.Fprint(w, border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func articleItems(articles []news.Article) []list.Item {
	items := make([]list.Item, len(articles))
	for i, a := range articles {
		items[i] = articleItem{article: a}
	}
	return items
}
