package tui

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/desh/internal/news"
)

const searchLimit = 20

func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.cancelFetch != nil {
		a.cancelFetch()
	}
	a.stop()
	return a, tea.Quit
}

// articleMarkdown lays out the reader view of an article.
func articleMarkdown(a news.Article, opts CardOptions) string {
	c := newCard(a, opts)

	var content strings.Builder
	fmt.Fprintf(&content, "# %s\n\n", c.Title)

	meta := []string{c.Source, c.Published}
	if c.Author != "" {
		meta = append(meta, c.Author)
	}
	fmt.Fprintf(&content, "*%s*\n\n", strings.Join(meta, " · "))

	if a.ImageURL != "" {
		fmt.Fprintf(&content, "**Image:** %s\n\n", a.ImageURL)
	}

	content.WriteString("---\n\n")

	if desc := descriptionMarkdown(a.Description); desc != "" {
		content.WriteString(desc)
		content.WriteString("\n\n")
	}

	if a.URL != "" {
		fmt.Fprintf(&content, "[Read more](%s)\n", a.URL)
	}

	return content.String()
}

// descriptionMarkdown converts descriptions that carry HTML markup, which
// some publishers send through NewsAPI, to markdown for glamour.
func descriptionMarkdown(desc string) string {
	desc = strings.TrimSpace(desc)
	if !strings.Contains(desc, "<") || !strings.Contains(desc, ">") {
		return desc
	}
	md, err := htmltomarkdown.ConvertString(desc)
	if err != nil {
		return desc
	}
	return strings.TrimSpace(md)
}

func (a *App) renderArticle(article news.Article) tea.Cmd {
	markdown := articleMarkdown(article, a.cardOpts)
	r, err := a.getRenderer()
	return func() tea.Msg {
		if err != nil {
			return articleRenderedMsg{content: "Error initializing renderer: " + err.Error()}
		}

		rendered, err := r.Render(markdown)
		if err != nil {
			// Still an articleRenderedMsg so that loadingArticle is cleared.
			return articleRenderedMsg{content: fmt.Sprintf("Failed to render article: %s\n\nPress Escape to go back.", err)}
		}
		return articleRenderedMsg{content: rendered}
	}
}

func (a *App) performSearch(query string, seq int) tea.Cmd {
	searcher := a.searcher
	return func() tea.Msg {
		if searcher == nil || query == "" {
			return searchResultsMsg{seq: seq}
		}
		results, err := searcher.Search(query, searchLimit)
		if err != nil {
			return errorMsg{err: wrapErr("search", err)}
		}
		return searchResultsMsg{seq: seq, results: results}
	}
}

func (a *App) openURL(url string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.Open(url); err != nil {
			return errorMsg{err: wrapErr("open "+url, err)}
		}
		return nil
	}
}

func (a *App) openImage(url string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.OpenImage(url); err != nil {
			return errorMsg{err: wrapErr("open image", err)}
		}
		return nil
	}
}
