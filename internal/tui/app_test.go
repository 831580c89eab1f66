package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/headlines"
	"github.com/pders01/desh/internal/news"
	"github.com/pders01/desh/internal/source"
	"github.com/pders01/desh/internal/storage"
)

type fakeProvider struct {
	articles []news.Article
	err      error
	requests []source.Request
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(_ context.Context, req source.Request) ([]news.Article, error) {
	p.requests = append(p.requests, req)
	return p.articles, p.err
}

func sampleArticles() []news.Article {
	published := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return []news.Article{
		{Title: "Monsoon arrives early", Description: "IMD says rains reach Kerala.", URL: "https://example.com/monsoon", Source: "The Hindu", PublishedAt: &published},
		{Title: "Sensex climbs", URL: "https://example.com/sensex", ImageURL: "https://example.com/sensex.jpg"},
	}
}

func newTestApp(t *testing.T, p *fakeProvider, opts Options) *App {
	t.Helper()
	cfg := config.TestConfig()
	if opts.Filter == (news.Filter{}) {
		opts.Filter = news.DefaultFilter()
	}
	app := NewApp(cfg, headlines.NewService(p), opts)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	t.Cleanup(app.Shutdown)
	return app
}

// collect runs cmd and any batched commands, returning the messages produced.
// Tick commands are never part of a fetch batch, so nothing here sleeps.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func fetchResult(t *testing.T, cmd tea.Cmd) headlines.Result {
	t.Helper()
	for _, msg := range collect(cmd) {
		if done, ok := msg.(fetchDoneMsg); ok {
			return done.result
		}
	}
	t.Fatal("command did not produce a fetch result")
	return headlines.Result{}
}

func press(app *App, msg tea.KeyMsg) tea.Cmd {
	_, cmd := app.Update(msg)
	return cmd
}

func TestInitStartsFetch(t *testing.T) {
	p := &fakeProvider{articles: sampleArticles()}
	app := newTestApp(t, p, Options{})

	cmd := app.Init()
	require.NotNil(t, cmd)

	s := app.State()
	assert.True(t, s.Loading)
	assert.Contains(t, app.View(), MsgLoading)

	res := fetchResult(t, cmd)
	require.Len(t, p.requests, 1)
	assert.Equal(t, "भारत", p.requests[0].Query)
	assert.Equal(t, news.Hindi, p.requests[0].Language)
	assert.Equal(t, s.Seq, res.Seq)
}

func TestFetchDoneShowsArticles(t *testing.T) {
	p := &fakeProvider{articles: sampleArticles()}
	app := newTestApp(t, p, Options{})

	res := fetchResult(t, app.Init())
	app.Update(fetchDoneMsg{result: res})

	s := app.State()
	assert.False(t, s.Loading)
	assert.Len(t, app.headlineList.Items(), 2)
	assert.Equal(t, MsgFetched(2, false), app.status)
	assert.Contains(t, app.View(), "Monsoon arrives early")
}

func TestEmptyResultShowsMessage(t *testing.T) {
	app := newTestApp(t, &fakeProvider{}, Options{})

	app.Update(fetchDoneMsg{result: fetchResult(t, app.Init())})

	assert.Contains(t, app.View(), MsgNoArticles)
}

func TestSupersededResultIsDropped(t *testing.T) {
	p := &fakeProvider{articles: sampleArticles()}
	app := newTestApp(t, p, Options{})

	first := fetchResult(t, app.Init())
	second := fetchResult(t, press(app, tea.KeyMsg{Type: tea.KeyCtrlL}))
	require.Greater(t, second.Seq, first.Seq)

	app.Update(fetchDoneMsg{result: first})
	assert.True(t, app.State().Loading, "stale result must not end loading")
	assert.Empty(t, app.headlineList.Items())

	app.Update(fetchDoneMsg{result: second})
	assert.False(t, app.State().Loading)
	assert.Len(t, app.headlineList.Items(), 2)
	assert.Equal(t, news.English, app.State().Filter.Language)
}

func TestFailedFetchKeepsList(t *testing.T) {
	p := &fakeProvider{articles: sampleArticles()}
	app := newTestApp(t, p, Options{})
	app.Update(fetchDoneMsg{result: fetchResult(t, app.Init())})

	p.err = errors.New("upstream down")
	res := fetchResult(t, press(app, tea.KeyMsg{Type: tea.KeyCtrlR}))
	require.Error(t, res.Err)
	app.Update(fetchDoneMsg{result: res})

	assert.Len(t, app.headlineList.Items(), 2)
	require.Error(t, app.err)
	assert.Contains(t, app.View(), "upstream down")
}

func TestFailedFirstFetchShowsFailure(t *testing.T) {
	app := newTestApp(t, &fakeProvider{err: errors.New("boom")}, Options{})

	app.Update(fetchDoneMsg{result: fetchResult(t, app.Init())})

	view := app.View()
	assert.Contains(t, view, MsgLoadFailed)
	assert.NotContains(t, view, MsgNoArticles)
}

func TestFailureAfterEmptySuccessShowsNoArticles(t *testing.T) {
	p := &fakeProvider{}
	app := newTestApp(t, p, Options{})
	app.Update(fetchDoneMsg{result: fetchResult(t, app.Init())})

	p.err = errors.New("upstream down")
	res := fetchResult(t, press(app, tea.KeyMsg{Type: tea.KeyCtrlL}))
	require.Error(t, res.Err)
	app.Update(fetchDoneMsg{result: res})

	view := app.View()
	assert.Contains(t, view, MsgNoArticles)
	assert.NotContains(t, view, MsgLoadFailed)
	assert.Contains(t, view, "upstream down")
}

func TestRememberFilter(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "desh.db"), 0)
	require.NoError(t, err)
	defer store.Close()

	app := newTestApp(t, &fakeProvider{}, Options{Store: store})
	app.config.Filter.Remember = true

	require.NotNil(t, press(app, tea.KeyMsg{Type: tea.KeyCtrlL}))

	f, ok, err := store.LoadFilter()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, news.English, f.Language)
}

func TestSearchResultsIgnoreStaleSeq(t *testing.T) {
	app := newTestApp(t, &fakeProvider{}, Options{})
	press(app, tea.KeyMsg{Type: tea.KeyCtrlS})
	app.searchSeq = 2

	app.Update(searchResultsMsg{seq: 1, results: nil})
	assert.Empty(t, app.status)

	app.Update(searchResultsMsg{seq: 2})
	assert.Equal(t, MsgResultsCount(0), app.status)
}

func TestPerformSearchWithoutSearcher(t *testing.T) {
	app := newTestApp(t, &fakeProvider{}, Options{})

	msg := app.performSearch("monsoon", 3)()
	res, ok := msg.(searchResultsMsg)
	require.True(t, ok)
	assert.Equal(t, 3, res.seq)
	assert.Empty(t, res.results)
}

func TestArticleMarkdown(t *testing.T) {
	arts := sampleArticles()
	opts := CardOptions{DateFormat: "2 Jan 2006", Location: time.UTC}

	md := articleMarkdown(arts[0], opts)
	assert.True(t, strings.HasPrefix(md, "# Monsoon arrives early"))
	assert.Contains(t, md, "The Hindu · 1 Mar 2024")
	assert.Contains(t, md, "IMD says rains reach Kerala.")
	assert.Contains(t, md, "[Read more](https://example.com/monsoon)")
	assert.NotContains(t, md, "**Image:**")

	md = articleMarkdown(arts[1], opts)
	assert.Contains(t, md, "Unknown · Unknown date")
	assert.Contains(t, md, "**Image:** https://example.com/sensex.jpg")
}

func TestDescriptionMarkdown(t *testing.T) {
	assert.Equal(t, "plain text", descriptionMarkdown("  plain text "))
	assert.Equal(t, "Rains **arrive** early", descriptionMarkdown("<p>Rains <b>arrive</b> early</p>"))
	assert.Equal(t, "a < b", descriptionMarkdown("a < b"))
}

func TestStatusClearsOnlyLatest(t *testing.T) {
	app := newTestApp(t, &fakeProvider{}, Options{})

	app.setStatus("first", StatusInfo, time.Second)
	seq := app.statusSeq
	app.setStatus("second", StatusInfo, time.Second)

	app.Update(statusClearMsg{seq: seq})
	assert.Equal(t, "second", app.status)

	app.Update(statusClearMsg{seq: app.statusSeq})
	assert.Empty(t, app.status)
}
