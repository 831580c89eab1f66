package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/debuglog"
	"github.com/pders01/desh/internal/headlines"
	"github.com/pders01/desh/internal/media"
	"github.com/pders01/desh/internal/news"
	"github.com/pders01/desh/internal/search"
	"github.com/pders01/desh/internal/storage"
)

const searchDebounce = 200 * time.Millisecond

// Options carries the optional collaborators of the App.
type Options struct {
	// Store persists the filter when filter.remember is set. May be nil.
	Store *storage.Store
	// Searcher backs the history search view. May be nil.
	Searcher search.Searcher
	// Launcher opens links; defaults to media.NewLauncher.
	Launcher *media.Launcher
	// Filter is the starting filter.
	Filter news.Filter
}

type App struct {
	config      *config.Config
	ctx         context.Context
	stop        context.CancelFunc
	cancelFetch context.CancelFunc
	service     *headlines.Service
	controller  *headlines.Controller
	store       *storage.Store
	searcher    search.Searcher
	launcher    *media.Launcher
	keyHandler  *KeyHandler
	cardOpts    CardOptions

	headlineList list.Model
	regionList   list.Model
	searchList   list.Model
	searchInput  textinput.Model
	viewport     viewport.Model
	spinner      spinner.Model

	view           View
	previousView   View
	menuOpen       bool
	cameFromSearch bool // reader was entered from search results
	currentArticle *news.Article
	width          int
	height         int
	err            error

	status     string
	statusKind StatusKind
	statusSeq  int

	searchSeq          int
	pendingSearchQuery string

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	loadingArticle  bool
}

func NewApp(cfg *config.Config, svc *headlines.Service, opts Options) *App {
	ApplyTheme(cfg.UI.Colors)
	cardOpts := CardOptionsFromConfig(cfg.UI)

	headlineList := list.New([]list.Item{}, cardDelegate{opts: cardOpts}, 0, 0)
	headlineList.SetShowTitle(false)
	headlineList.SetShowStatusBar(false)
	headlineList.SetFilteringEnabled(false)
	headlineList.SetShowHelp(false)

	regionDelegate := list.NewDefaultDelegate()
	regionDelegate.ShowDescription = false
	regionList := list.New(regionItems(), regionDelegate, 0, 0)
	regionList.Title = "› region"
	regionList.SetShowStatusBar(false)
	regionList.SetFilteringEnabled(true)
	regionList.SetShowHelp(false)

	searchList := list.New([]list.Item{}, cardDelegate{opts: cardOpts}, 0, 0)
	searchList.SetShowTitle(false)
	searchList.SetShowStatusBar(false)
	searchList.SetFilteringEnabled(false)
	searchList.SetShowHelp(false)

	si := textinput.New()
	si.Placeholder = "Search headlines you have seen..."

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	launcher := opts.Launcher
	if launcher == nil {
		launcher = media.NewLauncher(cfg)
	}

	ctx, stop := context.WithCancel(context.Background())

	app := &App{
		config:       cfg,
		ctx:          ctx,
		stop:         stop,
		service:      svc,
		controller:   headlines.New(opts.Filter),
		store:        opts.Store,
		searcher:     opts.Searcher,
		launcher:     launcher,
		cardOpts:     cardOpts,
		headlineList: headlineList,
		regionList:   regionList,
		searchList:   searchList,
		searchInput:  si,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		view:         ViewHeadlines,
		previousView: ViewHeadlines,
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Card.WordWrapMaxWidth
	minWidth := a.config.UI.Card.WordWrapMinWidth
	wordWrapWidth := (a.width * 9) / 10
	if maxWidth > 0 && wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.startFetch(a.controller.Start()),
		tea.EnterAltScreen,
	)
}

// Shutdown cancels any request still in flight.
func (a *App) Shutdown() {
	a.stop()
}

// State exposes the controller snapshot.
func (a *App) State() headlines.Snapshot {
	return a.controller.State()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.controller.State().Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case fetchDoneMsg:
		return a, a.handleFetchDone(msg.result)

	case articleRenderedMsg:
		if a.view == ViewReader {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.loadingArticle = false
		}

	case searchDebounceFireMsg:
		if msg.seq == a.searchSeq && a.view == ViewSearch {
			return a, a.performSearch(a.pendingSearchQuery, msg.seq)
		}
		return a, nil

	case searchResultsMsg:
		if msg.seq == a.searchSeq && a.view == ViewSearch {
			items := make([]list.Item, len(msg.results))
			for i, r := range msg.results {
				items[i] = articleItem{article: r.Article}
			}
			a.searchList.SetItems(items)
			a.searchList.Select(0)
			return a, a.setStatus(MsgResultsCount(len(items)), StatusInfo, 2*time.Second)
		}
		return a, nil

	case statusClearMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case errorMsg:
		a.err = msg.err
		return a, nil
	}

	switch a.view {
	case ViewHeadlines:
		newList, cmd := a.headlineList.Update(msg)
		a.headlineList = newList
		cmds = append(cmds, cmd)
	case ViewRegion:
		newList, cmd := a.regionList.Update(msg)
		a.regionList = newList
		cmds = append(cmds, cmd)
	case ViewReader:
		switch msg.(type) {
		case tea.WindowSizeMsg, tea.MouseMsg:
			newViewport, cmd := a.viewport.Update(msg)
			a.viewport = newViewport
			cmds = append(cmds, cmd)
		}
	case ViewSearch:
		newList, cmd := a.searchList.Update(msg)
		a.searchList = newList
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize() {
	body := a.bodyHeight()
	a.headlineList.SetSize(a.width, body)
	a.regionList.SetSize(a.width, body)

	searchListHeight := a.height - 10
	if searchListHeight < 5 {
		searchListHeight = 5
	}
	a.searchList.SetSize(a.width, searchListHeight)
	a.viewport.Width = a.width
	a.viewport.Height = max(a.height-3, 1)
}

// bodyHeight is what remains below the chrome and above the status bar.
func (a *App) bodyHeight() int {
	h := a.height - chromeHeight(a.width, a.config.UI.Breakpoint, a.menuOpen) - 2
	if h < 3 {
		h = 3
	}
	return h
}

// dispatch applies an event and starts the fetch it produced, if any.
func (a *App) dispatch(ev headlines.Event) tea.Cmd {
	f := a.controller.Dispatch(ev)
	if f == nil {
		return nil
	}
	a.err = nil
	a.rememberFilter(f.Filter)
	return a.startFetch(f)
}

func (a *App) rememberFilter(f news.Filter) {
	if a.store == nil || !a.config.Filter.Remember {
		return
	}
	if err := a.store.SaveFilter(f); err != nil {
		debuglog.Warnf("saving filter: %v", err)
	}
}

// startFetch cancels the request in flight and runs f in the background.
func (a *App) startFetch(f *headlines.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	if a.cancelFetch != nil {
		a.cancelFetch()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.cancelFetch = cancel

	svc := a.service
	fetch := *f
	return tea.Batch(
		a.spinner.Tick,
		func() tea.Msg {
			defer cancel()
			return fetchDoneMsg{result: svc.Run(ctx, fetch)}
		},
	)
}

func (a *App) handleFetchDone(res headlines.Result) tea.Cmd {
	if !a.controller.Complete(res) {
		debuglog.Debugf("dropping superseded result seq=%d", res.Seq)
		return nil
	}
	s := a.controller.State()
	if s.Err != nil {
		a.err = s.Err
		return nil
	}
	a.err = nil
	a.headlineList.SetItems(articleItems(s.Articles))
	a.headlineList.Select(0)
	return a.setStatus(MsgFetched(len(s.Articles), s.Cached), StatusSuccess, 3*time.Second)
}

func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.statusSeq++
	a.status = text
	a.statusKind = kind
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (a *App) selectedArticle() *news.Article {
	var item list.Item
	switch a.view {
	case ViewSearch:
		item = a.searchList.SelectedItem()
	case ViewReader:
		return a.currentArticle
	default:
		item = a.headlineList.SelectedItem()
	}
	if ai, ok := item.(articleItem); ok {
		art := ai.article
		return &art
	}
	return nil
}

func (a *App) chromeKeys() chromeKeys {
	kh := a.keyHandler
	return chromeKeys{
		Region:   kh.label(kh.bindings.Region),
		Language: kh.label(kh.bindings.ToggleLanguage),
		Menu:     kh.label(kh.bindings.Menu),
	}
}

func (a *App) View() string {
	var content string
	filter := a.controller.State().Filter

	switch a.view {
	case ViewHeadlines, ViewRegion:
		parts := []string{renderTopBar(filter, a.width, a.config.UI.Breakpoint, a.menuOpen, a.chromeKeys())}
		if a.menuOpen && narrow(a.width, a.config.UI.Breakpoint) {
			parts = append(parts, renderMenu(filter, a.width, a.chromeKeys()))
		}
		parts = append(parts, renderCategoryBar(filter, a.width))
		if a.view == ViewRegion {
			parts = append(parts, a.regionList.View())
		} else {
			parts = append(parts, a.headlinesBody())
		}
		content = lipgloss.JoinVertical(lipgloss.Left, parts...)

	case ViewReader:
		if a.loadingArticle {
			content = renderCentered(a.width, a.height-3, renderMuted(MsgLoadingArticle))
		} else {
			content = a.viewport.View()
		}

	case ViewSearch:
		content = a.searchView()
	}

	status := a.getCustomStatusBar()
	if status == "" {
		return content
	}
	return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width-1), status)
}

func (a *App) headlinesBody() string {
	s := a.controller.State()
	h := a.bodyHeight()
	switch {
	case s.Loading:
		return renderCentered(a.width, h, a.spinner.View()+" "+MsgLoading)
	case len(s.Articles) == 0 && s.Err != nil && !s.Succeeded:
		return renderCentered(a.width, h, ErrorMessageStyle.Render(MsgLoadFailed))
	case s.Loaded && len(s.Articles) == 0:
		return renderCentered(a.width, h, renderMuted(MsgNoArticles))
	default:
		return a.headlineList.View()
	}
}

func (a *App) searchView() string {
	searchInputWidth := a.width - 8
	if searchInputWidth < 10 {
		searchInputWidth = max(a.width-4, 10)
	}
	a.searchInput.Width = searchInputWidth

	subtitle := MsgSearchHint
	if a.searcher == nil {
		subtitle = "History search is unavailable"
	}

	var helpText string
	switch {
	case a.searchInput.Focused():
		helpText = "Type to search • Tab/↓: results • Esc: back"
	case len(a.searchList.Items()) > 0:
		helpText = "↑↓: navigate • Enter: read • Tab: search box • Esc: back"
	default:
		helpText = "No results found • Tab: search box • Esc: back"
	}

	body := lipgloss.JoinVertical(
		lipgloss.Top,
		renderHeader("› search", subtitle, a.width),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), searchInputWidth),
		renderHelp(helpText),
		"",
		a.searchList.View(),
	)
	return ContentWrapper(a.width, a.height-3).Render(body)
}

func (a *App) getCustomStatusBar() string {
	commands := a.keyHandler.GetHelpForCurrentView()

	var parts []string
	if a.err != nil {
		msg := fmt.Sprintf("✗ %v", a.err)
		if hint := errorHint(a.err); hint != "" {
			msg += " (" + hint + ")"
		}
		parts = append(parts, ErrorMessageStyle.Render(msg))
	} else if a.status != "" {
		parts = append(parts, a.statusKind.style().Render(a.status))
	}
	if len(commands) > 0 {
		parts = append(parts, strings.Join(commands, " • "))
	}
	if len(parts) == 0 {
		return ""
	}

	return StatusBarStyle.
		Width(a.width).
		MaxHeight(1).
		Render(strings.Join(parts, "  "))
}

type regionItem struct {
	name string
}

func (i regionItem) Title() string       { return news.RegionLabel(i.name) }
func (i regionItem) Description() string { return "" }
func (i regionItem) FilterValue() string { return news.RegionLabel(i.name) }

func regionItems() []list.Item {
	regions := news.Regions()
	items := make([]list.Item, 0, len(regions)+1)
	items = append(items, regionItem{name: ""})
	for _, r := range regions {
		items = append(items, regionItem{name: r})
	}
	return items
}

type fetchDoneMsg struct {
	result headlines.Result
}

type articleRenderedMsg struct {
	content string
}

type errorMsg struct {
	err error
}

type statusClearMsg struct {
	seq int
}

type searchDebounceFireMsg struct {
	seq int
}

type searchResultsMsg struct {
	seq     int
	results []*search.Result
}
