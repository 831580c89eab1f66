package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/headlines"
	"github.com/pders01/desh/internal/news"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	bindings    config.KeyBindings
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := ""
	if cfg.Keys.Modifier != "" {
		modifierKey = cfg.Keys.Modifier + "+"
	}
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey, bindings: cfg.Keys.Bindings}
}

// label is the key string for a modified binding, e.g. "ctrl+l".
func (kh *KeyHandler) label(binding string) string {
	return kh.modifierKey + binding
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewRegion:
		return kh.app.regionList.FilterState() == list.Filtering
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.app.quit()
	}

	// The region list owns its filter input, including esc and enter.
	if kh.app.view == ViewRegion {
		newList, cmd := kh.app.regionList.Update(msg)
		kh.app.regionList = newList
		return kh.app, cmd
	}

	switch key {
	case kh.bindings.Back:
		return kh.navigateBack()
	case "enter":
		if items := kh.app.searchList.Items(); len(items) > 0 {
			if i, ok := items[0].(articleItem); ok {
				return kh.openReader(i.article, true)
			}
		}
		return kh.app, nil
	case "tab", "down":
		if len(kh.app.searchList.Items()) > 0 {
			kh.app.searchInput.Blur()
			kh.app.searchList.Select(0)
		}
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

// delegateToTextInput passes the key to the search box and schedules a
// debounced search when the query changed.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prev := kh.app.pendingSearchQuery
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	newVal := sanitizeSearchInput(kh.app.searchInput.Value())
	if newVal == prev {
		return kh.app, cmd
	}
	kh.app.pendingSearchQuery = newVal
	kh.app.searchSeq++
	seq := kh.app.searchSeq
	return kh.app, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchDebounceFireMsg{seq: seq}
	}))
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", kh.bindings.Quit:
		model, cmd := kh.app.quit()
		return model, cmd, true
	case kh.bindings.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.label(kh.bindings.Search):
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewHeadlines:
		return kh.handleHeadlinesCustomKeys(key)
	case ViewRegion:
		return kh.handleRegionCustomKeys(key)
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	case ViewSearch:
		return kh.handleSearchCustomKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleHeadlinesCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	app := kh.app
	switch key {
	case kh.label(kh.bindings.ToggleLanguage):
		return app, app.dispatch(headlines.ToggleLanguage{}), true
	case kh.label(kh.bindings.Refresh):
		return app, app.dispatch(headlines.Refresh{Force: true}), true
	case kh.label(kh.bindings.Region):
		model, cmd := kh.openRegionPicker()
		return model, cmd, true
	case kh.label(kh.bindings.Menu):
		app.menuOpen = !app.menuOpen
		app.resize()
		return app, nil, true
	case kh.label(kh.bindings.Open):
		return app, kh.openSelected(false), true
	case kh.label(kh.bindings.OpenImage):
		return app, kh.openSelected(true), true
	case "tab":
		return app, kh.stepCategory(1), true
	case "shift+tab":
		return app, kh.stepCategory(-1), true
	case "enter":
		if a := app.selectedArticle(); a != nil {
			model, cmd := kh.openReader(*a, false)
			return model, cmd, true
		}
		return app, nil, true
	}

	if n, err := strconv.Atoi(key); err == nil {
		cats := news.Categories()
		if n >= 1 && n <= len(cats) {
			return app, app.dispatch(headlines.SetCategory{Category: cats[n-1].Value}), true
		}
	}

	return app, nil, false
}

func (kh *KeyHandler) handleRegionCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "enter":
		item, ok := kh.app.regionList.SelectedItem().(regionItem)
		if !ok {
			return kh.app, nil, true
		}
		kh.app.view = ViewHeadlines
		kh.app.menuOpen = false
		kh.app.resize()
		return kh.app, kh.app.dispatch(headlines.SetRegion{Region: item.name}), true
	case kh.label(kh.bindings.Region):
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case kh.label(kh.bindings.Open):
		return kh.app, kh.openSelected(false), true
	case kh.label(kh.bindings.OpenImage):
		return kh.app, kh.openSelected(true), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleSearchCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "enter":
		if a := kh.app.selectedArticle(); a != nil {
			model, cmd := kh.openReader(*a, true)
			return model, cmd, true
		}
		return kh.app, nil, true
	case "tab", "shift+tab":
		kh.app.searchInput.Focus()
		return kh.app, nil, true
	case "up":
		if kh.app.searchList.Index() == 0 {
			kh.app.searchInput.Focus()
			return kh.app, nil, true
		}
	case kh.label(kh.bindings.Open):
		return kh.app, kh.openSelected(false), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch kh.app.view {
	case ViewHeadlines:
		kh.app.headlineList, cmd = kh.app.headlineList.Update(msg)
	case ViewRegion:
		kh.app.regionList, cmd = kh.app.regionList.Update(msg)
	case ViewReader:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
	case ViewSearch:
		kh.app.searchList, cmd = kh.app.searchList.Update(msg)
	}
	return kh.app, cmd
}

func (kh *KeyHandler) stepCategory(delta int) tea.Cmd {
	cats := news.Categories()
	i := kh.app.controller.State().Filter.Category.Index()
	next := (i + delta + len(cats)) % len(cats)
	return kh.app.dispatch(headlines.SetCategory{Category: cats[next].Value})
}

func (kh *KeyHandler) openRegionPicker() (tea.Model, tea.Cmd) {
	current := kh.app.controller.State().Filter.Region
	kh.app.regionList.ResetFilter()
	for i, item := range kh.app.regionList.Items() {
		if r, ok := item.(regionItem); ok && r.name == current {
			kh.app.regionList.Select(i)
			break
		}
	}
	kh.app.previousView = kh.app.view
	kh.app.view = ViewRegion
	return kh.app, nil
}

func (kh *KeyHandler) openReader(a news.Article, fromSearch bool) (tea.Model, tea.Cmd) {
	art := a
	kh.app.currentArticle = &art
	kh.app.cameFromSearch = fromSearch
	kh.app.searchInput.Blur()
	kh.app.previousView = kh.app.view
	kh.app.view = ViewReader
	kh.app.loadingArticle = true
	return kh.app, kh.app.renderArticle(art)
}

func (kh *KeyHandler) openSelected(image bool) tea.Cmd {
	a := kh.app.selectedArticle()
	if a == nil {
		return kh.app.setStatus(MsgNoSelection, StatusWarn, 2*time.Second)
	}
	if image {
		if a.ImageURL == "" {
			return kh.app.setStatus(MsgNoImage, StatusWarn, 2*time.Second)
		}
		return kh.app.openImage(a.ImageURL)
	}
	return tea.Batch(kh.app.setStatus(MsgOpening, StatusInfo, 2*time.Second), kh.app.openURL(a.URL))
}

func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewReader:
		kh.app.loadingArticle = false
		if kh.app.cameFromSearch {
			kh.app.view = ViewSearch
		} else {
			kh.app.view = ViewHeadlines
		}
	case ViewSearch:
		kh.app.searchInput.Blur()
		kh.app.view = ViewHeadlines
	case ViewRegion:
		kh.app.view = ViewHeadlines
	case ViewHeadlines:
		if kh.app.menuOpen {
			kh.app.menuOpen = false
			kh.app.resize()
		} else {
			kh.app.err = nil
		}
	}
	return kh.app, nil
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	kh.app.previousView = kh.app.view
	kh.app.view = ViewSearch
	kh.app.cameFromSearch = false
	kh.app.searchInput.Reset()
	kh.app.pendingSearchQuery = ""
	kh.app.searchList.SetItems([]list.Item{})
	kh.app.searchInput.Focus()
	return kh.app, nil
}

// sanitizeSearchInput trims, flattens whitespace and caps the query length.
func sanitizeSearchInput(input string) string {
	input = strings.Join(strings.Fields(input), " ")
	if r := []rune(input); len(r) > 256 {
		input = string(r[:256])
	}
	return input
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	switch kh.app.view {
	case ViewHeadlines:
		help := []string{
			"1-7/tab: category",
			kh.label(kh.bindings.ToggleLanguage) + ": language",
			kh.label(kh.bindings.Region) + ": region",
		}
		if narrow(kh.app.width, kh.config.UI.Breakpoint) {
			help = append(help, kh.label(kh.bindings.Menu)+": menu")
		}
		return append(help,
			"enter: read",
			kh.label(kh.bindings.Open)+": open",
			kh.label(kh.bindings.Refresh)+": refresh",
			kh.label(kh.bindings.Search)+": search",
		)

	case ViewRegion:
		return []string{"enter: select", "/: filter", kh.bindings.Back + ": back"}

	case ViewReader:
		return []string{kh.label(kh.bindings.Open) + ": open", kh.label(kh.bindings.OpenImage) + ": image", kh.bindings.Back + ": back"}

	case ViewSearch:
		return []string{"enter: read", kh.bindings.Back + ": back"}

	default:
		return []string{}
	}
}
