package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/desh/internal/news"
)

// chromeKeys are the key labels shown next to the controls.
type chromeKeys struct {
	Region   string
	Language string
	Menu     string
}

// narrow reports whether the collapsed layout applies at width.
func narrow(width, breakpoint int) bool {
	return width < breakpoint
}

func regionControl(f news.Filter, key string) string {
	return ControlStyle.Render("📍 "+news.RegionLabel(f.Region)+" ▾") + " " + KeyHintStyle.Render(key)
}

func languageControl(f news.Filter, key string) string {
	other := news.Hindi
	if f.Language == news.Hindi {
		other = news.English
	}
	return ControlStyle.Render("🌐 "+f.Language.Label()) + " " +
		KeyHintStyle.Render(key+" → "+other.Label())
}

// renderTopBar draws the logo with the region and language controls. Below
// the breakpoint the controls collapse behind the menu toggle.
func renderTopBar(f news.Filter, width, breakpoint int, menuOpen bool, keys chromeKeys) string {
	logo := LogoStyle.Render(CompactLogo)

	var right string
	if narrow(width, breakpoint) {
		icon := "☰"
		if menuOpen {
			icon = "✕"
		}
		right = ControlStyle.Render(icon+" menu") + " " + KeyHintStyle.Render(keys.Menu)
	} else {
		right = regionControl(f, keys.Region) + "   " + languageControl(f, keys.Language)
	}

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(logo + strings.Repeat(" ", gap) + right)
}

// renderMenu is the collapsed-layout panel holding the same controls as the
// wide top bar.
func renderMenu(f news.Filter, width int, keys chromeKeys) string {
	rows := []string{
		regionControl(f, keys.Region),
		languageControl(f, keys.Language),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Padding(0, 1).
		Width(max(width-2, 10)).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderCategoryBar draws the category tabs. In Hindi mode tabs show the
// Hindi keyword. When the full labels do not fit, only the selected tab keeps
// its label.
func renderCategoryBar(f news.Filter, width int) string {
	cats := news.Categories()

	render := func(compact bool) string {
		tabs := make([]string, len(cats))
		for i, c := range cats {
			label := c.Icon + " " + c.DisplayLabel(f.Language)
			if c.Value == f.Category {
				tabs[i] = ActiveTabStyle.Render(label)
				continue
			}
			if compact {
				label = c.Icon
			}
			tabs[i] = TabStyle.Render(label)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	}

	bar := render(false)
	if lipgloss.Width(bar) > width {
		bar = render(true)
	}
	return bar
}

// chromeHeight is the number of lines the chrome occupies.
func chromeHeight(width, breakpoint int, menuOpen bool) int {
	h := 2 // top bar, category bar
	if menuOpen && narrow(width, breakpoint) {
		h += 4
	}
	return h
}
