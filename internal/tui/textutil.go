package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateEnd shortens s to at most limit terminal cells, appending an
// ellipsis if truncation occurs. Handles negative or tiny limits gracefully.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, limit, "…")
}

// truncateMiddle shortens s to at most limit cells by preserving the start
// and end of the string with a single ellipsis in the middle. Used for links,
// where both ends carry meaning.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left

	r := []rune(s)
	// Take runes from the end until the right half is full.
	end := len(r)
	w := 0
	for end > 0 {
		cw := runewidth.RuneWidth(r[end-1])
		if w+cw > right {
			break
		}
		w += cw
		end--
	}
	head := runewidth.Truncate(s, left, "")
	return head + "…" + string(r[end:])
}

// oneLine collapses runs of whitespace, including newlines, to single spaces.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
