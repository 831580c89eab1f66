package tui

import (
	"fmt"
)

// Canonical short status messages used across the app.
const (
	MsgLoading        = "Loading..."
	MsgNoArticles     = "No news articles available for this category and language."
	MsgLoadFailed     = "Could not load headlines."
	MsgLoadingArticle = "Loading article…"
	MsgNoResults      = "No results"
	MsgNoImage        = "This article has no image"
	MsgNoSelection    = "No article selected"
	MsgOpening        = "Opening in browser…"
	MsgSearchHint     = "Search headlines you have already seen"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// MsgFetched summarises a completed fetch.
func MsgFetched(n int, cached bool) string {
	var base string
	if n == 1 {
		base = "1 headline"
	} else {
		base = fmt.Sprintf("%d headlines", n)
	}
	if cached {
		base += " (cached)"
	}
	return base
}
