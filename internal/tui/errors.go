package tui

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pders01/desh/internal/source"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// errorHint suggests a remedy for a failed fetch, or "" when there is none.
func errorHint(err error) string {
	kind, ok := source.KindOf(err)
	if !ok {
		return ""
	}
	switch kind {
	case source.KindTransport:
		return "check your network connection"
	case source.KindDecode:
		return "unexpected response from the provider"
	}

	var se *source.Error
	if !errors.As(err, &se) {
		return ""
	}
	switch se.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "check source.api_key"
	case http.StatusTooManyRequests:
		return "rate limited, try again later"
	default:
		return ""
	}
}
