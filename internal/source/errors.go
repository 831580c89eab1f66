package source

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies why a search failed.
type Kind int

const (
	KindTransport Kind = iota // request never produced a response
	KindStatus                // provider answered with a non-success status
	KindDecode                // response body had an unexpected shape
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by providers for every failed search.
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int
	// Code and Message come from the provider's error body, when present.
	Code       string
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		msg := fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
		if e.Code != "" {
			msg += " " + e.Code
		}
		if e.Message != "" {
			msg += ": " + e.Message
		}
		return msg
	default:
		if e.Err == nil {
			return fmt.Sprintf("%s: %s error", e.Provider, e.Kind)
		}
		return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, and false when err is not a source error.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
