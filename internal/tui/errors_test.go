package tui

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/desh/internal/source"
)

func TestErrorHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain error", errors.New("boom"), ""},
		{"transport", &source.Error{Provider: "newsapi", Kind: source.KindTransport, Err: errors.New("dial tcp")}, "check your network connection"},
		{"decode", &source.Error{Provider: "newsapi", Kind: source.KindDecode}, "unexpected response from the provider"},
		{"unauthorized", &source.Error{Provider: "newsapi", Kind: source.KindStatus, StatusCode: http.StatusUnauthorized}, "check source.api_key"},
		{"forbidden wrapped", fmt.Errorf("fetching: %w", &source.Error{Kind: source.KindStatus, StatusCode: http.StatusForbidden}), "check source.api_key"},
		{"rate limited", &source.Error{Kind: source.KindStatus, StatusCode: http.StatusTooManyRequests}, "rate limited, try again later"},
		{"server error", &source.Error{Kind: source.KindStatus, StatusCode: http.StatusInternalServerError}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorHint(tt.err))
		})
	}
}

func TestStatusBarShowsErrorHint(t *testing.T) {
	failure := &source.Error{Provider: "fake", Kind: source.KindStatus, StatusCode: http.StatusUnauthorized, Code: "apiKeyInvalid"}
	app := newTestApp(t, &fakeProvider{err: failure}, Options{})

	res := fetchResult(t, app.Init())
	require.Error(t, res.Err)
	app.Update(fetchDoneMsg{result: res})

	bar := app.getCustomStatusBar()
	assert.Contains(t, bar, "apiKeyInvalid")
	assert.Contains(t, bar, "check source.api_key")
}
