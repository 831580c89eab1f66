package headlines

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/desh/internal/news"
)

func TestControllerStart(t *testing.T) {
	c := New(news.DefaultFilter())

	s := c.State()
	assert.False(t, s.Loading)
	assert.False(t, s.Loaded)
	assert.Equal(t, news.Hindi, s.Filter.Language)
	assert.Equal(t, news.General, s.Filter.Category)
	assert.Empty(t, s.Filter.Region)

	f := c.Start()
	require.NotNil(t, f)
	assert.Equal(t, uint64(1), f.Seq)
	assert.Equal(t, "भारत", f.Query)
	assert.True(t, c.State().Loading)
}

func TestControllerLoadingLifecycle(t *testing.T) {
	c := New(news.DefaultFilter())
	f := c.Start()

	articles := []news.Article{{Title: "one", URL: "https://example.com/1"}}
	assert.True(t, c.Complete(Result{Seq: f.Seq, Filter: f.Filter, Articles: articles}))

	s := c.State()
	assert.False(t, s.Loading)
	assert.True(t, s.Loaded)
	assert.NoError(t, s.Err)
	assert.Equal(t, articles, s.Articles)
}

func TestControllerDispatch(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantFetch bool
		wantQuery string
	}{
		{name: "toggle language", event: ToggleLanguage{}, wantFetch: true, wantQuery: "India"},
		{name: "same language", event: SetLanguage{Language: news.Hindi}, wantFetch: false},
		{name: "unknown language", event: SetLanguage{Language: "fr"}, wantFetch: false},
		{name: "new category", event: SetCategory{Category: news.Business}, wantFetch: true, wantQuery: "व्यवसाय"},
		{name: "same category", event: SetCategory{Category: news.General}, wantFetch: false},
		{name: "unknown category", event: SetCategory{Category: "weather"}, wantFetch: false},
		{name: "region", event: SetRegion{Region: "Maharashtra"}, wantFetch: true, wantQuery: "भारत Maharashtra"},
		{name: "unknown region", event: SetRegion{Region: "Atlantis"}, wantFetch: false},
		{name: "clear empty region", event: SetRegion{Region: ""}, wantFetch: false},
		{name: "refresh", event: Refresh{}, wantFetch: true, wantQuery: "भारत"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(news.DefaultFilter())
			start := c.Start()
			c.Complete(Result{Seq: start.Seq})

			f := c.Dispatch(tt.event)
			if !tt.wantFetch {
				assert.Nil(t, f)
				assert.False(t, c.State().Loading)
				return
			}
			require.NotNil(t, f)
			assert.Equal(t, tt.wantQuery, f.Query)
			assert.Equal(t, start.Seq+1, f.Seq)
			assert.True(t, c.State().Loading)
		})
	}
}

func TestControllerRefreshForce(t *testing.T) {
	c := New(news.DefaultFilter())
	c.Start()

	assert.False(t, c.Dispatch(Refresh{}).Force)
	assert.True(t, c.Dispatch(Refresh{Force: true}).Force)
}

func TestControllerSupersededResultsDropped(t *testing.T) {
	c := New(news.DefaultFilter())
	first := c.Start()
	second := c.Dispatch(SetCategory{Category: news.Sports})
	require.NotNil(t, second)

	sportsArticles := []news.Article{{Title: "match report", URL: "https://example.com/match"}}
	assert.True(t, c.Complete(Result{Seq: second.Seq, Filter: second.Filter, Articles: sportsArticles}))

	// The older request finishes last and must not overwrite.
	stale := []news.Article{{Title: "general news", URL: "https://example.com/general"}}
	assert.False(t, c.Complete(Result{Seq: first.Seq, Filter: first.Filter, Articles: stale}))

	s := c.State()
	assert.Equal(t, sportsArticles, s.Articles)
	assert.Equal(t, news.Sports, s.Filter.Category)
	assert.False(t, s.Loading)
}

func TestControllerLoadingUntilNewest(t *testing.T) {
	c := New(news.DefaultFilter())
	first := c.Start()
	c.Dispatch(ToggleLanguage{})

	c.Complete(Result{Seq: first.Seq})
	assert.True(t, c.State().Loading, "a stale completion does not end loading")

	assert.True(t, c.Current(2))
	assert.False(t, c.Current(first.Seq))
}

func TestControllerFailureKeepsArticles(t *testing.T) {
	c := New(news.DefaultFilter())
	f := c.Start()
	articles := []news.Article{{Title: "kept", URL: "https://example.com/kept"}}
	c.Complete(Result{Seq: f.Seq, Articles: articles})

	f = c.Dispatch(Refresh{})
	failure := errors.New("newsapi: HTTP 500")
	assert.True(t, c.Complete(Result{Seq: f.Seq, Err: failure}))

	s := c.State()
	assert.False(t, s.Loading)
	assert.Equal(t, failure, s.Err)
	assert.Equal(t, articles, s.Articles)

	f = c.Dispatch(Refresh{})
	c.Complete(Result{Seq: f.Seq, Articles: []news.Article{}})
	s = c.State()
	assert.NoError(t, s.Err)
	assert.Empty(t, s.Articles)
}

func TestControllerSucceededSurvivesFailure(t *testing.T) {
	c := New(news.DefaultFilter())
	assert.False(t, c.State().Succeeded)

	f := c.Start()
	c.Complete(Result{Seq: f.Seq, Err: errors.New("dial tcp: refused")})
	assert.False(t, c.State().Succeeded)

	f = c.Dispatch(Refresh{})
	c.Complete(Result{Seq: f.Seq, Articles: []news.Article{}})
	assert.True(t, c.State().Succeeded)

	f = c.Dispatch(SetCategory{Category: news.Sports})
	c.Complete(Result{Seq: f.Seq, Err: errors.New("newsapi: HTTP 500")})
	s := c.State()
	assert.True(t, s.Succeeded)
	assert.Error(t, s.Err)
	assert.Empty(t, s.Articles)
}

func TestControllerSnapshotIsCopy(t *testing.T) {
	c := New(news.DefaultFilter())
	f := c.Start()
	c.Complete(Result{Seq: f.Seq, Articles: []news.Article{{Title: "a"}}})

	s := c.State()
	s.Articles[0].Title = "changed"
	assert.Equal(t, "a", c.State().Articles[0].Title)
}

func TestNewNormalizesFilter(t *testing.T) {
	c := New(news.Filter{Language: "xx", Category: "nope", Region: "Atlantis"})
	assert.Equal(t, news.DefaultFilter(), c.State().Filter)
}
