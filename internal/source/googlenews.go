package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/news"
)

// GoogleNews searches the Google News RSS endpoint. It needs no API key.
type GoogleNews struct {
	endpoint   string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
	parser     *gofeed.Parser
}

func NewGoogleNews(cfg *config.Config) *GoogleNews {
	return &GoogleNews{
		endpoint:   cfg.Source.GoogleNewsEndpoint,
		userAgent:  cfg.Source.UserAgent,
		maxRetries: cfg.Source.MaxRetries,
		retryDelay: cfg.Source.DefaultRetryAfter,
		client:     newHTTPClient(cfg),
		parser:     gofeed.NewParser(),
	}
}

func (g *GoogleNews) Name() string { return config.ProviderGoogleNews }

// requestURL pins the edition to India: hl picks the interface language and
// ceid the country:language edition.
func (g *GoogleNews) requestURL(req Request) (string, error) {
	u, err := url.Parse(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	lang := string(req.Language)
	hl := lang
	if req.Language == news.English {
		hl = "en-IN"
	}
	q := u.Query()
	q.Set("q", req.Query)
	q.Set("hl", hl)
	q.Set("gl", "IN")
	q.Set("ceid", "IN:"+lang)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (g *GoogleNews) Search(ctx context.Context, req Request) ([]news.Article, error) {
	target, err := g.requestURL(req)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Kind: KindTransport, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Kind: KindTransport, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("User-Agent", g.userAgent)
	httpReq.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := doWithRetry(ctx, g.client, httpReq, g.maxRetries, g.retryDelay)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider:   g.Name(),
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter(resp, 0),
		}
	}

	feed, err := g.parser.Parse(resp.Body)
	if err != nil {
		return nil, &Error{Provider: g.Name(), Kind: KindDecode, Err: fmt.Errorf("parsing feed: %w", err)}
	}

	articles := make([]news.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, itemToArticle(item))
	}
	sortNewestFirst(articles)
	return articles, nil
}

func itemToArticle(item *gofeed.Item) news.Article {
	title, source := splitSource(item.Title)
	a := news.Article{
		Title:       title,
		Description: htmlText(item.Description),
		URL:         item.Link,
		Source:      source,
	}
	if item.Author != nil {
		a.Author = item.Author.Name
	}
	if item.Image != nil {
		a.ImageURL = item.Image.URL
	}
	if a.ImageURL == "" {
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") {
				a.ImageURL = enc.URL
				break
			}
		}
	}
	if item.PublishedParsed != nil {
		t := *item.PublishedParsed
		a.PublishedAt = &t
	}
	// Descriptions often only repeat the linked headline and source.
	if a.Description == title || a.Description == strings.TrimSpace(title+" "+source) {
		a.Description = ""
	}
	return a
}

// splitSource separates the "Headline - Publisher" suffix Google News
// appends to titles.
func splitSource(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

// htmlText flattens an HTML fragment to its visible text.
func htmlText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func sortNewestFirst(articles []news.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published().After(articles[j].Published())
	})
}
