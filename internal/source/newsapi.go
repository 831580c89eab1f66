package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/news"
)

// NewsAPI searches the newsapi.org "everything" endpoint.
type NewsAPI struct {
	endpoint   string
	apiKey     string
	userAgent  string
	pageSize   int
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
}

func NewNewsAPI(cfg *config.Config) *NewsAPI {
	return &NewsAPI{
		endpoint:   cfg.Source.Endpoint,
		apiKey:     cfg.Source.APIKey,
		userAgent:  cfg.Source.UserAgent,
		pageSize:   cfg.Source.PageSize,
		maxRetries: cfg.Source.MaxRetries,
		retryDelay: cfg.Source.DefaultRetryAfter,
		client:     newHTTPClient(cfg),
	}
}

func (n *NewsAPI) Name() string { return config.ProviderNewsAPI }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source *struct {
		ID   *string `json:"id"`
		Name *string `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt *string `json:"publishedAt"`
}

func (n *NewsAPI) requestURL(req Request) (string, error) {
	u, err := url.Parse(n.endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", req.Query)
	q.Set("language", string(req.Language))
	q.Set("sortBy", "publishedAt")
	if n.pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(n.pageSize))
	}
	q.Set("apiKey", n.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (n *NewsAPI) Search(ctx context.Context, req Request) ([]news.Article, error) {
	target, err := n.requestURL(req)
	if err != nil {
		return nil, &Error{Provider: n.Name(), Kind: KindTransport, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Provider: n.Name(), Kind: KindTransport, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("User-Agent", n.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := doWithRetry(ctx, n.client, httpReq, n.maxRetries, n.retryDelay)
	if err != nil {
		return nil, &Error{Provider: n.Name(), Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: n.Name(), Kind: KindTransport, Err: fmt.Errorf("reading body: %w", err)}
	}

	var payload newsAPIResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode != http.StatusOK {
		e := &Error{
			Provider:   n.Name(),
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			RetryAfter: retryAfter(resp, 0),
		}
		if decodeErr == nil {
			e.Code = payload.Code
			e.Message = payload.Message
		}
		return nil, e
	}

	if decodeErr != nil {
		return nil, &Error{Provider: n.Name(), Kind: KindDecode, Err: decodeErr}
	}
	if payload.Status != "" && payload.Status != "ok" {
		return nil, &Error{
			Provider:   n.Name(),
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Code:       payload.Code,
			Message:    payload.Message,
		}
	}
	if payload.Status == "" && payload.Articles == nil {
		return nil, &Error{Provider: n.Name(), Kind: KindDecode, Err: fmt.Errorf("response has no articles field")}
	}

	articles := make([]news.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, a.toArticle())
	}
	return articles, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (a newsAPIArticle) toArticle() news.Article {
	out := news.Article{
		Title:       deref(a.Title),
		Description: deref(a.Description),
		ImageURL:    deref(a.URLToImage),
		URL:         a.URL,
		Author:      deref(a.Author),
	}
	if a.Source != nil {
		out.Source = deref(a.Source.Name)
	}
	if ts := deref(a.PublishedAt); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			out.PublishedAt = &t
		}
	}
	return out
}
