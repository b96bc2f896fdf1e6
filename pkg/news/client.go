package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coinwatch-api/pkg/market"
)

const (
	defaultBaseURL     = "https://newsapi.org/v2"
	defaultHTTPTimeout = 10 * time.Second
	defaultPageSize    = 30

	apiKeyHeader = "X-Api-Key"
	userAgent    = "coinwatch-api/1.0"
)

// ErrMissingAPIKey is returned when a Client is used without a NewsAPI key
// configured. The key is the only external credential the service needs.
var ErrMissingAPIKey = fmt.Errorf("news: api key is not configured")

// Client wraps access to the NewsAPI "everything" endpoint. Like the market
// clients it performs exactly one request per call and leaves rate-limit
// responses to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API endpoint URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// NewClient constructs a NewsAPI client for the given key.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Query selects the articles to fetch. Zero-valued fields fall back to the
// defaults of the dashboard page: English, newest first, 30 articles.
type Query struct {
	Query    string
	From     time.Time
	To       time.Time
	Language string
	SortBy   string
	PageSize int
}

// Everything fetches matching articles from /everything.
func (c *Client) Everything(ctx context.Context, q Query) ([]Article, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(q.Query) == "" {
		return nil, fmt.Errorf("news: search query is required")
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return nil, fmt.Errorf("news: from date %s is after to date %s",
			q.From.Format("2006-01-02"), q.To.Format("2006-01-02"))
	}

	params := url.Values{
		"q":        {q.Query},
		"language": {valueOr(q.Language, "en")},
		"sortBy":   {valueOr(q.SortBy, "publishedAt")},
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	} else {
		params.Set("pageSize", strconv.Itoa(defaultPageSize))
	}
	if !q.From.IsZero() {
		params.Set("from", q.From.Format("2006-01-02"))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.Format("2006-01-02"))
	}

	var payload everythingResponse
	if err := c.get(ctx, "/everything", params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("news: api error %s: %s", payload.Code, payload.Message)
	}
	return payload.Articles, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("news: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("news: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("news: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("news: %s: %w", path, market.ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("news: invalid api key: %w",
			&market.StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)})
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &market.StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 256)}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return &market.DecodeError{Operation: path, Err: err}
		}
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
