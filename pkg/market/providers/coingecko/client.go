package coingecko

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
	defaultBaseURL     = "https://api.coingecko.com/api/v3"
	defaultHTTPTimeout = 10 * time.Second

	// proKeyHeader carries the optional CoinGecko credential. The free
	// tier works without it, only rate limits differ.
	proKeyHeader = "x-cg-demo-api-key"
)

// Client wraps access to the CoinGecko REST API. It performs exactly one
// request per call: 429 responses must reach the user, so there is no
// retry or backoff anywhere in this package.
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

// WithAPIKey attaches a CoinGecko API key to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// NewClient constructs a CoinGecko API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
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

// get issues a GET to path with the supplied query and decodes the JSON
// response into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("coingecko: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(proKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("coingecko: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("coingecko: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("coingecko: %s: %w", path, market.ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("coingecko: %s: %w", path, market.ErrNotFound)
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

// GetCoinList fetches the full coin directory.
func (c *Client) GetCoinList(ctx context.Context) ([]CoinListEntry, error) {
	query := url.Values{"include_platform": {"false"}}
	var entries []CoinListEntry
	if err := c.get(ctx, "/coins/list", query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetMarkets fetches one page of coins ordered by market cap descending.
func (c *Client) GetMarkets(ctx context.Context, currency string, perPage int, sparkline bool) ([]MarketRow, error) {
	if perPage <= 0 {
		return nil, fmt.Errorf("coingecko: per_page must be positive")
	}
	query := url.Values{
		"vs_currency": {strings.ToLower(currency)},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(perPage)},
		"page":        {"1"},
		"sparkline":   {strconv.FormatBool(sparkline)},
	}
	if !sparkline {
		query.Set("price_change_percentage", "24h")
	}
	var rows []MarketRow
	if err := c.get(ctx, "/coins/markets", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMarketChart fetches the raw price/volume history for a coin.
func (c *Client) GetMarketChart(ctx context.Context, coinID, currency string, days int) (*MarketChartResponse, error) {
	if strings.TrimSpace(coinID) == "" {
		return nil, fmt.Errorf("coingecko: coin id is required")
	}
	query := url.Values{
		"vs_currency": {strings.ToLower(currency)},
		"days":        {strconv.Itoa(days)},
	}
	var payload MarketChartResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", query, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetOHLC fetches raw candlestick rows for a coin.
func (c *Client) GetOHLC(ctx context.Context, coinID, currency string, days int) ([]json.RawMessage, error) {
	if strings.TrimSpace(coinID) == "" {
		return nil, fmt.Errorf("coingecko: coin id is required")
	}
	query := url.Values{
		"vs_currency": {strings.ToLower(currency)},
		"days":        {strconv.Itoa(days)},
	}
	var rows []json.RawMessage
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/ohlc", query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetGlobal fetches market-wide aggregate statistics. The interesting part
// of the payload sits under a single "data" key; its absence is treated as
// a fetch failure.
func (c *Client) GetGlobal(ctx context.Context) (*GlobalPayload, error) {
	var payload globalResponse
	if err := c.get(ctx, "/global", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return nil, &market.DecodeError{Operation: "/global", Err: fmt.Errorf("missing data key")}
	}
	return payload.Data, nil
}

// GetSimplePrice fetches current prices for a batch of coin ids.
func (c *Client) GetSimplePrice(ctx context.Context, coinIDs []string, currency string) (map[string]map[string]*float64, error) {
	ids := make([]string, 0, len(coinIDs))
	for _, id := range coinIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]map[string]*float64{}, nil
	}
	query := url.Values{
		"ids":           {strings.Join(ids, ",")},
		"vs_currencies": {strings.ToLower(currency)},
	}
	var payload map[string]map[string]*float64
	if err := c.get(ctx, "/simple/price", query, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetCoinDetail fetches the detail payload for a single coin.
func (c *Client) GetCoinDetail(ctx context.Context, coinID string) (*CoinDetailPayload, error) {
	if strings.TrimSpace(coinID) == "" {
		return nil, fmt.Errorf("coingecko: coin id is required")
	}
	query := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"market_data":    {"true"},
		"community_data": {"false"},
		"developer_data": {"false"},
		"sparkline":      {"true"},
	}
	var payload CoinDetailPayload
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID), query, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
