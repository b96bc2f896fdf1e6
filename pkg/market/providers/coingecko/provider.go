package coingecko

import (
	"context"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"coinwatch-api/pkg/market"
)

const defaultProviderTimeout = 8 * time.Second

// Provider adapts the CoinGecko client to the generic market.Provider
// contract. Caching happens in the result-cache layer above, not here:
// every call on this type goes to the network.
type Provider struct {
	client      *Client
	timeout     time.Duration
	persistence market.Persistence
	providerID  string
}

type providerConfig struct {
	timeout       time.Duration
	clientOptions []Option
}

// ProviderOption customises the CoinGecko provider.
type ProviderOption func(*providerConfig)

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithClientOptions passes options to the underlying CoinGecko client.
func WithClientOptions(options ...Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientOptions = append(cfg.clientOptions, options...)
	}
}

// NewProvider constructs a CoinGecko market provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{timeout: defaultProviderTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:  NewClient(cfg.clientOptions...),
		timeout: cfg.timeout,
	}
}

func init() {
	market.RegisterProvider("coingecko", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []ProviderOption{}
		clientOptions := []Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if cfg.BaseURL != "" {
			clientOptions = append(clientOptions, WithBaseURL(cfg.BaseURL))
		}
		if cfg.APIKey != "" {
			clientOptions = append(clientOptions, WithAPIKey(cfg.APIKey))
		}
		if len(clientOptions) > 0 {
			opts = append(opts, WithClientOptions(clientOptions...))
		}
		provider := NewProvider(opts...)
		provider.providerID = name
		return provider, nil
	})
}

// SetPersistence wires an optional persistence layer for fetched data.
func (p *Provider) SetPersistence(persist market.Persistence) {
	p.persistence = persist
}

// CoinList implements market.Provider.
func (p *Provider) CoinList(ctx context.Context) (map[string]string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	entries, err := p.client.GetCoinList(ctx)
	if err != nil {
		return nil, err
	}
	listings := buildCoinList(entries)
	if p.persistence != nil && len(listings) > 0 {
		if err := p.persistence.UpsertListings(ctx, p.providerName(), listings); err != nil {
			logx.WithContext(ctx).Errorf("coingecko: persist listings err=%v", err)
		}
	}
	return listings, nil
}

// Markets implements market.Provider.
func (p *Provider) Markets(ctx context.Context, currency string, perPage int) ([]market.SnapshotRow, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	raw, err := p.client.GetMarkets(ctx, currency, perPage, true)
	if err != nil {
		return nil, err
	}
	rows := buildSnapshotRows(raw)
	if p.persistence != nil && len(rows) > 0 {
		if err := p.persistence.RecordSnapshotRows(ctx, p.providerName(), currency, rows); err != nil {
			logx.WithContext(ctx).Errorf("coingecko: persist snapshot currency=%s err=%v", currency, err)
		}
	}
	return rows, nil
}

// ChangeMarkets implements market.Provider. Same endpoint as Markets but
// without sparklines; the screener asks for a much deeper page.
func (p *Provider) ChangeMarkets(ctx context.Context, currency string, perPage int) ([]market.SnapshotRow, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	raw, err := p.client.GetMarkets(ctx, currency, perPage, false)
	if err != nil {
		return nil, err
	}
	return buildSnapshotRows(raw), nil
}

// MarketChart implements market.Provider.
func (p *Provider) MarketChart(ctx context.Context, coinID, currency string, days int) ([]market.HistoricalPoint, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	chart, err := p.client.GetMarketChart(ctx, coinID, currency, days)
	if err != nil {
		return nil, err
	}
	points := buildHistory(chart)
	if p.persistence != nil && len(points) > 0 {
		if err := p.persistence.RecordPricePoints(ctx, p.providerName(), coinID, currency, points); err != nil {
			logx.WithContext(ctx).Errorf("coingecko: persist price points coin=%s err=%v", coinID, err)
		}
	}
	return points, nil
}

// OHLC implements market.Provider.
func (p *Provider) OHLC(ctx context.Context, coinID, currency string, days int) ([]market.OHLCBar, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	rows, err := p.client.GetOHLC(ctx, coinID, currency, days)
	if err != nil {
		return nil, err
	}
	return buildOHLC(rows), nil
}

// Global implements market.Provider.
func (p *Provider) Global(ctx context.Context) (*market.GlobalStats, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	payload, err := p.client.GetGlobal(ctx)
	if err != nil {
		return nil, err
	}
	return buildGlobal(payload), nil
}

// SimplePrice implements market.Provider.
func (p *Provider) SimplePrice(ctx context.Context, coinIDs []string, currency string) (map[string]*float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	payload, err := p.client.GetSimplePrice(ctx, coinIDs, currency)
	if err != nil {
		return nil, err
	}
	return pricesFromSimple(payload, coinIDs, currency), nil
}

// CoinDetail implements market.Provider.
func (p *Provider) CoinDetail(ctx context.Context, coinID, currency string) (*market.CoinDetail, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	payload, err := p.client.GetCoinDetail(ctx, coinID)
	if err != nil {
		return nil, err
	}
	return buildDetail(payload, currency), nil
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Provider) providerName() string {
	if p.providerID != "" {
		return p.providerID
	}
	return "coingecko"
}
