package market

import "context"

// Provider exposes the queries the dashboard needs from a market data
// source. Implementations return transport and schema problems as errors;
// the absorb layer above decides how to degrade.
type Provider interface {
	// CoinList returns a mapping from lowercased display name to coin id.
	CoinList(ctx context.Context) (map[string]string, error)
	// Markets returns the top coins by market cap, with 7d sparklines.
	Markets(ctx context.Context, currency string, perPage int) ([]SnapshotRow, error)
	// ChangeMarkets is the sparkline-free markets variant used by the
	// gainers/losers screener.
	ChangeMarkets(ctx context.Context, currency string, perPage int) ([]SnapshotRow, error)
	// MarketChart returns the joined price/volume history for a coin.
	MarketChart(ctx context.Context, coinID, currency string, days int) ([]HistoricalPoint, error)
	// OHLC returns candlestick bars for a coin.
	OHLC(ctx context.Context, coinID, currency string, days int) ([]OHLCBar, error)
	// Global returns market-wide aggregate statistics.
	Global(ctx context.Context) (*GlobalStats, error)
	// SimplePrice resolves current prices for a batch of coin ids. Ids the
	// provider does not know come back as nil entries, never as a batch
	// failure.
	SimplePrice(ctx context.Context, coinIDs []string, currency string) (map[string]*float64, error)
	// CoinDetail returns the detail payload for a single coin, with market
	// numbers resolved in the requested currency.
	CoinDetail(ctx context.Context, coinID, currency string) (*CoinDetail, error)
}
