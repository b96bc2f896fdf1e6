package market

// SnapshotRow is one row of a market snapshot, ranked by market cap.
// Numeric fields are pointers: nil marks a value the provider did not
// report, so downstream arithmetic can skip it instead of crashing on a
// bogus zero.
type SnapshotRow struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Symbol           string    `json:"symbol"`
	CurrentPrice     *float64  `json:"current_price"`
	Change24hPercent *float64  `json:"price_change_percentage_24h"`
	MarketCap        *float64  `json:"market_cap"`
	Volume24h        *float64  `json:"total_volume"`
	MarketCapRank    *int      `json:"market_cap_rank"`
	Sparkline7d      []float64 `json:"sparkline_7d,omitempty"`
}

// HistoricalPoint is one (timestamp, price, volume) sample of a coin's
// history. Timestamp is Unix milliseconds.
type HistoricalPoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// OHLCBar is a single candlestick. All four prices are required; rows
// missing any of them never make it into an OHLC series.
type OHLCBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

// GlobalStats aggregates market-wide numbers.
type GlobalStats struct {
	TotalMarketCap       map[string]float64 `json:"total_market_cap"`
	TotalVolume          map[string]float64 `json:"total_volume"`
	MarketCapPercentage  map[string]float64 `json:"market_cap_percentage"`
	ActiveCryptoCurrency int                `json:"active_cryptocurrencies"`
	MarketCapChange24h   float64            `json:"market_cap_change_percentage_24h_usd"`
}

// CoinDetail carries the per-coin detail page payload.
type CoinDetail struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Description   string    `json:"description,omitempty"`
	Homepage      string    `json:"homepage,omitempty"`
	MarketCapRank *int      `json:"market_cap_rank"`
	CurrentPrice  *float64  `json:"current_price"`
	MarketCap     *float64  `json:"market_cap"`
	Volume24h     *float64  `json:"total_volume"`
	High24h       *float64  `json:"high_24h"`
	Low24h        *float64  `json:"low_24h"`
	ATH           *float64  `json:"ath"`
	ATHChangePct  *float64  `json:"ath_change_percentage"`
	ATL           *float64  `json:"atl"`
	ATLChangePct  *float64  `json:"atl_change_percentage"`
	Circulating   *float64  `json:"circulating_supply"`
	TotalSupply   *float64  `json:"total_supply"`
	MaxSupply     *float64  `json:"max_supply"`
	Sparkline7d   []float64 `json:"sparkline_7d,omitempty"`
}

// Float returns a pointer to v. Handy when building rows by hand.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
