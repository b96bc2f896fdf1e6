package coingecko

import "encoding/json"

// CoinListEntry is one row of the /coins/list directory.
type CoinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// MarketRow mirrors one element of the /coins/markets payload. Every
// numeric field may be null for thinly traded coins, hence the pointers.
type MarketRow struct {
	ID                       string     `json:"id"`
	Symbol                   string     `json:"symbol"`
	Name                     string     `json:"name"`
	CurrentPrice             *float64   `json:"current_price"`
	MarketCap                *float64   `json:"market_cap"`
	MarketCapRank            *int       `json:"market_cap_rank"`
	TotalVolume              *float64   `json:"total_volume"`
	PriceChangePercentage24h *float64   `json:"price_change_percentage_24h"`
	SparklineIn7d            *Sparkline `json:"sparkline_in_7d"`
}

// Sparkline holds the 7d hourly price sequence.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// MarketChartResponse mirrors /coins/{id}/market_chart. Each row is a
// [timestamp, value] pair kept raw so individually malformed rows can be
// skipped instead of failing the whole decode.
type MarketChartResponse struct {
	Prices       []json.RawMessage `json:"prices"`
	MarketCaps   []json.RawMessage `json:"market_caps"`
	TotalVolumes []json.RawMessage `json:"total_volumes"`
}

type globalResponse struct {
	Data *GlobalPayload `json:"data"`
}

// GlobalPayload is the unwrapped /global body.
type GlobalPayload struct {
	ActiveCryptocurrencies       int                `json:"active_cryptocurrencies"`
	TotalMarketCap               map[string]float64 `json:"total_market_cap"`
	TotalVolume                  map[string]float64 `json:"total_volume"`
	MarketCapPercentage          map[string]float64 `json:"market_cap_percentage"`
	MarketCapChangePercentage24h float64            `json:"market_cap_change_percentage_24h_usd"`
}

// CoinDetailPayload mirrors the subset of /coins/{id} the dashboard needs.
type CoinDetailPayload struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Description   struct {
		EN string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	MarketData *CoinMarketData `json:"market_data"`
}

// CoinMarketData carries the per-currency market numbers of a coin detail
// payload.
type CoinMarketData struct {
	CurrentPrice            map[string]float64 `json:"current_price"`
	MarketCap               map[string]float64 `json:"market_cap"`
	TotalVolume             map[string]float64 `json:"total_volume"`
	High24h                 map[string]float64 `json:"high_24h"`
	Low24h                  map[string]float64 `json:"low_24h"`
	ATH                     map[string]float64 `json:"ath"`
	ATHChangePercentage     map[string]float64 `json:"ath_change_percentage"`
	ATL                     map[string]float64 `json:"atl"`
	ATLChangePercentage     map[string]float64 `json:"atl_change_percentage"`
	CirculatingSupply       *float64           `json:"circulating_supply"`
	TotalSupply             *float64           `json:"total_supply"`
	MaxSupply               *float64           `json:"max_supply"`
	Sparkline7d             *Sparkline         `json:"sparkline_7d"`
}
