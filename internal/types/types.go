package types

import (
	"coinwatch-api/internal/marketdata"
	"coinwatch-api/internal/portfolio"
	"coinwatch-api/pkg/analysis"
	"coinwatch-api/pkg/market"
	"coinwatch-api/pkg/news"
	"coinwatch-api/pkg/sentiment"
)

// Numeric series sent to clients use *float64 so gaps ("missing" markers)
// serialise as null instead of breaking JSON encoding.

type DashboardRequest struct {
	Currency string `form:"currency,default=usd"`
	PerPage  int    `form:"perPage,default=25"`
}

type DashboardResponse struct {
	Currency string               `json:"currency"`
	Rows     []market.SnapshotRow `json:"rows"`
	Warnings []marketdata.Warning `json:"warnings"`
}

type GlobalResponse struct {
	Stats        *market.GlobalStats  `json:"stats"`
	BTCDominance *float64             `json:"btc_dominance,omitempty"`
	Warnings     []marketdata.Warning `json:"warnings"`
}

type CoinRequest struct {
	ID       string `path:"id"`
	Currency string `form:"currency,default=usd"`
	Days     int    `form:"days,default=30"`
}

type CoinResponse struct {
	Detail   *market.CoinDetail       `json:"detail"`
	Chart    []market.HistoricalPoint `json:"chart"`
	OHLC     []market.OHLCBar         `json:"ohlc"`
	Warnings []marketdata.Warning     `json:"warnings"`
}

type AnalysisRequest struct {
	ID       string `path:"id"`
	Currency string `form:"currency,default=usd"`
	Days     int    `form:"days,default=90"`
	// MAKind narrows the moving averages to "sma" or "ema"; empty keeps both.
	MAKind string `form:"ma,optional"`
	// MAWindow overrides the configured windows with a single one.
	MAWindow int `form:"maWindow,optional"`
}

type MovingAverage struct {
	Kind   string     `json:"kind"`
	Window int        `json:"window"`
	Values []*float64 `json:"values"`
}

type DecompositionPayload struct {
	Period   int        `json:"period"`
	Trend    []*float64 `json:"trend"`
	Seasonal []*float64 `json:"seasonal"`
	Residual []*float64 `json:"residual"`
}

type AnalysisResponse struct {
	CoinID          string                `json:"coin_id"`
	Currency        string                `json:"currency"`
	Timestamps      []int64               `json:"timestamps"`
	Prices          []float64             `json:"prices"`
	MovingAverages  []MovingAverage       `json:"moving_averages"`
	Returns         []*float64            `json:"returns"`
	ReturnStats     *analysis.ReturnStats `json:"return_stats,omitempty"`
	Volatility      []*float64            `json:"volatility"`
	Decomposition   *DecompositionPayload `json:"decomposition,omitempty"`
	ACF             []float64             `json:"acf,omitempty"`
	PACF            []float64             `json:"pacf,omitempty"`
	ConfidenceBound float64               `json:"confidence_bound,omitempty"`
	Notes           []string              `json:"notes"`
	Warnings        []marketdata.Warning  `json:"warnings"`
}

type ScreenerRequest struct {
	Currency string `form:"currency,default=usd"`
	TopN     int    `form:"topN,default=10"`
	PerPage  int    `form:"perPage,default=250"`
}

type ScreenerResponse struct {
	Currency string               `json:"currency"`
	Gainers  []market.SnapshotRow `json:"gainers"`
	Losers   []market.SnapshotRow `json:"losers"`
	Warnings []marketdata.Warning `json:"warnings"`
}

type ForecastRequest struct {
	ID       string `path:"id"`
	Currency string `form:"currency,default=usd"`
	Days     int    `form:"days,default=90"`
	Horizon  int    `form:"horizon,optional"`
}

type ForecastPayload struct {
	Method     string    `json:"method"`
	Timestamps []int64   `json:"timestamps"`
	Values     []float64 `json:"values"`
	Lower      []float64 `json:"lower"`
	Upper      []float64 `json:"upper"`
}

type ForecastResponse struct {
	CoinID      string               `json:"coin_id"`
	Currency    string               `json:"currency"`
	ADF         *analysis.ADFResult  `json:"adf,omitempty"`
	ARIMA       *ForecastPayload     `json:"arima,omitempty"`
	HoltWinters *ForecastPayload     `json:"holt_winters,omitempty"`
	Notes       []string             `json:"notes"`
	Warnings    []marketdata.Warning `json:"warnings"`
}

type NewsRequest struct {
	Query string `form:"q,optional"`
	From  string `form:"from,optional"`
	To    string `form:"to,optional"`
}

type ScoredArticle struct {
	news.Article
	Sentiment sentiment.Score `json:"sentiment"`
}

type NewsResponse struct {
	Query        string                 `json:"query"`
	Articles     []ScoredArticle        `json:"articles"`
	Distribution sentiment.Distribution `json:"distribution"`
	Warnings     []marketdata.Warning   `json:"warnings"`
}

type PortfolioResponse struct {
	SessionID string               `json:"session_id"`
	Valuation portfolio.Valuation  `json:"valuation"`
	Warnings  []marketdata.Warning `json:"warnings"`
}

type AddHoldingRequest struct {
	CoinID        string `json:"coin_id"`
	Name          string `json:"name,optional"`
	Quantity      string `json:"quantity"`
	PurchasePrice string `json:"purchase_price,optional"`
}

type EditHoldingRequest struct {
	ID            string `path:"id"`
	Quantity      string `json:"quantity"`
	PurchasePrice string `json:"purchase_price,optional"`
}

type RemoveHoldingRequest struct {
	ID string `path:"id"`
}
