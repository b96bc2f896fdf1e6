package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/rest/pathvar"

	"coinwatch-api/internal/cache"
	"coinwatch-api/internal/config"
	"coinwatch-api/internal/marketdata"
	"coinwatch-api/internal/portfolio"
	"coinwatch-api/internal/svc"
	"coinwatch-api/internal/types"
	"coinwatch-api/pkg/analysis"
	"coinwatch-api/pkg/market"
	"coinwatch-api/pkg/news"
)

type stubProvider struct {
	rows    []market.SnapshotRow
	chart   []market.HistoricalPoint
	ohlc    []market.OHLCBar
	global  *market.GlobalStats
	detail  *market.CoinDetail
	prices  map[string]*float64
	coins   map[string]string
	err     error
}

func (p *stubProvider) CoinList(context.Context) (map[string]string, error) {
	return p.coins, p.err
}

func (p *stubProvider) Markets(context.Context, string, int) ([]market.SnapshotRow, error) {
	return p.rows, p.err
}

func (p *stubProvider) ChangeMarkets(context.Context, string, int) ([]market.SnapshotRow, error) {
	return p.rows, p.err
}

func (p *stubProvider) MarketChart(context.Context, string, string, int) ([]market.HistoricalPoint, error) {
	return p.chart, p.err
}

func (p *stubProvider) OHLC(context.Context, string, string, int) ([]market.OHLCBar, error) {
	return p.ohlc, p.err
}

func (p *stubProvider) Global(context.Context) (*market.GlobalStats, error) {
	return p.global, p.err
}

func (p *stubProvider) SimplePrice(context.Context, []string, string) (map[string]*float64, error) {
	return p.prices, p.err
}

func (p *stubProvider) CoinDetail(context.Context, string, string) (*market.CoinDetail, error) {
	return p.detail, p.err
}

func newTestContext(provider market.Provider) *svc.ServiceContext {
	store := cache.MustNewStore(cache.NewTTLSet(config.CacheTTL{}))
	return &svc.ServiceContext{
		Cache:          store,
		MarketData:     marketdata.NewStore(provider, store),
		AnalysisConfig: analysis.DefaultConfig(),
		NewsConfig:     &news.Config{DefaultQuery: "cryptocurrency"},
		Sessions:       portfolio.NewSessions(time.Hour),
	}
}

func dailyChart(days int) []market.HistoricalPoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]market.HistoricalPoint, days)
	for i := range points {
		points[i] = market.HistoricalPoint{
			Timestamp: start.AddDate(0, 0, i).UnixMilli(),
			Price:     100 + float64(i) + 5*float64(i%7),
			Volume:    1000,
		}
	}
	return points
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestDashboardHandler(t *testing.T) {
	provider := &stubProvider{rows: []market.SnapshotRow{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: market.Float(65000)},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", CurrentPrice: market.Float(3200)},
	}}
	svcCtx := newTestContext(provider)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?currency=eur&perPage=25", nil)
	rec := httptest.NewRecorder()
	DashboardHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.DashboardResponse](t, rec)
	assert.Equal(t, "eur", resp.Currency)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "bitcoin", resp.Rows[0].ID)
	assert.Empty(t, resp.Warnings)
}

func TestDashboardHandlerDegradesOnProviderError(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{err: market.ErrRateLimited})

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	DashboardHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.DashboardResponse](t, rec)
	assert.Empty(t, resp.Rows)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "rate_limited", resp.Warnings[0].Kind)
}

func TestGlobalHandlerBTCDominance(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{global: &market.GlobalStats{
		MarketCapPercentage: map[string]float64{"btc": 52.4, "eth": 17.1},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/global", nil)
	rec := httptest.NewRecorder()
	GlobalHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.GlobalResponse](t, rec)
	require.NotNil(t, resp.BTCDominance)
	assert.InDelta(t, 52.4, *resp.BTCDominance, 1e-9)
}

func TestScreenerHandlerRanksByChange(t *testing.T) {
	provider := &stubProvider{rows: []market.SnapshotRow{
		{ID: "a", Change24hPercent: market.Float(4)},
		{ID: "b", Change24hPercent: market.Float(-9)},
		{ID: "c", Change24hPercent: market.Float(12)},
		{ID: "d", Change24hPercent: nil},
		{ID: "e", Change24hPercent: market.Float(-2)},
	}}
	svcCtx := newTestContext(provider)

	req := httptest.NewRequest(http.MethodGet, "/api/screener?topN=2", nil)
	rec := httptest.NewRecorder()
	ScreenerHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.ScreenerResponse](t, rec)
	require.Len(t, resp.Gainers, 2)
	assert.Equal(t, "c", resp.Gainers[0].ID)
	assert.Equal(t, "a", resp.Gainers[1].ID)
	require.Len(t, resp.Losers, 2)
	assert.Equal(t, "b", resp.Losers[0].ID)
	assert.Equal(t, "e", resp.Losers[1].ID)
}

func TestCoinHandler(t *testing.T) {
	provider := &stubProvider{
		detail: &market.CoinDetail{ID: "bitcoin", Name: "Bitcoin"},
		chart:  dailyChart(30),
		ohlc:   []market.OHLCBar{{Timestamp: 1, Open: 1, High: 2, Low: 0.5, Close: 1.5}},
	}
	svcCtx := newTestContext(provider)

	req := httptest.NewRequest(http.MethodGet, "/api/coins/bitcoin", nil)
	req = pathvar.WithVars(req, map[string]string{"id": "bitcoin"})
	rec := httptest.NewRecorder()
	CoinHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.CoinResponse](t, rec)
	require.NotNil(t, resp.Detail)
	assert.Equal(t, "Bitcoin", resp.Detail.Name)
	assert.Len(t, resp.Chart, 30)
	assert.Len(t, resp.OHLC, 1)
}

func TestAnalysisHandler(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{chart: dailyChart(120)})

	req := httptest.NewRequest(http.MethodGet, "/api/coins/bitcoin/analysis?days=120", nil)
	req = pathvar.WithVars(req, map[string]string{"id": "bitcoin"})
	rec := httptest.NewRecorder()
	AnalysisHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.AnalysisResponse](t, rec)
	assert.Len(t, resp.Prices, 120)
	assert.Len(t, resp.Returns, 119)
	require.Len(t, resp.MovingAverages, 4)
	assert.Equal(t, "sma", resp.MovingAverages[0].Kind)
	assert.Nil(t, resp.MovingAverages[0].Values[0])
	assert.NotNil(t, resp.MovingAverages[0].Values[119])
	require.NotNil(t, resp.ReturnStats)
	require.NotNil(t, resp.Decomposition)
	assert.Equal(t, 7, resp.Decomposition.Period)
	require.NotEmpty(t, resp.ACF)
	assert.InDelta(t, 1.0, resp.ACF[0], 1e-9)
	assert.Greater(t, resp.ConfidenceBound, 0.0)
}

func TestAnalysisHandlerMASelection(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{chart: dailyChart(60)})

	req := httptest.NewRequest(http.MethodGet, "/api/coins/bitcoin/analysis?days=60&ma=ema&maWindow=14", nil)
	req = pathvar.WithVars(req, map[string]string{"id": "bitcoin"})
	rec := httptest.NewRecorder()
	AnalysisHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.AnalysisResponse](t, rec)
	require.Len(t, resp.MovingAverages, 1)
	assert.Equal(t, "ema", resp.MovingAverages[0].Kind)
	assert.Equal(t, 14, resp.MovingAverages[0].Window)
}

func TestAnalysisHandlerShortSeries(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{chart: dailyChart(1)})

	req := httptest.NewRequest(http.MethodGet, "/api/coins/bitcoin/analysis", nil)
	req = pathvar.WithVars(req, map[string]string{"id": "bitcoin"})
	rec := httptest.NewRecorder()
	AnalysisHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.AnalysisResponse](t, rec)
	assert.Empty(t, resp.Prices)
	require.NotEmpty(t, resp.Notes)
}

func TestForecastHandler(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{chart: dailyChart(120)})

	req := httptest.NewRequest(http.MethodGet, "/api/coins/bitcoin/forecast?days=120&horizon=10", nil)
	req = pathvar.WithVars(req, map[string]string{"id": "bitcoin"})
	rec := httptest.NewRecorder()
	ForecastHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.ForecastResponse](t, rec)
	require.NotNil(t, resp.ADF)
	require.NotNil(t, resp.ARIMA)
	assert.Len(t, resp.ARIMA.Values, 10)
	assert.Len(t, resp.ARIMA.Timestamps, 10)
	require.NotNil(t, resp.HoltWinters)
	assert.Len(t, resp.HoltWinters.Values, 10)

	last := dailyChart(120)[119].Timestamp
	assert.Equal(t, last+millisPerDay, resp.ARIMA.Timestamps[0])
	assert.Greater(t, resp.ARIMA.Timestamps[9], resp.ARIMA.Timestamps[0])
}

func TestForecastHandlerShortSeries(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{chart: dailyChart(5)})

	req := httptest.NewRequest(http.MethodGet, "/api/coins/bitcoin/forecast", nil)
	req = pathvar.WithVars(req, map[string]string{"id": "bitcoin"})
	rec := httptest.NewRecorder()
	ForecastHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.ForecastResponse](t, rec)
	assert.Nil(t, resp.ARIMA)
	assert.Nil(t, resp.HoltWinters)
	require.NotEmpty(t, resp.Notes)
}

func TestNewsHandlerScoresArticles(t *testing.T) {
	newsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"status":"ok","totalResults":2,"articles":[
			{"source":{"name":"Example"},"title":"Bitcoin rallies to a wonderful new high","description":"Great gains everywhere","publishedAt":"2024-01-02T00:00:00Z"},
			{"source":{"name":"Example"},"title":"Terrible crash wipes out billions","description":"Awful losses for holders","publishedAt":"2024-01-02T01:00:00Z"}
		]}`)
	}))
	defer newsSrv.Close()

	svcCtx := newTestContext(&stubProvider{})
	svcCtx.NewsClient = news.NewClient("test-key", news.WithBaseURL(newsSrv.URL))

	req := httptest.NewRequest(http.MethodGet, "/api/news?q=bitcoin", nil)
	rec := httptest.NewRecorder()
	NewsHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.NewsResponse](t, rec)
	assert.Equal(t, "bitcoin", resp.Query)
	require.Len(t, resp.Articles, 2)
	assert.Equal(t, "positive", string(resp.Articles[0].Sentiment.Label))
	assert.Equal(t, "negative", string(resp.Articles[1].Sentiment.Label))
	assert.Equal(t, 2, resp.Distribution.Count)
	assert.Empty(t, resp.Warnings)
}

func TestNewsHandlerRateLimitDegrades(t *testing.T) {
	newsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer newsSrv.Close()

	svcCtx := newTestContext(&stubProvider{})
	svcCtx.NewsClient = news.NewClient("test-key", news.WithBaseURL(newsSrv.URL))

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	rec := httptest.NewRecorder()
	NewsHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[types.NewsResponse](t, rec)
	assert.Equal(t, "cryptocurrency", resp.Query)
	assert.Empty(t, resp.Articles)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "rate_limited", resp.Warnings[0].Kind)
}

func TestNewsHandlerRejectsBadDate(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{})
	svcCtx.NewsClient = news.NewClient("test-key")

	req := httptest.NewRequest(http.MethodGet, "/api/news?from=01-02-2024", nil)
	rec := httptest.NewRecorder()
	NewsHandler(svcCtx)(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestPortfolioLifecycle(t *testing.T) {
	provider := &stubProvider{prices: map[string]*float64{"bitcoin": market.Float(50000)}}
	svcCtx := newTestContext(provider)

	body := bytes.NewBufferString(`{"coin_id":"bitcoin","name":"Bitcoin","quantity":"0.5","purchase_price":"40000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/holdings", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AddHoldingHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	added := decodeBody[types.PortfolioResponse](t, rec)
	require.NotEmpty(t, added.SessionID)
	assert.Equal(t, added.SessionID, rec.Header().Get(sessionHeader))
	require.Len(t, added.Valuation.Positions, 1)
	assert.Equal(t, "25000", added.Valuation.TotalValue.String())
	assert.Equal(t, "5000", added.Valuation.TotalProfitLoss.String())

	// The same session header must come back to the same portfolio.
	req = httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	req.Header.Set(sessionHeader, added.SessionID)
	rec = httptest.NewRecorder()
	PortfolioHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[types.PortfolioResponse](t, rec)
	assert.Equal(t, added.SessionID, got.SessionID)
	require.Len(t, got.Valuation.Positions, 1)

	req = httptest.NewRequest(http.MethodPut, "/api/portfolio/holdings/bitcoin",
		bytes.NewBufferString(`{"quantity":"1","purchase_price":"45000"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sessionHeader, added.SessionID)
	req = pathvar.WithVars(req, map[string]string{"id": "bitcoin"})
	rec = httptest.NewRecorder()
	EditHoldingHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	edited := decodeBody[types.PortfolioResponse](t, rec)
	assert.Equal(t, "50000", edited.Valuation.TotalValue.String())

	req = httptest.NewRequest(http.MethodDelete, "/api/portfolio/holdings/bitcoin", nil)
	req.Header.Set(sessionHeader, added.SessionID)
	req = pathvar.WithVars(req, map[string]string{"id": "bitcoin"})
	rec = httptest.NewRecorder()
	RemoveHoldingHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	removed := decodeBody[types.PortfolioResponse](t, rec)
	assert.Empty(t, removed.Valuation.Positions)
}

func TestAddHoldingRejectsBadQuantity(t *testing.T) {
	svcCtx := newTestContext(&stubProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/holdings",
		bytes.NewBufferString(`{"coin_id":"bitcoin","quantity":"lots"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AddHoldingHandler(svcCtx)(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
}
