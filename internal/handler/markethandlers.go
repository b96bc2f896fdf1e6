package handler

import (
	"net/http"
	"sort"

	"github.com/zeromicro/go-zero/rest/httpx"

	"coinwatch-api/internal/marketdata"
	"coinwatch-api/internal/svc"
	"coinwatch-api/internal/types"
	"coinwatch-api/pkg/market"
)

// DashboardHandler serves the markets overview table.
func DashboardHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DashboardRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		if req.PerPage < 1 || req.PerPage > 250 {
			req.PerPage = 25
		}

		rows, warnings := svcCtx.MarketData.FetchMarkets(r.Context(), req.Currency, req.PerPage)
		httpx.OkJsonCtx(r.Context(), w, types.DashboardResponse{
			Currency: req.Currency,
			Rows:     rows,
			Warnings: noNilWarnings(warnings),
		})
	}
}

// GlobalHandler serves market-wide aggregates plus BTC dominance.
func GlobalHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, warnings := svcCtx.MarketData.FetchGlobal(r.Context())

		resp := types.GlobalResponse{Stats: stats, Warnings: noNilWarnings(warnings)}
		if stats != nil {
			if dominance, ok := stats.MarketCapPercentage["btc"]; ok {
				resp.BTCDominance = &dominance
			}
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

// CoinHandler serves one coin's detail, history and candlesticks.
func CoinHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CoinRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		detail, warnings := svcCtx.MarketData.FetchCoinDetail(r.Context(), req.ID, req.Currency)
		chart, chartWarnings := svcCtx.MarketData.FetchMarketChart(r.Context(), req.ID, req.Currency, req.Days)
		ohlc, ohlcWarnings := svcCtx.MarketData.FetchOHLC(r.Context(), req.ID, req.Currency, req.Days)

		warnings = append(warnings, chartWarnings...)
		warnings = append(warnings, ohlcWarnings...)
		httpx.OkJsonCtx(r.Context(), w, types.CoinResponse{
			Detail:   detail,
			Chart:    chart,
			OHLC:     ohlc,
			Warnings: noNilWarnings(warnings),
		})
	}
}

// ScreenerHandler serves the gainers/losers view over the top coins.
func ScreenerHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ScreenerRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		if req.TopN < 1 || req.TopN > 100 {
			req.TopN = 10
		}
		if req.PerPage < req.TopN || req.PerPage > 250 {
			req.PerPage = 250
		}

		rows, warnings := svcCtx.MarketData.FetchScreenerMarkets(r.Context(), req.Currency, req.PerPage)
		gainers, losers := rankByChange(rows, req.TopN)
		httpx.OkJsonCtx(r.Context(), w, types.ScreenerResponse{
			Currency: req.Currency,
			Gainers:  gainers,
			Losers:   losers,
			Warnings: noNilWarnings(warnings),
		})
	}
}

// rankByChange splits rows into the biggest 24h winners and losers. Rows
// without a change figure cannot be ranked and are skipped.
func rankByChange(rows []market.SnapshotRow, topN int) (gainers, losers []market.SnapshotRow) {
	ranked := make([]market.SnapshotRow, 0, len(rows))
	for _, row := range rows {
		if row.Change24hPercent != nil {
			ranked = append(ranked, row)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Change24hPercent > *ranked[j].Change24hPercent
	})

	if topN > len(ranked) {
		topN = len(ranked)
	}
	gainers = append([]market.SnapshotRow{}, ranked[:topN]...)

	losers = make([]market.SnapshotRow, 0, topN)
	for i := len(ranked) - 1; i >= len(ranked)-topN; i-- {
		losers = append(losers, ranked[i])
	}
	return gainers, losers
}

// noNilWarnings keeps the warnings array present (possibly empty) in every
// response body.
func noNilWarnings(warnings []marketdata.Warning) []marketdata.Warning {
	if warnings == nil {
		return []marketdata.Warning{}
	}
	return warnings
}
