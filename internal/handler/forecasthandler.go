package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/rest/httpx"

	"coinwatch-api/internal/svc"
	"coinwatch-api/internal/types"
	"coinwatch-api/pkg/analysis"
)

const millisPerDay = int64(24 * time.Hour / time.Millisecond)

// ForecastHandler projects a coin's daily close forward with an
// ARIMA(p,d,0) fit and a Holt-Winters smoother, after an ADF stationarity
// check. The raw chart is forward-filled onto a daily grid first so both
// models see an evenly spaced series.
func ForecastHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ForecastRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		chart, warnings := svcCtx.MarketData.FetchMarketChart(r.Context(), req.ID, req.Currency, req.Days)
		resp := types.ForecastResponse{
			CoinID:   req.ID,
			Currency: req.Currency,
			Notes:    []string{},
			Warnings: noNilWarnings(warnings),
		}

		cfg := svcCtx.AnalysisConfig
		horizon := req.Horizon
		if horizon <= 0 {
			horizon = cfg.ForecastHorizon
		}

		rawTimestamps := make([]int64, len(chart))
		rawPrices := make([]float64, len(chart))
		for i, point := range chart {
			rawTimestamps[i] = point.Timestamp
			rawPrices[i] = point.Price
		}
		timestamps, prices := analysis.ForwardFillDaily(rawTimestamps, rawPrices)
		if len(prices) < 2*cfg.SeasonalPeriod {
			resp.Notes = append(resp.Notes, "not enough price history to fit a forecast model")
			httpx.OkJsonCtx(r.Context(), w, resp)
			return
		}

		if adf, err := analysis.ADF(prices); err == nil {
			resp.ADF = adf
		} else {
			resp.Notes = append(resp.Notes, "series too short for a stationarity test")
		}

		future := futureDaily(timestamps[len(timestamps)-1], horizon)
		if fc, err := analysis.ForecastAR(prices, cfg.ARIMA, horizon); err == nil {
			resp.ARIMA = forecastPayload(fmt.Sprintf("arima(%d,%d,%d)", cfg.ARIMA.P, cfg.ARIMA.D, cfg.ARIMA.Q), future, fc)
		} else {
			resp.Notes = append(resp.Notes, fmt.Sprintf("arima fit failed: %v", err))
		}
		if fc, err := analysis.ForecastHoltWinters(prices, cfg.SeasonalPeriod, cfg.HoltWinters, horizon); err == nil {
			resp.HoltWinters = forecastPayload("holt_winters", future, fc)
		} else {
			resp.Notes = append(resp.Notes, fmt.Sprintf("holt-winters fit failed: %v", err))
		}

		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func futureDaily(last int64, horizon int) []int64 {
	out := make([]int64, horizon)
	for i := range out {
		out[i] = last + int64(i+1)*millisPerDay
	}
	return out
}

func forecastPayload(method string, timestamps []int64, fc *analysis.Forecast) *types.ForecastPayload {
	return &types.ForecastPayload{
		Method:     method,
		Timestamps: timestamps,
		Values:     fc.Values,
		Lower:      fc.Lower,
		Upper:      fc.Upper,
	}
}
