package handler

import (
	"fmt"
	"math"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"coinwatch-api/internal/svc"
	"coinwatch-api/internal/types"
	"coinwatch-api/pkg/analysis"
)

// AnalysisHandler serves the statistical view of one coin's price history:
// moving averages, returns, volatility, decomposition and correlograms.
// Data-quality problems (too few rows for a given routine) degrade to
// notes; the rest of the payload still renders.
func AnalysisHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AnalysisRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		chart, warnings := svcCtx.MarketData.FetchMarketChart(r.Context(), req.ID, req.Currency, req.Days)
		resp := types.AnalysisResponse{
			CoinID:   req.ID,
			Currency: req.Currency,
			Notes:    []string{},
			Warnings: noNilWarnings(warnings),
		}

		if len(chart) < 2 {
			resp.Notes = append(resp.Notes, "not enough price history for analysis")
			httpx.OkJsonCtx(r.Context(), w, resp)
			return
		}

		prices := make([]float64, len(chart))
		timestamps := make([]int64, len(chart))
		for i, point := range chart {
			prices[i] = point.Price
			timestamps[i] = point.Timestamp
		}
		resp.Timestamps = timestamps
		resp.Prices = prices

		cfg := svcCtx.AnalysisConfig
		smaWindows, emaWindows := maWindows(cfg, req.MAKind, req.MAWindow)
		for _, window := range smaWindows {
			if window > len(prices) {
				resp.Notes = append(resp.Notes, fmt.Sprintf("series too short for a %d-point SMA", window))
				continue
			}
			resp.MovingAverages = append(resp.MovingAverages, types.MovingAverage{
				Kind: "sma", Window: window, Values: jsonSeries(analysis.SMA(prices, window)),
			})
		}
		for _, window := range emaWindows {
			if window > len(prices) {
				resp.Notes = append(resp.Notes, fmt.Sprintf("series too short for a %d-point EMA", window))
				continue
			}
			resp.MovingAverages = append(resp.MovingAverages, types.MovingAverage{
				Kind: "ema", Window: window, Values: jsonSeries(analysis.EMA(prices, window)),
			})
		}

		returns := analysis.Returns(prices)
		resp.Returns = jsonSeries(returns)
		if stats, err := analysis.Stats(returns); err == nil {
			resp.ReturnStats = &stats
		} else {
			resp.Notes = append(resp.Notes, "not enough returns for summary statistics")
		}
		resp.Volatility = jsonSeries(analysis.RollingVolatility(returns, cfg.VolatilityWindow))

		if dec, err := analysis.Decompose(prices, cfg.SeasonalPeriod); err == nil {
			resp.Decomposition = &types.DecompositionPayload{
				Period:   cfg.SeasonalPeriod,
				Trend:    jsonSeries(dec.Trend),
				Seasonal: jsonSeries(dec.Seasonal),
				Residual: jsonSeries(dec.Residual),
			}
		} else {
			resp.Notes = append(resp.Notes,
				fmt.Sprintf("need at least %d points for a period-%d decomposition", 2*cfg.SeasonalPeriod, cfg.SeasonalPeriod))
		}

		maxLag := cfg.MaxACFLag
		if maxLag >= len(prices) {
			maxLag = len(prices) - 1
		}
		if acf, err := analysis.ACF(prices, maxLag); err == nil {
			resp.ACF = acf
			resp.ConfidenceBound = analysis.ConfidenceBound(len(prices))
			if pacf, err := analysis.PACF(prices, maxLag); err == nil {
				resp.PACF = pacf
			}
		} else {
			resp.Notes = append(resp.Notes, "series unsuitable for autocorrelation analysis")
		}

		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

// maWindows resolves the requested moving-average selection against the
// configured defaults.
func maWindows(cfg *analysis.Config, kind string, window int) (sma, ema []int) {
	sma, ema = cfg.SMAWindows, cfg.EMAWindows
	if window > 0 {
		sma, ema = []int{window}, []int{window}
	}
	switch kind {
	case "sma":
		ema = nil
	case "ema":
		sma = nil
	}
	return sma, ema
}

// jsonSeries converts a series with NaN gaps into one that serialises as
// null at those positions.
func jsonSeries(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			continue
		}
		v := values[i]
		out[i] = &v
	}
	return out
}
