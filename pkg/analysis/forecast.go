package analysis

import (
	"fmt"
	"math"
)

// Forecast is a point forecast with a symmetric 95% interval.
type Forecast struct {
	Values []float64 `json:"values"`
	Lower  []float64 `json:"lower"`
	Upper  []float64 `json:"upper"`
}

const z95 = 1.959963984540054

// ForecastAR fits an AR(p) model on the d-times differenced series via
// Yule-Walker and forecasts horizon steps ahead, integrating the
// differences back to the original scale. This is the ARIMA(p,d,0)
// forecasting path; moving-average terms are out of scope.
func ForecastAR(values []float64, order ARIMAOrder, horizon int) (*Forecast, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("analysis: forecast horizon must be positive")
	}
	if order.Q != 0 {
		return nil, fmt.Errorf("analysis: moving-average terms are not supported")
	}
	p := order.P
	if p <= 0 {
		p = 1
	}

	work := append([]float64(nil), values...)
	// Heads of each differencing level, needed to integrate back.
	heads := make([]float64, 0, order.D)
	for d := 0; d < order.D; d++ {
		if len(work) < 2 {
			return nil, ErrInsufficientData
		}
		heads = append(heads, work[len(work)-1])
		diffed := make([]float64, len(work)-1)
		for i := 1; i < len(work); i++ {
			diffed[i-1] = work[i] - work[i-1]
		}
		work = diffed
	}
	if len(work) < 3*p {
		return nil, ErrInsufficientData
	}

	phi, sigma2, err := yuleWalker(work, p)
	if err != nil {
		return nil, err
	}

	m := mean(work)
	centered := make([]float64, len(work))
	for i, v := range work {
		centered[i] = v - m
	}

	// Iterated point forecasts on the differenced scale.
	history := append([]float64(nil), centered...)
	diffForecasts := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		var next float64
		for i := 0; i < p; i++ {
			next += phi[i] * history[len(history)-1-i]
		}
		history = append(history, next)
		diffForecasts[h] = next + m
	}

	// Psi weights of the AR process, then of the integrated process, give
	// the forecast error variance per step.
	psi := make([]float64, horizon)
	psi[0] = 1
	for j := 1; j < horizon; j++ {
		for i := 1; i <= p && i <= j; i++ {
			psi[j] += phi[i-1] * psi[j-i]
		}
	}
	for d := 0; d < order.D; d++ {
		cum := make([]float64, horizon)
		var running float64
		for j := 0; j < horizon; j++ {
			running += psi[j]
			cum[j] = running
		}
		psi = cum
	}

	// Integrate the point forecasts back to the original scale.
	point := diffForecasts
	for d := order.D - 1; d >= 0; d-- {
		integrated := make([]float64, horizon)
		prev := heads[d]
		for h := 0; h < horizon; h++ {
			prev += point[h]
			integrated[h] = prev
		}
		point = integrated
	}

	forecast := &Forecast{
		Values: point,
		Lower:  make([]float64, horizon),
		Upper:  make([]float64, horizon),
	}
	var variance float64
	for h := 0; h < horizon; h++ {
		variance += sigma2 * psi[h] * psi[h]
		band := z95 * math.Sqrt(variance)
		forecast.Lower[h] = point[h] - band
		forecast.Upper[h] = point[h] + band
	}
	return forecast, nil
}

// yuleWalker estimates AR coefficients and innovation variance from the
// sample autocovariances via the Levinson-Durbin recursion.
func yuleWalker(values []float64, p int) ([]float64, float64, error) {
	n := len(values)
	if n <= p+1 {
		return nil, 0, ErrInsufficientData
	}
	m := mean(values)

	autocov := make([]float64, p+1)
	for lag := 0; lag <= p; lag++ {
		var sum float64
		for i := lag; i < n; i++ {
			sum += (values[i] - m) * (values[i-lag] - m)
		}
		autocov[lag] = sum / float64(n)
	}
	if autocov[0] == 0 {
		return nil, 0, ErrInsufficientData
	}

	phi := make([]float64, p)
	prev := make([]float64, p)
	variance := autocov[0]
	for k := 1; k <= p; k++ {
		var acc float64
		for j := 1; j < k; j++ {
			acc += prev[j-1] * autocov[k-j]
		}
		reflection := (autocov[k] - acc) / variance
		phi[k-1] = reflection
		for j := 1; j < k; j++ {
			phi[j-1] = prev[j-1] - reflection*prev[k-j-1]
		}
		variance *= 1 - reflection*reflection
		copy(prev, phi)
	}
	if variance <= 0 || math.IsNaN(variance) {
		return nil, 0, fmt.Errorf("analysis: yule-walker produced non-positive variance")
	}
	return phi, variance, nil
}

// ForecastHoltWinters runs additive triple exponential smoothing and
// forecasts horizon steps ahead. At least two full seasons are required.
// Interval bands come from the in-sample one-step residuals.
func ForecastHoltWinters(values []float64, period int, params HoltWintersParams, horizon int) (*Forecast, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("analysis: forecast horizon must be positive")
	}
	if period < 2 {
		period = 2
	}
	if len(values) < 2*period {
		return nil, ErrInsufficientData
	}

	// Initial level/trend from the first two seasons, seasonal indices
	// from deviations against the first-season mean.
	var firstSeason, secondSeason float64
	for i := 0; i < period; i++ {
		firstSeason += values[i]
		secondSeason += values[period+i]
	}
	firstSeason /= float64(period)
	secondSeason /= float64(period)

	level := firstSeason
	trend := (secondSeason - firstSeason) / float64(period)
	season := make([]float64, period)
	for i := 0; i < period; i++ {
		season[i] = values[i] - firstSeason
	}

	alpha, beta, gamma := params.Alpha, params.Beta, params.Gamma
	var rss float64
	steps := 0
	for i := period; i < len(values); i++ {
		idx := i % period
		pred := level + trend + season[idx]
		err := values[i] - pred
		rss += err * err
		steps++

		prevLevel := level
		level = alpha*(values[i]-season[idx]) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		season[idx] = gamma*(values[i]-level) + (1-gamma)*season[idx]
	}
	residStd := 0.0
	if steps > 1 {
		residStd = math.Sqrt(rss / float64(steps-1))
	}

	forecast := &Forecast{
		Values: make([]float64, horizon),
		Lower:  make([]float64, horizon),
		Upper:  make([]float64, horizon),
	}
	lastIdx := len(values)
	for h := 1; h <= horizon; h++ {
		idx := (lastIdx + h - 1) % period
		point := level + float64(h)*trend + season[idx]
		band := z95 * residStd * math.Sqrt(float64(h))
		forecast.Values[h-1] = point
		forecast.Lower[h-1] = point - band
		forecast.Upper[h-1] = point + band
	}
	return forecast, nil
}

// ForwardFillDaily resamples (timestamp, value) samples onto a daily grid,
// carrying the last observation forward across gaps. Timestamps are Unix
// milliseconds. Only the forecasting paths use this; elsewhere gaps are
// tolerated, not interpolated.
func ForwardFillDaily(timestamps []int64, values []float64) ([]int64, []float64) {
	if len(timestamps) == 0 || len(timestamps) != len(values) {
		return nil, nil
	}
	const dayMs = int64(24 * 60 * 60 * 1000)

	outTs := []int64{timestamps[0] - timestamps[0]%dayMs}
	outVals := []float64{values[0]}
	for i := 1; i < len(timestamps); i++ {
		day := timestamps[i] - timestamps[i]%dayMs
		last := outTs[len(outTs)-1]
		if day <= last {
			// Same day: keep the latest observation for it.
			outVals[len(outVals)-1] = values[i]
			continue
		}
		for d := last + dayMs; d < day; d += dayMs {
			outTs = append(outTs, d)
			outVals = append(outVals, outVals[len(outVals)-1])
		}
		outTs = append(outTs, day)
		outVals = append(outVals, values[i])
	}
	return outTs, outVals
}
