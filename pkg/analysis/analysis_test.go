package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	sma := SMA(values, 3)
	require.Len(t, sma, 5)
	require.True(t, math.IsNaN(sma[0]))
	require.True(t, math.IsNaN(sma[1]))
	require.InDelta(t, 2.0, sma[2], 1e-9)
	require.InDelta(t, 3.0, sma[3], 1e-9)
	require.InDelta(t, 4.0, sma[4], 1e-9)
}

func TestSMAShortSeries(t *testing.T) {
	sma := SMA([]float64{1, 2}, 5)
	require.Len(t, sma, 2)
	for _, v := range sma {
		require.True(t, math.IsNaN(v))
	}
	require.Empty(t, SMA(nil, 3))
}

func TestEMASeedsWithWindowMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	ema := EMA(values, 3)
	require.True(t, math.IsNaN(ema[1]))
	require.InDelta(t, 2.0, ema[2], 1e-9)
	// Each following value moves towards the input.
	for i := 3; i < len(values); i++ {
		require.False(t, math.IsNaN(ema[i]))
		require.Less(t, ema[i], values[i])
		require.Greater(t, ema[i], ema[i-1])
	}
}

func TestReturns(t *testing.T) {
	returns := Returns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	require.InDelta(t, 10.0, returns[0], 1e-9)
	require.InDelta(t, -10.0, returns[1], 1e-9)
}

func TestReturnsZeroBase(t *testing.T) {
	returns := Returns([]float64{0, 5})
	require.Len(t, returns, 1)
	require.True(t, math.IsNaN(returns[0]))
}

func TestStats(t *testing.T) {
	stats, err := Stats([]float64{1, 2, 3, 4, math.NaN()})
	require.NoError(t, err)
	require.Equal(t, 4, stats.Count)
	require.InDelta(t, 2.5, stats.Mean, 1e-9)
	require.InDelta(t, 2.5, stats.Median, 1e-9)
	require.InDelta(t, 1.0, stats.Min, 1e-9)
	require.InDelta(t, 4.0, stats.Max, 1e-9)
}

func TestStatsInsufficient(t *testing.T) {
	_, err := Stats([]float64{math.NaN(), 1})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestRollingVolatilityConstantSeries(t *testing.T) {
	returns := make([]float64, 10)
	vol := RollingVolatility(returns, 5)
	require.Len(t, vol, 10)
	require.True(t, math.IsNaN(vol[3]))
	for i := 4; i < 10; i++ {
		require.InDelta(t, 0.0, vol[i], 1e-12)
	}
}

func TestDecompose(t *testing.T) {
	// Trend 0.5/step plus a period-4 seasonal pattern.
	season := []float64{2, -1, -2, 1}
	values := make([]float64, 32)
	for i := range values {
		values[i] = 10 + 0.5*float64(i) + season[i%4]
	}

	dec, err := Decompose(values, 4)
	require.NoError(t, err)
	require.Len(t, dec.Trend, len(values))

	// Seasonal estimates recover the pattern up to centering noise.
	for i := 8; i < 12; i++ {
		require.InDelta(t, season[i%4], dec.Seasonal[i], 0.2)
	}
	// Residuals are tiny for a perfectly regular series.
	for i := range values {
		if !math.IsNaN(dec.Residual[i]) {
			require.InDelta(t, 0.0, dec.Residual[i], 0.3)
		}
	}
}

func TestDecomposeTooShort(t *testing.T) {
	_, err := Decompose([]float64{1, 2, 3}, 4)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestACFLagZeroIsOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 200)
	for i := range values {
		values[i] = rng.NormFloat64()
	}
	acf, err := ACF(values, 10)
	require.NoError(t, err)
	require.Len(t, acf, 11)
	require.InDelta(t, 1.0, acf[0], 1e-12)
	bound := ConfidenceBound(len(values))
	for lag := 1; lag <= 10; lag++ {
		require.Less(t, math.Abs(acf[lag]), 4*bound, "white noise acf at lag %d", lag)
	}
}

func TestACFDetectsPersistence(t *testing.T) {
	// A slow AR(1) has a large lag-1 autocorrelation.
	rng := rand.New(rand.NewSource(11))
	values := make([]float64, 300)
	for i := 1; i < len(values); i++ {
		values[i] = 0.9*values[i-1] + rng.NormFloat64()
	}
	acf, err := ACF(values, 5)
	require.NoError(t, err)
	require.Greater(t, acf[1], 0.7)
}

func TestPACFCutOffForAR1(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	values := make([]float64, 500)
	for i := 1; i < len(values); i++ {
		values[i] = 0.8*values[i-1] + rng.NormFloat64()
	}
	pacf, err := PACF(values, 8)
	require.NoError(t, err)
	require.InDelta(t, 0.8, pacf[1], 0.15)
	bound := ConfidenceBound(len(values))
	for lag := 3; lag <= 8; lag++ {
		require.Less(t, math.Abs(pacf[lag]), 6*bound, "pacf should cut off after lag 1, lag %d", lag)
	}
}

func TestACFConstantSeries(t *testing.T) {
	_, err := ACF([]float64{5, 5, 5, 5, 5}, 2)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestADFStationarySeries(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	values := make([]float64, 250)
	for i := range values {
		values[i] = rng.NormFloat64()
	}
	result, err := ADF(values)
	require.NoError(t, err)
	require.True(t, result.Stationary, "white noise should reject the unit root, stat=%f", result.Statistic)
	require.Contains(t, result.CriticalValues, "5%")
}

func TestADFRandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	values := make([]float64, 250)
	for i := 1; i < len(values); i++ {
		values[i] = values[i-1] + rng.NormFloat64()
	}
	result, err := ADF(values)
	require.NoError(t, err)
	require.Greater(t, result.Observations, 0)
	// A random walk should look far less stationary than white noise.
	require.Greater(t, result.Statistic, -3.5)
}

func TestADFTooShort(t *testing.T) {
	_, err := ADF([]float64{1, 2, 3})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestForecastARTrendingSeries(t *testing.T) {
	values := make([]float64, 120)
	for i := range values {
		values[i] = 100 + 2*float64(i) + math.Sin(float64(i)/3)
	}
	forecast, err := ForecastAR(values, ARIMAOrder{P: 5, D: 1, Q: 0}, 10)
	require.NoError(t, err)
	require.Len(t, forecast.Values, 10)

	last := values[len(values)-1]
	for h := 0; h < 10; h++ {
		require.False(t, math.IsNaN(forecast.Values[h]))
		require.Less(t, forecast.Lower[h], forecast.Values[h])
		require.Greater(t, forecast.Upper[h], forecast.Values[h])
	}
	// The trend continues upwards and intervals widen with the horizon.
	require.Greater(t, forecast.Values[9], last)
	require.Greater(t, forecast.Upper[9]-forecast.Lower[9], forecast.Upper[0]-forecast.Lower[0])
}

func TestForecastARRejectsMATerms(t *testing.T) {
	_, err := ForecastAR(make([]float64, 50), ARIMAOrder{P: 2, D: 0, Q: 1}, 5)
	require.Error(t, err)
}

func TestForecastHoltWinters(t *testing.T) {
	season := []float64{0, 1, 2, 1, 0, -1, -2}
	values := make([]float64, 56)
	for i := range values {
		values[i] = 50 + 0.25*float64(i) + season[i%7]
	}
	forecast, err := ForecastHoltWinters(values, 7, HoltWintersParams{Alpha: 0.5, Beta: 0.1, Gamma: 0.1}, 7)
	require.NoError(t, err)
	require.Len(t, forecast.Values, 7)
	for h := 0; h < 7; h++ {
		require.False(t, math.IsNaN(forecast.Values[h]))
		require.LessOrEqual(t, forecast.Lower[h], forecast.Values[h])
		require.GreaterOrEqual(t, forecast.Upper[h], forecast.Values[h])
	}
}

func TestForecastHoltWintersTooShort(t *testing.T) {
	_, err := ForecastHoltWinters(make([]float64, 10), 7, HoltWintersParams{Alpha: 0.5, Beta: 0.1, Gamma: 0.1}, 5)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestForwardFillDaily(t *testing.T) {
	const day = int64(24 * 60 * 60 * 1000)
	ts := []int64{0, day, 4 * day}
	vals := []float64{1, 2, 5}
	outTs, outVals := ForwardFillDaily(ts, vals)
	require.Len(t, outTs, 5)
	require.Equal(t, []float64{1, 2, 2, 2, 5}, outVals)
	for i := 1; i < len(outTs); i++ {
		require.Equal(t, day, outTs[i]-outTs[i-1])
	}
}
