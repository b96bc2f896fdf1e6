package analysis

import "math"

// Decomposition splits a series into additive trend, seasonal and residual
// components. All three slices have the length of the input; positions
// where the centered trend is undefined are NaN.
type Decomposition struct {
	Trend    []float64 `json:"trend"`
	Seasonal []float64 `json:"seasonal"`
	Residual []float64 `json:"residual"`
}

// Decompose performs a classical additive decomposition with the given
// seasonal period: centered moving-average trend, per-phase seasonal means
// of the detrended series, residual as what remains. At least two full
// periods of data are required.
func Decompose(values []float64, period int) (*Decomposition, error) {
	if period < 2 {
		period = 2
	}
	if len(values) < 2*period {
		return nil, ErrInsufficientData
	}

	trend := centeredMA(values, period)

	// Seasonal component: average detrended value per phase, then center
	// the averages so they sum to zero over one period.
	phaseSum := make([]float64, period)
	phaseCount := make([]int, period)
	for i, v := range values {
		if math.IsNaN(trend[i]) {
			continue
		}
		phase := i % period
		phaseSum[phase] += v - trend[i]
		phaseCount[phase]++
	}
	seasonalMeans := make([]float64, period)
	var total float64
	for i := range seasonalMeans {
		if phaseCount[i] > 0 {
			seasonalMeans[i] = phaseSum[i] / float64(phaseCount[i])
		}
		total += seasonalMeans[i]
	}
	offset := total / float64(period)
	for i := range seasonalMeans {
		seasonalMeans[i] -= offset
	}

	seasonal := make([]float64, len(values))
	residual := make([]float64, len(values))
	for i := range values {
		seasonal[i] = seasonalMeans[i%period]
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
		} else {
			residual[i] = values[i] - trend[i] - seasonal[i]
		}
	}

	return &Decomposition{Trend: trend, Seasonal: seasonal, Residual: residual}, nil
}

// centeredMA computes the centered moving average used as a trend
// estimate. Even periods use the standard 2xMA construction.
func centeredMA(values []float64, period int) []float64 {
	trend := make([]float64, len(values))
	for i := range trend {
		trend[i] = math.NaN()
	}
	half := period / 2
	if period%2 == 1 {
		for i := half; i < len(values)-half; i++ {
			var sum float64
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
		return trend
	}
	// Even period: average of two adjacent windows, half-weighting the
	// endpoints.
	for i := half; i < len(values)-half; i++ {
		sum := values[i-half]/2 + values[i+half]/2
		for j := i - half + 1; j <= i+half-1; j++ {
			sum += values[j]
		}
		trend[i] = sum / float64(period)
	}
	return trend
}
