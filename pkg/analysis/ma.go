package analysis

import (
	"errors"
	"math"
)

// ErrInsufficientData marks a series too short for the requested
// computation. Callers render it as an informational message instead of
// running the computation.
var ErrInsufficientData = errors.New("analysis: insufficient data points")

// SMA produces the simple moving average of the supplied values. Positions
// before the first full window are NaN.
func SMA(values []float64, window int) []float64 {
	if window <= 0 || len(values) == 0 {
		return []float64{}
	}
	result := make([]float64, len(values))
	for i := range result {
		result[i] = math.NaN()
	}
	if len(values) < window {
		return result
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			result[i] = sum / float64(window)
		}
	}
	return result
}

// EMA produces the exponential moving average of the supplied values,
// seeded with the mean of the first full window.
func EMA(values []float64, window int) []float64 {
	if window <= 0 || len(values) == 0 {
		return []float64{}
	}
	result := make([]float64, len(values))
	for i := range result {
		result[i] = math.NaN()
	}
	if len(values) < window {
		return result
	}
	multiplier := 2.0 / float64(window+1)

	var seed float64
	for i := 0; i < window; i++ {
		seed += values[i]
	}
	seed /= float64(window)
	result[window-1] = seed

	for i := window; i < len(values); i++ {
		prev := result[i-1]
		result[i] = (values[i]-prev)*multiplier + prev
	}
	return result
}
