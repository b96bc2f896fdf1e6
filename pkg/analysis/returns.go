package analysis

import (
	"math"
	"sort"
)

// Returns computes percentage returns between consecutive values. The
// output is one element shorter than the input; samples following a zero
// value are NaN.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			out[i-1] = math.NaN()
			continue
		}
		out[i-1] = (values[i] - values[i-1]) / values[i-1] * 100
	}
	return out
}

// ReturnStats summarises a return series.
type ReturnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Stats computes summary statistics over the finite elements of values.
func Stats(values []float64) (ReturnStats, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) < 2 {
		return ReturnStats{}, ErrInsufficientData
	}

	stats := ReturnStats{
		Count: len(finite),
		Min:   finite[0],
		Max:   finite[0],
	}
	var sum float64
	for _, v := range finite {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = sum / float64(len(finite))

	var sq float64
	for _, v := range finite {
		d := v - stats.Mean
		sq += d * d
	}
	stats.StdDev = math.Sqrt(sq / float64(len(finite)-1))

	sorted := append([]float64(nil), finite...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}
	return stats, nil
}

// RollingVolatility is the moving standard deviation of a return series.
// Positions before the first full window are NaN.
func RollingVolatility(returns []float64, window int) []float64 {
	if window <= 1 || len(returns) == 0 {
		return []float64{}
	}
	result := make([]float64, len(returns))
	for i := range result {
		result[i] = math.NaN()
	}
	for i := window - 1; i < len(returns); i++ {
		slice := returns[i-window+1 : i+1]
		var sum float64
		valid := 0
		for _, v := range slice {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			valid++
		}
		if valid < 2 {
			continue
		}
		mean := sum / float64(valid)
		var sq float64
		for _, v := range slice {
			if math.IsNaN(v) {
				continue
			}
			d := v - mean
			sq += d * d
		}
		result[i] = math.Sqrt(sq / float64(valid-1))
	}
	return result
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
