package analysis

import "math"

// ACF computes the autocorrelation function up to maxLag (inclusive).
// Element 0 is always 1. NaN inputs are excluded from the mean but break
// the products they touch, so callers should pass cleaned series.
func ACF(values []float64, maxLag int) ([]float64, error) {
	n := len(values)
	if n < 3 {
		return nil, ErrInsufficientData
	}
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		maxLag = 1
	}

	m := mean(values)
	var denom float64
	for _, v := range values {
		d := v - m
		denom += d * d
	}
	if denom == 0 {
		return nil, ErrInsufficientData
	}

	acf := make([]float64, maxLag+1)
	acf[0] = 1
	for lag := 1; lag <= maxLag; lag++ {
		var num float64
		for i := lag; i < n; i++ {
			num += (values[i] - m) * (values[i-lag] - m)
		}
		acf[lag] = num / denom
	}
	return acf, nil
}

// PACF computes the partial autocorrelation function up to maxLag using
// the Durbin-Levinson recursion on the sample ACF.
func PACF(values []float64, maxLag int) ([]float64, error) {
	acf, err := ACF(values, maxLag)
	if err != nil {
		return nil, err
	}
	maxLag = len(acf) - 1

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1
	if maxLag == 0 {
		return pacf, nil
	}

	phi := make([][]float64, maxLag+1)
	for k := range phi {
		phi[k] = make([]float64, maxLag+1)
	}
	phi[1][1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		var num, den float64
		num = acf[k]
		den = 1.0
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
			den -= phi[k-1][j] * acf[j]
		}
		if den == 0 {
			pacf[k] = math.NaN()
			continue
		}
		phi[k][k] = num / den
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
		pacf[k] = phi[k][k]
	}
	return pacf, nil
}

// ConfidenceBound returns the +-bound of the approximate 95% interval for
// a white-noise ACF/PACF with n observations.
func ConfidenceBound(n int) float64 {
	if n <= 0 {
		return math.NaN()
	}
	return 1.96 / math.Sqrt(float64(n))
}
