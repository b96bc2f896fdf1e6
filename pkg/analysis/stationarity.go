package analysis

import (
	"fmt"
	"math"
)

// ADFResult reports an augmented Dickey-Fuller stationarity test.
type ADFResult struct {
	Statistic      float64            `json:"statistic"`
	Lags           int                `json:"lags"`
	Observations   int                `json:"observations"`
	CriticalValues map[string]float64 `json:"critical_values"`
	// Stationary is the verdict at the 5% level.
	Stationary bool `json:"stationary"`
}

// Large-sample MacKinnon critical values for the constant-only regression.
var adfCriticalValues = map[string]float64{
	"1%":  -3.43,
	"5%":  -2.86,
	"10%": -2.57,
}

// ADF runs an augmented Dickey-Fuller test with a constant term, using the
// usual 12*(n/100)^0.25 rule for the lag order. The null hypothesis is a
// unit root; a statistic below the 5% critical value rejects it.
func ADF(values []float64) (*ADFResult, error) {
	n := len(values)
	if n < 12 {
		return nil, ErrInsufficientData
	}

	lags := int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	if lags > n/2-2 {
		lags = n/2 - 2
	}
	if lags < 0 {
		lags = 0
	}

	diff := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diff[i-1] = values[i] - values[i-1]
	}

	// Rows: t = lags+1 .. n-1 on the original index.
	rows := len(diff) - lags
	if rows < lags+3 {
		return nil, ErrInsufficientData
	}
	k := 2 + lags // constant, y_{t-1}, lagged differences
	x := make([][]float64, rows)
	y := make([]float64, rows)
	for r := 0; r < rows; r++ {
		t := r + lags // index into diff
		x[r] = make([]float64, k)
		x[r][0] = 1
		x[r][1] = values[t] // y_{t-1} in original indexing
		for i := 1; i <= lags; i++ {
			x[r][2+i-1] = diff[t-i]
		}
		y[r] = diff[t]
	}

	coef, stderr, err := leastSquares(x, y)
	if err != nil {
		return nil, err
	}
	if stderr[1] == 0 || math.IsNaN(stderr[1]) {
		return nil, fmt.Errorf("analysis: adf regression is degenerate")
	}

	stat := coef[1] / stderr[1]
	return &ADFResult{
		Statistic:      stat,
		Lags:           lags,
		Observations:   rows,
		CriticalValues: adfCriticalValues,
		Stationary:     stat < adfCriticalValues["5%"],
	}, nil
}

// leastSquares solves an ordinary least squares problem via the normal
// equations, returning coefficients and their standard errors. The
// regressor count is tiny here, so the dense solve is fine.
func leastSquares(x [][]float64, y []float64) ([]float64, []float64, error) {
	rows := len(x)
	if rows == 0 || rows != len(y) {
		return nil, nil, ErrInsufficientData
	}
	k := len(x[0])
	if rows <= k {
		return nil, nil, ErrInsufficientData
	}

	// X'X and X'y.
	xtx := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		xtx[i] = make([]float64, k)
	}
	for r := 0; r < rows; r++ {
		for i := 0; i < k; i++ {
			xty[i] += x[r][i] * y[r]
			for j := 0; j < k; j++ {
				xtx[i][j] += x[r][i] * x[r][j]
			}
		}
	}

	inv, err := invert(xtx)
	if err != nil {
		return nil, nil, err
	}

	coef := make([]float64, k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			coef[i] += inv[i][j] * xty[j]
		}
	}

	// Residual variance and coefficient standard errors.
	var rss float64
	for r := 0; r < rows; r++ {
		pred := 0.0
		for i := 0; i < k; i++ {
			pred += coef[i] * x[r][i]
		}
		d := y[r] - pred
		rss += d * d
	}
	s2 := rss / float64(rows-k)
	stderr := make([]float64, k)
	for i := 0; i < k; i++ {
		stderr[i] = math.Sqrt(s2 * inv[i][i])
	}
	return coef, stderr, nil
}

// invert performs Gauss-Jordan inversion of a small square matrix.
func invert(m [][]float64) ([][]float64, error) {
	k := len(m)
	aug := make([][]float64, k)
	for i := 0; i < k; i++ {
		aug[i] = make([]float64, 2*k)
		copy(aug[i], m[i])
		aug[i][k+i] = 1
	}
	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("analysis: singular design matrix")
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		p := aug[col][col]
		for j := 0; j < 2*k; j++ {
			aug[col][j] /= p
		}
		for r := 0; r < k; r++ {
			if r == col {
				continue
			}
			f := aug[r][col]
			for j := 0; j < 2*k; j++ {
				aug[r][j] -= f * aug[col][j]
			}
		}
	}
	inv := make([][]float64, k)
	for i := 0; i < k; i++ {
		inv[i] = aug[i][k:]
	}
	return inv, nil
}
