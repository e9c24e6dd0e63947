package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ACF returns the sample autocorrelations of values at lags 0..maxLag, each
// normalized by the lag-0 sum of squares. maxLag is clamped to len-1. A
// constant or empty input has no autocorrelation and yields nil.
func ACF(values []float64, maxLag int) []float64 {
	n := len(values)
	maxLag = min(maxLag, n-1)
	if maxLag < 0 {
		return nil
	}

	c := make([]float64, n)
	copy(c, values)
	floats.AddConst(-stat.Mean(values, nil), c)

	ss := floats.Dot(c, c)
	if ss == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := range acf {
		acf[k] = floats.Dot(c[k:], c[:n-k]) / ss
	}
	return acf
}

// ACFAt is the autocorrelation at one lag, 0 where ACF is undefined.
func ACFAt(values []float64, lag int) float64 {
	if acf := ACF(values, lag); lag < len(acf) {
		return acf[lag]
	}
	return 0
}
