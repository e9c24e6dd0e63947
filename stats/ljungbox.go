package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// minLjungBox is the fewest residuals the test is run on.
const minLjungBox = 10

// LjungBoxResult is the portmanteau statistic Q with its chi-squared p-value.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// White reports whether the residuals look uncorrelated at the 5% level.
func (r *LjungBoxResult) White() bool {
	return r != nil && r.PValue > 0.05
}

// LjungBox tests residuals for autocorrelation up to lags, discounting the
// degrees of freedom by the fitdf coefficients the model estimated:
//
//	Q = n(n+2) * sum_k r_k^2 / (n-k)
//
// It returns nil for fewer than ten residuals or a constant sequence.
func LjungBox(residuals []float64, lags, fitdf int) *LjungBoxResult {
	n := len(residuals)
	if n < minLjungBox || lags < 1 {
		return nil
	}
	lags = min(lags, n-1)

	r := ACF(residuals, lags)
	if r == nil {
		return nil
	}

	var q float64
	for k, rk := range r[1:] {
		q += rk * rk / float64(n-k-1)
	}
	q *= float64(n) * float64(n+2)

	dof := max(lags-fitdf, 1)
	return &LjungBoxResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}
