package arima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

var (
	// ErrNotConverged is returned when the likelihood optimizer stops on an
	// iteration or evaluation cap instead of a convergence criterion.
	ErrNotConverged = errors.New("optimizer did not converge")

	// ErrTooShort is returned when the series cannot support the model order.
	ErrTooShort = errors.New("insufficient data points for the specified order")

	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("model must be fitted before prediction")
)

// Optimizer caps. Hitting either one is reported as ErrNotConverged.
const (
	MaxIterations  = 3000
	MaxEvaluations = 20000
)

// ARMA is a zero-mean ARMA filter in lag-indexed form: AR[k-1] and MA[k-1]
// are the coefficients of lag k in
//
//	z[t] = sum AR[k-1]*z[t-k] + e[t] + sum MA[k-1]*e[t-k]
type ARMA struct {
	AR []float64
	MA []float64
}

// MaxLag returns the largest autoregressive lag of the filter.
func (f ARMA) MaxLag() int {
	return len(f.AR)
}

// Residuals runs the conditional recursion over z. Residuals before start are
// zero, and lagged terms reaching before the start of z are skipped.
func (f ARMA) Residuals(z []float64, start int) []float64 {
	n := len(z)
	resid := make([]float64, n)
	for t := start; t < n; t++ {
		pred := 0.0
		for k := 1; k <= len(f.AR) && t-k >= 0; k++ {
			pred += f.AR[k-1] * z[t-k]
		}
		for k := 1; k <= len(f.MA) && t-k >= 0; k++ {
			pred += f.MA[k-1] * resid[t-k]
		}
		resid[t] = z[t] - pred
	}
	return resid
}

// Forecast extends z by steps values, taking future shocks as zero.
func (f ARMA) Forecast(z, resid []float64, steps int) []float64 {
	n := len(z)
	ext := make([]float64, n+steps)
	copy(ext, z)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := 0.0
		for k := 1; k <= len(f.AR) && t-k >= 0; k++ {
			pred += f.AR[k-1] * ext[t-k]
		}
		for k := 1; k <= len(f.MA) && t-k >= 0; k++ {
			if t-k < n {
				pred += f.MA[k-1] * resid[t-k]
			}
		}
		ext[t] = pred
	}

	return ext[n:]
}

// SumSquares returns the sum of squared residuals from start and their count.
func SumSquares(resid []float64, start int) (float64, int) {
	sse := 0.0
	for _, r := range resid[start:] {
		sse += r * r
	}
	return sse, len(resid) - start
}

// Constrain maps unbounded reals onto the coefficients of a stationary
// autoregressive polynomial. Each input becomes a partial autocorrelation in
// (-1, 1) via tanh, and the Durbin-Levinson recursion turns those into
// coefficients. Negated, the result is an invertible moving-average polynomial.
func Constrain(x []float64) []float64 {
	phi := make([]float64, len(x))
	next := make([]float64, len(x))
	for k := range x {
		r := math.Tanh(x[k])
		for j := 0; j < k; j++ {
			next[j] = phi[j] - r*phi[k-1-j]
		}
		next[k] = r
		copy(phi[:k+1], next[:k+1])
	}
	return phi
}

// Negate returns -x.
func Negate(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = -v
	}
	return out
}

// Unconstrained returns the optimizer coordinate that Constrain maps to a
// first partial autocorrelation of v.
func Unconstrained(v float64) float64 {
	return math.Atanh(clamp(v, -0.9, 0.9))
}

// ConcentratedNLL is the conditional Gaussian negative log-likelihood with the
// innovation variance profiled out, up to an additive constant.
func ConcentratedNLL(sse float64, n int) float64 {
	if n <= 0 || math.IsNaN(sse) || math.IsInf(sse, 0) {
		return math.MaxFloat64
	}
	// The floor keeps exact fits finite.
	return 0.5 * float64(n) * math.Log(sse/float64(n)+1e-300)
}

// Minimize runs Nelder-Mead on f from x0 under the package iteration caps.
// Anything other than convergence, including a cap or an objective that
// decreases without bound, is reported as ErrNotConverged.
func Minimize(f func(x []float64) float64, x0 []float64) ([]float64, error) {
	if len(x0) == 0 {
		return nil, nil
	}

	problem := optimize.Problem{Func: f}
	settings := &optimize.Settings{
		MajorIterations: MaxIterations,
		FuncEvaluations: MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-9,
			Iterations: 30,
		},
	}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConverged, err)
	}
	if !converged(res.Status) {
		return nil, fmt.Errorf("%w: %s after %d iterations", ErrNotConverged, res.Status, res.MajorIterations)
	}
	if !finite(res.X) || math.IsNaN(res.F) || math.IsInf(res.F, 0) {
		return nil, fmt.Errorf("%w: non-finite optimum", ErrNotConverged)
	}
	return res.X, nil
}

// converged reports whether status is a convergence criterion rather than a
// cap, a failure or an unbounded objective.
func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.FunctionConvergence, optimize.FunctionThreshold,
		optimize.GradientThreshold, optimize.StepConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

// Difference applies each lag in turn. levels[i] is the series the i-th
// difference was taken of; the last return value is the fully differenced
// series.
func Difference(values []float64, lags []int) (levels [][]float64, w []float64) {
	w = values
	for _, lag := range lags {
		levels = append(levels, w)
		if len(w) <= lag {
			return levels, nil
		}
		next := make([]float64, len(w)-lag)
		for i := lag; i < len(w); i++ {
			next[i-lag] = w[i] - w[i-lag]
		}
		w = next
	}
	return levels, w
}

// Integrate undoes Difference for values that continue the differenced series.
func Integrate(levels [][]float64, lags []int, f []float64) []float64 {
	out := make([]float64, len(f))
	copy(out, f)

	for i := len(lags) - 1; i >= 0; i-- {
		lag := lags[i]
		prev := levels[i]
		for j := range out {
			if j < lag {
				out[j] += prev[len(prev)-lag+j]
			} else {
				out[j] += out[j-lag]
			}
		}
	}
	return out
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
