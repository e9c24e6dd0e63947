// Package sarima implements Seasonal ARIMA (SARIMA) models.
package sarima

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/plotcast/arima"
	"github.com/sartorproj/plotcast/stats"
	"github.com/sartorproj/plotcast/timeseries"
)

// Order represents SARIMA model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int // Non-seasonal AR order
	D int // Non-seasonal differencing order
	Q int // Non-seasonal MA order
	// Seasonal components
	SP int // Seasonal AR order
	SD int // Seasonal differencing order
	SQ int // Seasonal MA order
	M  int // Seasonal period (e.g., 12 for monthly data with yearly seasonality)
}

func (o Order) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)x(%d,%d,%d,%d)", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

// params is the number of estimated ARMA coefficients.
func (o Order) params() int {
	return o.P + o.Q + o.SP + o.SQ
}

// MinObservations returns the shortest series Fit accepts for the order.
func (o Order) MinObservations() int {
	return o.D + o.SD*o.M + o.params() + 3
}

// drift reports whether the model carries a constant. After two or more
// differences a constant would integrate into a polynomial trend, so such
// models are fitted without one.
func (o Order) drift() bool {
	return o.D+o.SD < 2
}

// lags lists the differencing lags in the order they are applied:
// non-seasonal first, then seasonal.
func (o Order) lags() []int {
	lags := make([]int, 0, o.D+o.SD)
	for i := 0; i < o.D; i++ {
		lags = append(lags, 1)
	}
	for i := 0; i < o.SD; i++ {
		lags = append(lags, o.M)
	}
	return lags
}

// Model represents a SARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64   // Mean of the differenced series; 0 when D+SD >= 2
	Variance  float64
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64
	fitted    bool
	data      *timeseries.Series
	levels    [][]float64
	centered  []float64
	start     int
	residuals []float64
}

// New creates a new SARIMA model with the specified order.
func New(p, d, q, sp, sd, sq, m int) *Model {
	return &Model{
		Order: Order{
			P: p, D: d, Q: q,
			SP: sp, SD: sd, SQ: sq, M: m,
		},
		ARCoeffs:  make([]float64, p),
		MACoeffs:  make([]float64, q),
		SARCoeffs: make([]float64, sp),
		SMACoeffs: make([]float64, sq),
	}
}

// Fit fits the SARIMA model by conditional maximum likelihood.
//
// The seasonal and non-seasonal polynomials are multiplied out into a single
// ARMA filter, so the likelihood and optimizer are the ones arima uses.
// The differenced series is centred on its mean only when D+SD < 2; the
// default (1,1,1)x(1,1,1,m) order is fitted without a constant.
// Errors wrap arima.ErrTooShort or arima.ErrNotConverged.
func (m *Model) Fit(series *timeseries.Series) error {
	o := m.Order
	if o.M < 1 && o.SP+o.SD+o.SQ > 0 {
		return fmt.Errorf("seasonal period must be positive, got %d", o.M)
	}
	if series.Len() < o.MinObservations() {
		return fmt.Errorf("%w: %s needs %d observations, have %d",
			arima.ErrTooShort, o, o.MinObservations(), series.Len())
	}

	levels, w := arima.Difference(series.Values, o.lags())
	if len(w) < o.params()+3 {
		return fmt.Errorf("%w: differencing left %d values", arima.ErrTooShort, len(w))
	}

	var mu float64
	if o.drift() {
		mu = stat.Mean(w, nil)
	}
	z := make([]float64, len(w))
	for i, v := range w {
		z[i] = v - mu
	}

	start := o.P + o.SP*o.M
	if start >= len(z)-10 {
		start = 0
	}

	filter := func(x []float64) arima.ARMA {
		return m.expand(coefficients(o, x))
	}
	nll := func(x []float64) float64 {
		sse, n := arima.SumSquares(filter(x).Residuals(z, start), start)
		return arima.ConcentratedNLL(sse, n)
	}

	x0 := make([]float64, o.params())
	if o.P > 0 {
		x0[0] = arima.Unconstrained(stats.ACFAt(z, 1) * 0.5)
	}
	if o.Q > 0 {
		x0[o.P] = arima.Unconstrained(-0.1)
	}
	if o.SP > 0 {
		x0[o.P+o.Q] = arima.Unconstrained(stats.ACFAt(z, o.M) * 0.5)
	}
	if o.SQ > 0 {
		x0[o.P+o.Q+o.SP] = arima.Unconstrained(-0.1)
	}

	x, err := arima.Minimize(nll, x0)
	if err != nil {
		return fmt.Errorf("fitting %s: %w", o, err)
	}

	c := coefficients(o, x)
	copy(m.ARCoeffs, c.ar)
	copy(m.MACoeffs, c.ma)
	copy(m.SARCoeffs, c.sar)
	copy(m.SMACoeffs, c.sma)

	m.data = series
	m.levels = levels
	m.centered = z
	m.start = start
	m.Intercept = mu
	m.residuals = m.filter().Residuals(z, start)

	sse, n := arima.SumSquares(m.residuals, start)
	m.Variance = sse / float64(n)

	ic := stats.CalculateIC(stats.GaussianLogLik(sse, n), n, o.params()+1)
	m.LogLik, m.AIC, m.AICc, m.BIC = ic.LogLik, ic.AIC, ic.AICc, ic.BIC

	m.fitted = true
	return nil
}

type coeffs struct {
	ar, ma, sar, sma []float64
}

// coefficients maps optimizer coordinates onto stationary AR and invertible
// MA polynomials, seasonal and non-seasonal.
func coefficients(o Order, x []float64) coeffs {
	i := 0
	take := func(n int) []float64 {
		part := x[i : i+n]
		i += n
		return part
	}
	return coeffs{
		ar:  arima.Constrain(take(o.P)),
		ma:  arima.Negate(arima.Constrain(take(o.Q))),
		sar: arima.Constrain(take(o.SP)),
		sma: arima.Negate(arima.Constrain(take(o.SQ))),
	}
}

func (m *Model) filter() arima.ARMA {
	return m.expand(coeffs{ar: m.ARCoeffs, ma: m.MACoeffs, sar: m.SARCoeffs, sma: m.SMACoeffs})
}

// expand multiplies the seasonal polynomials into the non-seasonal ones.
func (m *Model) expand(c coeffs) arima.ARMA {
	return arima.ARMA{
		AR: multiply(c.ar, c.sar, m.Order.M, -1),
		MA: multiply(c.ma, c.sma, m.Order.M, 1),
	}
}

// multiply expands (1 + sign*sum a_i B^i)(1 + sign*sum s_j B^(period*j)) and
// returns the lag coefficients in the same sign convention.
func multiply(a, s []float64, period int, sign float64) []float64 {
	if len(s) == 0 {
		out := make([]float64, len(a))
		copy(out, a)
		return out
	}

	out := make([]float64, len(a)+period*len(s))
	copy(out, a)
	for j, sv := range s {
		lag := period * (j + 1)
		out[lag-1] += sv
		for i, av := range a {
			out[lag+i] += sign * av * sv
		}
	}
	return out
}

// Predict generates point forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, arima.ErrNotFitted
	}

	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	forecasts := m.filter().Forecast(m.centered, m.residuals, steps)
	for i := range forecasts {
		forecasts[i] += m.Intercept
	}

	forecasts = arima.Integrate(m.levels, m.Order.lags(), forecasts)
	for _, f := range forecasts {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s forecast diverged: %w", m.Order, arima.ErrNotConverged)
		}
	}
	return forecasts, nil
}

// Summary represents a model summary.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	SARCoeffs []float64
	SMACoeffs []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64 // Corrected AIC
	BIC       float64
	LogLik    float64
	NObs      int
	LjungBox  *stats.LjungBoxResult
}

// Summary returns a summary of the fitted model.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	lags := max(10, 2*m.Order.M)
	lb := stats.LjungBox(m.residuals[m.start:], lags, m.Order.params())

	return &Summary{
		Order:     m.Order,
		ARCoeffs:  m.ARCoeffs,
		MACoeffs:  m.MACoeffs,
		SARCoeffs: m.SARCoeffs,
		SMACoeffs: m.SMACoeffs,
		Intercept: m.Intercept,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      m.data.Len(),
		LjungBox:  lb,
	}
}
