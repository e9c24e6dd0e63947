// Package arima implements ARIMA (AutoRegressive Integrated Moving Average) models.
package arima

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/plotcast/stats"
	"github.com/sartorproj/plotcast/timeseries"
)

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model represents an ARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // AR coefficients (phi)
	MACoeffs  []float64 // MA coefficients (theta)
	Intercept float64   // Drift: mean of the differenced series, 0 when D >= 2
	Variance  float64   // Residual variance
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

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// MinObservations returns the shortest series Fit accepts for the order.
func (o Order) MinObservations() int {
	return o.P + o.Q + o.D + 3
}

func (o Order) lags() []int {
	lags := make([]int, o.D)
	for i := range lags {
		lags[i] = 1
	}
	return lags
}

// Fit fits the model by conditional maximum likelihood.
//
// The series is differenced D times and, for D < 2, centred on its mean,
// which becomes the drift. With two differences a constant would integrate
// into a quadratic trend, so none is estimated. The ARMA(p,q) coefficients
// of the centred series then minimize the conditional Gaussian negative
// log-likelihood, searched with Nelder-Mead over a parameterization that
// keeps the AR part stationary and the MA part invertible. Errors wrap ErrTooShort or ErrNotConverged.
func (m *Model) Fit(series *timeseries.Series) error {
	if series.Len() < m.Order.MinObservations() {
		return fmt.Errorf("%w: %s needs %d observations, have %d",
			ErrTooShort, m.Order, m.Order.MinObservations(), series.Len())
	}

	levels, w := Difference(series.Values, m.Order.lags())
	if len(w) <= m.Order.P {
		return fmt.Errorf("%w: differencing left %d values", ErrTooShort, len(w))
	}

	var mu float64
	if m.Order.D < 2 {
		mu = stat.Mean(w, nil)
	}
	z := make([]float64, len(w))
	for i, v := range w {
		z[i] = v - mu
	}

	p, q := m.Order.P, m.Order.Q
	start := p

	filter := func(x []float64) ARMA {
		return ARMA{AR: Constrain(x[:p]), MA: Negate(Constrain(x[p:]))}
	}
	nll := func(x []float64) float64 {
		sse, n := SumSquares(filter(x).Residuals(z, start), start)
		return ConcentratedNLL(sse, n)
	}

	x0 := make([]float64, p+q)
	if p > 0 {
		x0[0] = Unconstrained(stats.ACFAt(z, 1) * 0.5)
	}
	if q > 0 {
		x0[p] = Unconstrained(-0.1)
	}

	x, err := Minimize(nll, x0)
	if err != nil {
		return fmt.Errorf("fitting %s: %w", m.Order, err)
	}

	f := filter(x)
	copy(m.ARCoeffs, f.AR)
	copy(m.MACoeffs, f.MA)

	m.data = series
	m.levels = levels
	m.centered = z
	m.start = start
	m.Intercept = mu
	m.residuals = f.Residuals(z, start)

	sse, n := SumSquares(m.residuals, start)
	m.Variance = sse / float64(n)
	if !finite(m.residuals) || !finite([]float64{m.Variance}) {
		return fmt.Errorf("fitting %s: %w: non-finite residuals", m.Order, ErrNotConverged)
	}

	ic := stats.CalculateIC(stats.GaussianLogLik(sse, n), n, p+q+1)
	m.LogLik, m.AIC, m.AICc, m.BIC = ic.LogLik, ic.AIC, ic.AICc, ic.BIC

	m.fitted = true
	return nil
}

func (m *Model) filter() ARMA {
	return ARMA{AR: m.ARCoeffs, MA: m.MACoeffs}
}

// Predict generates point forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}

	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	forecasts := m.filter().Forecast(m.centered, m.residuals, steps)
	for i := range forecasts {
		forecasts[i] += m.Intercept
	}

	forecasts = Integrate(m.levels, m.Order.lags(), forecasts)
	if !finite(forecasts) {
		return nil, fmt.Errorf("%s forecast diverged: %w", m.Order, ErrNotConverged)
	}
	return forecasts, nil
}

// Summary returns a summary of the fitted model.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
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

	lb := stats.LjungBox(m.residuals[m.start:], 10, m.Order.P+m.Order.Q)

	return &Summary{
		Order:     m.Order,
		ARCoeffs:  m.ARCoeffs,
		MACoeffs:  m.MACoeffs,
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
