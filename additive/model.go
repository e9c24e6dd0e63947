package additive

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/plotcast/timeseries"
)

var (
	// ErrTooShort is returned when the series has fewer than two observations.
	ErrTooShort = errors.New("additive model needs at least two observations")

	// ErrSingular is returned when the regression system cannot be factorized.
	ErrSingular = errors.New("regression system is singular")

	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("model must be fitted before prediction")
)

// Config holds the model settings.
type Config struct {
	Changepoints       int     // maximum number of automatic trend changepoints
	ChangepointRange   float64 // share of history eligible for changepoints
	ChangepointPenalty float64 // ridge penalty on trend rate changes
	SeasonalityPenalty float64 // ridge penalty on Fourier coefficients
	YearlyOrder        int
	WeeklyOrder        int
	UncertaintySamples int     // 0 disables the interval
	IntervalWidth      float64 // coverage of the interval, in (0, 1)
	Seed               uint64  // 0 seeds the simulation randomly on each Predict
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		Changepoints:       25,
		ChangepointRange:   0.8,
		ChangepointPenalty: 4,
		SeasonalityPenalty: 1e-4,
		YearlyOrder:        10,
		WeeklyOrder:        3,
		UncertaintySamples: 1000,
		IntervalWidth:      0.8,
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	switch {
	case c.Changepoints < 0:
		return fmt.Errorf("changepoints must not be negative, got %d", c.Changepoints)
	case c.ChangepointRange <= 0 || c.ChangepointRange > 1:
		return fmt.Errorf("changepoint range must be in (0, 1], got %g", c.ChangepointRange)
	case c.ChangepointPenalty < 0 || c.SeasonalityPenalty < 0:
		return errors.New("penalties must not be negative")
	case c.YearlyOrder < 0 || c.WeeklyOrder < 0:
		return errors.New("fourier orders must not be negative")
	case c.UncertaintySamples < 0:
		return fmt.Errorf("uncertainty samples must not be negative, got %d", c.UncertaintySamples)
	case c.UncertaintySamples > 0 && (c.IntervalWidth <= 0 || c.IntervalWidth >= 1):
		return fmt.Errorf("interval width must be in (0, 1), got %g", c.IntervalWidth)
	}
	return nil
}

// Model is an additive trend plus seasonality model.
type Model struct {
	Config        Config
	Seasonalities []Seasonality // enabled by Fit from the history span
	Changepoints  []time.Time
	Offset        float64   // trend intercept, scaled units
	Rate          float64   // base trend slope, scaled units
	Deltas        []float64 // slope change at each changepoint
	Sigma         float64   // residual standard deviation, scaled units

	fitted  bool
	history *timeseries.Series
	tScale  float64 // history span in days
	yScale  float64 // max |y|
	cps     []float64
	beta    []float64
}

// Point is one fitted or forecast value.
type Point struct {
	Date  time.Time
	Value float64
	Lower float64
	Upper float64
}

// Forecast is the output of Predict: InSample fitted points over the
// history followed by the horizon.
type Forecast struct {
	Points        []Point
	InSample      int
	IntervalWidth float64 // 0 when no interval was simulated
}

// New creates an unfitted model.
func New(cfg Config) *Model {
	return &Model{Config: cfg}
}

// Fit estimates trend, changepoint and seasonal coefficients by ridge
// regression on the scaled series.
func (m *Model) Fit(series *timeseries.Series) error {
	if err := m.Config.Validate(); err != nil {
		return err
	}
	n := series.Len()
	if n < 2 {
		return fmt.Errorf("%w: have %d", ErrTooShort, n)
	}

	m.history = series
	m.tScale = series.End().Sub(series.Start()).Hours() / 24
	if m.tScale <= 0 {
		m.tScale = 1
	}
	m.yScale = floats.Norm(series.Values, math.Inf(1))
	if m.yScale == 0 {
		m.yScale = 1
	}

	t := m.scaledTime(series.Timestamps)
	m.cps, m.Changepoints = placeChangepoints(t, series.Timestamps, m.Config)
	m.Seasonalities = enabledSeasonalities(m.tScale, m.Config)

	y := make([]float64, n)
	floats.ScaleTo(y, 1/m.yScale, series.Values)

	x := m.design(series.Timestamps, t)
	beta, err := ridge(x, y, m.penalties())
	if err != nil {
		return err
	}
	if !finite(beta) {
		return fmt.Errorf("%w: non-finite coefficients", ErrSingular)
	}

	s := len(m.cps)
	m.beta = beta
	m.Offset, m.Rate = beta[0], beta[1]
	m.Deltas = append([]float64(nil), beta[2:2+s]...)

	var fit mat.VecDense
	fit.MulVec(x, mat.NewVecDense(len(beta), beta))
	resid := make([]float64, n)
	floats.SubTo(resid, y, fit.RawVector().Data)
	m.Sigma = stat.StdDev(resid, nil)
	if math.IsNaN(m.Sigma) {
		m.Sigma = 0
	}

	m.fitted = true
	return nil
}

// Predict returns the in-sample fit and horizon future days. Points carry
// simulated bounds unless the configuration disables them.
func (m *Model) Predict(horizon int) (*Forecast, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if horizon < 0 {
		return nil, fmt.Errorf("horizon must not be negative, got %d", horizon)
	}

	dates := make([]time.Time, 0, m.history.Len()+horizon)
	dates = append(dates, m.history.Timestamps...)
	dates = append(dates, m.history.FutureDates(horizon)...)
	t := m.scaledTime(dates)

	var yhat mat.VecDense
	yhat.MulVec(m.design(dates, t), mat.NewVecDense(len(m.beta), m.beta))
	point := yhat.RawVector().Data

	fc := &Forecast{
		Points:   make([]Point, len(dates)),
		InSample: m.history.Len(),
	}

	var half []float64
	if m.Config.UncertaintySamples > 0 {
		half = m.simulate(t, point)
		fc.IntervalWidth = m.Config.IntervalWidth
	}

	for i, d := range dates {
		v := point[i] * m.yScale
		p := Point{Date: d, Value: v, Lower: v, Upper: v}
		if half != nil {
			p.Lower = v - half[i]*m.yScale
			p.Upper = v + half[i]*m.yScale
		}
		if math.IsNaN(p.Lower) || math.IsInf(p.Lower, 0) || math.IsNaN(p.Upper) || math.IsInf(p.Upper, 0) {
			return nil, fmt.Errorf("non-finite forecast at %s", d.Format(time.DateOnly))
		}
		fc.Points[i] = p
	}
	return fc, nil
}

// Future returns the out-of-sample points.
func (f *Forecast) Future() []Point {
	return f.Points[f.InSample:]
}

func (m *Model) scaledTime(dates []time.Time) []float64 {
	start := m.history.Start()
	t := make([]float64, len(dates))
	for i, d := range dates {
		t[i] = d.Sub(start).Hours() / 24 / m.tScale
	}
	return t
}

// penalties returns the ridge diagonal matching the design columns.
func (m *Model) penalties() []float64 {
	p := []float64{1e-8, 1e-8}
	for range m.cps {
		p = append(p, m.Config.ChangepointPenalty)
	}
	for _, s := range m.Seasonalities {
		for i := 0; i < 2*s.Order; i++ {
			p = append(p, m.Config.SeasonalityPenalty)
		}
	}
	return p
}

// design builds the regression matrix: intercept, slope, one hinge per
// changepoint, then a sine and cosine column per Fourier term.
func (m *Model) design(dates []time.Time, t []float64) *mat.Dense {
	cols := 2 + len(m.cps)
	for _, s := range m.Seasonalities {
		cols += 2 * s.Order
	}

	x := mat.NewDense(len(dates), cols, nil)
	for i, d := range dates {
		x.Set(i, 0, 1)
		x.Set(i, 1, t[i])
		for j, c := range m.cps {
			x.Set(i, 2+j, math.Max(0, t[i]-c))
		}
		col := 2 + len(m.cps)
		for _, s := range m.Seasonalities {
			for k, v := range s.features(d) {
				x.Set(i, col+k, v)
			}
			col += 2 * s.Order
		}
	}
	return x
}

// ridge solves (X'X + diag(penalty)) beta = X'y.
func ridge(x *mat.Dense, y, penalty []float64) ([]float64, error) {
	var a mat.SymDense
	a.SymOuterK(1, x.T())
	for i, l := range penalty {
		a.SetSym(i, i, a.At(i, i)+l)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(&a); !ok {
		return nil, ErrSingular
	}

	var b mat.VecDense
	b.MulVec(x.T(), mat.NewVecDense(len(y), y))

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	out := make([]float64, beta.Len())
	for i := range out {
		out[i] = beta.AtVec(i)
	}
	return out, nil
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
