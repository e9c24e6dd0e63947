package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/plotcast/stats"
)

// Point is one forecast value. Lower and Upper are both set or both nil.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Lower *float64  `json:"lower,omitempty"`
	Upper *float64  `json:"upper,omitempty"`
}

// Bounded reports whether the point carries an interval.
func (p Point) Bounded() bool {
	return p.Lower != nil && p.Upper != nil
}

// Result is the output of one strategy run. Points holds InSample fitted
// values over the observed range followed by Horizon forecast values.
type Result struct {
	Model       Model        `json:"model"`
	Horizon     int          `json:"horizon"`
	InSample    int          `json:"in_sample"`
	Points      []Point      `json:"points"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// Diagnostics describes the quality of a likelihood fit. LjungBoxP is nil
// when the residual series is too short to test.
type Diagnostics struct {
	Order     string   `json:"order"`
	LogLik    float64  `json:"log_likelihood"`
	AIC       float64  `json:"aic"`
	AICc      float64  `json:"aicc"`
	BIC       float64  `json:"bic"`
	Variance  float64  `json:"variance"`
	LjungBoxQ *float64 `json:"ljung_box_q,omitempty"`
	LjungBoxP *float64 `json:"ljung_box_p,omitempty"`
}

// newDiagnostics returns nil unless every criterion is finite. An exact fit
// has an unbounded likelihood, which JSON cannot carry.
func newDiagnostics(order string, loglik, aic, aicc, bic, variance float64, lb *stats.LjungBoxResult) *Diagnostics {
	for _, v := range []float64{loglik, aic, aicc, bic, variance} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	d := &Diagnostics{
		Order:    order,
		LogLik:   loglik,
		AIC:      aic,
		AICc:     aicc,
		BIC:      bic,
		Variance: variance,
	}
	if lb != nil && !math.IsNaN(lb.Statistic) && !math.IsInf(lb.Statistic, 0) {
		q, p := lb.Statistic, lb.PValue
		d.LjungBoxQ, d.LjungBoxP = &q, &p
	}
	return d
}

// WhiteResiduals reports whether the residuals passed the Ljung-Box test. An
// untested fit counts as white.
func (d *Diagnostics) WhiteResiduals() bool {
	return d == nil || d.LjungBoxP == nil || *d.LjungBoxP > 0.05
}

// Future returns the out-of-sample points.
func (r *Result) Future() []Point {
	if r.InSample > len(r.Points) {
		return nil
	}
	return r.Points[r.InSample:]
}

// Bounded reports whether any point carries an interval.
func (r *Result) Bounded() bool {
	for _, p := range r.Points {
		if p.Bounded() {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of a result: point count, a
// contiguous daily calendar, paired and ordered bounds.
func (r *Result) Validate() error {
	if len(r.Points) != r.Horizon+r.InSample {
		return fmt.Errorf("%s result has %d points, want %d in-sample + %d future",
			r.Model, len(r.Points), r.InSample, r.Horizon)
	}
	for i, p := range r.Points {
		if i > 0 && !p.Date.Equal(r.Points[i-1].Date.AddDate(0, 0, 1)) {
			return fmt.Errorf("%s result point %d (%s) does not follow %s",
				r.Model, i, p.Date.Format(time.DateOnly), r.Points[i-1].Date.Format(time.DateOnly))
		}
		if (p.Lower == nil) != (p.Upper == nil) {
			return fmt.Errorf("%s result point %d has only one bound", r.Model, i)
		}
		if p.Bounded() && !(*p.Lower <= p.Value && p.Value <= *p.Upper) {
			return fmt.Errorf("%s result point %d: %g outside [%g, %g]", r.Model, i, p.Value, *p.Lower, *p.Upper)
		}
	}
	return nil
}
