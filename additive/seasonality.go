package additive

import (
	"math"
	"time"
)

// Seasonality is a Fourier series with the given period in days.
type Seasonality struct {
	Name   string
	Period float64
	Order  int
}

// Spans of history required before a seasonality is fitted.
const (
	yearlyMinSpan = 730
	weeklyMinSpan = 14
)

func enabledSeasonalities(spanDays float64, cfg Config) []Seasonality {
	var out []Seasonality
	if cfg.YearlyOrder > 0 && spanDays >= yearlyMinSpan {
		out = append(out, Seasonality{Name: "yearly", Period: 365.25, Order: cfg.YearlyOrder})
	}
	if cfg.WeeklyOrder > 0 && spanDays >= weeklyMinSpan {
		out = append(out, Seasonality{Name: "weekly", Period: 7, Order: cfg.WeeklyOrder})
	}
	return out
}

// features returns sin and cos of each harmonic, evaluated at days since the
// Unix epoch so that phases do not depend on where the history starts.
func (s Seasonality) features(d time.Time) []float64 {
	days := float64(d.Unix()) / 86400
	out := make([]float64, 0, 2*s.Order)
	for k := 1; k <= s.Order; k++ {
		x := 2 * math.Pi * float64(k) * days / s.Period
		out = append(out, math.Sin(x), math.Cos(x))
	}
	return out
}

// placeChangepoints spreads up to cfg.Changepoints evenly over the first
// ChangepointRange of history, never on the first observation.
func placeChangepoints(t []float64, dates []time.Time, cfg Config) ([]float64, []time.Time) {
	hist := int(math.Floor(cfg.ChangepointRange * float64(len(t))))
	n := min(cfg.Changepoints, hist-1)
	if n <= 0 {
		return nil, nil
	}

	cps := make([]float64, n)
	at := make([]time.Time, n)
	for j := 1; j <= n; j++ {
		idx := int(math.Round(float64(j) * float64(hist-1) / float64(n)))
		cps[j-1] = t[idx]
		at[j-1] = dates[idx]
	}
	return cps, at
}
