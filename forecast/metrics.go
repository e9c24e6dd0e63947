package forecast

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for forecast runs. A nil *Metrics
// records nothing.
type Metrics struct {
	Runs         *prometheus.CounterVec
	FitDuration  *prometheus.HistogramVec
	SeriesLength prometheus.Histogram
}

// NewMetrics creates and registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plotcast_forecast_runs_total",
				Help: "Forecast runs by model and final state",
			},
			[]string{"model", "state"},
		),
		FitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plotcast_fit_duration_seconds",
				Help:    "Time spent fitting and forecasting per model",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"model"},
		),
		SeriesLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "plotcast_series_length_days",
			Help:    "Length of prepared dense daily series",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		}),
	}
}

func (m *Metrics) observeRun(model Model, state State) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(model.ID(), state.String()).Inc()
}

func (m *Metrics) observeFit(model Model, d time.Duration) {
	if m == nil {
		return
	}
	m.FitDuration.WithLabelValues(model.ID()).Observe(d.Seconds())
}

func (m *Metrics) observeSeries(n int) {
	if m == nil {
		return
	}
	m.SeriesLength.Observe(float64(n))
}
