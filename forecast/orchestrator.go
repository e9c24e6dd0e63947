package forecast

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sartorproj/plotcast/timeseries"
)

// InsufficientDataWarning is shown when the series is too short to forecast.
const InsufficientDataWarning = "Not enough data for forecasting. Minimum 10 points required."

// State is the position of a run in the orchestration state machine:
//
//	Idle -> Validating -> Preparing -> (DoneWithWarning) -> Forecasting -> (DoneWithError) -> Done
type State int

const (
	Idle State = iota
	Validating
	Preparing
	DoneWithWarning
	Forecasting
	DoneWithError
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Preparing:
		return "preparing"
	case DoneWithWarning:
		return "done_with_warning"
	case Forecasting:
		return "forecasting"
	case DoneWithError:
		return "done_with_error"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == Done || s == DoneWithWarning || s == DoneWithError
}

// Outcome is what a run produced. Series is set on every non-fatal path so
// the data can be plotted even without a forecast.
type Outcome struct {
	Series   *timeseries.Series
	Stats    *timeseries.PrepareStats
	Forecast *Result
	Warning  string
	FitError *ModelFitError
	State    State
}

// Message returns the user-visible note for the run, or "" when the run
// completed normally.
func (o *Outcome) Message() string {
	switch {
	case o.Warning != "":
		return o.Warning
	case o.FitError != nil:
		return fmt.Sprintf("Forecasting with %s failed: %v", o.FitError.Model, o.FitError.Err)
	}
	return ""
}

// Orchestrator prepares raw rows and dispatches to the requested strategy.
type Orchestrator struct {
	strategies map[Model]Strategy
	metrics    *Metrics
	logger     *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics records runs on m.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator registers strategies by the model they implement. A later
// strategy for the same model replaces an earlier one.
func NewOrchestrator(strategies []Strategy, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		strategies: make(map[Model]Strategy, len(strategies)),
		logger:     log.Default(),
	}
	for _, s := range strategies {
		o.strategies[s.Model()] = s
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Strategy returns the strategy registered for m.
func (o *Orchestrator) Strategy(m Model) (Strategy, bool) {
	s, ok := o.strategies[m]
	return s, ok
}

// Run validates req, prepares rows and, unless req.Model is None or the
// series is too short, fits the selected strategy.
//
// Invalid requests, empty input, an unregistered model and context
// cancellation are returned as errors. Insufficient data and fit failures
// are reported on the Outcome with the prepared series still attached.
func (o *Orchestrator) Run(ctx context.Context, rows []timeseries.Row, req Request) (*Outcome, error) {
	out := &Outcome{State: Idle}

	out.State = Validating
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out.State = Preparing
	series, stats, err := timeseries.PrepareWithStats(rows)
	out.Series, out.Stats = series, stats
	o.logPrepare(stats)

	var short *timeseries.InsufficientDataError
	switch {
	case err == nil:
	case errors.As(err, &short):
	default:
		o.logger.Printf("[WARN] prepare failed: %v", err)
		return nil, err
	}
	o.metrics.observeSeries(series.Len())

	if req.Model == None {
		return o.finish(out, req.Model, Done), nil
	}

	if short != nil {
		out.Warning = InsufficientDataWarning
		o.logger.Printf("[WARN] %s skipped: %v", req.Model, short)
		return o.finish(out, req.Model, DoneWithWarning), nil
	}

	strategy, ok := o.strategies[req.Model]
	if !ok {
		return nil, fmt.Errorf("no strategy registered for %s", req.Model)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out.State = Forecasting
	began := time.Now()
	res, err := strategy.FitAndForecast(ctx, series, req.Horizon)
	o.metrics.observeFit(req.Model, time.Since(began))

	var fitErr *ModelFitError
	switch {
	case err == nil:
		out.Forecast = res
		o.logger.Printf("[INFO] %s forecast %d days over %d observations in %s",
			req.Model, req.Horizon, series.Len(), time.Since(began).Round(time.Millisecond))
		if d := res.Diagnostics; d != nil {
			o.logger.Printf("[DEBUG] %s: loglik=%.3f aic=%.3f bic=%.3f sigma2=%.4g", d.Order, d.LogLik, d.AIC, d.BIC, d.Variance)
			if !d.WhiteResiduals() {
				o.logger.Printf("[WARN] %s residuals are autocorrelated (Ljung-Box p=%.4f)", d.Order, *d.LjungBoxP)
			}
		}
		return o.finish(out, req.Model, Done), nil
	case errors.As(err, &fitErr):
		out.FitError = fitErr
		o.logger.Printf("[ERROR] %v", fitErr)
		return o.finish(out, req.Model, DoneWithError), nil
	default:
		return nil, err
	}
}

func (o *Orchestrator) finish(out *Outcome, model Model, state State) *Outcome {
	out.State = state
	o.metrics.observeRun(model, state)
	return out
}

func (o *Orchestrator) logPrepare(st *timeseries.PrepareStats) {
	if st == nil {
		return
	}
	if len(st.BadDates) > 0 || st.NullValues > 0 || st.Duplicates > 0 || st.FilledDays > 0 {
		o.logger.Printf("[INFO] prepared %d rows: %d bad dates, %d null values, %d duplicates, %d days filled, %d points",
			st.Rows, len(st.BadDates), st.NullValues, st.Duplicates, st.FilledDays, st.Dense)
	}
}
