package forecast

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/plotcast/additive"
	"github.com/sartorproj/plotcast/arima"
	"github.com/sartorproj/plotcast/timeseries"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func makeRows(values ...float64) []timeseries.Row {
	rows := make([]timeseries.Row, len(values))
	for i, v := range values {
		rows[i] = timeseries.Row{
			Date:  day0.AddDate(0, 0, i).Format(time.DateOnly),
			Value: strconv.FormatFloat(v, 'f', -1, 64),
		}
	}
	return rows
}

func dayIndex(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i + 1)
	}
	return values
}

// spy records calls and returns a canned result or error.
type spy struct {
	model Model
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (s *spy) Model() Model { return s.model }

func (s *spy) FitAndForecast(ctx context.Context, series *timeseries.Series, horizon int) (*Result, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	if s.err != nil {
		return nil, s.err
	}
	values := make([]float64, horizon)
	return pointResult(s.model, series, values)
}

func quietOrchestrator(strategies []Strategy, opts ...Option) *Orchestrator {
	opts = append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)
	return NewOrchestrator(strategies, opts...)
}

func TestRunInsufficientDataSkipsStrategy(t *testing.T) {
	s := &spy{model: Autoregressive}
	orch := quietOrchestrator([]Strategy{s})

	out, err := orch.Run(context.Background(), makeRows(1, 2, 3, 4, 5), Request{Model: Autoregressive, Horizon: 7})
	require.NoError(t, err)

	assert.Equal(t, DoneWithWarning, out.State)
	assert.Equal(t, InsufficientDataWarning, out.Warning)
	assert.Equal(t, InsufficientDataWarning, out.Message())
	assert.Nil(t, out.Forecast)
	require.NotNil(t, out.Series)
	assert.Equal(t, 5, out.Series.Len())
	assert.Zero(t, s.calls.Load())
}

func TestRunNoneModel(t *testing.T) {
	s := &spy{model: Autoregressive}
	orch := quietOrchestrator([]Strategy{s})

	out, err := orch.Run(context.Background(), makeRows(dayIndex(12)...), Request{Model: None, Horizon: 30})
	require.NoError(t, err)

	assert.Equal(t, Done, out.State)
	assert.Nil(t, out.Forecast)
	assert.Empty(t, out.Message())
	assert.Equal(t, 12, out.Series.Len())
	assert.Zero(t, s.calls.Load())

	// Short data is not a warning when no forecast was requested.
	out, err = orch.Run(context.Background(), makeRows(1, 2), Request{Model: None, Horizon: 30})
	require.NoError(t, err)
	assert.Equal(t, Done, out.State)
	assert.Empty(t, out.Warning)
}

func TestRunFatalErrors(t *testing.T) {
	orch := quietOrchestrator([]Strategy{&spy{model: Autoregressive}})
	ctx := context.Background()

	_, err := orch.Run(ctx, makeRows(dayIndex(20)...), Request{Model: Autoregressive, Horizon: 3})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = orch.Run(ctx, []timeseries.Row{{Date: "garbage", Value: "1"}}, Request{Model: Autoregressive, Horizon: 7})
	var empty *timeseries.EmptySeriesError
	assert.ErrorAs(t, err, &empty)

	_, err = orch.Run(ctx, makeRows(dayIndex(20)...), Request{Model: SeasonalAutoregressive, Horizon: 7})
	assert.ErrorContains(t, err, "no strategy registered")
}

func TestRunFitErrorKeepsSeries(t *testing.T) {
	cause := fmtErr(arima.ErrNotConverged)
	s := &spy{model: Autoregressive, err: &ModelFitError{Model: Autoregressive, Err: cause}}
	orch := quietOrchestrator([]Strategy{s})

	out, err := orch.Run(context.Background(), makeRows(dayIndex(20)...), Request{Model: Autoregressive, Horizon: 7})
	require.NoError(t, err)

	assert.Equal(t, DoneWithError, out.State)
	require.NotNil(t, out.FitError)
	assert.ErrorIs(t, out.FitError, arima.ErrNotConverged)
	assert.Contains(t, out.Message(), "Forecasting with ARIMA failed")
	assert.Nil(t, out.Forecast)
	assert.Equal(t, 20, out.Series.Len())
}

func fmtErr(err error) error {
	return errors.Join(errors.New("fitting ARIMA(2,1,2)"), err)
}

func TestRunPropagatesOtherErrors(t *testing.T) {
	s := &spy{model: Autoregressive, err: context.DeadlineExceeded}
	orch := quietOrchestrator([]Strategy{s})

	_, err := orch.Run(context.Background(), makeRows(dayIndex(20)...), Request{Model: Autoregressive, Horizon: 7})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunCanceledBeforeFit(t *testing.T) {
	s := &spy{model: Autoregressive}
	orch := quietOrchestrator([]Strategy{s})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Run(ctx, makeRows(dayIndex(20)...), Request{Model: Autoregressive, Horizon: 7})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.calls.Load())
}

func TestRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	orch := quietOrchestrator([]Strategy{&spy{model: Autoregressive}}, WithMetrics(metrics))

	ctx := context.Background()
	_, err := orch.Run(ctx, makeRows(dayIndex(20)...), Request{Model: Autoregressive, Horizon: 7})
	require.NoError(t, err)
	_, err = orch.Run(ctx, makeRows(1, 2, 3), Request{Model: Autoregressive, Horizon: 7})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("arima", "done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("arima", "done_with_warning")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.FitDuration))
}

func TestARIMALinearScenario(t *testing.T) {
	orch := quietOrchestrator(DefaultStrategies(additive.DefaultConfig()))

	out, err := orch.Run(context.Background(), makeRows(dayIndex(20)...), Request{Model: Autoregressive, Horizon: 7})
	require.NoError(t, err)
	require.Equal(t, Done, out.State, out.Message())

	fc := out.Forecast
	require.Len(t, fc.Points, 7)
	assert.Zero(t, fc.InSample)
	assert.True(t, fc.Points[0].Date.Equal(out.Series.End().AddDate(0, 0, 1)))
	for i, p := range fc.Points {
		assert.False(t, math.IsNaN(p.Value) || math.IsInf(p.Value, 0))
		assert.InDelta(t, float64(21+i), p.Value, 1e-6)
		assert.False(t, p.Bounded())
	}
}

func TestStrategiesReturnHorizonPoints(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 40 + 0.5*float64(i) + 3*math.Sin(float64(i)*0.9) + math.Cos(float64(i*i))
	}
	series := timeseries.NewDaily(day0, values)

	cfg := additive.DefaultConfig()
	cfg.Seed = 7
	for _, s := range DefaultStrategies(cfg) {
		t.Run(s.Model().String(), func(t *testing.T) {
			res, err := s.FitAndForecast(context.Background(), series, 14)
			require.NoError(t, err)
			require.NoError(t, res.Validate())

			future := res.Future()
			require.Len(t, future, 14)
			assert.True(t, future[0].Date.Equal(series.End().AddDate(0, 0, 1)))

			if s.Model() == AdditiveDecomposition {
				assert.Equal(t, series.Len(), res.InSample)
				assert.True(t, res.Points[0].Date.Equal(series.Start()))
				for _, p := range res.Points {
					require.True(t, p.Bounded())
					assert.LessOrEqual(t, *p.Lower, p.Value)
					assert.LessOrEqual(t, p.Value, *p.Upper)
				}
			} else {
				assert.Len(t, res.Points, 14)
				assert.False(t, res.Bounded())
			}
		})
	}
}

func TestDeterministicPointForecasts(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 10 + math.Sin(float64(i)/2) + float64(i%4)
	}
	series := timeseries.NewDaily(day0, values)

	for _, s := range []Strategy{NewARIMA(), NewSARIMA()} {
		a, err := s.FitAndForecast(context.Background(), series, 10)
		require.NoError(t, err)
		b, err := s.FitAndForecast(context.Background(), series, 10)
		require.NoError(t, err)
		assert.Equal(t, a, b, s.Model().String())
	}
}

func TestSARIMATooShortIsFitError(t *testing.T) {
	series := timeseries.NewDaily(day0, dayIndex(15))

	_, err := NewSARIMA().FitAndForecast(context.Background(), series, 7)
	var fitErr *ModelFitError
	require.ErrorAs(t, err, &fitErr)
	assert.Equal(t, SeasonalAutoregressive, fitErr.Model)
	assert.ErrorIs(t, err, arima.ErrTooShort)
}

func TestCompare(t *testing.T) {
	series := timeseries.NewDaily(day0, dayIndex(30))
	failing := &spy{model: SeasonalAutoregressive, err: &ModelFitError{Model: SeasonalAutoregressive, Err: arima.ErrTooShort}}
	strategies := []Strategy{
		&spy{model: Autoregressive, delay: 20 * time.Millisecond},
		failing,
		&spy{model: AdditiveDecomposition},
	}

	var calls []int
	results := CompareWithProgress(context.Background(), series, 7, func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	}, strategies...)

	require.Len(t, results, 3)
	assert.Equal(t, []int{1, 2, 3}, calls)
	for i, r := range results {
		assert.Equal(t, strategies[i].Model(), r.Model)
	}
	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Result.Points, 7)
	assert.ErrorIs(t, results[1].Err, arima.ErrTooShort)
	assert.Nil(t, results[1].Result)
	assert.Positive(t, results[0].Duration)

	assert.Len(t, Compare(context.Background(), series, 7, strategies[2]), 1)
}

func TestStrategiesRejectGappedSeries(t *testing.T) {
	gapped := timeseries.NewDaily(day0, dayIndex(60))
	gapped.Timestamps[30] = gapped.Timestamps[30].AddDate(0, 0, 1)

	nonFinite := timeseries.NewDaily(day0, dayIndex(60))
	nonFinite.Values[10] = math.NaN()

	for _, s := range DefaultStrategies(additive.DefaultConfig()) {
		for name, series := range map[string]*timeseries.Series{"gap": gapped, "nan": nonFinite} {
			_, err := s.FitAndForecast(context.Background(), series, 7)
			var fitErr *ModelFitError
			require.ErrorAs(t, err, &fitErr, "%s %s", s.Model(), name)
			assert.Equal(t, s.Model(), fitErr.Model)
			assert.ErrorIs(t, err, ErrNotDense)
		}
	}
}

func TestLikelihoodStrategiesReportDiagnostics(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 40 + 0.5*float64(i) + 3*math.Sin(float64(i)*0.9) + math.Cos(float64(i*i))
	}
	series := timeseries.NewDaily(day0, values)

	for _, s := range []Strategy{NewARIMA(), NewSARIMA()} {
		res, err := s.FitAndForecast(context.Background(), series, 7)
		require.NoError(t, err)
		d := res.Diagnostics
		require.NotNil(t, d, s.Model().String())
		assert.NotEmpty(t, d.Order)
		assert.Positive(t, d.Variance)
		assert.Less(t, d.AIC, d.BIC, "BIC penalizes harder for n=%d", series.Len())
		require.NotNil(t, d.LjungBoxP)
		assert.GreaterOrEqual(t, *d.LjungBoxP, 0.0)
		assert.LessOrEqual(t, *d.LjungBoxP, 1.0)
	}

	res, err := NewAdditive(additive.DefaultConfig()).FitAndForecast(context.Background(), series, 7)
	require.NoError(t, err)
	assert.Nil(t, res.Diagnostics)
}

func TestDiagnosticsOmittedForExactFit(t *testing.T) {
	assert.Nil(t, newDiagnostics("ARIMA(2,1,2)", math.Inf(1), math.Inf(-1), math.Inf(-1), math.Inf(-1), 0, nil))

	d := newDiagnostics("ARIMA(2,1,2)", -10, 30, 31, 35, 1.5, nil)
	require.NotNil(t, d)
	assert.Nil(t, d.LjungBoxP)
	assert.True(t, d.WhiteResiduals())

	p := 0.01
	d.LjungBoxP = &p
	assert.False(t, d.WhiteResiduals())
}

func TestOverflowingSeriesIsFitError(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 1e300
		if i%2 == 1 {
			values[i] = -1e300
		}
	}

	_, err := NewARIMA().FitAndForecast(context.Background(), timeseries.NewDaily(day0, values), 7)
	var fitErr *ModelFitError
	require.ErrorAs(t, err, &fitErr)
	assert.ErrorIs(t, err, arima.ErrNotConverged)
}
