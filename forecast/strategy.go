package forecast

import (
	"context"
	"fmt"

	"github.com/sartorproj/plotcast/additive"
	"github.com/sartorproj/plotcast/arima"
	"github.com/sartorproj/plotcast/sarima"
	"github.com/sartorproj/plotcast/timeseries"
)

// Strategy fits one model family to a dense daily series and forecasts
// horizon days past its last observation. Numerical failures are returned as
// *ModelFitError.
type Strategy interface {
	Model() Model
	FitAndForecast(ctx context.Context, series *timeseries.Series, horizon int) (*Result, error)
}

// Fixed model orders.
var (
	ARIMAOrder  = arima.Order{P: 2, D: 1, Q: 2}
	SARIMAOrder = sarima.Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, M: 12}
)

// DefaultStrategies returns one strategy per forecasting model.
func DefaultStrategies(cfg additive.Config) []Strategy {
	return []Strategy{
		NewARIMA(),
		NewSARIMA(),
		NewAdditive(cfg),
	}
}

// ARIMA is the Autoregressive strategy.
type ARIMA struct {
	Order arima.Order
}

func NewARIMA() *ARIMA {
	return &ARIMA{Order: ARIMAOrder}
}

func (s *ARIMA) Model() Model { return Autoregressive }

func (s *ARIMA) FitAndForecast(ctx context.Context, series *timeseries.Series, horizon int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkDense(Autoregressive, series); err != nil {
		return nil, err
	}

	model := arima.New(s.Order.P, s.Order.D, s.Order.Q)
	if err := model.Fit(series); err != nil {
		return nil, &ModelFitError{Model: Autoregressive, Err: err}
	}
	values, err := model.Predict(horizon)
	if err != nil {
		return nil, &ModelFitError{Model: Autoregressive, Err: err}
	}
	res, err := pointResult(Autoregressive, series, values)
	if err != nil {
		return nil, err
	}
	if sum := model.Summary(); sum != nil {
		res.Diagnostics = newDiagnostics(sum.Order.String(), sum.LogLik, sum.AIC, sum.AICc, sum.BIC, sum.Variance, sum.LjungBox)
	}
	return res, nil
}

// SARIMA is the SeasonalAutoregressive strategy.
type SARIMA struct {
	Order sarima.Order
}

func NewSARIMA() *SARIMA {
	return &SARIMA{Order: SARIMAOrder}
}

func (s *SARIMA) Model() Model { return SeasonalAutoregressive }

func (s *SARIMA) FitAndForecast(ctx context.Context, series *timeseries.Series, horizon int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkDense(SeasonalAutoregressive, series); err != nil {
		return nil, err
	}

	o := s.Order
	model := sarima.New(o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
	if err := model.Fit(series); err != nil {
		return nil, &ModelFitError{Model: SeasonalAutoregressive, Err: err}
	}
	values, err := model.Predict(horizon)
	if err != nil {
		return nil, &ModelFitError{Model: SeasonalAutoregressive, Err: err}
	}
	res, err := pointResult(SeasonalAutoregressive, series, values)
	if err != nil {
		return nil, err
	}
	if sum := model.Summary(); sum != nil {
		res.Diagnostics = newDiagnostics(sum.Order.String(), sum.LogLik, sum.AIC, sum.AICc, sum.BIC, sum.Variance, sum.LjungBox)
	}
	return res, nil
}

// Additive is the AdditiveDecomposition strategy. Its result starts with the
// in-sample fit over the observed range.
type Additive struct {
	Config additive.Config
}

func NewAdditive(cfg additive.Config) *Additive {
	return &Additive{Config: cfg}
}

func (s *Additive) Model() Model { return AdditiveDecomposition }

func (s *Additive) FitAndForecast(ctx context.Context, series *timeseries.Series, horizon int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkDense(AdditiveDecomposition, series); err != nil {
		return nil, err
	}

	model := additive.New(s.Config)
	if err := model.Fit(series); err != nil {
		return nil, &ModelFitError{Model: AdditiveDecomposition, Err: err}
	}
	fc, err := model.Predict(horizon)
	if err != nil {
		return nil, &ModelFitError{Model: AdditiveDecomposition, Err: err}
	}

	res := &Result{
		Model:    AdditiveDecomposition,
		Horizon:  horizon,
		InSample: fc.InSample,
		Points:   make([]Point, len(fc.Points)),
	}
	for i, p := range fc.Points {
		res.Points[i] = Point{Date: p.Date, Value: p.Value}
		if fc.IntervalWidth > 0 {
			lower, upper := p.Lower, p.Upper
			res.Points[i].Lower, res.Points[i].Upper = &lower, &upper
		}
	}
	if err := res.Validate(); err != nil {
		return nil, &ModelFitError{Model: AdditiveDecomposition, Err: err}
	}
	return res, nil
}

// pointResult pairs point forecasts with the days following the series.
func pointResult(model Model, series *timeseries.Series, values []float64) (*Result, error) {
	dates := series.FutureDates(len(values))
	res := &Result{
		Model:   model,
		Horizon: len(values),
		Points:  make([]Point, len(values)),
	}
	for i, v := range values {
		res.Points[i] = Point{Date: dates[i], Value: v}
	}
	if err := res.Validate(); err != nil {
		return nil, &ModelFitError{Model: model, Err: fmt.Errorf("malformed forecast: %w", err)}
	}
	return res, nil
}
