package plotcast

import (
	"context"
	"fmt"

	"github.com/sartorproj/plotcast/chart"
	"github.com/sartorproj/plotcast/forecast"
	"github.com/sartorproj/plotcast/timeseries"
)

// Options selects the chart and forecast for one Plot call.
type Options struct {
	Kind    chart.Kind
	Model   forecast.Model
	Horizon int    // days; 0 means forecast.DefaultHorizon
	XLabel  string // date column name
	YLabel  string // value column name
}

// Report is the result of Plot.
type Report struct {
	Spec        *chart.PlotSpec       `json:"plot"`
	Outcome     *forecast.Outcome     `json:"-"`
	Warnings    []string              `json:"warnings"`
	Errors      []string              `json:"errors"`
	Diagnostics *forecast.Diagnostics `json:"diagnostics,omitempty"`
}

// Pipeline connects the orchestrator to the chart composer.
type Pipeline struct {
	orch *forecast.Orchestrator
}

// New creates a pipeline that forecasts with orch.
func New(orch *forecast.Orchestrator) *Pipeline {
	return &Pipeline{orch: orch}
}

// Plot prepares rows, forecasts when the chart kind allows it and composes
// the plot. Bar charts are never forecast.
func (p *Pipeline) Plot(ctx context.Context, rows []timeseries.Row, opts Options) (*Report, error) {
	req := forecast.Request{Model: opts.Model, Horizon: opts.Horizon}
	if req.Horizon == 0 {
		req.Horizon = forecast.DefaultHorizon
	}
	if opts.Kind == chart.Bar {
		req.Model = forecast.None
	}

	out, err := p.orch.Run(ctx, rows, req)
	if err != nil {
		return nil, err
	}

	spec, err := chart.Compose(out.Series, opts.Kind, out.Forecast)
	if err != nil {
		return nil, err
	}

	shown := forecast.None
	var diag *forecast.Diagnostics
	if out.Forecast != nil {
		shown, diag = out.Forecast.Model, out.Forecast.Diagnostics
	}
	spec.Title = Title(opts.Kind, shown, opts.XLabel, opts.YLabel)
	spec.XLabel, spec.YLabel = opts.XLabel, opts.YLabel

	report := &Report{
		Spec:        spec,
		Outcome:     out,
		Warnings:    []string{},
		Errors:      []string{},
		Diagnostics: diag,
	}
	if st := out.Stats; st != nil && len(st.BadDates) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Dropped %d rows with unparseable dates.", len(st.BadDates)))
	}
	if out.Warning != "" {
		report.Warnings = append(report.Warnings, out.Warning)
	}
	if out.FitError != nil {
		report.Errors = append(report.Errors, out.Message())
	}
	return report, nil
}

// Title formats the chart title, e.g. "Line Plot of Sales vs Date with ARIMA Forecast".
func Title(kind chart.Kind, model forecast.Model, x, y string) string {
	name := "No"
	if model != forecast.None {
		name = model.String()
	}
	return fmt.Sprintf("%s Plot of %s vs %s with %s Forecast", kind, y, x, name)
}
