// Package plotcast turns a two-column table into a chart specification with
// an optional statistical forecast overlay.
//
// The pipeline is:
//
//	rows -> timeseries.Prepare -> forecast.Strategy -> chart.Compose -> PlotSpec
//
// Pipeline.Plot runs the whole chain for one request:
//
//	orch := forecast.NewOrchestrator(forecast.DefaultStrategies(additive.DefaultConfig()))
//	report, err := plotcast.New(orch).Plot(ctx, rows, plotcast.Options{
//	    Kind:    chart.Line,
//	    Model:   forecast.Autoregressive,
//	    Horizon: 30,
//	    XLabel:  "Date",
//	    YLabel:  "Sales",
//	})
//
// The report always carries a plot when err is nil. Too little data or a
// failed fit leave the plot without an overlay and add a message to
// Report.Warnings or Report.Errors.
//
// # Packages
//
//   - timeseries: table loading (CSV, XLSX), date parsing, daily resampling
//   - arima, sarima: fixed-order ARIMA and SARIMA by conditional likelihood
//   - additive: trend and Fourier seasonality regression with simulated intervals
//   - forecast: model selection, strategies, orchestration and metrics
//   - chart: plot specification and CSV export
//   - server, cmd/plotcast: HTTP API and command line
package plotcast
