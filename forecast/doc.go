// Package forecast selects and runs forecasting strategies over prepared
// daily series.
//
// A Request names a Model and a horizon between 7 and 90 days. The
// Orchestrator prepares raw rows with timeseries.Prepare, then hands the
// dense series to the Strategy registered for the model:
//
//	orch := forecast.NewOrchestrator(forecast.DefaultStrategies(additive.DefaultConfig()))
//	out, err := orch.Run(ctx, rows, forecast.Request{Model: forecast.Autoregressive, Horizon: 30})
//	if err != nil {
//	    log.Fatal(err) // invalid request or no usable rows
//	}
//	if msg := out.Message(); msg != "" {
//	    fmt.Println(msg) // too little data, or the fit failed
//	}
//
// Short series and fit failures are not errors: the Outcome still carries
// the series so it can be plotted without an overlay.
//
// # Strategies
//
//   - Autoregressive: ARIMA(2,1,2), point forecast.
//   - SeasonalAutoregressive: SARIMA(1,1,1)x(1,1,1,12), point forecast. The
//     period of 12 is applied to daily data as is, so the seasonal term
//     captures a 12-day cycle. It is kept for parity with earlier releases.
//   - AdditiveDecomposition: trend plus weekly and yearly seasonality. The
//     result starts with the fitted values over the observed range and every
//     point carries an 80% interval.
//
// ARIMA and SARIMA results are deterministic. Additive intervals are
// simulated and vary between runs unless additive.Config.Seed is set.
package forecast
