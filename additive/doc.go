// Package additive implements an additive decomposition forecaster.
//
// A series is modelled as
//
//	y(t) = trend(t) + weekly(t) + yearly(t) + noise
//
// where the trend is piecewise linear with automatic changepoints and each
// seasonal term is a truncated Fourier series. All components are fitted at
// once by ridge regression, so a fit is a single Cholesky solve.
//
// # Basic Usage
//
//	model := additive.New(additive.DefaultConfig())
//	if err := model.Fit(series); err != nil {
//	    log.Fatal(err)
//	}
//
//	fc, _ := model.Predict(30)
//	for _, p := range fc.Points {
//	    fmt.Println(p.Date, p.Value, p.Lower, p.Upper)
//	}
//
// Predict returns the in-sample fit followed by the forecast horizon.
//
// # Uncertainty
//
// Intervals are simulated. Each sample draws new trend changepoints over the
// horizon at the rate observed in history, with Laplace distributed rate
// changes, and adds Gaussian noise at the residual scale. The band is made
// symmetric around the point forecast using the wider of the two simulated
// quantiles. Simulation draws are random unless Config.Seed is set.
package additive
