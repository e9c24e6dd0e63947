// Package arima fits ARIMA(p,d,q) models to a series and forecasts it.
//
// Fit differences the series d times, centers the result on its mean (the
// drift of the integrated model) and estimates the ARMA coefficients by
// conditional Gaussian likelihood with the innovation variance profiled
// out. Nelder-Mead searches over partial autocorrelations mapped through
// tanh, so every candidate is stationary and invertible:
//
//	model := arima.New(2, 1, 2)
//	if err := model.Fit(series); err != nil {
//	    return err
//	}
//	next, err := model.Predict(30)
//
// Fits are deterministic: the same input always yields the same
// coefficients and forecasts.
//
// ARMA, Constrain, Minimize, Difference and Integrate are exported for the
// sarima package, which fits its multiplied-out polynomials with the same
// likelihood. Summary reports information criteria and a Ljung-Box test on
// the residuals.
package arima
