// Package sarima fits multiplicative seasonal ARIMA models,
// SARIMA(p,d,q)x(P,D,Q,m).
//
// The seasonal AR and MA polynomials in B^m are multiplied into their
// non-seasonal counterparts, and the resulting ARMA filter is estimated
// with the arima package's conditional likelihood. Differencing applies d
// lag-1 steps followed by D lag-m steps.
//
//	model := sarima.New(1, 1, 1, 1, 1, 1, 12)
//	if err := model.Fit(series); err != nil {
//	    return err
//	}
//	next, err := model.Predict(30)
//
// m counts observations. The forecast package uses m = 12 on daily series,
// which is a 12-day cycle rather than a yearly one. It is kept for
// compatibility with earlier output; weekly seasonality on daily data wants
// m = 7.
package sarima
