package stats

import "math"

// InformationCriteria holds the likelihood-based model scores.
type InformationCriteria struct {
	AIC    float64
	AICc   float64 // Corrected AIC for small sample sizes
	BIC    float64
	LogLik float64
}

// CalculateIC calculates all information criteria.
// logLik is the log-likelihood, nObs is the number of observations,
// nParams is the number of estimated parameters.
func CalculateIC(logLik float64, nObs int, nParams int) InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	bic := -2*logLik + k*math.Log(n)

	aicc := math.Inf(1)
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	}

	return InformationCriteria{
		AIC:    aic,
		AICc:   aicc,
		BIC:    bic,
		LogLik: logLik,
	}
}

// GaussianLogLik is the log-likelihood of n residuals with total squared
// error sse under i.i.d. normal errors at their maximum likelihood variance.
func GaussianLogLik(sse float64, n int) float64 {
	if n == 0 || sse <= 0 {
		return math.Inf(1)
	}
	nf := float64(n)
	return -nf / 2 * (math.Log(2*math.Pi*sse/nf) + 1)
}
