// Package stats holds the small set of statistics the model fits share:
// sample autocorrelation for optimizer starting points, the Ljung-Box
// residual test reported by model summaries, and Gaussian information
// criteria.
//
//	r1 := stats.ACFAt(z, 1)
//	lb := stats.LjungBox(resid, 24, 4)
//	ic := stats.CalculateIC(stats.GaussianLogLik(sse, n), n, k)
package stats
