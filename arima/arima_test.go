package arima

import (
	"errors"
	"math"
	"testing"

	"github.com/sartorproj/plotcast/timeseries"
)

func TestNewARIMA(t *testing.T) {
	model := New(2, 1, 2)

	if model.Order.P != 2 || model.Order.D != 1 || model.Order.Q != 2 {
		t.Errorf("Unexpected order %+v", model.Order)
	}
	if model.Order.String() != "ARIMA(2,1,2)" {
		t.Errorf("Unexpected order string %q", model.Order.String())
	}
}

func TestARIMAFitAR1(t *testing.T) {
	// Generate AR(1) data
	n := 200
	phi := 0.7
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		innovation := math.Sin(float64(i*i)*7.31) * 2
		values[i] = phi*(values[i-1]-100) + 100 + innovation
	}

	model := New(1, 0, 0)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit AR(1) model: %v", err)
	}

	t.Logf("True AR coeff: %f, Estimated: %f", phi, model.ARCoeffs[0])

	if math.Abs(model.ARCoeffs[0]-phi) > 0.2 {
		t.Errorf("AR coefficient estimate is off: true=%f, est=%f", phi, model.ARCoeffs[0])
	}
	if math.Abs(model.Intercept-100) > 2 {
		t.Errorf("Intercept should be near the process mean, got %f", model.Intercept)
	}
}

func TestARIMALinearTrend(t *testing.T) {
	// value = day index over 20 days: the differenced series is constant.
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i)
	}

	model := New(2, 1, 2)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	forecasts, err := model.Predict(7)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	if len(forecasts) != 7 {
		t.Fatalf("Expected 7 forecasts, got %d", len(forecasts))
	}
	for i, f := range forecasts {
		want := float64(20 + i)
		if math.Abs(f-want) > 1e-6 {
			t.Errorf("Forecast %d: expected %f, got %f", i, want, f)
		}
	}
}

func TestARIMAPredictNoisyTrend(t *testing.T) {
	n := 100
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + float64(i)/10 + float64(i%7-3)/2
	}

	model := New(2, 1, 2)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	forecasts, err := model.Predict(30)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}

	lastValue := values[n-1]
	for i, f := range forecasts {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("Forecast %d is NaN or Inf", i)
		}
		if math.Abs(f-lastValue) > 20 {
			t.Errorf("Forecast %d drifted too far: %f (last value: %f)", i, f, lastValue)
		}
	}
}

func TestARIMADeterministic(t *testing.T) {
	n := 80
	values := make([]float64, n)
	for i := range values {
		values[i] = 50 + 5*math.Sin(float64(i)/3) + float64(i%5)
	}
	series := timeseries.New(values)

	first := New(2, 1, 2)
	second := New(2, 1, 2)
	if err := first.Fit(series); err != nil {
		t.Fatal(err)
	}
	if err := second.Fit(series); err != nil {
		t.Fatal(err)
	}

	a, _ := first.Predict(14)
	b, _ := second.Predict(14)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Forecast %d differs between runs: %v != %v", i, a[i], b[i])
		}
	}
}

func TestARIMASummary(t *testing.T) {
	n := 100
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 100 + float64(i%7-3)/2
	}

	model := New(1, 0, 1)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	summary := model.Summary()
	if summary == nil {
		t.Fatal("Summary should not be nil")
	}

	if summary.NObs != n {
		t.Errorf("Expected NObs=%d, got %d", n, summary.NObs)
	}

	t.Logf("Summary - AIC: %f, BIC: %f, LogLik: %f", summary.AIC, summary.BIC, summary.LogLik)
	if summary.LjungBox != nil {
		t.Logf("Ljung-Box Q: %f, P-Value: %f", summary.LjungBox.Statistic, summary.LjungBox.PValue)
	}
}

func TestARIMAInsufficientData(t *testing.T) {
	model := New(2, 1, 2)

	err := model.Fit(timeseries.New([]float64{1, 2, 3}))
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("Expected ErrTooShort, got %v", err)
	}
}

func TestARIMAPredictBeforeFit(t *testing.T) {
	if _, err := New(1, 1, 0).Predict(3); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted, got %v", err)
	}
}

func TestARIMAWhiteNoise(t *testing.T) {
	n := 200
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = float64(i%7-3) / 3
	}

	series := timeseries.New(values)
	model := New(0, 0, 0)

	if err := model.Fit(series); err != nil {
		t.Fatalf("Failed to fit white noise: %v", err)
	}

	if math.Abs(model.Intercept-series.Mean()) > 1e-12 {
		t.Errorf("Intercept should equal the mean: got %f, expected %f", model.Intercept, series.Mean())
	}
}

func TestARIMAMultipleOrders(t *testing.T) {
	tests := []struct {
		name    string
		p, d, q int
	}{
		{"AR1", 1, 0, 0},
		{"AR2", 2, 0, 0},
		{"MA1", 0, 0, 1},
		{"ARMA11", 1, 0, 1},
		{"ARIMA110", 1, 1, 0},
		{"ARIMA011", 0, 1, 1},
		{"ARIMA111", 1, 1, 1},
		{"ARIMA212", 2, 1, 2},
		{"ARIMA021", 0, 2, 1},
	}

	n := 150
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = 0.6*(values[i-1]-100) + 100 + float64(i%7-3)/3
	}
	series := timeseries.New(values)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := New(tt.p, tt.d, tt.q)
			if err := model.Fit(series); err != nil {
				t.Fatalf("Model %s failed to fit: %v", tt.name, err)
			}

			forecasts, err := model.Predict(3)
			if err != nil {
				t.Fatalf("Prediction failed: %v", err)
			}
			if len(forecasts) != 3 {
				t.Errorf("Expected 3 forecasts, got %d", len(forecasts))
			}

			t.Logf("%s - AIC: %.2f, BIC: %.2f, Forecasts: %v", tt.name, model.AIC, model.BIC, forecasts)
		})
	}
}

func TestConstrainStationary(t *testing.T) {
	for _, x := range [][]float64{{0.3, -2}, {5, 5}, {-4, 3}, {0, 0}} {
		phi := Constrain(x)
		// AR(2) stationarity triangle.
		if !(phi[0]+phi[1] < 1 && phi[1]-phi[0] < 1 && math.Abs(phi[1]) < 1) {
			t.Errorf("Constrain(%v) = %v is not stationary", x, phi)
		}
	}

	if phi := Constrain([]float64{math.Atanh(0.4)}); math.Abs(phi[0]-0.4) > 1e-12 {
		t.Errorf("Expected AR(1) coefficient 0.4, got %f", phi[0])
	}
}

func TestDifferenceIntegrate(t *testing.T) {
	values := []float64{3, 5, 4, 8, 13, 12, 15, 20, 22, 21, 25, 30, 31, 29, 35}
	lags := []int{1, 4}

	levels, w := Difference(values, lags)
	if len(w) != len(values)-5 {
		t.Fatalf("Expected %d differenced values, got %d", len(values)-5, len(w))
	}

	// Integrating the next differenced values must reproduce the series
	// continuation that produced them.
	extended := append(append([]float64{}, values...), 40, 38, 45)
	_, wExt := Difference(extended, lags)
	got := Integrate(levels, lags, wExt[len(w):])

	for i, want := range []float64{40, 38, 45} {
		if math.Abs(got[i]-want) > 1e-9 {
			t.Errorf("Integrated value %d: expected %f, got %f", i, want, got[i])
		}
	}
}

func TestResidualsAndForecastRecursion(t *testing.T) {
	f := ARMA{AR: []float64{0.5}, MA: []float64{0.25}}
	z := []float64{1, 2, 0.5}

	resid := f.Residuals(z, 1)
	// e1 = 2 - 0.5*1 - 0.25*0 = 1.5; e2 = 0.5 - 0.5*2 - 0.25*1.5 = -0.875
	if resid[0] != 0 || math.Abs(resid[1]-1.5) > 1e-12 || math.Abs(resid[2]+0.875) > 1e-12 {
		t.Fatalf("Unexpected residuals %v", resid)
	}

	fc := f.Forecast(z, resid, 2)
	// z3 = 0.5*0.5 + 0.25*(-0.875); z4 = 0.5*z3
	z3 := 0.25 - 0.21875
	if math.Abs(fc[0]-z3) > 1e-12 || math.Abs(fc[1]-0.5*z3) > 1e-12 {
		t.Errorf("Unexpected forecast %v", fc)
	}
}

func TestMinimizeConverges(t *testing.T) {
	bowl := func(x []float64) float64 {
		return (x[0]-1)*(x[0]-1) + 2*(x[1]+0.5)*(x[1]+0.5)
	}

	x, err := Minimize(bowl, []float64{0, 0})
	if err != nil {
		t.Fatalf("Expected convergence, got %v", err)
	}
	if math.Abs(x[0]-1) > 1e-3 || math.Abs(x[1]+0.5) > 1e-3 {
		t.Errorf("Expected minimum near (1, -0.5), got %v", x)
	}
}

func TestMinimizeIterationCap(t *testing.T) {
	// Every evaluation is better than the last, so no convergence criterion
	// can fire before the caps do.
	calls := 0
	drifting := func(x []float64) float64 {
		calls++
		return -float64(calls)
	}

	if _, err := Minimize(drifting, []float64{0, 0}); !errors.Is(err, ErrNotConverged) {
		t.Errorf("Expected ErrNotConverged, got %v", err)
	}
	if calls > MaxEvaluations+10 {
		t.Errorf("Expected at most %d evaluations, got %d", MaxEvaluations, calls)
	}
}

func TestMinimizeUnbounded(t *testing.T) {
	unbounded := func(x []float64) float64 {
		return -x[0]*x[0] - x[1]*x[1]
	}

	x, err := Minimize(unbounded, []float64{0.1, 0.2})
	if !errors.Is(err, ErrNotConverged) {
		t.Errorf("Expected ErrNotConverged, got x=%v err=%v", x, err)
	}
}

func TestARIMANoDriftWithTwoDifferences(t *testing.T) {
	n := 60
	values := make([]float64, n)
	for i := range values {
		values[i] = 0.05*float64(i*i) + math.Sin(float64(i*i)*7.31)
	}

	model := New(0, 2, 1)
	if err := model.Fit(timeseries.New(values)); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}
	if model.Intercept != 0 {
		t.Errorf("Expected no intercept with d=2, got %f", model.Intercept)
	}

	forecasts, err := model.Predict(5)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	for i, f := range forecasts {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("Forecast %d is not finite", i)
		}
	}
}

func TestARIMAOverflowIsNotConverged(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 1e300
		if i%2 == 1 {
			values[i] = -1e300
		}
	}

	err := New(2, 1, 2).Fit(timeseries.New(values))
	if !errors.Is(err, ErrNotConverged) {
		t.Errorf("Expected ErrNotConverged, got %v", err)
	}
}
