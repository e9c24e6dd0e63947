package forecast

import (
	"fmt"
	"strings"
)

// Model selects a forecasting strategy.
type Model int

const (
	None Model = iota
	Autoregressive
	SeasonalAutoregressive
	AdditiveDecomposition
)

// Models lists every model that produces a forecast.
var Models = []Model{Autoregressive, SeasonalAutoregressive, AdditiveDecomposition}

var modelNames = map[string]Model{
	"":                        None,
	"none":                    None,
	"no":                      None,
	"arima":                   Autoregressive,
	"autoregressive":          Autoregressive,
	"sarima":                  SeasonalAutoregressive,
	"seasonal_autoregressive": SeasonalAutoregressive,
	"seasonalautoregressive":  SeasonalAutoregressive,
	"additive":                AdditiveDecomposition,
	"additive_decomposition":  AdditiveDecomposition,
	"additivedecomposition":   AdditiveDecomposition,
	"prophet":                 AdditiveDecomposition,
}

// ParseModel maps a user-supplied model name onto a Model. Matching ignores
// case and surrounding space; "prophet" is accepted for the additive model.
func ParseModel(s string) (Model, error) {
	m, ok := modelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return None, fmt.Errorf("%w: unknown model %q", ErrInvalidRequest, s)
	}
	return m, nil
}

// String returns the display name used in chart titles and legends.
func (m Model) String() string {
	switch m {
	case None:
		return "None"
	case Autoregressive:
		return "ARIMA"
	case SeasonalAutoregressive:
		return "SARIMA"
	case AdditiveDecomposition:
		return "Additive"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// ID returns the lowercase identifier used on the wire and in metrics.
func (m Model) ID() string {
	switch m {
	case None:
		return "none"
	case Autoregressive:
		return "arima"
	case SeasonalAutoregressive:
		return "sarima"
	case AdditiveDecomposition:
		return "additive"
	}
	return "unknown"
}

// Description is a one-line summary for model listings.
func (m Model) Description() string {
	switch m {
	case Autoregressive:
		return "ARIMA(2,1,2), point forecast"
	case SeasonalAutoregressive:
		return "SARIMA(1,1,1)x(1,1,1,12), point forecast"
	case AdditiveDecomposition:
		return "trend + weekly/yearly seasonality, in-sample fit and 80% interval"
	}
	return "plot the data without a forecast"
}

// Valid reports whether m is one of the declared models.
func (m Model) Valid() bool {
	return m >= None && m <= AdditiveDecomposition
}

func (m Model) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid model %d", int(m))
	}
	return []byte(m.ID()), nil
}

func (m *Model) UnmarshalText(text []byte) error {
	parsed, err := ParseModel(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
