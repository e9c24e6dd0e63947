package chart

import (
	"fmt"
	"time"

	"github.com/sartorproj/plotcast/forecast"
	"github.com/sartorproj/plotcast/timeseries"
)

// Trace names and styling.
const (
	OriginalName   = "Original"
	BandName       = "Confidence Interval"
	BandOpacity    = 0.3
	BaseColor      = "#1f77b4"
	forecastSuffix = " Forecast"
)

var modelColors = map[forecast.Model]string{
	forecast.Autoregressive:         "red",
	forecast.SeasonalAutoregressive: "green",
	forecast.AdditiveDecomposition:  "orange",
}

// RenderInputError reports a series and forecast that do not belong
// together. It indicates a bug upstream; Compose never pads or truncates.
type RenderInputError struct {
	Reason string
}

func (e *RenderInputError) Error() string {
	return "inconsistent chart input: " + e.Reason
}

func renderErr(format string, args ...any) error {
	return &RenderInputError{Reason: fmt.Sprintf(format, args...)}
}

// Compose builds the plot for series. A non-nil fc on a Line or Scatter
// chart adds a dashed forecast line through all of its points, and a band
// when the points carry bounds. fc is ignored on Bar charts.
func Compose(series *timeseries.Series, kind Kind, fc *forecast.Result) (*PlotSpec, error) {
	if series == nil || series.Len() == 0 {
		return nil, renderErr("empty series")
	}
	if len(series.Timestamps) != len(series.Values) {
		return nil, renderErr("series has %d dates for %d values", len(series.Timestamps), len(series.Values))
	}

	base := Trace{
		Name:  OriginalName,
		X:     series.Timestamps,
		Y:     series.Values,
		Color: BaseColor,
	}
	switch kind {
	case Line:
		base.Kind, base.Markers = TraceLine, true
	case Bar:
		base.Kind = TraceBar
	case Scatter:
		base.Kind, base.Markers = TraceScatter, true
	default:
		return nil, renderErr("unknown chart kind %d", int(kind))
	}

	spec := &PlotSpec{Traces: []Trace{base}}
	if fc == nil || kind == Bar {
		return spec, nil
	}

	if err := checkPairing(series, fc); err != nil {
		return nil, err
	}

	n := len(fc.Points)
	overlay := Trace{
		Name:  fc.Model.String() + forecastSuffix,
		Kind:  TraceLine,
		X:     make([]time.Time, n),
		Y:     make([]float64, n),
		Color: modelColors[fc.Model],
		Dash:  "dash",
	}
	for i, p := range fc.Points {
		overlay.X[i], overlay.Y[i] = p.Date, p.Value
	}
	spec.Traces = append(spec.Traces, overlay)

	if fc.Bounded() {
		band := Trace{
			Name:    BandName,
			Kind:    TraceBand,
			X:       overlay.X,
			Lower:   make([]float64, n),
			Upper:   make([]float64, n),
			Color:   overlay.Color,
			Opacity: BandOpacity,
		}
		for i, p := range fc.Points {
			band.Lower[i], band.Upper[i] = *p.Lower, *p.Upper
		}
		spec.Traces = append(spec.Traces, band)
	}
	return spec, nil
}

func checkPairing(series *timeseries.Series, fc *forecast.Result) error {
	if err := fc.Validate(); err != nil {
		return &RenderInputError{Reason: err.Error()}
	}
	if fc.Bounded() {
		for i, p := range fc.Points {
			if !p.Bounded() {
				return renderErr("%s point %d has no bounds while others do", fc.Model, i)
			}
		}
	}

	future := fc.Future()
	if len(future) > 0 {
		want := series.End().AddDate(0, 0, 1)
		if !future[0].Date.Equal(want) {
			return renderErr("%s forecast starts %s, want %s", fc.Model,
				future[0].Date.Format(time.DateOnly), want.Format(time.DateOnly))
		}
	}

	if fc.InSample > 0 {
		if fc.InSample != series.Len() {
			return renderErr("%s in-sample range has %d points, series has %d", fc.Model, fc.InSample, series.Len())
		}
		if !fc.Points[0].Date.Equal(series.Start()) {
			return renderErr("%s in-sample range starts %s, series starts %s", fc.Model,
				fc.Points[0].Date.Format(time.DateOnly), series.Start().Format(time.DateOnly))
		}
	}
	return nil
}
