package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/sartorproj/plotcast/forecast"
)

// Kind is the chart type of the base trace.
type Kind int

const (
	Line Kind = iota
	Bar
	Scatter
)

// Kinds lists the supported chart types.
var Kinds = []Kind{Line, Bar, Scatter}

// ParseKind maps "line", "bar" or "scatter" onto a Kind, ignoring case.
// Errors wrap forecast.ErrInvalidRequest.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line":
		return Line, nil
	case "bar":
		return Bar, nil
	case "scatter":
		return Scatter, nil
	}
	return Line, fmt.Errorf("%w: unknown plot type %q", forecast.ErrInvalidRequest, s)
}

func (k Kind) String() string {
	switch k {
	case Line:
		return "Line"
	case Bar:
		return "Bar"
	case Scatter:
		return "Scatter"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < Line || k > Scatter {
		return nil, fmt.Errorf("invalid chart kind %d", int(k))
	}
	return []byte(strings.ToLower(k.String())), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// TraceKind is how a trace is drawn.
type TraceKind string

const (
	TraceLine    TraceKind = "line"
	TraceBar     TraceKind = "bar"
	TraceScatter TraceKind = "scatter"
	TraceBand    TraceKind = "band" // filled area between Lower and Upper
)

// Trace is one drawable series.
type Trace struct {
	Name    string      `json:"name"`
	Kind    TraceKind   `json:"kind"`
	X       []time.Time `json:"x"`
	Y       []float64   `json:"y,omitempty"`
	Lower   []float64   `json:"lower,omitempty"`
	Upper   []float64   `json:"upper,omitempty"`
	Color   string      `json:"color,omitempty"`
	Dash    string      `json:"dash,omitempty"`
	Markers bool        `json:"markers,omitempty"`
	Opacity float64     `json:"opacity,omitempty"`
}

// PlotSpec is a complete chart description.
type PlotSpec struct {
	Title  string  `json:"title"`
	XLabel string  `json:"x_label"`
	YLabel string  `json:"y_label"`
	Traces []Trace `json:"traces"`
}

// Base returns the data trace.
func (p *PlotSpec) Base() *Trace {
	if len(p.Traces) == 0 {
		return nil
	}
	return &p.Traces[0]
}

// Overlay returns the forecast line, or nil.
func (p *PlotSpec) Overlay() *Trace {
	return p.find(func(t *Trace) bool { return t.Kind == TraceLine && t.Dash != "" })
}

// Band returns the interval trace, or nil.
func (p *PlotSpec) Band() *Trace {
	return p.find(func(t *Trace) bool { return t.Kind == TraceBand })
}

func (p *PlotSpec) find(match func(*Trace) bool) *Trace {
	for i := 1; i < len(p.Traces); i++ {
		if match(&p.Traces[i]) {
			return &p.Traces[i]
		}
	}
	return nil
}
