package timeseries

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Day is the spacing of a dense daily series.
const Day = 24 * time.Hour

// Series represents a time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
}

// New creates a daily series from values, starting at the Unix epoch.
// Use it for derived series (residuals, differences) whose dates carry no meaning.
func New(values []float64) *Series {
	return NewDaily(time.Unix(0, 0).UTC(), values)
}

// NewDaily creates a dense daily series whose first observation falls on start.
func NewDaily(start time.Time, values []float64) *Series {
	start = Truncate(start)
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = start.AddDate(0, 0, i)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// Truncate maps t onto midnight UTC of its calendar date.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Start returns the first timestamp, or the zero time for an empty series.
func (s *Series) Start() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[0]
}

// End returns the last timestamp, or the zero time for an empty series.
func (s *Series) End() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[len(s.Timestamps)-1]
}

// FutureDates returns the n calendar days that follow the last observation.
func (s *Series) FutureDates(n int) []time.Time {
	end := s.End()
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = end.AddDate(0, 0, i+1)
	}
	return dates
}

// IsDense reports whether the series holds exactly one finite value per
// calendar day with no missing days.
func (s *Series) IsDense() bool {
	if len(s.Timestamps) != len(s.Values) {
		return false
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if i > 0 && !s.Timestamps[i].Equal(s.Timestamps[i-1].AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

// Mean is the arithmetic mean of the values, 0 for an empty series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}
