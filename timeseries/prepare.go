package timeseries

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/interp"
)

// MinObservations is the smallest dense series a forecast is attempted on.
const MinObservations = 10

// Row holds the raw cells of the date and value columns of one table row.
type Row struct {
	Date  string
	Value string
}

// PrepareStats describes what Prepare discarded or synthesized.
type PrepareStats struct {
	Rows       int               // rows supplied
	BadDates   []*DateParseError // rows dropped for an unparseable date
	NullValues int               // rows dropped for a missing or non-numeric value
	Duplicates int               // rows superseded by a later row on the same day
	FilledDays int               // days synthesized by interpolation
	Observed   int               // distinct observed days
	Dense      int               // length of the resulting series
}

// Prepare normalizes raw rows into a dense daily series.
//
// Rows whose date cannot be parsed or whose value is null are dropped. The
// remaining observations are sorted by date, collapsed to one value per
// calendar day (the last row in input order wins) and resampled onto a
// gap-free daily grid, filling internal gaps by linear interpolation between
// the nearest observed neighbours.
//
// An *EmptySeriesError is returned when nothing survives parsing. When the
// dense series is shorter than MinObservations the series is returned together
// with an *InsufficientDataError so that callers can still plot it.
func Prepare(rows []Row) (*Series, error) {
	s, _, err := PrepareWithStats(rows)
	return s, err
}

// PrepareWithStats is Prepare, additionally reporting what was dropped.
func PrepareWithStats(rows []Row) (*Series, *PrepareStats, error) {
	st := &PrepareStats{Rows: len(rows)}

	type observation struct {
		date  time.Time
		value float64
	}
	obs := make([]observation, 0, len(rows))

	for i, r := range rows {
		date, err := ParseDate(r.Date)
		if err != nil {
			st.BadDates = append(st.BadDates, &DateParseError{Row: i, Value: r.Date})
			continue
		}
		v, ok := parseValue(r.Value)
		if !ok {
			st.NullValues++
			continue
		}
		obs = append(obs, observation{date: date, value: v})
	}

	if len(obs) == 0 {
		return nil, st, &EmptySeriesError{Rows: len(rows)}
	}

	sort.SliceStable(obs, func(i, j int) bool { return obs[i].date.Before(obs[j].date) })

	// Collapse to one value per day; the stable sort keeps input order within
	// a day, so the last element of each run is the last write.
	days := make([]observation, 0, len(obs))
	for _, o := range obs {
		if n := len(days); n > 0 && days[n-1].date.Equal(o.date) {
			days[n-1] = o
			st.Duplicates++
			continue
		}
		days = append(days, o)
	}
	st.Observed = len(days)

	first, last := days[0].date, days[len(days)-1].date
	n := int(last.Sub(first)/Day) + 1

	xs := make([]float64, len(days))
	ys := make([]float64, len(days))
	for i, d := range days {
		xs[i] = float64(d.date.Sub(first) / Day)
		ys[i] = d.value
	}

	values := make([]float64, n)
	if len(days) == 1 {
		values[0] = ys[0]
	} else {
		var pl interp.PiecewiseLinear
		if err := pl.Fit(xs, ys); err != nil {
			return nil, st, err
		}
		for i := range values {
			values[i] = pl.Predict(float64(i))
		}
	}
	st.FilledDays = n - len(days)
	st.Dense = n

	series := NewDaily(first, values)
	if n < MinObservations {
		return series, st, &InsufficientDataError{Have: n, Need: MinObservations}
	}
	return series, st, nil
}

// thousands matches a number whose commas group the integer part by three,
// such as 1,234,567.89.
var thousands = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// parseValue parses a numeric cell, treating blanks and the usual missing
// value markers as null. Commas are accepted only as thousands separators;
// any other comma, such as a decimal comma, makes the cell null.
func parseValue(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.Trim(raw, "\""))
	switch strings.ToLower(s) {
	case "", "na", "n/a", "nan", "null", "none", "-":
		return 0, false
	}
	if strings.Contains(s, ",") {
		if !thousands.MatchString(s) {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
