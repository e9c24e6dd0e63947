package chart

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"
)

// CSVHeader is the column layout written by WriteCSV.
var CSVHeader = []string{"Date", "Actual", "Forecast", "Lower", "Upper"}

type csvRow struct {
	actual, forecast, lower, upper string
}

// WriteCSV writes the plot's data merged by date. Cells a trace does not
// cover are left empty.
func WriteCSV(w io.Writer, spec *PlotSpec) error {
	rows := make(map[string]*csvRow)
	row := func(d time.Time) *csvRow {
		key := d.Format(time.DateOnly)
		r, ok := rows[key]
		if !ok {
			r = &csvRow{}
			rows[key] = r
		}
		return r
	}

	if base := spec.Base(); base != nil {
		for i, d := range base.X {
			row(d).actual = formatValue(base.Y[i])
		}
	}
	if overlay := spec.Overlay(); overlay != nil {
		for i, d := range overlay.X {
			row(d).forecast = formatValue(overlay.Y[i])
		}
	}
	if band := spec.Band(); band != nil {
		for i, d := range band.X {
			r := row(d)
			r.lower, r.upper = formatValue(band.Lower[i]), formatValue(band.Upper[i])
		}
	}

	dates := make([]string, 0, len(rows))
	for d := range rows {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, d := range dates {
		r := rows[d]
		if err := cw.Write([]string{d, r.actual, r.forecast, r.lower, r.upper}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
