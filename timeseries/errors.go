package timeseries

import "fmt"

// DateParseError reports a date cell that matched none of the known layouts.
// Prepare drops such rows; the error is only surfaced through PrepareStats.
type DateParseError struct {
	Row   int
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse date %q", e.Row, e.Value)
}

// EmptySeriesError is returned when no row survives parsing.
type EmptySeriesError struct {
	Rows int // rows supplied
}

func (e *EmptySeriesError) Error() string {
	return fmt.Sprintf("no valid rows among %d supplied", e.Rows)
}

// InsufficientDataError is returned when the dense series is shorter than
// MinObservations. The series is still usable for plotting.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough data for forecasting: have %d points, need at least %d", e.Have, e.Need)
}
