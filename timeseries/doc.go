// Package timeseries turns uploaded tables into dense daily series.
//
// A Table is read from CSV or XLSX, its date and value columns are pulled
// out as raw Rows, and Prepare normalizes them:
//
//	table, err := timeseries.LoadTableFile("sales.xlsx")
//	rows, err := table.Rows("Date", "Revenue")
//	series, err := timeseries.Prepare(rows)
//
// Unparseable dates and null values are dropped, the last row per calendar
// day wins, and internal gaps are filled by linear interpolation. A series
// shorter than MinObservations comes back together with an
// *InsufficientDataError; it can still be plotted but not forecast.
//
// Prepared series hold one value per day at midnight UTC, so End and
// FutureDates give the forecast calendar directly.
package timeseries
