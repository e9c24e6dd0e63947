// Package chart composes renderer-neutral plot specifications from a series
// and an optional forecast.
//
// A PlotSpec is a list of traces: the base trace for the data, then, for
// line and scatter charts, a dashed forecast line and an optional shaded
// interval band. Bar charts never carry a forecast overlay. A PlotSpec
// serializes to JSON for browser renderers and to CSV with WriteCSV.
package chart
