package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/sartorproj/plotcast"
	"github.com/sartorproj/plotcast/chart"
	"github.com/sartorproj/plotcast/forecast"
	"github.com/sartorproj/plotcast/timeseries"
)

// multipart memory threshold; larger parts spill to disk.
const formMemory = 8 << 20

// ForecastResponse is the body of a successful /api/v1/forecast call.
type ForecastResponse struct {
	Plot        *chart.PlotSpec       `json:"plot"`
	Warnings    []string              `json:"warnings"`
	Errors      []string              `json:"errors"`
	Diagnostics *forecast.Diagnostics `json:"diagnostics,omitempty"`
	RequestID   string                `json:"request_id"`
}

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ModelsResponse lists the models and plot types a client may request.
type ModelsResponse struct {
	Models         []ModelInfo `json:"models"`
	PlotTypes      []string    `json:"plot_types"`
	MinHorizon     int         `json:"min_horizon"`
	MaxHorizon     int         `json:"max_horizon"`
	DefaultHorizon int         `json:"default_horizon"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// statusError carries the HTTP status a request failure maps to.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }

func (e *statusError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &statusError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	report, err := s.plot(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ForecastResponse{
		Plot:        report.Spec,
		Warnings:    report.Warnings,
		Errors:      report.Errors,
		Diagnostics: report.Diagnostics,
		RequestID:   RequestID(r.Context()),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	report, err := s.plot(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="forecast.csv"`)
	if len(report.Warnings) > 0 || len(report.Errors) > 0 {
		w.Header().Set("X-Plotcast-Notes", strings.Join(slices.Concat(report.Warnings, report.Errors), " "))
	}
	if err := chart.WriteCSV(w, report.Spec); err != nil {
		s.logger.Printf("[ERROR] writing export id=%s: %v", RequestID(r.Context()), err)
	}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	resp := ModelsResponse{
		MinHorizon:     forecast.MinHorizon,
		MaxHorizon:     forecast.MaxHorizon,
		DefaultHorizon: s.cfg.Forecast.DefaultHorizon,
	}
	for _, m := range append([]forecast.Model{forecast.None}, forecast.Models...) {
		resp.Models = append(resp.Models, ModelInfo{ID: m.ID(), Name: m.String(), Description: m.Description()})
	}
	for _, k := range chart.Kinds {
		resp.PlotTypes = append(resp.PlotTypes, strings.ToLower(k.String()))
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// plot reads the multipart upload and runs the pipeline on it.
func (s *Server) plot(w http.ResponseWriter, r *http.Request) (*plotcast.Report, error) {
	limit := s.cfg.Server.MaxUploadBytes
	if r.ContentLength > limit {
		return nil, &statusError{status: http.StatusRequestEntityTooLarge,
			err: fmt.Errorf("upload exceeds %d bytes", limit)}
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &statusError{status: http.StatusRequestEntityTooLarge,
				err: fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)}
		}
		return nil, badRequest("invalid multipart form: %v", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, badRequest("file is required")
	}
	defer file.Close()

	table, err := timeseries.LoadTable(file, header.Filename)
	if err != nil {
		if errors.Is(err, timeseries.ErrUnsupportedFormat) {
			return nil, &statusError{status: http.StatusUnsupportedMediaType, err: err}
		}
		return nil, badRequest("reading %s: %v", header.Filename, err)
	}

	opts, err := s.options(r, table)
	if err != nil {
		return nil, err
	}

	rows, err := table.Rows(opts.XLabel, opts.YLabel)
	if err != nil {
		return nil, badRequest("%v", err)
	}

	return s.pipeline.Plot(r.Context(), rows, opts)
}

// options reads the form fields, falling back to the configured defaults
// and the table's guessed columns.
func (s *Server) options(r *http.Request, table *timeseries.Table) (plotcast.Options, error) {
	var opts plotcast.Options

	dateCol, valueCol := table.DefaultColumns()
	opts.XLabel = formValue(r, "x_column", dateCol)
	opts.YLabel = formValue(r, "y_column", valueCol)

	kind, err := chart.ParseKind(r.FormValue("plot_type"))
	if err != nil {
		return opts, err
	}
	opts.Kind = kind

	model, err := forecast.ParseModel(formValue(r, "forecast_model", s.cfg.Forecast.DefaultModel))
	if err != nil {
		return opts, err
	}
	opts.Model = model

	opts.Horizon = s.cfg.Forecast.DefaultHorizon
	if raw := strings.TrimSpace(r.FormValue("forecast_steps")); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: forecast_steps %q is not an integer", forecast.ErrInvalidRequest, raw)
		}
		opts.Horizon = h
	}
	return opts, nil
}

func formValue(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

// writeError maps err onto a status code and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var se *statusError
	var empty *timeseries.EmptySeriesError
	var render *chart.RenderInputError
	switch {
	case errors.As(err, &se):
		status = se.status
	case errors.Is(err, forecast.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.As(err, &empty):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &render):
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		s.logger.Printf("[ERROR] %s %s id=%s: %v", r.Method, r.URL.Path, RequestID(r.Context()), err)
	}
	writeJSONError(w, r, status, err.Error())
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
