package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Table is an uploaded sheet: a header row and the data rows below it.
type Table struct {
	Headers []string
	Records [][]string
}

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	Delimiter rune // Field delimiter (default: ',')
	SkipRows  int  // Number of rows to skip before the header
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		Delimiter: ',',
	}
}

// LoadTable reads a table from r, choosing the decoder by the file extension
// of name (.csv, .txt or .xlsx).
func LoadTable(r io.Reader, name string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return LoadCSVTable(r, nil)
	case ".xlsx", ".xlsm":
		return LoadXLSXTable(r, "")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// LoadTableFile opens filename and reads it with LoadTable.
func LoadTableFile(filename string) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadTable(file, filename)
}

// LoadCSVTable reads a CSV table whose first (non-skipped) row is the header.
func LoadCSVTable(r io.Reader, opts *CSVOptions) (*Table, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("skipping row %d: %w", i+1, err)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return newTable(records)
}

// LoadXLSXTable reads a worksheet of an XLSX workbook. An empty sheet name
// selects the first sheet.
func LoadXLSXTable(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return newTable(records)
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("table is empty")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(strings.Trim(h, "\""))
	}

	data := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		data = append(data, rec)
	}

	return &Table{Headers: headers, Records: data}, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Column returns the index of the named header, or -1.
func (t *Table) Column(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// DefaultColumns guesses the date and value columns the way the upload form
// preselects them: a conventionally named date column if there is one, else
// the first column; the value column is the first remaining column.
func (t *Table) DefaultColumns() (date, value string) {
	dateIdx := -1
	for i, h := range t.Headers {
		switch strings.ToLower(h) {
		case "ds", "date", "day", "time", "timestamp", "month", "year":
			if dateIdx == -1 {
				dateIdx = i
			}
		}
	}
	if dateIdx == -1 && len(t.Headers) > 0 {
		dateIdx = 0
	}
	if dateIdx >= 0 {
		date = t.Headers[dateIdx]
	}
	for i, h := range t.Headers {
		if i != dateIdx {
			value = h
			break
		}
	}
	return date, value
}

// Rows extracts the date and value cells of every record. Records too short
// to hold a column yield an empty cell, which Prepare treats as missing.
func (t *Table) Rows(dateColumn, valueColumn string) ([]Row, error) {
	dateIdx := t.Column(dateColumn)
	if dateIdx < 0 {
		return nil, fmt.Errorf("date column %q not found", dateColumn)
	}
	valueIdx := t.Column(valueColumn)
	if valueIdx < 0 {
		return nil, fmt.Errorf("value column %q not found", valueColumn)
	}

	rows := make([]Row, len(t.Records))
	for i, rec := range t.Records {
		rows[i] = Row{Date: cell(rec, dateIdx), Value: cell(rec, valueIdx)}
	}
	return rows, nil
}

func cell(rec []string, idx int) string {
	if idx < len(rec) {
		return rec[idx]
	}
	return ""
}
