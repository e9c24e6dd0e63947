package timeseries

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order. Month-first forms win over day-first ones,
// which matches what spreadsheet exports in the US locale produce.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"01-02-06",
	"1-2-06",
	"1/2/06",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
	"2006",
}

// Excel serial dates outside this window are treated as plain numbers.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465 // 9999-12-31
)

// ParseDate parses a date cell into midnight UTC of its calendar date.
// Besides textual layouts it accepts Excel serial day numbers, which is what
// unformatted date cells look like after reading a workbook.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(strings.Trim(raw, "\""))
	if s == "" {
		return time.Time{}, &DateParseError{Value: raw}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Truncate(t), nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial && !strings.ContainsAny(s, "eE") {
		// Four digit integers already matched the "2006" layout above.
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return Truncate(t), nil
		}
	}

	return time.Time{}, &DateParseError{Value: raw}
}
