package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"challan-service/internal/models"
)

// dateLayouts are tried after any profile-specific layout
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-01-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
}

// ParseDate parses a date cell. Blank cells return nil. Numeric cells are
// treated as spreadsheet serial dates.
func ParseDate(raw string, preferred ...string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if models.IsBlank(value) {
		return nil, nil
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil, fmt.Errorf("invalid serial date %q: %w", value, err)
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &t, nil
	}

	layouts := append(append([]string{}, preferred...), dateLayouts...)
	for _, layout := range layouts {
		if layout == "" {
			continue
		}
		if t, err := time.Parse(layout, value); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unrecognized date %q", value)
}
