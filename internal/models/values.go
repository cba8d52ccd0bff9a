package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// placeholders written by spreadsheet tools for empty cells
var nullMarkers = map[string]bool{
	"":     true,
	"nan":  true,
	"NaN":  true,
	"None": true,
	"<NA>": true,
	"NaT":  true,
}

// IsBlank reports whether a cell value stands for an empty cell
func IsBlank(raw string) bool {
	return nullMarkers[strings.TrimSpace(raw)]
}

// CanonicalIdentifier normalizes a UAN or IP number read from a cell.
// Values that a spreadsheet stored as floats ("100123456789.0",
// "1.00123456789E11") are rewritten as plain integers. Anything else is
// kept verbatim so leading zeros survive. The second result is false when
// the cell is blank.
func CanonicalIdentifier(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if IsBlank(value) {
		return "", false
	}

	if strings.ContainsAny(value, ".eE") {
		if d, err := decimal.NewFromString(value); err == nil && d.IsInteger() {
			return d.Truncate(0).String(), true
		}
	}

	return value, true
}

// IntegerIdentifier canonicalizes an identifier that must be a whole number.
// ok is false for blank cells; err is set when the value is not integral.
func IntegerIdentifier(raw string) (id string, ok bool, err error) {
	value, present := CanonicalIdentifier(raw)
	if !present {
		return "", false, nil
	}

	d, parseErr := decimal.NewFromString(value)
	if parseErr != nil {
		return "", true, parseErr
	}
	if !d.IsInteger() {
		return "", true, errNotIntegral
	}
	return d.Truncate(0).String(), true, nil
}

// ParseAmount parses a numeric cell. Blank cells yield an invalid NullDecimal.
// Thousands separators are accepted.
func ParseAmount(raw string) (decimal.NullDecimal, error) {
	value := strings.TrimSpace(raw)
	if IsBlank(value) {
		return decimal.NullDecimal{}, nil
	}

	value = strings.ReplaceAll(value, ",", "")
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// FormatAmount renders a decimal without a trailing fractional zero part
func FormatAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	if d.Decimal.IsInteger() {
		return d.Decimal.Truncate(0).String()
	}
	return d.Decimal.String()
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

type valueError string

func (e valueError) Error() string { return string(e) }

const errNotIntegral = valueError("value is not a whole number")
