package parsers

import (
	"fmt"
	"strings"
)

// ParseConfig holds configuration for delimited text parsing
type ParseConfig struct {
	Delimiter        rune
	Comment          rune
	TrimLeadingSpace bool
	ValidateEncoding bool
	MaxFieldSize     int
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Delimiter:        ',',
		Comment:          0,
		TrimLeadingSpace: true,
		ValidateEncoding: true,
		MaxFieldSize:     64 * 1024,
	}
}

// Validate checks the configuration
func (c *ParseConfig) Validate() error {
	if c.Delimiter == 0 || c.Delimiter == '\n' || c.Delimiter == '\r' || c.Delimiter == '"' {
		return fmt.Errorf("invalid delimiter %q", c.Delimiter)
	}
	if c.Comment == c.Delimiter {
		return fmt.Errorf("comment character cannot equal the delimiter")
	}
	if c.MaxFieldSize < 0 {
		return fmt.Errorf("max field size cannot be negative")
	}
	return nil
}

// SheetOptions selects the sheet and layout to read from a workbook
type SheetOptions struct {
	// Sheet is the sheet name; empty selects the first sheet
	Sheet string `json:"sheet,omitempty"`
	// HeaderRow is the 1-based row holding column names
	HeaderRow int `json:"header_row"`
	// DropTotalRow removes the last data row (a totals line)
	DropTotalRow bool `json:"drop_total_row,omitempty"`
}

// Validate checks the options
func (o SheetOptions) Validate() error {
	if o.HeaderRow < 1 {
		return fmt.Errorf("header row must be at least 1, got %d", o.HeaderRow)
	}
	if o.Sheet != strings.TrimSpace(o.Sheet) {
		return fmt.Errorf("sheet name %q has surrounding whitespace", o.Sheet)
	}
	return nil
}

// FirstSheet reads the first sheet with its header on row 1
var FirstSheet = SheetOptions{HeaderRow: 1}
