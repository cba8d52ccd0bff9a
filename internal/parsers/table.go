package parsers

import (
	"fmt"
	"strings"

	"challan-service/pkg/errors"
)

// FirstDataRow is the row number reported for the first data line of any table
const FirstDataRow = 2

// Table is a header-addressed grid of cell strings read from one sheet
type Table struct {
	Source    string
	Sheet     string
	HeaderRow int
	Headers   []string
	Rows      [][]string
	index     map[string]int
}

// NewTable builds a table and indexes its headers. Headers are kept exactly as
// written and matched exactly, so "Day " and "Day" are different columns.
func NewTable(source, sheet string, headerRow int, headers []string, rows [][]string) *Table {
	t := &Table{
		Source:    source,
		Sheet:     sheet,
		HeaderRow: headerRow,
		Headers:   headers,
		Rows:      rows,
	}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Headers))
	for i, header := range t.Headers {
		if _, exists := t.index[header]; !exists {
			t.index[header] = i
		}
	}
}

// Name describes the table for messages
func (t *Table) Name() string {
	if t.Sheet != "" {
		return fmt.Sprintf("%s [%s]", t.Source, t.Sheet)
	}
	return t.Source
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the index of a column by name, or -1 if not found
func (t *Table) ColumnIndex(name string) int {
	if index, exists := t.index[name]; exists {
		return index
	}
	return -1
}

// Has reports whether the table has the named column
func (t *Table) Has(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// RequireColumns returns a SchemaError naming every absent column
func (t *Table) RequireColumns(columns ...string) error {
	var missing []string
	for _, column := range columns {
		if column == "" {
			continue
		}
		if !t.Has(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return errors.SchemaError(t.Name(), missing)
	}
	return nil
}

// Value returns the trimmed cell at row i in the named column, or "" when the
// column is absent or the row is short
func (t *Table) Value(i int, column string) string {
	index := t.ColumnIndex(column)
	if index < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	row := t.Rows[i]
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// RowNumber returns the display number of data row i. Numbering starts at 2
// whatever row the header sits on.
func (t *Table) RowNumber(i int) int {
	return i + FirstDataRow
}

// DropLast removes the final data row, used for sheets that end in a totals line
func (t *Table) DropLast() {
	if len(t.Rows) > 0 {
		t.Rows = t.Rows[:len(t.Rows)-1]
	}
}

// fromGrid turns raw sheet rows into a Table using the header row and
// trailing-row options
func fromGrid(source, sheet string, grid [][]string, opts SheetOptions) (*Table, error) {
	headerRow := opts.HeaderRow
	if headerRow <= 0 {
		headerRow = 1
	}
	if len(grid) < headerRow {
		return nil, errors.ParseError(
			errors.CodeInvalidFormat,
			source,
			headerRow,
			"header",
			"",
			fmt.Errorf("sheet has %d rows, header expected on row %d", len(grid), headerRow),
		)
	}

	headers := grid[headerRow-1]
	rows := make([][]string, 0, len(grid)-headerRow)
	for _, row := range grid[headerRow:] {
		if isEmptyRecord(row) {
			continue
		}
		rows = append(rows, row)
	}

	t := NewTable(source, sheet, headerRow, headers, rows)
	if opts.DropTotalRow {
		t.DropLast()
	}
	return t, nil
}

// isEmptyRecord checks if all fields in a record are empty or whitespace
func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
