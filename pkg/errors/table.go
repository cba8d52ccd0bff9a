package errors

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Offender is a single payroll row named in an error.
// Row is the spreadsheet row number, starting at 2 for the first data line.
type Offender struct {
	Row    int      `json:"row"`
	Fields []string `json:"fields"`
}

// NewOffender builds an Offender from a row number and its display fields.
func NewOffender(row int, fields ...string) Offender {
	return Offender{Row: row, Fields: fields}
}

// FormatTable renders offenders as a rounded grid with the row number as the
// first, unlabelled column.
func FormatTable(columns []string, offenders []Offender) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true
	tw.Style().Format.Header = text.FormatDefault

	header := table.Row{""}
	for _, column := range columns {
		header = append(header, column)
	}
	tw.AppendHeader(header)

	for _, offender := range offenders {
		row := table.Row{offender.Row}
		for _, field := range offender.Fields {
			row = append(row, field)
		}
		tw.AppendRow(row)
	}

	return tw.Render()
}
