package reporter

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"challan-service/internal/models"
	"challan-service/internal/pipeline"
)

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(result *pipeline.Result, writer io.Writer) error {
	fmt.Fprintf(writer, "CHALLAN REVIEW\n")
	fmt.Fprintf(writer, "Company: %s\n", result.Company)
	fmt.Fprintf(writer, "Period:  %s (ages measured on %s)\n", result.Period, result.Cutoff.Format("2006-01-02"))
	if result.RunID != "" {
		fmt.Fprintf(writer, "Run:     %s\n", result.RunID)
	}
	fmt.Fprintf(writer, "\n")

	if summary := result.Summary; summary != nil {
		fmt.Fprintf(writer, "=== SUMMARY ===\n")
		rg.printSummary(summary, writer)
		fmt.Fprintf(writer, "\n")

		if len(summary.PFTotals) > 0 {
			fmt.Fprintf(writer, "=== PF COLUMN TOTALS ===\n")
			rg.printColumnTotals(summary.PFTotals, writer)
			fmt.Fprintf(writer, "\n")
		}
	}

	fmt.Fprintf(writer, "=== PF VERIFICATION ===\n")
	rg.printVerification(models.SchemePF, pfView(result), writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== ESI VERIFICATION ===\n")
	rg.printVerification(models.SchemeESI, esiView(result), writer)
	fmt.Fprintf(writer, "\n")

	if result.Summary != nil && len(result.Summary.ZeroEPS) > 0 {
		fmt.Fprintf(writer, "=== MEMBERS WITH ZERO EPS WAGES ===\n")
		rg.printZeroEPS(result.Summary.ZeroEPS, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeRecords {
		if result.PF != nil {
			fmt.Fprintf(writer, "=== PF CHALLAN ===\n")
			rows := make([][]string, 0, len(result.PF.Records))
			for _, record := range result.PF.Records {
				rows = append(rows, record.Fields())
			}
			rg.printTable(models.PFColumns, rows, writer)
			fmt.Fprintf(writer, "\n")
		}
		if result.ESI != nil {
			fmt.Fprintf(writer, "=== ESI CHALLAN ===\n")
			rows := make([][]string, 0, len(result.ESI.Records))
			for _, record := range result.ESI.Records {
				rows = append(rows, record.Fields())
			}
			rg.printTable(esiHeaders(), rows, writer)
			fmt.Fprintf(writer, "\n")
		}
	}

	return nil
}

func (rg *ReportGenerator) newTable(writer io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(writer)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.SetAllowedRowLength(rg.config.TableMaxWidth)
	return tw
}

func (rg *ReportGenerator) printSummary(summary *pipeline.Summary, writer io.Writer) {
	tw := rg.newTable(writer)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRows([]table.Row{
		{"Employees", summary.Employees},
		{"PF gross wages", summary.PFGrossTotal},
		{"ESI days", summary.ESIDays},
		{"ESI wages", summary.ESIWages.String()},
		{"PF name mismatches", summary.PFNameMismatches},
		{"ESI name mismatches", summary.ESINameMismatches},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tw.Render()
}

func (rg *ReportGenerator) printColumnTotals(totals []pipeline.ColumnTotal, writer io.Writer) {
	tw := rg.newTable(writer)
	tw.AppendHeader(table.Row{"Column", "Total"})
	for _, total := range totals {
		tw.AppendRow(table.Row{total.Column, total.Total})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tw.Render()
}

func (rg *ReportGenerator) printVerification(scheme models.Scheme, view []models.ReconciliationRecord, writer io.Writer) {
	view = rg.verificationRows(view)
	if len(view) == 0 {
		fmt.Fprintf(writer, "No rows to show\n")
		return
	}

	rows := make([][]string, 0, len(view))
	for _, record := range view {
		rows = append(rows, record.Fields())
	}
	rg.printTable(models.VerificationColumns(scheme), rows, writer)
}

func (rg *ReportGenerator) printZeroEPS(members []pipeline.Member, writer io.Writer) {
	tw := rg.newTable(writer)
	tw.AppendHeader(table.Row{"Row", "UAN", "Member Name"})
	for _, member := range members {
		tw.AppendRow(table.Row{member.Row, member.UAN, member.Name})
	}
	tw.Render()
}

func (rg *ReportGenerator) printTable(columns []string, rows [][]string, writer io.Writer) {
	tw := rg.newTable(writer)

	header := make(table.Row, 0, len(columns))
	for _, column := range columns {
		header = append(header, column)
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, 0, len(row))
		for _, field := range row {
			r = append(r, field)
		}
		tw.AppendRow(r)
	}
	tw.Render()
}

// esiHeaders shortens the long ESIC template headings for terminal display
func esiHeaders() []string {
	return []string{"IP Number", "IP Name", "Days", "Total Monthly Wages", "Reason Code", "Last Working Day"}
}
