package reporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"challan-service/internal/models"
	"challan-service/internal/pipeline"
)

// generatePDFReport writes a landscape A4 review document
func (rg *ReportGenerator) generatePDFReport(result *pipeline.Result, writer io.Writer) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AliasNbPages("{nb}")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	drawHeader(pdf, tr, result)

	if summary := result.Summary; summary != nil {
		drawSection(pdf, "SUMMARY")
		drawTable(pdf, tr, []string{"Metric", "Value"}, [][]string{
			{"Employees", strconv.Itoa(summary.Employees)},
			{"PF gross wages", strconv.FormatInt(summary.PFGrossTotal, 10)},
			{"ESI days", strconv.FormatInt(summary.ESIDays, 10)},
			{"ESI wages", summary.ESIWages.String()},
			{"PF name mismatches", strconv.Itoa(summary.PFNameMismatches)},
			{"ESI name mismatches", strconv.Itoa(summary.ESINameMismatches)},
		})

		if len(summary.PFTotals) > 0 {
			drawSection(pdf, "PF COLUMN TOTALS")
			rows := make([][]string, 0, len(summary.PFTotals))
			for _, total := range summary.PFTotals {
				rows = append(rows, []string{total.Column, strconv.FormatInt(total.Total, 10)})
			}
			drawTable(pdf, tr, []string{"Column", "Total"}, rows)
		}
	}

	drawSection(pdf, "PF VERIFICATION")
	drawTable(pdf, tr, models.PFVerificationColumns, verificationFields(rg.verificationRows(pfView(result))))

	drawSection(pdf, "ESI VERIFICATION")
	drawTable(pdf, tr, models.ESIVerificationColumns, verificationFields(rg.verificationRows(esiView(result))))

	if result.Summary != nil && len(result.Summary.ZeroEPS) > 0 {
		drawSection(pdf, "MEMBERS WITH ZERO EPS WAGES")
		rows := make([][]string, 0, len(result.Summary.ZeroEPS))
		for _, member := range result.Summary.ZeroEPS {
			rows = append(rows, []string{strconv.Itoa(member.Row), member.UAN, member.Name})
		}
		drawTable(pdf, tr, []string{"Row", "UAN", "Member Name"}, rows)
	}

	if rg.config.IncludeRecords && result.PF != nil {
		pdf.AddPage()
		drawSection(pdf, "PF CHALLAN")
		rows := make([][]string, 0, len(result.PF.Records))
		for _, record := range result.PF.Records {
			rows = append(rows, record.Fields())
		}
		pdf.SetFont("Helvetica", "", 6.5)
		drawTable(pdf, tr, models.PFColumns, rows)
	}

	return pdf.Output(writer)
}

func drawHeader(pdf *fpdf.Fpdf, tr func(string) string, result *pipeline.Result) {
	pageW, _ := pdf.GetPageSize()
	marginL, marginT, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, "PF / ESI CHALLAN REVIEW", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetXY(marginL, marginT+13)
	pdf.SetFont("Helvetica", "", 9)
	line := fmt.Sprintf("Company: %s   Period: %s   Ages measured on: %s",
		result.Company, result.Period, result.Cutoff.Format("02-Jan-2006"))
	pdf.CellFormat(contentW, 5.5, tr(line), "", 1, "L", false, 0, "")
	if result.RunID != "" {
		pdf.CellFormat(contentW, 5.5, "Run: "+result.RunID, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func drawSection(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.CellFormat(0, 6, title, "1", 1, "L", true, 0, "")
}

// drawTable lays columns out with equal widths across the page. The current
// font size is kept for the body; headers are bold.
func drawTable(pdf *fpdf.Fpdf, tr func(string) string, columns []string, rows [][]string) {
	pageW, _ := pdf.GetPageSize()
	marginL, _, marginR, _ := pdf.GetMargins()
	colW := (pageW - marginL - marginR) / float64(len(columns))
	size, _ := pdf.GetFontSize()
	if size > 8 {
		size = 8
	}

	pdf.SetFont("Helvetica", "B", size)
	for i, column := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(colW, 6, tr(fit(pdf, column, colW)), "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", size)
	if len(rows) == 0 {
		pdf.CellFormat(0, 6, "No rows to show", "1", 1, "L", false, 0, "")
		return
	}
	for _, row := range rows {
		for i := range columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			ln := 0
			if i == len(columns)-1 {
				ln = 1
			}
			pdf.CellFormat(colW, 5.5, tr(fit(pdf, value, colW)), "1", ln, "L", false, 0, "")
		}
	}
}

// fit shortens value until it fits in width
func fit(pdf *fpdf.Fpdf, value string, width float64) string {
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes))+2 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

func verificationFields(view []models.ReconciliationRecord) [][]string {
	rows := make([][]string, 0, len(view))
	for _, record := range view {
		rows = append(rows, record.Fields())
	}
	return rows
}
