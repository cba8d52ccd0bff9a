package pipeline

import (
	"strconv"

	"github.com/shopspring/decimal"

	"challan-service/internal/models"
)

// ColumnTotal is the sum of one numeric PF column
type ColumnTotal struct {
	Column string `json:"column"`
	Total  int64  `json:"total"`
}

// Member identifies one PF member in the summary
type Member struct {
	Row  int    `json:"row"`
	UAN  string `json:"uan"`
	Name string `json:"name"`
}

// Summary provides the totals shown for review before approval
type Summary struct {
	Employees    int             `json:"employees"`
	PFGrossTotal int64           `json:"pf_gross_total"`
	PFTotals     []ColumnTotal   `json:"pf_totals"`
	ESIDays      int64           `json:"esi_days"`
	ESIWages     decimal.Decimal `json:"esi_wages"`

	// ZeroEPS lists members with EPF wages but zero pension wages, which
	// happens at age 58 and above or when the date of birth is unknown
	ZeroEPS []Member `json:"zero_eps"`

	PFNameMismatches  int `json:"pf_name_mismatches"`
	ESINameMismatches int `json:"esi_name_mismatches"`
}

// Summarize computes review totals. Blank values are skipped.
func Summarize(pf []models.ContributionRecord, esi []models.AttendanceRecord, pfView, esiView []models.ReconciliationRecord) *Summary {
	summary := &Summary{
		Employees: len(pf),
		ESIWages:  decimal.Zero,
	}

	totals := make(map[string]int64, len(models.PFColumns))
	for _, record := range pf {
		for column, value := range record.Numeric() {
			if value.Valid {
				totals[column] += value.Int64
			}
		}
		if record.EPFWages.Valid && record.EPFWages.Int64 > 0 && record.EPSWages.Valid && record.EPSWages.Int64 == 0 {
			summary.ZeroEPS = append(summary.ZeroEPS, Member{Row: record.Row, UAN: record.UAN, Name: record.MemberName})
		}
	}
	for _, column := range models.PFColumns {
		if total, ok := totals[column]; ok {
			summary.PFTotals = append(summary.PFTotals, ColumnTotal{Column: column, Total: total})
		}
	}
	summary.PFGrossTotal = totals["GROSS_WAGES"]

	for _, record := range esi {
		if days, err := strconv.ParseInt(record.Days, 10, 64); err == nil {
			summary.ESIDays += days
		}
		if wages, err := decimal.NewFromString(record.TotalWages); err == nil {
			summary.ESIWages = summary.ESIWages.Add(wages)
		}
	}

	summary.PFNameMismatches = countMismatches(pfView)
	summary.ESINameMismatches = countMismatches(esiView)
	return summary
}

func countMismatches(view []models.ReconciliationRecord) int {
	n := 0
	for _, record := range view {
		if !record.NameMatches() {
			n++
		}
	}
	return n
}
