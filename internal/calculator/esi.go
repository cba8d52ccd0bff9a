package calculator

import (
	"strconv"

	"github.com/shopspring/decimal"

	"challan-service/internal/models"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// ESI computes one attendance record per wage record. Every value is
// rendered as text for the ESIC upload sheet.
func (c *Calculator) ESI(wages []models.WageRecord) ([]models.AttendanceRecord, error) {
	days := make([]decimal.Decimal, len(wages))
	for i, w := range wages {
		if !w.Days.Valid {
			return nil, errors.ValidationError(errors.CodeMissingField, "days", "", nil).
				WithContext("row", w.Row).
				WithContext("ip_number", w.Identifier)
		}
		days[i] = w.Days.Decimal
	}
	adjusted := SplitFractionalDays(days)

	records := make([]models.AttendanceRecord, 0, len(wages))
	for i, w := range wages {
		total := w.Wages
		if c.profile.ESIWagesFromComponents {
			total = sum(w.TotalEarnings, w.Overtime, w.NonPFEarnings)
		}

		records = append(records, models.AttendanceRecord{
			Row:        w.Row,
			IPNumber:   w.Identifier,
			IPName:     w.Name,
			Days:       strconv.FormatInt(adjusted[i].IntPart(), 10),
			TotalWages: models.FormatAmount(total),
		})
	}

	c.logger.WithFields(logger.Fields{
		"records":    len(records),
		"fractional": countFractional(days),
	}).Debug("Calculated ESI attendance")

	return records, nil
}

// SplitFractionalDays converts attendance days to whole days. Rows with a
// fractional part are taken in row order; the first half of them (count/2,
// rounded down) are rounded up and the rest rounded down. Whole values pass
// through unchanged.
func SplitFractionalDays(days []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(days))
	var fractional []int
	for i, d := range days {
		out[i] = d
		if !d.IsInteger() {
			fractional = append(fractional, i)
		}
	}

	half := len(fractional) / 2
	for n, i := range fractional {
		if n < half {
			out[i] = days[i].Ceil()
		} else {
			out[i] = days[i].Floor()
		}
	}
	return out
}

func countFractional(days []decimal.Decimal) int {
	n := 0
	for _, d := range days {
		if !d.IsInteger() {
			n++
		}
	}
	return n
}
