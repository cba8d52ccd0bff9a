// Package calculator applies the statutory PF and ESI formulas to wage records.
//
// PF contributions:
//
//	EPF wages  = gross, capped at the profile's wage ceiling when it has one
//	EPS wages  = EPF wages when age at cutoff < 58, otherwise 0
//	EPF contri = round(EPF wages × 0.12)
//	EPS contri = round(EPS wages × 0.0833)
//	difference = EPF contri − EPS contri
//
// Rounding is half-to-even on the float64 product, which is what the filing
// utilities produce. ESI attendance days are rounded by SplitFractionalDays.
//
// The cutoff date comes from the processing period passed to New, so results
// never depend on the wall clock.
package calculator

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"challan-service/internal/models"
	"challan-service/internal/profile"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Contribution rates. These are variables so products are evaluated in
// float64 at run time, matching the filing utilities bit for bit.
var (
	EPFRate = 0.12
	EPSRate = 0.0833
)

// Calculator computes filing rows for one company profile and period
type Calculator struct {
	profile *profile.Profile
	period  models.Period
	cutoff  time.Time
	logger  logger.Logger
}

// New creates a Calculator for the given processing period
func New(p *profile.Profile, period models.Period) *Calculator {
	return &Calculator{
		profile: p,
		period:  period,
		cutoff:  period.Cutoff(),
		logger: logger.GetGlobalLogger().WithComponent("calculator").WithFields(logger.Fields{
			"company": p.Name,
			"period":  period.String(),
		}),
	}
}

// Cutoff returns the date ages are measured on
func (c *Calculator) Cutoff() time.Time {
	return c.cutoff
}

// PF computes one contribution record per wage record
func (c *Calculator) PF(wages []models.WageRecord) ([]models.ContributionRecord, error) {
	records := make([]models.ContributionRecord, 0, len(wages))
	retired := 0

	for _, w := range wages {
		record, err := c.contribution(w)
		if err != nil {
			return nil, err
		}
		if record.EPFWages.Valid && record.EPFWages.Int64 > 0 && record.EPSWages.Valid && record.EPSWages.Int64 == 0 {
			retired++
		}
		records = append(records, record)
	}

	c.logger.WithFields(logger.Fields{
		"records":          len(records),
		"zero_eps_wages":   retired,
		"cutoff":           c.cutoff.Format("2006-01-02"),
		"epf_wage_ceiling": c.profile.EPFWageCeiling,
	}).Debug("Calculated PF contributions")

	return records, nil
}

func (c *Calculator) contribution(w models.WageRecord) (models.ContributionRecord, error) {
	record := models.ContributionRecord{
		Row:              w.Row,
		UAN:              w.Identifier,
		MemberName:       w.Name,
		RefundOfAdvances: models.IntOf(0),
	}

	grossAmount := w.Gross
	if c.profile.GrossFromComponents {
		grossAmount = sum(w.Basic, w.PFEarnings)
	}
	gross, err := wholeAmount(grossAmount, "GROSS_WAGES", w)
	if err != nil {
		return record, err
	}
	record.GrossWages = gross

	if gross.Valid {
		epf := gross.Int64
		if c.profile.EPFWageCeiling > 0 && epf > c.profile.EPFWageCeiling {
			epf = c.profile.EPFWageCeiling
		}

		eps := int64(0)
		if PensionEligible(w.DateOfBirth, c.cutoff) {
			eps = epf
		}

		epfContribution := Round(epf, EPFRate)
		epsContribution := Round(eps, EPSRate)

		record.EPFWages = models.IntOf(epf)
		record.EPSWages = models.IntOf(eps)
		record.EPFContribution = models.IntOf(epfContribution)
		record.EPSContribution = models.IntOf(epsContribution)
		record.Difference = models.IntOf(epfContribution - epsContribution)
	}

	if c.profile.EDLIFromColumn {
		if record.EDLIWages, err = wholeAmount(w.EDLI, "EDLI_WAGES", w); err != nil {
			return record, err
		}
	} else {
		record.EDLIWages = record.EPFWages
	}

	if record.NCPDays, err = wholeAmount(w.NCPDays, "NCP_DAYS", w); err != nil {
		return record, err
	}

	return record, nil
}

// PensionEligible reports whether a member accrues pension wages on the
// cutoff date. Members of unknown age are treated as ineligible.
func PensionEligible(dob *time.Time, cutoff time.Time) bool {
	if dob == nil {
		return false
	}
	return models.AgeOn(*dob, cutoff) < profile.RetirementAge
}

// Round returns wages × rate rounded half-to-even
func Round(wages int64, rate float64) int64 {
	return int64(math.RoundToEven(float64(wages) * rate))
}

// sum adds amounts; the result is null when any part is null
func sum(parts ...decimal.NullDecimal) decimal.NullDecimal {
	total := decimal.Zero
	for _, part := range parts {
		if !part.Valid {
			return decimal.NullDecimal{}
		}
		total = total.Add(part.Decimal)
	}
	return decimal.NewNullDecimal(total)
}

// wholeAmount converts a wage amount to a nullable integer. Filing columns
// are whole rupees, so fractional amounts are rejected.
func wholeAmount(d decimal.NullDecimal, column string, w models.WageRecord) (models.NullInt, error) {
	if !d.Valid {
		return models.NullInt{}, nil
	}
	if !d.Decimal.IsInteger() {
		return models.NullInt{}, errors.ValidationError(errors.CodeInvalidAmount, column, d.Decimal.String(), nil).
			WithSuggestion("PF wage amounts must be whole rupees").
			WithContext("row", w.Row).
			WithContext("uan", w.Identifier)
	}
	return models.IntOf(d.Decimal.IntPart()), nil
}
