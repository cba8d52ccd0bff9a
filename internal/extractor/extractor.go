// Package extractor turns payroll and roster tables into normalized records.
//
// The extractor is the only place that knows a company's column names. It
// reads the columns its profile maps, ignores everything else, and checks
// that every payroll row carries the scheme identifier before any wage
// value is interpreted.
package extractor

import (
	"github.com/shopspring/decimal"

	"challan-service/internal/models"
	"challan-service/internal/parsers"
	"challan-service/internal/profile"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Extractor reads wage and roster records for one company profile
type Extractor struct {
	profile *profile.Profile
	logger  logger.Logger
}

// New creates an Extractor for the given profile
func New(p *profile.Profile) *Extractor {
	return &Extractor{
		profile: p,
		logger:  logger.GetGlobalLogger().WithComponent("extractor").WithField("company", p.Name),
	}
}

// ExtractPF reads PF wage records from the payroll table. attendance is the
// separate NCP days sheet for profiles that have one and may be nil
// otherwise. roster supplies dates of birth for profiles that take them from
// the member list.
func (e *Extractor) ExtractPF(payroll, attendance, roster *parsers.Table) ([]models.WageRecord, error) {
	cols := e.profile.PF

	if err := payroll.RequireColumns(e.profile.RequiredPFColumns()...); err != nil {
		return nil, err
	}

	uans, err := e.requireIdentifiers(payroll, cols.UAN, "UAN", cols.Code, cols.Name, false)
	if err != nil {
		return nil, err
	}

	var ncpByUAN map[string]string
	if e.profile.Attendance != nil {
		if attendance == nil {
			return nil, errors.ConfigurationError(errors.CodeMissingConfig, "attendance sheet "+e.profile.Attendance.Sheet.Sheet, nil, nil)
		}
		ncpByUAN, err = e.attendanceIndex(payroll, attendance)
		if err != nil {
			return nil, err
		}
	}

	var dobByUAN map[string]string
	if e.profile.DOBFromRoster {
		if roster == nil {
			return nil, errors.ConfigurationError(errors.CodeMissingConfig, "PF roster", nil, nil)
		}
		dobByUAN, err = e.rosterDates(roster)
		if err != nil {
			return nil, err
		}
	}

	records := make([]models.WageRecord, 0, payroll.Len())
	for i := 0; i < payroll.Len(); i++ {
		row := payroll.RowNumber(i)
		record := models.WageRecord{
			Row:        row,
			Code:       payroll.Value(i, cols.Code),
			Identifier: uans[i],
			Name:       payroll.Value(i, cols.Name),
			Guardian:   payroll.Value(i, cols.Father),
		}

		dobRaw, dobColumn, layout := payroll.Value(i, cols.DateOfBirth), cols.DateOfBirth, ""
		if e.profile.DOBFromRoster {
			dobRaw, dobColumn, layout = dobByUAN[record.Identifier], e.profile.PFRoster.DateOfBirth, e.profile.PFRoster.DateLayout
		}
		dob, err := parsers.ParseDate(dobRaw, layout)
		if err != nil {
			return nil, errors.ValidationError(errors.CodeInvalidDate, dobColumn, dobRaw, err).
				WithContext("row", row).
				WithContext("uan", record.Identifier)
		}
		if dob == nil {
			e.logger.WithFields(logger.Fields{"row": row, "uan": record.Identifier}).
				Warn("Date of birth unknown, pension wages will be zero")
		}
		record.DateOfBirth = dob

		if e.profile.GrossFromComponents {
			if record.Basic, err = amount(payroll, i, cols.Basic); err != nil {
				return nil, err
			}
			if record.PFEarnings, err = amount(payroll, i, cols.PFEarnings); err != nil {
				return nil, err
			}
		} else if record.Gross, err = amount(payroll, i, cols.Gross); err != nil {
			return nil, err
		}

		if e.profile.EDLIFromColumn {
			if record.EDLI, err = amount(payroll, i, cols.EDLI); err != nil {
				return nil, err
			}
		}

		if ncpByUAN != nil {
			raw, found := ncpByUAN[record.Identifier]
			if !found {
				e.logger.WithFields(logger.Fields{"row": row, "uan": record.Identifier}).
					Warn("UAN not present in attendance sheet, NCP days left blank")
			}
			if record.NCPDays, err = parseAmount(raw, e.profile.Attendance.Columns.NCPDays, row); err != nil {
				return nil, err
			}
		} else if record.NCPDays, err = amount(payroll, i, cols.NCPDays); err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	e.logger.WithField("records", len(records)).Debug("Extracted PF wage records")
	return records, nil
}

// ExtractESI reads ESI wage records from the payroll table
func (e *Extractor) ExtractESI(payroll *parsers.Table) ([]models.WageRecord, error) {
	cols := e.profile.ESI

	if err := payroll.RequireColumns(e.profile.RequiredESIColumns()...); err != nil {
		return nil, err
	}

	ips, err := e.requireIdentifiers(payroll, cols.IPNumber, "ESI number", cols.Code, cols.Name, true)
	if err != nil {
		return nil, err
	}

	records := make([]models.WageRecord, 0, payroll.Len())
	for i := 0; i < payroll.Len(); i++ {
		row := payroll.RowNumber(i)
		record := models.WageRecord{
			Row:        row,
			Code:       payroll.Value(i, cols.Code),
			Identifier: ips[i],
			Name:       payroll.Value(i, cols.Name),
		}

		if record.Days, err = amount(payroll, i, cols.Days); err != nil {
			return nil, err
		}
		if !record.Days.Valid {
			return nil, errors.ValidationError(errors.CodeMissingField, cols.Days, "", nil).
				WithContext("row", row).
				WithContext("ip_number", record.Identifier)
		}

		if e.profile.ESIWagesFromComponents {
			if record.TotalEarnings, err = amount(payroll, i, cols.TotalEarnings); err != nil {
				return nil, err
			}
			if record.Overtime, err = amount(payroll, i, cols.Overtime); err != nil {
				return nil, err
			}
			if record.NonPFEarnings, err = amount(payroll, i, cols.NonPFEarnings); err != nil {
				return nil, err
			}
		} else {
			raw := payroll.Value(i, cols.Wages)
			wages, err := models.ParseAmount(raw)
			if err != nil {
				if !e.profile.CoerceESIWages {
					return nil, errors.ValidationError(errors.CodeInvalidAmount, cols.Wages, raw, err).WithContext("row", row)
				}
				e.logger.WithFields(logger.Fields{"row": row, "value": raw}).
					Warn("Non-numeric ESI wages left blank")
			}
			record.Wages = wages
		}

		records = append(records, record)
	}

	e.logger.WithField("records", len(records)).Debug("Extracted ESI wage records")
	return records, nil
}

// requireIdentifiers canonicalizes the identifier column and fails with every
// row that lacks one. Rows are reported by employee code and name.
func (e *Extractor) requireIdentifiers(t *parsers.Table, column, label, codeColumn, nameColumn string, integral bool) ([]string, error) {
	ids := make([]string, t.Len())
	var offenders []errors.Offender

	for i := 0; i < t.Len(); i++ {
		raw := t.Value(i, column)

		if integral {
			id, ok, err := models.IntegerIdentifier(raw)
			if err != nil {
				return nil, errors.ValidationError(errors.CodeInvalidIdentifier, column, raw, err).
					WithContext("row", t.RowNumber(i))
			}
			if ok {
				ids[i] = id
				continue
			}
		} else if id, ok := models.CanonicalIdentifier(raw); ok {
			ids[i] = id
			continue
		}

		offenders = append(offenders, errors.NewOffender(t.RowNumber(i), t.Value(i, codeColumn), t.Value(i, nameColumn)))
	}

	if len(offenders) > 0 {
		e.logger.WithFields(logger.Fields{
			"identifier": label,
			"rows":       len(offenders),
		}).Warn("Payroll rows without identifier")
		return nil, errors.MissingIdentifier(label, sheetLabel(t), []string{codeColumn, nameColumn}, offenders)
	}

	return ids, nil
}

// attendanceIndex maps UAN to NCP days. Both sheets describe the same
// employees, so their row counts must agree.
func (e *Extractor) attendanceIndex(payroll, attendance *parsers.Table) (map[string]string, error) {
	cols := e.profile.Attendance.Columns
	if err := attendance.RequireColumns(cols.UAN, cols.NCPDays); err != nil {
		return nil, err
	}

	if payroll.Len() != attendance.Len() {
		return nil, errors.RowCountMismatch(sheetLabel(payroll), sheetLabel(attendance), payroll.Len(), attendance.Len())
	}

	index := make(map[string]string, attendance.Len())
	for i := 0; i < attendance.Len(); i++ {
		uan, ok := models.CanonicalIdentifier(attendance.Value(i, cols.UAN))
		if !ok {
			continue
		}
		if _, exists := index[uan]; !exists {
			index[uan] = attendance.Value(i, cols.NCPDays)
		}
	}
	return index, nil
}

// rosterDates maps UAN to the raw date of birth cell of the PF roster
func (e *Extractor) rosterDates(roster *parsers.Table) (map[string]string, error) {
	cols := e.profile.PFRoster
	if err := roster.RequireColumns(cols.Identifier, cols.DateOfBirth); err != nil {
		return nil, err
	}

	index := make(map[string]string, roster.Len())
	for i := 0; i < roster.Len(); i++ {
		uan, ok := models.CanonicalIdentifier(roster.Value(i, cols.Identifier))
		if !ok {
			continue
		}
		if _, exists := index[uan]; !exists {
			index[uan] = roster.Value(i, cols.DateOfBirth)
		}
	}
	return index, nil
}

// Roster reads an authoritative member list. Every value is kept as text;
// identifiers are canonicalized so they join against payroll identifiers.
func Roster(t *parsers.Table, cols profile.RosterColumns) ([]models.RosterRecord, error) {
	if err := t.RequireColumns(cols.Required()...); err != nil {
		return nil, err
	}

	records := make([]models.RosterRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		id, ok := models.CanonicalIdentifier(t.Value(i, cols.Identifier))
		if !ok {
			continue
		}
		record := models.RosterRecord{
			Row:        t.RowNumber(i),
			Identifier: id,
			Name:       t.Value(i, cols.Name),
		}
		if cols.Guardian != "" {
			record.Guardian = t.Value(i, cols.Guardian)
		}
		records = append(records, record)
	}
	return records, nil
}

func amount(t *parsers.Table, i int, column string) (decimal.NullDecimal, error) {
	return parseAmount(t.Value(i, column), column, t.RowNumber(i))
}

func parseAmount(raw, column string, row int) (decimal.NullDecimal, error) {
	d, err := models.ParseAmount(raw)
	if err != nil {
		return decimal.NullDecimal{}, errors.ValidationError(errors.CodeInvalidAmount, column, raw, err).
			WithContext("row", row)
	}
	return d, nil
}

func sheetLabel(t *parsers.Table) string {
	if t.Sheet != "" {
		return t.Sheet
	}
	return t.Source
}
