package pipeline

import (
	"time"

	"challan-service/internal/models"
	"challan-service/internal/parsers"
	"challan-service/internal/profile"
	"challan-service/pkg/errors"
)

// Sources holds the input files of one run. Workbook layouts read both
// schemes from Payroll; split layouts read PFPayroll and ESIPayroll.
type Sources struct {
	Payroll    parsers.Source
	PFPayroll  parsers.Source
	ESIPayroll parsers.Source
	PFRoster   parsers.Source
	ESIRoster  parsers.Source

	// ESITemplate optionally supplies the instructions sheet for the ESI workbook
	ESITemplate parsers.Source
}

// PF returns the source holding PF wages
func (s Sources) PF(layout profile.Layout) parsers.Source {
	if layout == profile.LayoutWorkbook {
		return s.Payroll
	}
	return s.PFPayroll
}

// ESI returns the source holding ESI wages
func (s Sources) ESI(layout profile.Layout) parsers.Source {
	if layout == profile.LayoutWorkbook {
		return s.Payroll
	}
	return s.ESIPayroll
}

type namedSource struct {
	name   string
	source parsers.Source
}

// Request represents one challan generation run
type Request struct {
	Profile *profile.Profile
	Sources Sources

	// Period is the payroll month being filed. When zero it is derived from
	// AsOf, and from the current date when AsOf is zero too.
	Period models.Period
	AsOf   time.Time
}

// Validate validates the request
func (r *Request) Validate() error {
	if r.Profile == nil {
		return errors.ConfigurationError(errors.CodeMissingConfig, "company", nil, nil)
	}
	if err := r.Profile.Validate(); err != nil {
		return err
	}

	if !r.Period.IsZero() && (r.Period.Month < time.January || r.Period.Month > time.December) {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "period", r.Period.String(), nil)
	}

	required := []namedSource{
		{"PF roster", r.Sources.PFRoster},
		{"ESI roster", r.Sources.ESIRoster},
	}
	if r.Profile.Layout == profile.LayoutWorkbook {
		required = append(required, namedSource{"payroll workbook", r.Sources.Payroll})
	} else {
		required = append(required,
			namedSource{"PF payroll", r.Sources.PFPayroll},
			namedSource{"ESI payroll", r.Sources.ESIPayroll},
		)
	}

	for _, input := range required {
		if input.source.IsZero() {
			return errors.ConfigurationError(errors.CodeMissingConfig, input.name, nil, nil).
				WithSuggestion("provide the " + input.name + " file for company " + r.Profile.Name)
		}
	}

	return nil
}

// ProcessingPeriod returns the payroll month for the run, using now when
// neither Period nor AsOf is set
func (r *Request) ProcessingPeriod(now time.Time) models.Period {
	if !r.Period.IsZero() {
		return r.Period
	}
	if !r.AsOf.IsZero() {
		return models.PeriodFromAsOf(r.AsOf)
	}
	return models.PeriodFromAsOf(now)
}
