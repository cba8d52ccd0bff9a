package models

import (
	"fmt"
	"time"
)

// Period is the payroll month being filed
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// PeriodFromAsOf returns the processing period for a run on asOf,
// which is always the month before asOf
func PeriodFromAsOf(asOf time.Time) Period {
	first := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return Period{Year: prev.Year(), Month: prev.Month()}
}

// ParsePeriod parses a YYYY-MM string
func ParsePeriod(value string) (Period, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return Period{}, fmt.Errorf("period must be in YYYY-MM format: %w", err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Cutoff is the last day of the month preceding the period. Member age for
// pension eligibility is measured on this date.
func (p Period) Cutoff() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// String returns the period as YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// IsZero reports whether the period is unset
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// AgeOn returns completed years between dob and on
func AgeOn(dob, on time.Time) int {
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}
