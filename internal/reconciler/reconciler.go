// Package reconciler checks calculated filing rows against the authoritative
// member rosters.
//
// Every payroll identifier must appear on the roster of its scheme. When any
// does not, reconciliation fails and lists all of the unmatched rows so they
// can be fixed in one pass. On success it returns a side-by-side view of the
// names recorded on each side for human review.
package reconciler

import (
	"challan-service/internal/extractor"
	"challan-service/internal/models"
	"challan-service/internal/parsers"
	"challan-service/internal/profile"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Entry is the payroll side of one reconciliation row
type Entry struct {
	Row        int
	Identifier string
	Name       string
	Guardian   string
}

// PFEntries pairs PF contribution rows with the guardian names from the
// wage records they were calculated from
func PFEntries(records []models.ContributionRecord, wages []models.WageRecord) []Entry {
	guardians := make(map[int]string, len(wages))
	for _, w := range wages {
		guardians[w.Row] = w.Guardian
	}

	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, Entry{
			Row:        r.Row,
			Identifier: r.UAN,
			Name:       r.MemberName,
			Guardian:   guardians[r.Row],
		})
	}
	return entries
}

// ESIEntries converts ESI attendance rows to reconciliation entries
func ESIEntries(records []models.AttendanceRecord) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, Entry{Row: r.Row, Identifier: r.IPNumber, Name: r.IPName})
	}
	return entries
}

// scheme labels used in failure messages and offender tables
type schemeLabels struct {
	identifier string
	roster     string
	columns    []string
}

var labels = map[models.Scheme]schemeLabels{
	models.SchemePF: {
		identifier: "UANs",
		roster:     "active PF list",
		columns:    []string{"UAN", "MEMBER_NAME"},
	},
	models.SchemeESI: {
		identifier: "ESI number",
		roster:     "ESI List of employees",
		columns:    []string{"IP Number", "IP Name"},
	},
}

// Reconciler verifies payroll entries against a roster
type Reconciler struct {
	logger logger.Logger
}

// New creates a Reconciler
func New() *Reconciler {
	return &Reconciler{
		logger: logger.GetGlobalLogger().WithComponent("reconciler"),
	}
}

// Verify checks that every entry's identifier is on the roster and returns
// the name comparison view. The roster must carry the columns in cols.
// Output rows are numbered from 2 in entry order.
func (r *Reconciler) Verify(scheme models.Scheme, entries []Entry, roster *parsers.Table, cols profile.RosterColumns) ([]models.ReconciliationRecord, error) {
	if !scheme.IsValid() {
		return nil, errors.ValidationError(errors.CodeInvalidData, "scheme", scheme, nil)
	}

	records, err := extractor.Roster(roster, cols)
	if err != nil {
		return nil, err
	}
	index := NewRosterIndex(records)

	log := r.logger.WithFields(logger.Fields{
		"scheme":  scheme,
		"entries": len(entries),
		"roster":  index.Len(),
	})
	if index.Duplicates() > 0 {
		log.WithField("duplicates", index.Duplicates()).Warn("Roster lists some identifiers more than once, first entry used")
	}

	var unmatched []errors.Offender
	for _, entry := range entries {
		if !index.Contains(entry.Identifier) {
			unmatched = append(unmatched, errors.NewOffender(entry.Row, entry.Identifier, entry.Name))
		}
	}
	if len(unmatched) > 0 {
		label := labels[scheme]
		log.WithField("unmatched", len(unmatched)).Warn("Payroll identifiers missing from roster")
		return nil, errors.ReconciliationFailure(label.identifier, label.roster, label.columns, unmatched)
	}

	view := make([]models.ReconciliationRecord, 0, len(entries))
	mismatched := 0
	for i, entry := range entries {
		member, _ := index.Lookup(entry.Identifier)
		record := models.ReconciliationRecord{
			Row:         i + parsers.FirstDataRow,
			Scheme:      scheme,
			Identifier:  entry.Identifier,
			PayrollName: entry.Name,
			RosterName:  member.Name,
		}
		if scheme == models.SchemePF {
			record.PayrollGuardian = entry.Guardian
			record.RosterGuardian = member.Guardian
		}
		if !record.NameMatches() {
			mismatched++
		}
		view = append(view, record)
	}

	log.WithField("name_mismatches", mismatched).Debug("Roster verification complete")
	return view, nil
}
