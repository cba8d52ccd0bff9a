package reconciler

import (
	"challan-service/internal/models"
)

// RosterIndex provides identifier lookups over an active member list
type RosterIndex struct {
	// byIdentifier maps an identifier to its first roster record
	byIdentifier map[string]models.RosterRecord

	// duplicates counts identifiers listed more than once
	duplicates int

	// All holds every indexed record in roster order
	All []models.RosterRecord
}

// NewRosterIndex creates a new index from roster records. When an identifier
// is listed twice the first record wins.
func NewRosterIndex(records []models.RosterRecord) *RosterIndex {
	index := &RosterIndex{
		byIdentifier: make(map[string]models.RosterRecord, len(records)),
		All:          records,
	}

	for _, record := range records {
		if _, exists := index.byIdentifier[record.Identifier]; exists {
			index.duplicates++
			continue
		}
		index.byIdentifier[record.Identifier] = record
	}

	return index
}

// Lookup returns the roster record for an identifier
func (ri *RosterIndex) Lookup(identifier string) (models.RosterRecord, bool) {
	record, ok := ri.byIdentifier[identifier]
	return record, ok
}

// Contains reports whether the identifier is on the roster
func (ri *RosterIndex) Contains(identifier string) bool {
	_, ok := ri.byIdentifier[identifier]
	return ok
}

// Len returns the number of distinct identifiers
func (ri *RosterIndex) Len() int {
	return len(ri.byIdentifier)
}

// Duplicates returns how many roster rows repeat an earlier identifier
func (ri *RosterIndex) Duplicates() int {
	return ri.duplicates
}
