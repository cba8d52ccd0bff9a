package reconciler

import (
	"strings"
	"testing"

	"challan-service/internal/models"
	"challan-service/internal/parsers"
	"challan-service/internal/profile"
	"challan-service/pkg/errors"
)

func pfRoster(rows ...[]string) *parsers.Table {
	return parsers.NewTable("active_pf.csv", "", 1,
		[]string{"UAN", "Name", "Father's/Husband's Name", "DoB", "Gender"}, rows)
}

func esiRoster(rows ...[]string) *parsers.Table {
	return parsers.NewTable("esi_list.xls", "", 1, []string{"empe_ip_number", "empe_name"}, rows)
}

func TestVerifyPF(t *testing.T) {
	records := []models.ContributionRecord{
		{Row: 2, UAN: "100100100101", MemberName: "RAVI KUMAR"},
		{Row: 3, UAN: "100100100102", MemberName: "Sunita  Devi"},
	}
	wages := []models.WageRecord{
		{Row: 2, Identifier: "100100100101", Guardian: "MOHAN KUMAR"},
		{Row: 3, Identifier: "100100100102", Guardian: "RAM PRASAD"},
	}
	roster := pfRoster(
		[]string{"100100100102", "SUNITA DEVI", "RAM PRASAD", "10-Feb-1966", "F"},
		[]string{"100100100101", "RAVI KUMAR", "MOHAN KUMAR", "12-Apr-1985", "M"},
	)

	view, err := New().Verify(models.SchemePF, PFEntries(records, wages), roster, profile.Somany().PFRoster)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(view) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(view))
	}

	second := view[1]
	if second.Row != 3 {
		t.Errorf("Expected row 3, got %d", second.Row)
	}
	expected := []string{"100100100102", "Sunita  Devi", "SUNITA DEVI", "RAM PRASAD", "RAM PRASAD"}
	for i, field := range second.Fields() {
		if field != expected[i] {
			t.Errorf("Column %s: expected %q, got %q", models.PFVerificationColumns[i], expected[i], field)
		}
	}
	if !second.NameMatches() {
		t.Error("Expected names to match ignoring case and spacing")
	}
}

func TestVerifyReportsEveryUnmatchedRow(t *testing.T) {
	entries := []Entry{
		{Row: 2, Identifier: "100100100101", Name: "RAVI KUMAR"},
		{Row: 3, Identifier: "100100100199", Name: "GHOST ONE"},
		{Row: 4, Identifier: "100100100103", Name: "ANIL SINGH"},
		{Row: 5, Identifier: "100100100198", Name: "GHOST TWO"},
	}
	roster := pfRoster(
		[]string{"100100100101", "RAVI KUMAR", "MOHAN KUMAR", "", ""},
		[]string{"100100100103", "ANIL SINGH", "BALWANT SINGH", "", ""},
	)

	_, err := New().Verify(models.SchemePF, entries, roster, profile.HNG().PFRoster)
	challanErr, ok := errors.AsChallanError(err)
	if !ok {
		t.Fatalf("Expected ChallanError, got %v", err)
	}
	if challanErr.Code != errors.CodeRosterMismatch {
		t.Fatalf("Expected roster_mismatch, got %s", challanErr.Code)
	}
	if len(challanErr.Offenders) != 2 {
		t.Fatalf("Expected both unmatched rows, got %d", len(challanErr.Offenders))
	}
	if challanErr.Offenders[0].Row != 3 || challanErr.Offenders[1].Row != 5 {
		t.Errorf("Expected rows 3 and 5, got %d and %d", challanErr.Offenders[0].Row, challanErr.Offenders[1].Row)
	}
	if challanErr.Offenders[1].Fields[1] != "GHOST TWO" {
		t.Errorf("Expected name of unmatched member, got %v", challanErr.Offenders[1].Fields)
	}
	if challanErr.Message != "The following UANs from WAGES sheet were not found in active PF list" {
		t.Errorf("Unexpected message: %s", challanErr.Message)
	}

	display := challanErr.DisplayMessage()
	if !strings.Contains(display, "GHOST ONE") || !strings.Contains(display, "MEMBER_NAME") {
		t.Errorf("Expected offender table in display message, got:\n%s", display)
	}
}

func TestVerifyESI(t *testing.T) {
	records := []models.AttendanceRecord{
		{Row: 2, IPNumber: "3100100101", IPName: "RAVI KUMAR"},
		{Row: 3, IPNumber: "3100100102", IPName: "SUNITA DEVI"},
	}
	roster := esiRoster(
		[]string{"3100100101", "RAVI KUMAR"},
		[]string{"3100100102", "SUNITA D"},
		[]string{"3100100102", "DUPLICATE ENTRY"},
	)

	view, err := New().Verify(models.SchemeESI, ESIEntries(records), roster, profile.HNG().ESIRoster)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if view[1].RosterName != "SUNITA D" {
		t.Errorf("Expected first roster entry to win, got %q", view[1].RosterName)
	}
	if view[1].NameMatches() {
		t.Error("Expected name mismatch to be detected")
	}
	if len(view[0].Fields()) != 3 {
		t.Errorf("Expected 3 ESI verification fields, got %d", len(view[0].Fields()))
	}
}

func TestVerifyESIUnmatched(t *testing.T) {
	entries := []Entry{
		{Row: 2, Identifier: "3100100101", Name: "RAVI KUMAR"},
		{Row: 3, Identifier: "3100100102", Name: "SUNITA DEVI"},
	}
	roster := esiRoster([]string{"3100100101", "RAVI KUMAR"})

	_, err := New().Verify(models.SchemeESI, entries, roster, profile.HNG().ESIRoster)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeRosterMismatch {
		t.Fatalf("Expected roster_mismatch, got %v", err)
	}
	if len(challanErr.Offenders) != 1 || challanErr.Offenders[0].Fields[0] != "3100100102" {
		t.Errorf("Expected exactly the unmatched IP number, got %+v", challanErr.Offenders)
	}
	if challanErr.Columns[0] != "IP Number" {
		t.Errorf("Expected IP Number column, got %v", challanErr.Columns)
	}
}

func TestVerifySchemaError(t *testing.T) {
	roster := parsers.NewTable("active_pf.csv", "", 1, []string{"UAN", "Member Name"}, nil)

	_, err := New().Verify(models.SchemePF, nil, roster, profile.Somany().PFRoster)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeMissingColumn {
		t.Fatalf("Expected missing_column, got %v", err)
	}
	if !strings.Contains(challanErr.Message, "Name, Father's/Husband's Name") {
		t.Errorf("Expected missing columns named, got %s", challanErr.Message)
	}
}

func TestVerifyRosterFloatIdentifiers(t *testing.T) {
	roster := esiRoster([]string{"3100100101.0", "RAVI KUMAR"})

	view, err := New().Verify(models.SchemeESI, []Entry{{Row: 2, Identifier: "3100100101", Name: "RAVI KUMAR"}},
		roster, profile.HNG().ESIRoster)
	if err != nil {
		t.Fatalf("Expected float-formatted roster identifier to match, got %v", err)
	}
	if len(view) != 1 {
		t.Errorf("Expected 1 row, got %d", len(view))
	}
}

func TestRosterIndex(t *testing.T) {
	index := NewRosterIndex([]models.RosterRecord{
		{Row: 2, Identifier: "1", Name: "A"},
		{Row: 3, Identifier: "2", Name: "B"},
		{Row: 4, Identifier: "1", Name: "C"},
	})

	if index.Len() != 2 {
		t.Errorf("Expected 2 identifiers, got %d", index.Len())
	}
	if index.Duplicates() != 1 {
		t.Errorf("Expected 1 duplicate, got %d", index.Duplicates())
	}
	if record, ok := index.Lookup("1"); !ok || record.Name != "A" {
		t.Errorf("Expected first record to win, got %+v", record)
	}
	if index.Contains("3") {
		t.Error("Expected identifier 3 to be absent")
	}
}

func TestVerifyInvalidScheme(t *testing.T) {
	_, err := New().Verify(models.Scheme("TDS"), nil, esiRoster(), profile.HNG().ESIRoster)
	if err == nil {
		t.Fatal("Expected error for unknown scheme")
	}
}
