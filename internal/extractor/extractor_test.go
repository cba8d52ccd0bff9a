package extractor

import (
	"testing"

	"challan-service/internal/fixtures"
	"challan-service/internal/parsers"
	"challan-service/internal/profile"
	"challan-service/pkg/errors"
)

func readSheet(t *testing.T, name string, data []byte, opts parsers.SheetOptions) *parsers.Table {
	t.Helper()
	reader, err := parsers.NewReader(nil)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	table, err := reader.ReadTable(parsers.BytesSource(name, data), opts)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	return table
}

func somanyTables(t *testing.T, employees []fixtures.Employee) (*parsers.Table, *parsers.Table) {
	t.Helper()
	data, err := fixtures.SomanyWorkbook(employees)
	if err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}
	p := profile.Somany()
	return readSheet(t, "payroll.xlsx", data, p.PFSheet), readSheet(t, "payroll.xlsx", data, p.Attendance.Sheet)
}

func TestExtractPFSomany(t *testing.T) {
	wages, payment := somanyTables(t, fixtures.SampleEmployees())

	records, err := New(profile.Somany()).ExtractPF(wages, payment, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}

	first := records[0]
	if first.Identifier != "100100100101" {
		t.Errorf("Expected canonical UAN, got %q", first.Identifier)
	}
	if first.Row != 2 {
		t.Errorf("Expected first row numbered 2, got %d", first.Row)
	}
	if first.DateOfBirth == nil || first.DateOfBirth.Format("2006-01-02") != "1985-04-12" {
		t.Errorf("Expected date of birth 1985-04-12, got %v", first.DateOfBirth)
	}
	if first.Basic.Decimal.IntPart() != 14000 || first.PFEarnings.Decimal.IntPart() != 3000 {
		t.Errorf("Expected basic 14000 and PF earnings 3000, got %s and %s", first.Basic.Decimal, first.PFEarnings.Decimal)
	}
	if first.Guardian != "MOHAN KUMAR" {
		t.Errorf("Expected guardian name, got %q", first.Guardian)
	}

	if records[1].NCPDays.Decimal.IntPart() != 3 {
		t.Errorf("Expected NCP days joined from PAYMENT sheet, got %s", records[1].NCPDays.Decimal)
	}
}

func TestExtractPFMissingIdentifier(t *testing.T) {
	employees := fixtures.SampleEmployees()[:3]
	employees[1].UAN = ""
	wages, payment := somanyTables(t, employees)

	_, err := New(profile.Somany()).ExtractPF(wages, payment, nil)
	challanErr, ok := errors.AsChallanError(err)
	if !ok {
		t.Fatalf("Expected ChallanError, got %v", err)
	}
	if challanErr.Code != errors.CodeMissingIdentifier {
		t.Fatalf("Expected missing_identifier, got %s", challanErr.Code)
	}
	if len(challanErr.Offenders) != 1 {
		t.Fatalf("Expected 1 offender, got %d", len(challanErr.Offenders))
	}

	offender := challanErr.Offenders[0]
	if offender.Row != 3 {
		t.Errorf("Expected offender on row 3, got %d", offender.Row)
	}
	if offender.Fields[0] != "E002" || offender.Fields[1] != "SUNITA DEVI" {
		t.Errorf("Expected code and name of the offender, got %v", offender.Fields)
	}
	if challanErr.Columns[0] != "code" || challanErr.Columns[1] != "naam" {
		t.Errorf("Expected offender columns [code naam], got %v", challanErr.Columns)
	}
	if challanErr.Message != "Missing UAN in WAGES sheet for the following rows" {
		t.Errorf("Unexpected message: %s", challanErr.Message)
	}
}

func TestExtractPFMissingIdentifierBeforeWages(t *testing.T) {
	p := profile.HNG()
	payroll := parsers.NewTable("pf.xlsx", "PF", 5,
		[]string{"Paycode", "UAN", "Name Of the Employee", "Father Name", "PF GROSS", "EDLI WAGES", "NCP DAYS"},
		[][]string{
			{"E001", "100100100101", "RAVI KUMAR", "MOHAN KUMAR", "not a number", "15000", "0"},
			{"E002", "", "SUNITA DEVI", "RAM PRASAD", "10000", "10000", "3"},
		})
	roster := parsers.NewTable("roster.csv", "", 1, []string{"UAN", "Name", "Father's/Husband's Name", "DoB"}, nil)

	_, err := New(p).ExtractPF(payroll, nil, roster)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeMissingIdentifier {
		t.Fatalf("Expected missing_identifier before the bad wage cell is read, got %v", err)
	}
}

func TestExtractPFRowCountMismatch(t *testing.T) {
	wages, _ := somanyTables(t, fixtures.SampleEmployees())
	payment := parsers.NewTable("payroll.xlsx", "PAYMENT", 2, []string{"code", "uan_no", "NCP DAYS"},
		[][]string{{"E001", "100100100101", "0"}})

	_, err := New(profile.Somany()).ExtractPF(wages, payment, nil)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeRowCountMismatch {
		t.Fatalf("Expected row_count_mismatch, got %v", err)
	}
	if challanErr.Message != "WAGES has 5 rows but PAYMENT has 1 rows" {
		t.Errorf("Unexpected message: %s", challanErr.Message)
	}
}

func TestExtractPFSchemaError(t *testing.T) {
	payroll := parsers.NewTable("payroll.xlsx", "WAGES", 1, []string{"code", "uan_no", "naam"}, nil)

	_, err := New(profile.Somany()).ExtractPF(payroll, nil, nil)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeMissingColumn {
		t.Fatalf("Expected missing_column, got %v", err)
	}
}

func TestExtractPFHNG(t *testing.T) {
	employees := fixtures.SampleEmployees()
	data, err := fixtures.HNGPFWorkbook(employees)
	if err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}
	p := profile.HNG()
	payroll := readSheet(t, "pf.xlsx", data, p.PFSheet)
	roster := readSheet(t, "roster.csv", fixtures.PFRosterCSV(employees[:4]), parsers.FirstSheet)

	records, err := New(p).ExtractPF(payroll, nil, roster)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected 5 records after dropping totals, got %d", len(records))
	}

	if records[2].DateOfBirth == nil || records[2].DateOfBirth.Format("2006-01-02") != "1967-05-31" {
		t.Errorf("Expected date of birth from roster, got %v", records[2].DateOfBirth)
	}
	if records[4].DateOfBirth != nil {
		t.Errorf("Expected unknown date of birth for member absent from roster, got %v", records[4].DateOfBirth)
	}
	if records[0].Gross.Decimal.IntPart() != 17000 || records[0].EDLI.Decimal.IntPart() != 15000 {
		t.Errorf("Expected gross 17000 and EDLI 15000, got %s and %s", records[0].Gross.Decimal, records[0].EDLI.Decimal)
	}
	if records[3].NCPDays.Decimal.IntPart() != 4 {
		t.Errorf("Expected NCP days 4, got %s", records[3].NCPDays.Decimal)
	}
}

func TestExtractPFInvalidRosterDate(t *testing.T) {
	payroll := parsers.NewTable("pf.xlsx", "PF", 5,
		[]string{"Paycode", "UAN", "Name Of the Employee", "Father Name", "PF GROSS", "EDLI WAGES", "NCP DAYS"},
		[][]string{{"E001", "100100100101", "RAVI KUMAR", "MOHAN KUMAR", "15000", "15000", "0"}})
	roster := parsers.NewTable("roster.csv", "", 1, []string{"UAN", "Name", "Father's/Husband's Name", "DoB"},
		[][]string{{"100100100101", "RAVI KUMAR", "MOHAN KUMAR", "sometime in 1985"}})

	_, err := New(profile.HNG()).ExtractPF(payroll, nil, roster)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeInvalidDate {
		t.Fatalf("Expected invalid_date, got %v", err)
	}
}

func TestExtractESIHNG(t *testing.T) {
	data, err := fixtures.HNGESIWorkbook(fixtures.SampleEmployees())
	if err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}
	p := profile.HNG()
	payroll := readSheet(t, "esi.xlsx", data, p.ESISheet)

	records, err := New(p).ExtractESI(payroll)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}
	if records[0].Identifier != "3100100101" {
		t.Errorf("Expected IP number 3100100101, got %q", records[0].Identifier)
	}
	if records[1].Days.Decimal.String() != "22.5" {
		t.Errorf("Expected 22.5 days, got %s", records[1].Days.Decimal)
	}
	if records[3].Wages.Decimal.IntPart() != 12505 {
		t.Errorf("Expected wages 12505, got %s", records[3].Wages.Decimal)
	}
}

func TestExtractESICoercesWages(t *testing.T) {
	payroll := parsers.NewTable("esi.xlsx", "ESI", 5,
		[]string{"Paycode", "Name Of the Employee", "ESI No", "Day ", "Earning On Which ESI Deducted."},
		[][]string{
			{"E001", "RAVI KUMAR", "3100100101.0", "26", "N/A"},
			{"E002", "SUNITA DEVI", "3100100102", "20", "9,500"},
		})

	records, err := New(profile.HNG()).ExtractESI(payroll)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if records[0].Identifier != "3100100101" {
		t.Errorf("Expected float artifact stripped, got %q", records[0].Identifier)
	}
	if records[0].Wages.Valid {
		t.Errorf("Expected non-numeric wages to be blank, got %s", records[0].Wages.Decimal)
	}
	if records[1].Wages.Decimal.IntPart() != 9500 {
		t.Errorf("Expected 9500, got %s", records[1].Wages.Decimal)
	}
}

func TestExtractESIInvalidWagesWithoutCoercion(t *testing.T) {
	payroll := parsers.NewTable("payroll.xlsx", "WAGES", 1,
		[]string{"code", "naam", "esi_no", "days", "tot_earn", "ot_amtord", "earn_npf"},
		[][]string{{"E001", "RAVI KUMAR", "3100100101", "26", "18000", "abc", "0"}})

	_, err := New(profile.Somany()).ExtractESI(payroll)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeInvalidAmount {
		t.Fatalf("Expected invalid_amount, got %v", err)
	}
}

func TestExtractESIMissingIdentifier(t *testing.T) {
	payroll := parsers.NewTable("payroll.xlsx", "WAGES", 1,
		[]string{"code", "naam", "esi_no", "days", "tot_earn", "ot_amtord", "earn_npf"},
		[][]string{
			{"E001", "RAVI KUMAR", "", "26", "18000", "0", "0"},
			{"E002", "SUNITA DEVI", "3100100102", "20", "9000", "0", "0"},
			{"E003", "ANIL SINGH", "nan", "20", "9000", "0", "0"},
		})

	_, err := New(profile.Somany()).ExtractESI(payroll)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeMissingIdentifier {
		t.Fatalf("Expected missing_identifier, got %v", err)
	}
	if len(challanErr.Offenders) != 2 {
		t.Fatalf("Expected 2 offenders, got %d", len(challanErr.Offenders))
	}
	if challanErr.Offenders[1].Row != 4 || challanErr.Offenders[1].Fields[0] != "E003" {
		t.Errorf("Expected E003 on row 4, got %+v", challanErr.Offenders[1])
	}
	if challanErr.Message != "Missing ESI number in WAGES sheet for the following rows" {
		t.Errorf("Unexpected message: %s", challanErr.Message)
	}
}

func TestExtractESINonIntegralIdentifier(t *testing.T) {
	payroll := parsers.NewTable("payroll.xlsx", "WAGES", 1,
		[]string{"code", "naam", "esi_no", "days", "tot_earn", "ot_amtord", "earn_npf"},
		[][]string{{"E001", "RAVI KUMAR", "31001.5", "26", "18000", "0", "0"}})

	_, err := New(profile.Somany()).ExtractESI(payroll)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeInvalidIdentifier {
		t.Fatalf("Expected invalid_identifier, got %v", err)
	}
}

func TestRoster(t *testing.T) {
	employees := fixtures.SampleEmployees()
	table := readSheet(t, "esi_roster.xls", fixtures.ESIRosterHTML(employees), parsers.FirstSheet)

	records, err := Roster(table, profile.HNG().ESIRoster)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("Expected 5 roster records, got %d", len(records))
	}
	if records[4].Identifier != "3100100105" || records[4].Name != "FARHAN ALI" {
		t.Errorf("Unexpected roster record %+v", records[4])
	}

	_, err = Roster(table, profile.HNG().PFRoster)
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeMissingColumn {
		t.Fatalf("Expected missing_column for PF columns on ESI roster, got %v", err)
	}
}
