package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"challan-service/internal/models"
	"challan-service/internal/profile"
	"challan-service/pkg/errors"
)

var june2025 = models.Period{Year: 2025, Month: time.June}

func amount(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func dob(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRoundHalfEven(t *testing.T) {
	tests := []struct {
		wages    int64
		rate     float64
		expected int64
	}{
		{12500, EPFRate, 1500},
		{12505, EPFRate, 1501},
		{15000, EPFRate, 1800},
		{12505, EPSRate, 1042},
		{15000, EPSRate, 1250}, // 1249.5
		{5000, EPSRate, 416},   // 416.5
		{25000, EPSRate, 2082}, // 2082.5
		{8000, EPSRate, 666},
		{0, EPSRate, 0},
	}

	for _, tt := range tests {
		got := Round(tt.wages, tt.rate)
		if got != tt.expected {
			t.Errorf("Round(%d, %v): expected %d, got %d", tt.wages, tt.rate, tt.expected, got)
		}
	}
}

func TestPensionEligible(t *testing.T) {
	cutoff := june2025.Cutoff()

	tests := []struct {
		name     string
		dob      *time.Time
		expected bool
	}{
		{"turns 58 on cutoff", dob(1967, time.May, 31), false},
		{"turns 58 the day after cutoff", dob(1967, time.June, 1), true},
		{"well above 58", dob(1960, time.January, 1), false},
		{"young member", dob(1995, time.November, 20), true},
		{"unknown date of birth", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PensionEligible(tt.dob, cutoff); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPFWithWageCeiling(t *testing.T) {
	calc := New(profile.Somany(), june2025)

	wages := []models.WageRecord{
		{Row: 2, Identifier: "100100100101", Name: "RAVI KUMAR", DateOfBirth: dob(1985, time.April, 12),
			Basic: amount("14000"), PFEarnings: amount("3000"), NCPDays: amount("0")},
		{Row: 3, Identifier: "100100100103", Name: "ANIL SINGH", DateOfBirth: dob(1967, time.May, 31),
			Basic: amount("12000"), PFEarnings: amount("500"), NCPDays: amount("1")},
		{Row: 4, Identifier: "100100100104", Name: "MEENA SHARMA", DateOfBirth: dob(1995, time.November, 20),
			Basic: amount("11000"), PFEarnings: amount("1505")},
	}

	records, err := calc.PF(wages)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expected := [][]string{
		{"100100100101", "RAVI KUMAR", "17000", "15000", "15000", "15000", "1800", "1250", "550", "0", "0"},
		{"100100100103", "ANIL SINGH", "12500", "12500", "0", "12500", "1500", "0", "1500", "1", "0"},
		{"100100100104", "MEENA SHARMA", "12505", "12505", "12505", "12505", "1501", "1042", "459", "", "0"},
	}

	for i, record := range records {
		fields := record.Fields()
		for j, want := range expected[i] {
			if fields[j] != want {
				t.Errorf("Record %d column %s: expected %q, got %q", i, models.PFColumns[j], want, fields[j])
			}
		}
		if record.EPSContribution.Int64 > record.EPFContribution.Int64 {
			t.Errorf("Record %d: pension contribution exceeds PF contribution", i)
		}
	}

	if records[2].Row != 4 {
		t.Errorf("Expected row number carried through, got %d", records[2].Row)
	}
}

func TestPFWithoutCeiling(t *testing.T) {
	calc := New(profile.HNG(), june2025)

	wages := []models.WageRecord{
		{Row: 2, Identifier: "100100100101", Name: "RAVI KUMAR", DateOfBirth: dob(1985, time.April, 12),
			Gross: amount("17000"), EDLI: amount("15000"), NCPDays: amount("2")},
		{Row: 3, Identifier: "100100100102", Name: "SUNITA DEVI",
			Gross: amount("10000"), EDLI: amount("10000"), NCPDays: amount("3")},
	}

	records, err := calc.PF(wages)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	first := records[0]
	if first.EPFWages.Int64 != 17000 || first.EPSWages.Int64 != 17000 {
		t.Errorf("Expected uncapped wages 17000, got EPF %d EPS %d", first.EPFWages.Int64, first.EPSWages.Int64)
	}
	if first.EPFContribution.Int64 != 2040 {
		t.Errorf("Expected EPF contribution 2040, got %d", first.EPFContribution.Int64)
	}
	if first.EDLIWages.Int64 != 15000 {
		t.Errorf("Expected EDLI wages from sheet, got %d", first.EDLIWages.Int64)
	}

	second := records[1]
	if second.EPSWages.Int64 != 0 || second.EPSContribution.Int64 != 0 {
		t.Errorf("Expected zero pension wages for unknown age, got %d", second.EPSWages.Int64)
	}
	if second.Difference.Int64 != second.EPFContribution.Int64 {
		t.Errorf("Expected difference equal to EPF contribution, got %d", second.Difference.Int64)
	}
}

func TestPFNullGross(t *testing.T) {
	calc := New(profile.Somany(), june2025)

	records, err := calc.PF([]models.WageRecord{
		{Row: 2, Identifier: "1", Name: "X", Basic: amount("1000"), NCPDays: amount("0")},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	fields := records[0].Fields()
	for j := 2; j <= 8; j++ {
		if fields[j] != "" {
			t.Errorf("Expected blank %s for missing earnings, got %q", models.PFColumns[j], fields[j])
		}
	}
	if fields[10] != "0" {
		t.Errorf("Expected refund of advances 0, got %q", fields[10])
	}
}

func TestPFRejectsFractionalWages(t *testing.T) {
	calc := New(profile.HNG(), june2025)

	_, err := calc.PF([]models.WageRecord{
		{Row: 7, Identifier: "1", Name: "X", Gross: amount("1000.50"), EDLI: amount("1000")},
	})
	challanErr, ok := errors.AsChallanError(err)
	if !ok {
		t.Fatalf("Expected ChallanError, got %v", err)
	}
	if challanErr.Code != errors.CodeInvalidAmount {
		t.Errorf("Expected invalid_amount, got %s", challanErr.Code)
	}
	if challanErr.Context["row"] != 7 {
		t.Errorf("Expected row 7 in context, got %v", challanErr.Context["row"])
	}
}

func TestSplitFractionalDays(t *testing.T) {
	tests := []struct {
		name     string
		days     []string
		expected []int64
	}{
		{"three fractional rows", []string{"22", "22.5", "23.5", "21.5", "20"}, []int64{22, 23, 23, 21, 20}},
		{"even count", []string{"10.5", "11.5", "12.5", "13.5"}, []int64{11, 12, 12, 13}},
		{"single fractional row floors", []string{"26", "25.5"}, []int64{26, 25}},
		{"order not value decides", []string{"1.9", "30.1"}, []int64{2, 30}},
		{"whole days untouched", []string{"26", "0", "31"}, []int64{26, 0, 31}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var days []decimal.Decimal
			for _, d := range tt.days {
				days = append(days, decimal.RequireFromString(d))
			}

			got := SplitFractionalDays(days)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d values, got %d", len(tt.expected), len(got))
			}
			for i := range got {
				if got[i].IntPart() != tt.expected[i] {
					t.Errorf("Index %d: expected %d, got %s", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestESIFromComponents(t *testing.T) {
	calc := New(profile.Somany(), june2025)

	wages := []models.WageRecord{
		{Row: 2, Identifier: "3100100101", Name: "RAVI KUMAR", Days: amount("22.5"),
			TotalEarnings: amount("18000"), Overtime: amount("500"), NonPFEarnings: amount("250")},
		{Row: 3, Identifier: "3100100102", Name: "SUNITA DEVI", Days: amount("23.5"),
			TotalEarnings: amount("11000"), Overtime: amount("0"), NonPFEarnings: amount("0")},
		{Row: 4, Identifier: "3100100103", Name: "ANIL SINGH", Days: amount("21.5"),
			TotalEarnings: amount("13000"), Overtime: amount("200.50"), NonPFEarnings: amount("100")},
	}

	records, err := calc.ESI(wages)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := [][]string{
		{"3100100101", "RAVI KUMAR", "23", "18750", "", ""},
		{"3100100102", "SUNITA DEVI", "23", "11000", "", ""},
		{"3100100103", "ANIL SINGH", "21", "13300.5", "", ""},
	}
	for i, record := range records {
		fields := record.Fields()
		for j, want := range expected[i] {
			if fields[j] != want {
				t.Errorf("Record %d column %q: expected %q, got %q", i, models.ESIColumns[j], want, fields[j])
			}
		}
	}
}

func TestESISingleWageColumn(t *testing.T) {
	calc := New(profile.HNG(), june2025)

	records, err := calc.ESI([]models.WageRecord{
		{Row: 2, Identifier: "3100100101", Name: "RAVI KUMAR", Days: amount("26"), Wages: amount("18000")},
		{Row: 3, Identifier: "3100100102", Name: "SUNITA DEVI", Days: amount("20")},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if records[0].TotalWages != "18000" || records[0].Days != "26" {
		t.Errorf("Expected 26 days and 18000 wages, got %s and %s", records[0].Days, records[0].TotalWages)
	}
	if records[1].TotalWages != "" {
		t.Errorf("Expected blank wages for missing value, got %q", records[1].TotalWages)
	}
}

func TestESIMissingDays(t *testing.T) {
	calc := New(profile.HNG(), june2025)

	_, err := calc.ESI([]models.WageRecord{{Row: 5, Identifier: "1", Name: "X"}})
	challanErr, ok := errors.AsChallanError(err)
	if !ok || challanErr.Code != errors.CodeMissingField {
		t.Errorf("Expected missing_field, got %v", err)
	}
}

func TestCalculatorCutoff(t *testing.T) {
	calc := New(profile.HNG(), models.PeriodFromAsOf(time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)))
	if got := calc.Cutoff().Format("2006-01-02"); got != "2025-05-31" {
		t.Errorf("Expected cutoff 2025-05-31, got %s", got)
	}
}
