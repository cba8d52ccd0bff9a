// Package profile defines the company payroll layouts the pipeline accepts.
//
// A Profile maps the column names of one company's payroll export onto the
// fields of models.WageRecord and selects which statutory formulas apply.
// Profiles form a closed set chosen once at the boundary:
//
//	p, err := profile.Lookup("somany")
//	if err != nil {
//		return err
//	}
//	wages, err := extractor.New(p).ExtractPF(payroll, attendance, roster)
//
// Calculation code reads the flags on the Profile and never branches on the
// company name.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"challan-service/internal/parsers"
	"challan-service/pkg/errors"
)

// Layout describes how payroll files are delivered
type Layout int

const (
	// LayoutWorkbook is one workbook holding every scheme's wage data
	LayoutWorkbook Layout = iota
	// LayoutSplit is one flat payroll file per scheme
	LayoutSplit
)

// String returns the string representation of Layout
func (l Layout) String() string {
	switch l {
	case LayoutWorkbook:
		return "workbook"
	case LayoutSplit:
		return "split"
	default:
		return "unknown"
	}
}

// PFColumns maps PF payroll columns. Empty names are not read.
type PFColumns struct {
	Code        string `json:"code"`
	UAN         string `json:"uan"`
	Name        string `json:"name"`
	Father      string `json:"father"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Basic       string `json:"basic,omitempty"`
	PFEarnings  string `json:"pf_earnings,omitempty"`
	Gross       string `json:"gross,omitempty"`
	EDLI        string `json:"edli,omitempty"`
	NCPDays     string `json:"ncp_days,omitempty"`
}

// AttendanceColumns maps the sheet that carries NCP days when the wage sheet does not
type AttendanceColumns struct {
	UAN     string `json:"uan"`
	NCPDays string `json:"ncp_days"`
}

// AttendanceSheet is the separate sheet joined to the wage sheet for NCP days
type AttendanceSheet struct {
	Sheet   parsers.SheetOptions `json:"sheet"`
	Columns AttendanceColumns    `json:"columns"`
}

// ESIColumns maps ESI payroll columns. Empty names are not read.
type ESIColumns struct {
	Code          string `json:"code"`
	IPNumber      string `json:"ip_number"`
	Name          string `json:"name"`
	Days          string `json:"days"`
	TotalEarnings string `json:"total_earnings,omitempty"`
	Overtime      string `json:"overtime,omitempty"`
	NonPFEarnings string `json:"non_pf_earnings,omitempty"`
	Wages         string `json:"wages,omitempty"`
}

// RosterColumns maps an authoritative member list
type RosterColumns struct {
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Guardian    string `json:"guardian,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	DateLayout  string `json:"date_layout,omitempty"`
}

// Required returns the columns a roster must carry
func (c RosterColumns) Required() []string {
	cols := []string{c.Identifier, c.Name}
	if c.Guardian != "" {
		cols = append(cols, c.Guardian)
	}
	return cols
}

// Profile describes one company's payroll export and the formulas it uses
type Profile struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	Layout      Layout   `json:"layout"`

	PFSheet    parsers.SheetOptions `json:"pf_sheet"`
	PF         PFColumns            `json:"pf_columns"`
	Attendance *AttendanceSheet     `json:"attendance,omitempty"`

	ESISheet parsers.SheetOptions `json:"esi_sheet"`
	ESI      ESIColumns           `json:"esi_columns"`

	PFRoster  RosterColumns `json:"pf_roster"`
	ESIRoster RosterColumns `json:"esi_roster"`

	// EPFWageCeiling caps EPF wages when positive
	EPFWageCeiling int64 `json:"epf_wage_ceiling,omitempty"`
	// GrossFromComponents sums basic and PF earnings instead of reading gross
	GrossFromComponents bool `json:"gross_from_components"`
	// EDLIFromColumn reads EDLI wages from the payroll instead of using EPF wages
	EDLIFromColumn bool `json:"edli_from_column"`
	// DOBFromRoster takes dates of birth from the PF roster
	DOBFromRoster bool `json:"dob_from_roster"`
	// ESIWagesFromComponents sums total earnings, overtime and non-PF earnings
	ESIWagesFromComponents bool `json:"esi_wages_from_components"`
	// CoerceESIWages blanks non-numeric ESI wage cells instead of failing
	CoerceESIWages bool `json:"coerce_esi_wages"`
}

// RetirementAge is the age at which members stop accruing pension wages
const RetirementAge = 58

// DefaultWageCeiling is the statutory EPF wage ceiling
const DefaultWageCeiling = 15000

// Validate checks that the profile maps every column its flags rely on
func (p *Profile) Validate() error {
	var missing []string
	need := func(setting, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, setting)
		}
	}

	need("pf.code", p.PF.Code)
	need("pf.uan", p.PF.UAN)
	need("pf.name", p.PF.Name)
	need("pf.father", p.PF.Father)
	if p.GrossFromComponents {
		need("pf.basic", p.PF.Basic)
		need("pf.pf_earnings", p.PF.PFEarnings)
	} else {
		need("pf.gross", p.PF.Gross)
	}
	if p.EDLIFromColumn {
		need("pf.edli", p.PF.EDLI)
	}
	if p.DOBFromRoster {
		need("pf_roster.date_of_birth", p.PFRoster.DateOfBirth)
	} else {
		need("pf.date_of_birth", p.PF.DateOfBirth)
	}
	if p.Attendance != nil {
		need("attendance.uan", p.Attendance.Columns.UAN)
		need("attendance.ncp_days", p.Attendance.Columns.NCPDays)
	} else {
		need("pf.ncp_days", p.PF.NCPDays)
	}

	need("esi.code", p.ESI.Code)
	need("esi.ip_number", p.ESI.IPNumber)
	need("esi.name", p.ESI.Name)
	need("esi.days", p.ESI.Days)
	if p.ESIWagesFromComponents {
		need("esi.total_earnings", p.ESI.TotalEarnings)
		need("esi.overtime", p.ESI.Overtime)
		need("esi.non_pf_earnings", p.ESI.NonPFEarnings)
	} else {
		need("esi.wages", p.ESI.Wages)
	}

	need("pf_roster.identifier", p.PFRoster.Identifier)
	need("pf_roster.name", p.PFRoster.Name)
	need("pf_roster.guardian", p.PFRoster.Guardian)
	need("esi_roster.identifier", p.ESIRoster.Identifier)
	need("esi_roster.name", p.ESIRoster.Name)

	if len(missing) > 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "profile "+p.Name, strings.Join(missing, ", "),
			fmt.Errorf("profile does not map %d required columns", len(missing)))
	}

	if err := p.PFSheet.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "profile "+p.Name+" pf sheet", p.PFSheet, err)
	}
	if err := p.ESISheet.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "profile "+p.Name+" esi sheet", p.ESISheet, err)
	}
	if p.EPFWageCeiling < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "profile "+p.Name+" wage ceiling", p.EPFWageCeiling, nil)
	}

	return nil
}

// RequiredPFColumns returns the PF payroll columns that must be present in the wage sheet
func (p *Profile) RequiredPFColumns() []string {
	cols := []string{p.PF.Code, p.PF.UAN, p.PF.Name, p.PF.Father}
	if p.GrossFromComponents {
		cols = append(cols, p.PF.Basic, p.PF.PFEarnings)
	} else {
		cols = append(cols, p.PF.Gross)
	}
	if p.EDLIFromColumn {
		cols = append(cols, p.PF.EDLI)
	}
	if !p.DOBFromRoster {
		cols = append(cols, p.PF.DateOfBirth)
	}
	if p.Attendance == nil {
		cols = append(cols, p.PF.NCPDays)
	}
	return cols
}

// RequiredESIColumns returns the ESI payroll columns that must be present
func (p *Profile) RequiredESIColumns() []string {
	cols := []string{p.ESI.Code, p.ESI.IPNumber, p.ESI.Name, p.ESI.Days}
	if p.ESIWagesFromComponents {
		cols = append(cols, p.ESI.TotalEarnings, p.ESI.Overtime, p.ESI.NonPFEarnings)
	} else {
		cols = append(cols, p.ESI.Wages)
	}
	return cols
}

// PFRosterColumns returns the roster columns the PF extractor reads
func (p *Profile) PFRosterColumns() []string {
	cols := p.PFRoster.Required()
	if p.DOBFromRoster {
		cols = append(cols, p.PFRoster.DateOfBirth)
	}
	return cols
}

var (
	pfRoster = RosterColumns{
		Identifier:  "UAN",
		Name:        "Name",
		Guardian:    "Father's/Husband's Name",
		DateOfBirth: "DoB",
		DateLayout:  "02-Jan-2006",
	}
	esiRoster = RosterColumns{
		Identifier: "empe_ip_number",
		Name:       "empe_name",
	}
)

// Somany returns the single-workbook profile: a WAGES sheet with wage
// components and a PAYMENT sheet carrying NCP days
func Somany() *Profile {
	return &Profile{
		Name:        "somany",
		Aliases:     []string{"a", "company-a"},
		Description: "Single workbook: WAGES sheet with wage components, PAYMENT sheet with NCP days",
		Layout:      LayoutWorkbook,
		PFSheet:     parsers.SheetOptions{Sheet: "WAGES", HeaderRow: 1},
		PF: PFColumns{
			Code:        "code",
			UAN:         "uan_no",
			Name:        "naam",
			Father:      "father",
			DateOfBirth: "birth_date",
			Basic:       "basic_sal",
			PFEarnings:  "earn_pf",
		},
		ESISheet: parsers.SheetOptions{Sheet: "WAGES", HeaderRow: 1},
		ESI: ESIColumns{
			Code:          "code",
			IPNumber:      "esi_no",
			Name:          "naam",
			Days:          "days",
			TotalEarnings: "tot_earn",
			Overtime:      "ot_amtord",
			NonPFEarnings: "earn_npf",
		},
		Attendance: &AttendanceSheet{
			Sheet:   parsers.SheetOptions{Sheet: "PAYMENT", HeaderRow: 2},
			Columns: AttendanceColumns{UAN: "uan_no", NCPDays: "NCP DAYS"},
		},
		PFRoster:               pfRoster,
		ESIRoster:              esiRoster,
		EPFWageCeiling:         DefaultWageCeiling,
		GrossFromComponents:    true,
		ESIWagesFromComponents: true,
	}
}

// HNG returns the split-file profile: one flat sheet per scheme with four
// title rows above the header and a totals row at the end
func HNG() *Profile {
	flat := parsers.SheetOptions{HeaderRow: 5, DropTotalRow: true}
	return &Profile{
		Name:        "hng",
		Aliases:     []string{"b", "company-b"},
		Description: "Separate PF and ESI sheets, header on row 5, trailing totals row",
		Layout:      LayoutSplit,
		PFSheet:     flat,
		PF: PFColumns{
			Code:    "Paycode",
			UAN:     "UAN",
			Name:    "Name Of the Employee",
			Father:  "Father Name",
			Gross:   "PF GROSS",
			EDLI:    "EDLI WAGES",
			NCPDays: "NCP DAYS",
		},
		ESISheet: flat,
		ESI: ESIColumns{
			Code:     "Paycode",
			IPNumber: "ESI No",
			Name:     "Name Of the Employee",
			Days:     "Day ",
			Wages:    "Earning On Which ESI Deducted.",
		},
		PFRoster:       pfRoster,
		ESIRoster:      esiRoster,
		EDLIFromColumn: true,
		DOBFromRoster:  true,
		CoerceESIWages: true,
	}
}

// All returns every supported profile sorted by name
func All() []*Profile {
	profiles := []*Profile{HNG(), Somany()}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

// Lookup returns the profile with the given name or alias, ignoring case
func Lookup(name string) (*Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "company", nil, nil)
	}

	for _, p := range All() {
		if p.Name == key {
			return p, nil
		}
		for _, alias := range p.Aliases {
			if alias == key {
				return p, nil
			}
		}
	}

	return nil, errors.ConfigurationError(errors.CodeUnknownProfile, "company", name, nil)
}

// Names returns the names of every supported profile
func Names() []string {
	var names []string
	for _, p := range All() {
		names = append(names, p.Name)
	}
	return names
}
