// Package models holds the record types that flow through the challan pipeline.
//
// Wage records are read from payroll sheets, roster records from the
// authoritative member lists, and contribution and attendance records are the
// rows that end up in the PF and ESI filing artifacts.
package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Scheme identifies a statutory scheme
type Scheme string

const (
	// SchemePF is the Provident Fund scheme, keyed by UAN
	SchemePF Scheme = "PF"
	// SchemeESI is the Employee State Insurance scheme, keyed by IP number
	SchemeESI Scheme = "ESI"
)

// String returns the string representation of Scheme
func (s Scheme) String() string {
	return string(s)
}

// IsValid checks if the scheme is known
func (s Scheme) IsValid() bool {
	return s == SchemePF || s == SchemeESI
}

// NullInt is an integer that may be absent. Absent values render as an
// empty string in filing artifacts and as null in JSON.
type NullInt struct {
	Int64 int64
	Valid bool
}

// IntOf returns a valid NullInt
func IntOf(v int64) NullInt {
	return NullInt{Int64: v, Valid: true}
}

// String returns the decimal representation or "" when absent
func (n NullInt) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

// MarshalJSON implements json.Marshaler
func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Int64)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *NullInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullInt{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Int64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// WageRecord is one employee row from a payroll sheet.
// Which wage components are populated depends on the company profile.
type WageRecord struct {
	Row         int        `json:"row"`
	Code        string     `json:"code"`
	Identifier  string     `json:"identifier"`
	Name        string     `json:"name"`
	Guardian    string     `json:"guardian,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	// PF components
	Basic      decimal.NullDecimal `json:"basic"`
	PFEarnings decimal.NullDecimal `json:"pf_earnings"`
	Gross      decimal.NullDecimal `json:"gross"`
	EDLI       decimal.NullDecimal `json:"edli"`
	NCPDays    decimal.NullDecimal `json:"ncp_days"`

	// ESI components
	Days          decimal.NullDecimal `json:"days"`
	TotalEarnings decimal.NullDecimal `json:"total_earnings"`
	Overtime      decimal.NullDecimal `json:"overtime"`
	NonPFEarnings decimal.NullDecimal `json:"non_pf_earnings"`
	Wages         decimal.NullDecimal `json:"wages"`
}

// RosterRecord is one member of an authoritative roster
type RosterRecord struct {
	Row         int        `json:"row"`
	Identifier  string     `json:"identifier"`
	Name        string     `json:"name"`
	Guardian    string     `json:"guardian,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

// PF filing columns in artifact order
var PFColumns = []string{
	"UAN",
	"MEMBER_NAME",
	"GROSS_WAGES",
	"EPF_WAGES",
	"EPS_WAGES",
	"EDLI_WAGES",
	"EPF_CONTRI_REMITTED",
	"EPS_CONTRI_REMITTED",
	"EPF_EPS_DIFF_REMITTED",
	"NCP_DAYS",
	"REFUND_OF_ADVANCES",
}

// ContributionRecord is one PF filing row
type ContributionRecord struct {
	Row              int     `json:"row"`
	UAN              string  `json:"uan"`
	MemberName       string  `json:"member_name"`
	GrossWages       NullInt `json:"gross_wages"`
	EPFWages         NullInt `json:"epf_wages"`
	EPSWages         NullInt `json:"eps_wages"`
	EDLIWages        NullInt `json:"edli_wages"`
	EPFContribution  NullInt `json:"epf_contri_remitted"`
	EPSContribution  NullInt `json:"eps_contri_remitted"`
	Difference       NullInt `json:"epf_eps_diff_remitted"`
	NCPDays          NullInt `json:"ncp_days"`
	RefundOfAdvances NullInt `json:"refund_of_advances"`
}

// Fields returns the record values in PFColumns order
func (c ContributionRecord) Fields() []string {
	return []string{
		c.UAN,
		c.MemberName,
		c.GrossWages.String(),
		c.EPFWages.String(),
		c.EPSWages.String(),
		c.EDLIWages.String(),
		c.EPFContribution.String(),
		c.EPSContribution.String(),
		c.Difference.String(),
		c.NCPDays.String(),
		c.RefundOfAdvances.String(),
	}
}

// Numeric returns the integer columns keyed by their PF column name
func (c ContributionRecord) Numeric() map[string]NullInt {
	return map[string]NullInt{
		"GROSS_WAGES":           c.GrossWages,
		"EPF_WAGES":             c.EPFWages,
		"EPS_WAGES":             c.EPSWages,
		"EDLI_WAGES":            c.EDLIWages,
		"EPF_CONTRI_REMITTED":   c.EPFContribution,
		"EPS_CONTRI_REMITTED":   c.EPSContribution,
		"EPF_EPS_DIFF_REMITTED": c.Difference,
		"NCP_DAYS":              c.NCPDays,
		"REFUND_OF_ADVANCES":    c.RefundOfAdvances,
	}
}

// ESI filing columns in artifact order. The leading spaces are part of the
// names expected by the ESIC upload template.
var ESIColumns = []string{
	"IP Number",
	"IP Name",
	"No of Days for which wages paid/payable during the month",
	"Total Monthly Wages",
	" Reason Code for Zero workings days(numeric only; provide 0 for all other reasons- Click on the link for reference)",
	" Last Working Day",
}

// AttendanceRecord is one ESI filing row. All values are text.
type AttendanceRecord struct {
	Row            int    `json:"row"`
	IPNumber       string `json:"ip_number"`
	IPName         string `json:"ip_name"`
	Days           string `json:"days"`
	TotalWages     string `json:"total_wages"`
	ReasonCode     string `json:"reason_code"`
	LastWorkingDay string `json:"last_working_day"`
}

// Fields returns the record values in ESIColumns order
func (a AttendanceRecord) Fields() []string {
	return []string{a.IPNumber, a.IPName, a.Days, a.TotalWages, a.ReasonCode, a.LastWorkingDay}
}

// Verification view columns
var (
	PFVerificationColumns = []string{
		"UAN",
		"Name in Payment Sheet",
		"Name in Active List",
		"Father's Name in Payment Sheet",
		"Father's Name in Active List",
	}
	ESIVerificationColumns = []string{
		"IP Number",
		"Name in Payment Sheet",
		"Name in ESI Active List",
	}
)

// ReconciliationRecord places payroll identity beside roster identity for
// the same identifier
type ReconciliationRecord struct {
	Row             int    `json:"row"`
	Scheme          Scheme `json:"scheme"`
	Identifier      string `json:"identifier"`
	PayrollName     string `json:"payroll_name"`
	RosterName      string `json:"roster_name"`
	PayrollGuardian string `json:"payroll_guardian,omitempty"`
	RosterGuardian  string `json:"roster_guardian,omitempty"`
}

// Fields returns the record values in the verification column order of its scheme
func (r ReconciliationRecord) Fields() []string {
	if r.Scheme == SchemePF {
		return []string{r.Identifier, r.PayrollName, r.RosterName, r.PayrollGuardian, r.RosterGuardian}
	}
	return []string{r.Identifier, r.PayrollName, r.RosterName}
}

// NameMatches reports whether payroll and roster names agree, ignoring case
// and surrounding whitespace
func (r ReconciliationRecord) NameMatches() bool {
	return normalizeName(r.PayrollName) == normalizeName(r.RosterName)
}

// VerificationColumns returns the view columns for a scheme
func VerificationColumns(scheme Scheme) []string {
	if scheme == SchemePF {
		return PFVerificationColumns
	}
	return ESIVerificationColumns
}
