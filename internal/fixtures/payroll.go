package fixtures

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// Employee is one sample employee with every field either layout needs
type Employee struct {
	Code        string
	UAN         string
	IPNumber    string
	Name        string
	Father      string
	DateOfBirth time.Time
	Basic       int
	PFEarnings  int
	NCPDays     int
	Days        float64
	TotEarn     int
	Overtime    int
	NonPF       int
}

// PFGross is the PF gross wage of the employee
func (e Employee) PFGross() int {
	return e.Basic + e.PFEarnings
}

// SampleAsOf is the run date the sample data is built around; its cutoff is 2025-05-31
var SampleAsOf = time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)

// SampleEmployees returns five employees covering the wage ceiling, members
// at and above 58 and fractional attendance
func SampleEmployees() []Employee {
	return []Employee{
		{Code: "E001", UAN: "100100100101", IPNumber: "3100100101", Name: "RAVI KUMAR", Father: "MOHAN KUMAR",
			DateOfBirth: date(1985, time.April, 12), Basic: 14000, PFEarnings: 3000, NCPDays: 0,
			Days: 26, TotEarn: 18000, Overtime: 500, NonPF: 250},
		{Code: "E002", UAN: "100100100102", IPNumber: "3100100102", Name: "SUNITA DEVI", Father: "RAM PRASAD",
			DateOfBirth: date(1966, time.February, 10), Basic: 9000, PFEarnings: 1000, NCPDays: 3,
			Days: 22.5, TotEarn: 11000, Overtime: 0, NonPF: 0},
		{Code: "E003", UAN: "100100100103", IPNumber: "3100100103", Name: "ANIL SINGH", Father: "BALWANT SINGH",
			DateOfBirth: date(1967, time.May, 31), Basic: 12000, PFEarnings: 500, NCPDays: 1,
			Days: 23.5, TotEarn: 13000, Overtime: 200, NonPF: 100},
		{Code: "E004", UAN: "100100100104", IPNumber: "3100100104", Name: "MEENA SHARMA", Father: "SURESH SHARMA",
			DateOfBirth: date(1995, time.November, 20), Basic: 11000, PFEarnings: 1505, NCPDays: 4,
			Days: 21.5, TotEarn: 12505, Overtime: 0, NonPF: 300},
		{Code: "E005", UAN: "100100100105", IPNumber: "3100100105", Name: "FARHAN ALI", Father: "IQBAL ALI",
			DateOfBirth: date(1999, time.July, 1), Basic: 8000, PFEarnings: 0, NCPDays: 6,
			Days: 20, TotEarn: 8000, Overtime: 0, NonPF: 0},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cell(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// numericID stores an identifier as a number cell, as payroll exports do
func numericID(value string) interface{} {
	if value == "" {
		return nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	return value
}

// SomanyWorkbook builds the single workbook layout: a WAGES sheet with every
// wage field and a PAYMENT sheet whose header sits on the second row
func SomanyWorkbook(employees []Employee) ([]byte, error) {
	wages := [][]interface{}{{
		"code", "naam", "uan_no", "father", "birth_date", "basic_sal", "earn_pf",
		"esi_no", "days", "tot_earn", "ot_amtord", "earn_npf",
	}}
	payment := [][]interface{}{
		{"PAYMENT REGISTER"},
		{"code", "uan_no", "NCP DAYS"},
	}

	for _, e := range employees {
		wages = append(wages, []interface{}{
			e.Code, e.Name, numericID(e.UAN), e.Father, e.DateOfBirth, e.Basic, e.PFEarnings,
			numericID(e.IPNumber), e.Days, e.TotEarn, e.Overtime, e.NonPF,
		})
		payment = append(payment, []interface{}{e.Code, numericID(e.UAN), e.NCPDays})
	}

	return Workbook(Sheet{Name: "WAGES", Rows: wages}, Sheet{Name: "PAYMENT", Rows: payment})
}

func preamble(title string) [][]interface{} {
	return [][]interface{}{
		{"HNG FLOAT GLASS LIMITED"},
		{title},
		{"Wage month: June 2025"},
		{"Unit: Naidupeta"},
	}
}

// HNGPFWorkbook builds the flat PF sheet: four title rows, the header on row
// five and a totals row at the end
func HNGPFWorkbook(employees []Employee) ([]byte, error) {
	rows := preamble("PF Statement")
	rows = append(rows, []interface{}{
		"Paycode", "UAN", "Name Of the Employee", "Father Name", "PF GROSS", "EDLI WAGES", "NCP DAYS",
	})

	var gross, edli, ncp int
	for _, e := range employees {
		edliWages := e.PFGross()
		if edliWages > 15000 {
			edliWages = 15000
		}
		rows = append(rows, []interface{}{e.Code, cell(e.UAN), e.Name, e.Father, e.PFGross(), edliWages, e.NCPDays})
		gross += e.PFGross()
		edli += edliWages
		ncp += e.NCPDays
	}
	rows = append(rows, []interface{}{"TOTAL", nil, nil, nil, gross, edli, ncp})

	return Workbook(Sheet{Name: "PF", Rows: rows})
}

// HNGESIWorkbook builds the flat ESI sheet. The day column header carries a
// trailing space, as exported by the payroll system.
func HNGESIWorkbook(employees []Employee) ([]byte, error) {
	rows := preamble("ESI Statement")
	rows = append(rows, []interface{}{
		"Paycode", "Name Of the Employee", "ESI No", "Day ", "Earning On Which ESI Deducted.",
	})

	var days float64
	var wages int
	for _, e := range employees {
		rows = append(rows, []interface{}{e.Code, e.Name, numericID(e.IPNumber), e.Days, e.TotEarn})
		days += e.Days
		wages += e.TotEarn
	}
	rows = append(rows, []interface{}{"TOTAL", nil, nil, days, wages})

	return Workbook(Sheet{Name: "ESI", Rows: rows})
}

// PFRosterCSV builds the active member list downloaded from the EPFO portal
func PFRosterCSV(employees []Employee) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"UAN", "Name", "Father's/Husband's Name", "DoB", "Gender"})
	for _, e := range employees {
		_ = w.Write([]string{e.UAN, e.Name, e.Father, e.DateOfBirth.Format("02-Jan-2006"), "M"})
	}
	w.Flush()
	return buf.Bytes()
}

// ESIRosterHTML builds the ESIC employee list, which the portal serves as an
// HTML table saved with an .xls extension
func ESIRosterHTML(employees []Employee) []byte {
	var sb strings.Builder
	sb.WriteString("<html><body><table border=\"1\">\n")
	sb.WriteString("<tr><th>empe_ip_number</th><th>empe_name</th><th>empe_status</th></tr>\n")
	for _, e := range employees {
		fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td><td>Active</td></tr>\n",
			html.EscapeString(e.IPNumber), html.EscapeString(e.Name))
	}
	sb.WriteString("</table></body></html>\n")
	return []byte(sb.String())
}

// ESIRosterWorkbook builds the ESIC employee list as an .xlsx workbook
func ESIRosterWorkbook(employees []Employee) ([]byte, error) {
	rows := [][]interface{}{{"empe_ip_number", "empe_name"}}
	for _, e := range employees {
		rows = append(rows, []interface{}{e.IPNumber, e.Name})
	}
	return Workbook(Sheet{Name: "Employees", Rows: rows})
}
