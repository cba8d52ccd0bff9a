// Package fixtures builds sample payroll and roster files for both company
// layouts. Tests use it to exercise the readers end to end and the
// `challan samples` command writes the same files for manual trials.
package fixtures

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a generated workbook
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// Workbook renders sheets into .xlsx bytes. The first sheet replaces the
// default "Sheet1".
func Workbook(sheets ...Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("write %s row %d: %w", sheet.Name, r+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
