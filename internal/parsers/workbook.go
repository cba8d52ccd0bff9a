package parsers

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"challan-service/pkg/errors"
)

// readWorkbook reads one sheet of an .xlsx workbook. Cells are read raw so
// numbers keep their stored digits instead of the display format.
func readWorkbook(r io.Reader, source string, opts SheetOptions) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, source, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.ParseError(errors.CodeMissingSheet, source, 0, "(first sheet)", "", nil)
		}
		sheet = sheets[0]
	} else if index, err := f.GetSheetIndex(sheet); err != nil || index < 0 {
		return nil, errors.ParseError(errors.CodeMissingSheet, source, 0, sheet, "", err).
			WithContext("sheets", f.GetSheetList())
	}

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, source, 0, sheet, "", fmt.Errorf("read rows: %w", err))
	}

	return fromGrid(source, sheet, grid, opts)
}
