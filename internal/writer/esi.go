package writer

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"challan-service/internal/models"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Sheet names of the ESI upload workbook
const (
	ReportSheet       = "ESI Report"
	InstructionsSheet = "Instructions & Reason Codes"
)

//go:embed resources/instructions.csv
var defaultInstructions []byte

// ESIWriter builds ESI upload workbooks
type ESIWriter struct {
	instructions [][]string
	logger       logger.Logger
}

// NewESIWriter creates a writer that copies the instructions sheet from the
// bundled resource
func NewESIWriter() (*ESIWriter, error) {
	reader := csv.NewReader(bytes.NewReader(defaultInstructions))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "load bundled ESI instructions", err)
	}
	return &ESIWriter{
		instructions: rows,
		logger:       logger.GetGlobalLogger().WithComponent("writer"),
	}, nil
}

// NewESIWriterFromTemplate creates a writer that copies the instructions
// sheet from an ESIC monthly contribution template workbook
func NewESIWriterFromTemplate(r io.Reader, name string) (*ESIWriter, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, name, err)
	}
	defer f.Close()

	if index, err := f.GetSheetIndex(InstructionsSheet); err != nil || index < 0 {
		return nil, errors.ParseError(errors.CodeMissingSheet, name, 0, InstructionsSheet, "", err)
	}

	rows, err := f.GetRows(InstructionsSheet)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, name, 0, InstructionsSheet, "", err)
	}

	return &ESIWriter{
		instructions: rows,
		logger:       logger.GetGlobalLogger().WithComponent("writer").WithField("template", name),
	}, nil
}

// Instructions returns the rows copied into the instructions sheet
func (w *ESIWriter) Instructions() [][]string {
	return w.instructions
}

// Workbook renders attendance rows as an ESI upload workbook. Every cell on
// the report sheet is written as text.
func (w *ESIWriter) Workbook(records []models.AttendanceRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "create ESI report sheet", err)
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, models.ESIColumns)
	for _, record := range records {
		rows = append(rows, record.Fields())
	}
	if err := writeRows(f, ReportSheet, rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(InstructionsSheet); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "create instructions sheet", err)
	}
	if err := writeRows(f, InstructionsSheet, w.instructions); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "write ESI workbook", err)
	}

	w.logger.WithField("records", len(records)).Debug("Wrote ESI workbook")
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return errors.InternalError(errors.CodeUnexpectedError, fmt.Sprintf("address cell %d,%d", c+1, r+1), err)
			}
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return errors.InternalError(errors.CodeUnexpectedError, "write "+sheet, err)
			}
		}
	}
	return nil
}
