// Package parsers reads payroll and roster tables from the file formats the
// payroll teams actually send.
//
// Supported inputs:
//   - CSV exports (rosters downloaded from the EPFO portal)
//   - .xlsx workbooks (payroll registers, ESI rosters)
//   - .xls files that are really HTML tables (ESIC portal exports)
//
// Every reader produces a Table addressed by header name. Cell values are
// kept as text; numeric interpretation happens in the extractor so that
// identifiers never lose leading zeros or gain a float suffix.
package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BaseParser provides common delimited text parsing functionality
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a new BaseParser with the given configuration
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}

	log := logger.GetGlobalLogger().WithComponent("parser")
	log.WithFields(logger.Fields{
		"delimiter":         string(config.Delimiter),
		"validate_encoding": config.ValidateEncoding,
	}).Debug("Created base parser")

	return &BaseParser{
		config: config,
		logger: log,
	}
}

// ReadCSV reads a delimited file into a Table
func (bp *BaseParser) ReadCSV(r io.Reader, source string, opts SheetOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, source, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)

	if bp.config.ValidateEncoding {
		if err := bp.validateEncoding(data, source); err != nil {
			bp.logger.WithError(err).WithField("source", source).Error("File encoding validation failed")
			return nil, err
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	bp.configureReader(reader)

	var grid [][]string
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			bp.logger.WithError(err).WithField("line_number", line).Warn("Failed to read CSV record")
			return nil, errors.ParseError(errors.CodeInvalidFormat, source, line, "", "", err).
				WithSuggestion("check for unbalanced quotes in the file")
		}

		if bp.config.MaxFieldSize > 0 {
			for i, field := range record {
				if len(field) > bp.config.MaxFieldSize {
					preview := field
					if len(preview) > 50 {
						preview = preview[:50] + "..."
					}
					return nil, errors.ParseError(
						errors.CodeInvalidData,
						source,
						line,
						fmt.Sprintf("field_%d", i),
						preview,
						fmt.Errorf("field size limit exceeded"),
					).WithSuggestion(fmt.Sprintf("Reduce field size to under %d bytes", bp.config.MaxFieldSize))
				}
			}
		}

		grid = append(grid, record)
	}

	if len(grid) == 0 {
		return nil, errors.ValidationError(errors.CodeMissingField, "file_content", "empty", nil).
			WithSuggestion("Ensure the file contains header and data rows").
			WithContext("file", source)
	}

	t, err := fromGrid(source, "", grid, opts)
	if err != nil {
		return nil, err
	}

	bp.logger.WithFields(logger.Fields{
		"source":  source,
		"rows":    t.Len(),
		"headers": len(t.Headers),
	}).Debug("Read CSV table")

	return t, nil
}

// configureReader sets up the CSV reader with our configuration
func (bp *BaseParser) configureReader(reader *csv.Reader) {
	reader.Comma = bp.config.Delimiter
	reader.Comment = bp.config.Comment
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// validateEncoding checks that every line is valid UTF-8
func (bp *BaseParser) validateEncoding(data []byte, source string) error {
	for lineNum, line := range bytes.Split(data, []byte{'\n'}) {
		if !utf8.Valid(line) {
			return errors.ParseError(
				errors.CodeEncodingError,
				source,
				lineNum+1,
				"encoding",
				"",
				fmt.Errorf("invalid UTF-8 encoding detected"),
			).WithSuggestion("Save the file in UTF-8 encoding and try again")
		}
	}
	return nil
}
