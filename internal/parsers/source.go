package parsers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Source is a named input that can be opened for reading
type Source struct {
	Name string
	open func() (io.ReadCloser, error)
}

// FileSource opens a file from disk
func FileSource(path string) Source {
	return Source{
		Name: path,
		open: func() (io.ReadCloser, error) {
			file, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					return nil, errors.FileError(errors.CodeFileNotFound, path, err)
				}
				if os.IsPermission(err) {
					return nil, errors.FileError(errors.CodeFilePermission, path, err)
				}
				return nil, errors.FileError(errors.CodeDirectoryError, path, err)
			}
			return file, nil
		},
	}
}

// BytesSource serves in-memory content, such as an uploaded file
func BytesSource(name string, data []byte) Source {
	return Source{
		Name: name,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// IsZero reports whether the source was never set
func (s Source) IsZero() bool {
	return s.open == nil
}

// Open opens the source
func (s Source) Open() (io.ReadCloser, error) {
	if s.open == nil {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "input file", nil, nil)
	}
	return s.open()
}

// Format is a detected input format
type Format string

const (
	FormatCSV       Format = "csv"
	FormatXLSX      Format = "xlsx"
	FormatHTML      Format = "html"
	FormatLegacyXLS Format = "xls"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat decides how to read content from its leading bytes, falling
// back to the file extension
func DetectFormat(name string, head []byte) Format {
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(head, oleMagic):
		return FormatLegacyXLS
	}

	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, utf8BOM), " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return FormatHTML
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatCSV
	}
}

// Reader reads tables from sources of any supported format
type Reader struct {
	base   *BaseParser
	logger logger.Logger
}

// NewReader creates a Reader; a nil config uses DefaultParseConfig
func NewReader(config *ParseConfig) (*Reader, error) {
	if config == nil {
		config = DefaultParseConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "parser", err.Error(), err)
	}
	return &Reader{
		base:   NewBaseParser(config),
		logger: logger.GetGlobalLogger().WithComponent("reader"),
	}, nil
}

// ReadTable opens src and reads the sheet described by opts
func (r *Reader) ReadTable(src Source, opts SheetOptions) (*Table, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, src.Name, err)
	}

	name := filepath.Base(src.Name)
	format := DetectFormat(name, data)
	r.logger.WithFields(logger.Fields{
		"source": src.Name,
		"format": format,
		"sheet":  opts.Sheet,
	}).Debug("Reading table")

	switch format {
	case FormatXLSX:
		return readWorkbook(bytes.NewReader(data), name, opts)
	case FormatHTML:
		return readHTMLTable(bytes.NewReader(data), name, opts)
	case FormatLegacyXLS:
		return nil, errors.FileError(errors.CodeFileCorrupted, name, nil).
			WithSuggestion("legacy .xls workbooks are not supported; save the file as .xlsx")
	default:
		return r.base.ReadCSV(bytes.NewReader(data), name, opts)
	}
}
