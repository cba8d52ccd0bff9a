package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryParse          ErrorCategory = "parse"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryNetwork        ErrorCategory = "network"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeDirectoryError ErrorCode = "directory_error"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeMissingSheet  ErrorCode = "missing_sheet"
	CodeInvalidData   ErrorCode = "invalid_data"
	CodeEncodingError ErrorCode = "encoding_error"

	// Validation errors
	CodeInvalidAmount     ErrorCode = "invalid_amount"
	CodeInvalidDate       ErrorCode = "invalid_date"
	CodeInvalidIdentifier ErrorCode = "invalid_identifier"
	CodeMissingField      ErrorCode = "missing_field"
	CodeMissingIdentifier ErrorCode = "missing_identifier"
	CodeRowCountMismatch  ErrorCode = "row_count_mismatch"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeUnknownProfile ErrorCode = "unknown_profile"

	// Reconciliation errors
	CodeRosterMismatch   ErrorCode = "roster_mismatch"
	CodeDataInconsistent ErrorCode = "data_inconsistent"

	// Network errors
	CodeConnectionFailed   ErrorCode = "connection_failed"
	CodeTimeout            ErrorCode = "timeout"
	CodeNotFound           ErrorCode = "not_found"
	CodeServiceUnavailable ErrorCode = "service_unavailable"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ChallanError is the base error type for all application errors.
// Errors that point at specific payroll rows carry them in Offenders so the
// boundary can render them as a table.
type ChallanError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Columns    []string          `json:"columns,omitempty"`
	Offenders  []Offender        `json:"offenders,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ChallanError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ChallanError) Unwrap() error {
	return e.Cause
}

// DisplayMessage returns the message followed by the offender table, if any.
func (e *ChallanError) DisplayMessage() string {
	if len(e.Offenders) == 0 {
		return e.Message
	}
	return e.Message + ":\n" + FormatTable(e.Columns, e.Offenders)
}

// GetExitCode returns an appropriate exit code for the error
func (e *ChallanError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation, CategoryInternal:
		return 5
	case CategoryNetwork:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ChallanError) WithContext(key string, value interface{}) *ChallanError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ChallanError) WithSuggestion(suggestion string) *ChallanError {
	e.Suggestion = suggestion
	return e
}

// WithOffenders attaches the rows responsible for the error
func (e *ChallanError) WithOffenders(columns []string, offenders []Offender) *ChallanError {
	e.Columns = columns
	e.Offenders = offenders
	return e
}

// New creates a new ChallanError
func New(category ErrorCategory, code ErrorCode, message string) *ChallanError {
	return &ChallanError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ChallanError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ChallanError {
	if err == nil {
		return nil
	}

	return &ChallanError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func newOrWrap(err error, category ErrorCategory, code ErrorCode, message string) *ChallanError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ChallanError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file could not be read as a spreadsheet: %s", path)
		suggestion = "open the file in a spreadsheet program and save it again as .xlsx"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is writable"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	return newOrWrap(err, CategoryFile, code, message).
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, file string, row int, column string, value string, err error) *ChallanError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in %s at row %d, column '%s': '%s'", file, row, column, value)
		suggestion = "check the sheet layout matches the selected company profile"
	case CodeMissingSheet:
		message = fmt.Sprintf("sheet '%s' not found in %s", column, file)
		suggestion = "check the workbook contains the expected sheet names"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in %s at row %d, column '%s': '%s'", file, row, column, value)
		suggestion = "correct the cell value and upload the file again"
	case CodeEncodingError:
		message = fmt.Sprintf("encoding error in %s at line %d", file, row)
		suggestion = "ensure the file is saved in UTF-8 encoding"
	default:
		message = fmt.Sprintf("parse error in %s at row %d", file, row)
		suggestion = "check the file format and data integrity"
	}

	return newOrWrap(err, CategoryParse, code, message).
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("row", row).
		WithContext("column", column).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ChallanError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "wage cells must hold plain numbers without currency symbols"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use a date cell or the DD-Mon-YYYY format (e.g. 15-Mar-1970)"
	case CodeInvalidIdentifier:
		message = fmt.Sprintf("invalid identifier in field '%s': %v", field, value)
		suggestion = "identifiers must be whole numbers"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	return newOrWrap(err, CategoryValidation, code, message).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ChallanError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the command help for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting as a flag, environment variable or config file entry"
	case CodeUnknownProfile:
		message = fmt.Sprintf("unknown company profile: %v", value)
		suggestion = "run 'challan profiles' to list the supported companies"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	return newOrWrap(err, CategoryConfiguration, code, message).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// NetworkError creates a network-related error with the given message
func NetworkError(code ErrorCode, endpoint string, message string, err error) *ChallanError {
	return newOrWrap(err, CategoryNetwork, code, message).
		WithContext("endpoint", endpoint)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ChallanError {
	var message string
	var suggestion string

	switch code {
	case CodeUnexpectedError:
		message = fmt.Sprintf("unexpected error during %s", operation)
		suggestion = "this is likely a bug - please report it with the error details"
	default:
		message = fmt.Sprintf("internal error during %s", operation)
		suggestion = "try again or contact support if the problem persists"
	}

	return newOrWrap(err, CategoryInternal, code, message).
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// MissingIdentifier reports payroll rows that lack the scheme identifier.
func MissingIdentifier(identifier, sheet string, columns []string, offenders []Offender) *ChallanError {
	message := fmt.Sprintf("Missing %s in %s sheet for the following rows", identifier, sheet)
	return New(CategoryValidation, CodeMissingIdentifier, message).
		WithOffenders(columns, offenders).
		WithSuggestion(fmt.Sprintf("fill in the %s for every listed employee", identifier)).
		WithContext("identifier", identifier).
		WithContext("rows", len(offenders))
}

// SchemaError reports a table that lacks required columns.
func SchemaError(table string, missing []string) *ChallanError {
	message := fmt.Sprintf("%s is missing required columns: %s", table, strings.Join(missing, ", "))
	return New(CategoryParse, CodeMissingColumn, message).
		WithSuggestion("check the header row matches the selected company profile").
		WithContext("table", table).
		WithContext("missing_columns", missing)
}

// RowCountMismatch reports two sheets that must align row for row but do not.
func RowCountMismatch(left, right string, leftRows, rightRows int) *ChallanError {
	message := fmt.Sprintf("%s has %d rows but %s has %d rows", left, leftRows, right, rightRows)
	return New(CategoryValidation, CodeRowCountMismatch, message).
		WithSuggestion(fmt.Sprintf("every employee in %s must also appear in %s", left, right)).
		WithContext("left", left).
		WithContext("right", right)
}

// ReconciliationFailure reports payroll identifiers that are absent from the roster.
func ReconciliationFailure(identifier, roster string, columns []string, offenders []Offender) *ChallanError {
	message := fmt.Sprintf("The following %s from WAGES sheet were not found in %s", identifier, roster)
	return New(CategoryReconciliation, CodeRosterMismatch, message).
		WithOffenders(columns, offenders).
		WithSuggestion("register the members or correct the identifiers before filing").
		WithContext("roster", roster).
		WithContext("unmatched", len(offenders))
}

// Unexpected wraps an error that does not belong to the known taxonomy.
func Unexpected(operation string, err error) *ChallanError {
	return InternalError(CodeUnexpectedError, operation, err)
}

// IsChallanError checks if an error is a ChallanError
func IsChallanError(err error) bool {
	_, ok := err.(*ChallanError)
	return ok
}

// AsChallanError extracts a ChallanError from an error chain
func AsChallanError(err error) (*ChallanError, bool) {
	var challanErr *ChallanError
	if errors.As(err, &challanErr) {
		return challanErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a ChallanError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ChallanError {
	if err == nil {
		return nil
	}

	if challanErr, ok := AsChallanError(err); ok {
		return challanErr
	}

	return Wrap(err, category, code, message)
}
