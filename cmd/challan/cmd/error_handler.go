package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
	out     io.Writer
}

// NewCLIErrorHandler creates a new CLI error handler writing to out
func NewCLIErrorHandler(out io.Writer) *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
		out:     out,
	}
}

// HandleError prints err and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Debug("Command failed")

	if challanErr, ok := errors.AsChallanError(err); ok {
		return h.handleChallanError(challanErr)
	}

	return h.handleGenericError(err)
}

// handleChallanError prints the message, any offender table and the suggestion
func (h *CLIErrorHandler) handleChallanError(err *errors.ChallanError) int {
	fmt.Fprintf(h.out, "Error: %s\n", err.DisplayMessage())

	if len(err.Context) > 0 && len(err.Offenders) == 0 {
		keys := make([]string, 0, len(err.Context))
		for key := range err.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			if value := err.Context[key]; value != nil && value != "" {
				fmt.Fprintf(h.out, "  %s: %v\n", key, value)
			}
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	if h.verbose {
		fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(err.Category))
		if err.Cause != nil {
			fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
		}
	}

	return err.GetExitCode()
}

// handleGenericError handles errors raised outside the challan packages,
// such as cobra flag parsing failures
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(h.out, "Error: File not found\n")
		fmt.Fprintf(h.out, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(h.out, "Error: Permission denied\n")
		fmt.Fprintf(h.out, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(h.out, "Error: Insufficient disk space\n")
		fmt.Fprintf(h.out, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	fmt.Fprintf(h.out, "Error: %v\n", err)
	fmt.Fprintf(h.out, "Run 'challan --help' for usage.\n")
	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check that the payroll and roster files exist and are readable
• Verify the paths passed to --payroll, --pf-roster and --esi-roster
• Make sure --out-dir is writable when using --approve`

	case errors.CategoryParse:
		return `Parse error help:
• Payroll exports must be .xlsx workbooks with the expected sheet names
• The ESI list may be an .xls download (HTML table) or an .xlsx workbook
• Check that the header row was not moved or renamed`

	case errors.CategoryValidation:
		return `Validation error help:
• Every employee needs a UAN or IP number
• Wage and day columns must hold numbers
• Dates of birth must be real dates`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Run 'challan profiles' to see the companies and the files each needs
• Periods use YYYY-MM and run dates use YYYY-MM-DD
• Check the config file syntax if using --config`

	case errors.CategoryReconciliation:
		return `Reconciliation error help:
• Every listed row is missing from the active member list
• Register the member or correct the identifier in the payroll, then rerun
• Download a fresh roster if members joined this month`

	case errors.CategoryNetwork:
		return `Network error help:
• Check your internet connection
• Retry later if the directory service is unavailable`

	default:
		return `For more help:
• Use 'challan --help' for general help
• Use 'challan generate --help' for command-specific help`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
