// Package reporter renders the review report shown before a challan is
// approved for upload.
//
// The report places the payroll names beside the roster names for every
// identifier and lists the run totals and the members with zero pension
// wages, so an operator can sanity check the figures.
//
// Supported output formats:
//   - Console: rounded tables for terminal display
//   - JSON: structured data for programmatic consumption
//   - PDF: a printable copy for sign-off
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(&reporter.ReportConfig{
//		Format:        reporter.FormatPDF,
//		TableMaxWidth: 160,
//	})
//	err = generator.GenerateReport(result, file)
package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"challan-service/internal/models"
	"challan-service/internal/pipeline"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatPDF     OutputFormat = "pdf"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatPDF:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeRecords adds the full PF and ESI filing rows
	IncludeRecords bool `json:"include_records"`

	// MismatchesOnly limits verification tables to rows whose names differ
	MismatchesOnly bool `json:"mismatches_only"`

	// TableMaxWidth caps console table rows; longer rows are truncated
	TableMaxWidth int `json:"table_max_width"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatConsole,
		IncludeRecords: false,
		MismatchesOnly: false,
		TableMaxWidth:  160,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.TableMaxWidth < 50 {
		return fmt.Errorf("table max width must be at least 50 characters, got %d", c.TableMaxWidth)
	}

	return nil
}

// ReportGenerator generates review reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport writes the review report for a pipeline result
func (rg *ReportGenerator) GenerateReport(result *pipeline.Result, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("pipeline result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatPDF:
		return rg.generatePDFReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// jsonReport is the serialized form of a review report
type jsonReport struct {
	RunID   string            `json:"run_id"`
	Company string            `json:"company"`
	Period  string            `json:"period"`
	Cutoff  string            `json:"cutoff"`
	Summary *pipeline.Summary `json:"summary"`

	PFVerification  []models.ReconciliationRecord `json:"pf_verification"`
	ESIVerification []models.ReconciliationRecord `json:"esi_verification"`

	PFRecords  []models.ContributionRecord `json:"pf_records,omitempty"`
	ESIRecords []models.AttendanceRecord   `json:"esi_records,omitempty"`
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(result *pipeline.Result, writer io.Writer) error {
	report := jsonReport{
		RunID:           result.RunID,
		Company:         result.Company,
		Period:          result.Period.String(),
		Cutoff:          result.Cutoff.Format("2006-01-02"),
		Summary:         result.Summary,
		PFVerification:  rg.verificationRows(pfView(result)),
		ESIVerification: rg.verificationRows(esiView(result)),
	}
	if rg.config.IncludeRecords {
		if result.PF != nil {
			report.PFRecords = result.PF.Records
		}
		if result.ESI != nil {
			report.ESIRecords = result.ESI.Records
		}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(report)
}

// verificationRows applies the mismatch filter
func (rg *ReportGenerator) verificationRows(view []models.ReconciliationRecord) []models.ReconciliationRecord {
	if !rg.config.MismatchesOnly {
		return view
	}
	filtered := make([]models.ReconciliationRecord, 0)
	for _, record := range view {
		if !record.NameMatches() {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func pfView(result *pipeline.Result) []models.ReconciliationRecord {
	if result.PF == nil {
		return nil
	}
	return result.PF.Verification
}

func esiView(result *pipeline.Result) []models.ReconciliationRecord {
	if result.ESI == nil {
		return nil
	}
	return result.ESI.Verification
}
