package reporter

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"challan-service/internal/pipeline"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with logging and a console
// fallback for formats that fail to render
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator with error handling
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("use one of: console, json, pdf")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// GenerateReportSafely renders into a buffer first so a failed format never
// leaves partial output behind
func (srg *SafeReportGenerator) GenerateReportSafely(result *pipeline.Result, writer io.Writer) error {
	srg.logger.WithFields(logger.Fields{
		"format": srg.config.Format,
		"output": getWriterDescription(writer),
	}).Debug("Starting report generation")

	if err := srg.validateInputs(result, writer); err != nil {
		srg.logger.WithError(err).Error("Report generation failed: input validation")
		return err
	}

	var buf bytes.Buffer
	if err := srg.GenerateReport(result, &buf); err != nil {
		srg.logger.WithError(err).Warn("Primary report generation failed, attempting fallback")
		if srg.config.Format == FormatConsole {
			return srg.wrapGenerationError(err)
		}
		return srg.generateWithFormatFallback(result, writer, err)
	}

	if _, err := buf.WriteTo(writer); err != nil {
		return errors.FileError(errors.CodeFilePermission, getWriterDescription(writer), err)
	}

	srg.logger.Debug("Report generation completed successfully")
	return nil
}

// validateInputs validates the inputs for report generation
func (srg *SafeReportGenerator) validateInputs(result *pipeline.Result, writer io.Writer) error {
	if result == nil {
		return errors.ValidationError(errors.CodeMissingField, "result", nil, nil).
			WithSuggestion("run the pipeline before generating a report")
	}

	if writer == nil {
		return errors.ValidationError(errors.CodeMissingField, "writer", nil, nil).
			WithSuggestion("provide a valid output writer")
	}

	return nil
}

// generateWithFormatFallback renders the console report instead
func (srg *SafeReportGenerator) generateWithFormatFallback(result *pipeline.Result, writer io.Writer, originalErr error) error {
	fallbackConfig := *srg.config
	fallbackConfig.Format = FormatConsole

	srg.logger.WithField("fallback_format", FormatConsole).Info("Attempting format fallback")

	fallbackGenerator, err := NewReportGenerator(&fallbackConfig)
	if err != nil {
		return srg.wrapGenerationError(originalErr)
	}

	fmt.Fprintf(writer, "NOTE: Report generated in fallback format due to error with requested format\n")
	fmt.Fprintf(writer, "Original error: %v\n\n", originalErr)

	if err := fallbackGenerator.GenerateReport(result, writer); err != nil {
		return errors.InternalError(
			errors.CodeUnexpectedError,
			"report_fallback",
			fmt.Errorf("both primary and fallback generation failed: primary=%v, fallback=%v", originalErr, err),
		)
	}

	return nil
}

// wrapGenerationError wraps generation errors with context
func (srg *SafeReportGenerator) wrapGenerationError(err error) error {
	if challanErr, ok := errors.AsChallanError(err); ok {
		return challanErr
	}

	return errors.InternalError(
		errors.CodeUnexpectedError,
		"report_generation",
		err,
	).WithSuggestion("check the output destination and report format settings")
}

func getWriterDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return fmt.Sprintf("file:%s", w.Name())
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}
