// Package pipeline runs the challan generation flow for one company and
// payroll month.
//
// A run reads the payroll and roster files, extracts wage records,
// calculates the PF and ESI filing rows, verifies every identifier against
// its roster and renders both upload artifacts. Any failure aborts the run
// and no artifacts are produced. A Service keeps no state between runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"challan-service/internal/calculator"
	"challan-service/internal/extractor"
	"challan-service/internal/models"
	"challan-service/internal/parsers"
	"challan-service/internal/reconciler"
	"challan-service/internal/writer"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Config holds configuration options for the pipeline service
type Config struct {
	// Parse configures delimited text inputs
	Parse *parsers.ParseConfig

	// Now supplies the run date when a request sets neither period nor as-of date
	Now func() time.Time
}

// DefaultConfig returns a default configuration for the pipeline service
func DefaultConfig() *Config {
	return &Config{
		Parse: parsers.DefaultParseConfig(),
		Now:   time.Now,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Parse == nil {
		return fmt.Errorf("parse configuration is required")
	}
	if err := c.Parse.Validate(); err != nil {
		return fmt.Errorf("invalid parse configuration: %w", err)
	}
	if c.Now == nil {
		return fmt.Errorf("clock is required")
	}
	return nil
}

// PFResult holds the PF filing rows and their roster verification
type PFResult struct {
	Records      []models.ContributionRecord   `json:"records"`
	Verification []models.ReconciliationRecord `json:"verification"`
}

// ESIResult holds the ESI filing rows and their roster verification
type ESIResult struct {
	Records      []models.AttendanceRecord     `json:"records"`
	Verification []models.ReconciliationRecord `json:"verification"`
}

// Result contains everything a run produced
type Result struct {
	RunID   string        `json:"run_id"`
	Company string        `json:"company"`
	Period  models.Period `json:"period"`
	Cutoff  time.Time     `json:"cutoff"`

	PF      *PFResult  `json:"pf"`
	ESI     *ESIResult `json:"esi"`
	Summary *Summary   `json:"summary"`

	Artifacts *writer.Artifacts `json:"-"`

	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration"`
}

// Service runs challan generation
type Service struct {
	config *Config
	reader *parsers.Reader
	logger logger.Logger
}

// NewService creates a pipeline service; a nil config uses DefaultConfig
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "pipeline", err.Error(), err)
	}

	reader, err := parsers.NewReader(config.Parse)
	if err != nil {
		return nil, err
	}

	return &Service{
		config: config,
		reader: reader,
		logger: logger.GetGlobalLogger().WithComponent("pipeline"),
	}, nil
}

// Run performs one challan generation. Errors outside the known taxonomy
// are returned as unexpected_error and logged with their stack.
func (s *Service) Run(ctx context.Context, req *Request) (result *Result, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := s.config.Now()
	period := req.ProcessingPeriod(start)
	runID := uuid.NewString()

	op := logger.NewOperationLogger("generate_challan", s.logger).
		WithField("run_id", runID).
		WithField("company", req.Profile.Name).
		WithField("period", period.String())

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("panic: %v", r)
		}
		if err == nil {
			return
		}
		challanErr, ok := errors.AsChallanError(err)
		if !ok {
			challanErr = errors.Unexpected("generate challan", err)
			s.logger.WithFields(logger.Fields{
				"run_id": runID,
				"stack":  fmt.Sprintf("%+v", challanErr.StackTrace),
			}).WithError(err).Error("Unexpected failure")
		}
		op.Error(challanErr, "Challan generation failed")
		result, err = nil, challanErr
	}()

	result, err = s.run(ctx, req, period, op)
	if err != nil {
		return nil, err
	}

	result.RunID = runID
	result.ProcessedAt = start
	result.Duration = s.config.Now().Sub(start)
	op.Success("Challan generation completed")
	return result, nil
}

func (s *Service) run(ctx context.Context, req *Request, period models.Period, op *logger.OperationLogger) (*Result, error) {
	p := req.Profile
	calc := calculator.New(p, period)
	extract := extractor.New(p)
	verify := reconciler.New()

	// Step 1: read inputs
	inputs, err := s.readInputs(req)
	if err != nil {
		return nil, err
	}
	op.Step("read_inputs", inputs.pf.Len()+inputs.esi.Len())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 2: PF extraction, calculation and roster verification
	pfWages, err := extract.ExtractPF(inputs.pf, inputs.attendance, inputs.pfRoster)
	if err != nil {
		return nil, err
	}
	pfRecords, err := calc.PF(pfWages)
	if err != nil {
		return nil, err
	}
	pfView, err := verify.Verify(models.SchemePF, reconciler.PFEntries(pfRecords, pfWages), inputs.pfRoster, p.PFRoster)
	if err != nil {
		return nil, err
	}
	op.Step("pf", len(pfRecords))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: ESI extraction, calculation and roster verification
	esiWages, err := extract.ExtractESI(inputs.esi)
	if err != nil {
		return nil, err
	}
	esiRecords, err := calc.ESI(esiWages)
	if err != nil {
		return nil, err
	}
	esiView, err := verify.Verify(models.SchemeESI, reconciler.ESIEntries(esiRecords), inputs.esiRoster, p.ESIRoster)
	if err != nil {
		return nil, err
	}
	op.Step("esi", len(esiRecords))

	// Step 4: render artifacts
	esiWriter, err := s.esiWriter(req.Sources.ESITemplate)
	if err != nil {
		return nil, err
	}
	artifacts, err := writer.Render(esiWriter, pfRecords, esiRecords)
	if err != nil {
		return nil, err
	}
	op.Step("render_artifacts", len(pfRecords)+len(esiRecords))

	summary := Summarize(pfRecords, esiRecords, pfView, esiView)
	if len(summary.ZeroEPS) > 0 {
		op.Warning("Members with zero pension wages", logger.Fields{"members": len(summary.ZeroEPS)})
	}

	return &Result{
		Company:   p.Name,
		Period:    period,
		Cutoff:    calc.Cutoff(),
		PF:        &PFResult{Records: pfRecords, Verification: pfView},
		ESI:       &ESIResult{Records: esiRecords, Verification: esiView},
		Summary:   summary,
		Artifacts: artifacts,
	}, nil
}

type inputs struct {
	pf, attendance, esi *parsers.Table
	pfRoster, esiRoster *parsers.Table
}

func (s *Service) readInputs(req *Request) (*inputs, error) {
	p := req.Profile
	in := &inputs{}
	var err error

	pfSource := req.Sources.PF(p.Layout)
	if in.pf, err = s.reader.ReadTable(pfSource, p.PFSheet); err != nil {
		return nil, err
	}
	if p.Attendance != nil {
		if in.attendance, err = s.reader.ReadTable(pfSource, p.Attendance.Sheet); err != nil {
			return nil, err
		}
	}
	if in.esi, err = s.reader.ReadTable(req.Sources.ESI(p.Layout), p.ESISheet); err != nil {
		return nil, err
	}
	if in.pfRoster, err = s.reader.ReadTable(req.Sources.PFRoster, parsers.FirstSheet); err != nil {
		return nil, err
	}
	if in.esiRoster, err = s.reader.ReadTable(req.Sources.ESIRoster, parsers.FirstSheet); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Service) esiWriter(template parsers.Source) (*writer.ESIWriter, error) {
	if template.IsZero() {
		return writer.NewESIWriter()
	}
	rc, err := template.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return writer.NewESIWriterFromTemplate(rc, template.Name)
}
