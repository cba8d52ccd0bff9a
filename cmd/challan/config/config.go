package config

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"challan-service/internal/ifsc"
	"challan-service/internal/models"
	"challan-service/internal/parsers"
	"challan-service/internal/pipeline"
	"challan-service/internal/profile"
	"challan-service/internal/reporter"
	"challan-service/internal/server"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Configuration keys shared by the config file, environment and flags
const (
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogFile   = "log.file"

	KeyDelimiter = "parse.delimiter"

	KeyServerAddr         = "server.addr"
	KeyServerMaxBodyBytes = "server.max_body_bytes"
	KeyServerReadTimeout  = "server.read_timeout"
	KeyServerWriteTimeout = "server.write_timeout"
	KeyServerShutdown     = "server.shutdown_timeout"

	KeyIFSCBaseURL = "ifsc.base_url"
	KeyIFSCTimeout = "ifsc.timeout"

	KeyReportWidth = "report.table_width"
)

// SetDefaults registers the default value of every configuration key
func SetDefaults(v *viper.Viper) {
	// log.format has no default so each command can pick its own
	v.SetDefault(KeyLogLevel, string(logger.DefaultConfig().Level))
	v.SetDefault(KeyLogFile, "")

	v.SetDefault(KeyDelimiter, string(parsers.DefaultParseConfig().Delimiter))

	srv := server.DefaultConfig()
	v.SetDefault(KeyServerAddr, srv.Addr)
	v.SetDefault(KeyServerMaxBodyBytes, srv.MaxBodyBytes)
	v.SetDefault(KeyServerReadTimeout, srv.ReadTimeout)
	v.SetDefault(KeyServerWriteTimeout, srv.WriteTimeout)
	v.SetDefault(KeyServerShutdown, srv.ShutdownTimeout)

	lookup := ifsc.DefaultConfig()
	v.SetDefault(KeyIFSCBaseURL, lookup.BaseURL)
	v.SetDefault(KeyIFSCTimeout, lookup.Timeout)

	v.SetDefault(KeyReportWidth, reporter.DefaultReportConfig().TableMaxWidth)
}

// CreateLoggerConfig creates the logger configuration. Verbose output
// switches to the debug configuration.
func CreateLoggerConfig(v *viper.Viper, verbose bool) (*logger.Config, error) {
	config := logger.DefaultConfig()
	if verbose {
		config = logger.DebugConfig()
	} else if level := v.GetString(KeyLogLevel); level != "" {
		config.Level = logger.Level(strings.ToLower(level))
	}
	if format := v.GetString(KeyLogFormat); format != "" {
		config.Format = logger.Format(strings.ToLower(format))
	}
	if file := v.GetString(KeyLogFile); file != "" {
		config.Output = logger.FileOutput
		config.File = file
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "log", v.GetString(KeyLogLevel), err)
	}
	return config, nil
}

// CreatePipelineConfig creates the pipeline service configuration
func CreatePipelineConfig(v *viper.Viper) (*pipeline.Config, error) {
	config := pipeline.DefaultConfig()

	if delimiter := v.GetString(KeyDelimiter); delimiter != "" {
		if utf8.RuneCountInString(delimiter) != 1 {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyDelimiter, delimiter, nil).
				WithSuggestion("use a single character such as ',' or ';'")
		}
		r, _ := utf8.DecodeRuneInString(delimiter)
		config.Parse.Delimiter = r
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "pipeline", nil, err)
	}
	return config, nil
}

// CreateReportConfig creates a report configuration for the given format
func CreateReportConfig(v *viper.Viper, format string, includeRecords, mismatchesOnly bool) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()
	if format != "" {
		config.Format = reporter.OutputFormat(strings.ToLower(format))
	}
	config.IncludeRecords = includeRecords
	config.MismatchesOnly = mismatchesOnly
	if width := v.GetInt(KeyReportWidth); width != 0 {
		config.TableMaxWidth = width
	}

	if !config.Format.IsValid() {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "report", format, nil).
			WithSuggestion("use one of: console, json, pdf")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "report", format, err)
	}
	return config, nil
}

// CreateServerConfig creates the HTTP server configuration
func CreateServerConfig(v *viper.Viper) (*server.Config, error) {
	config := &server.Config{
		Addr:            v.GetString(KeyServerAddr),
		MaxBodyBytes:    v.GetInt64(KeyServerMaxBodyBytes),
		ReadTimeout:     v.GetDuration(KeyServerReadTimeout),
		WriteTimeout:    v.GetDuration(KeyServerWriteTimeout),
		ShutdownTimeout: v.GetDuration(KeyServerShutdown),
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "server", config.Addr, err)
	}
	return config, nil
}

// CreateIFSCConfig creates the IFSC lookup client configuration
func CreateIFSCConfig(v *viper.Viper) (*ifsc.Config, error) {
	config := &ifsc.Config{
		BaseURL: strings.TrimRight(v.GetString(KeyIFSCBaseURL), "/"),
		Timeout: v.GetDuration(KeyIFSCTimeout),
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "ifsc", config.BaseURL, err)
	}
	return config, nil
}

// Inputs holds the file paths and dates given for one run
type Inputs struct {
	Company     string
	Payroll     string
	PFPayroll   string
	ESIPayroll  string
	PFRoster    string
	ESIRoster   string
	ESITemplate string
	Period      string
	AsOf        string
}

// CreateRequest resolves the company profile and builds a pipeline request
// reading its inputs from disk
func CreateRequest(in Inputs) (*pipeline.Request, error) {
	p, err := profile.Lookup(in.Company)
	if err != nil {
		if challanErr, ok := errors.AsChallanError(err); ok {
			return nil, challanErr.WithSuggestion("use one of: " + strings.Join(profile.Names(), ", "))
		}
		return nil, err
	}

	req := &pipeline.Request{
		Profile: p,
		Sources: pipeline.Sources{
			Payroll:     fileSource(in.Payroll),
			PFPayroll:   fileSource(in.PFPayroll),
			ESIPayroll:  fileSource(in.ESIPayroll),
			PFRoster:    fileSource(in.PFRoster),
			ESIRoster:   fileSource(in.ESIRoster),
			ESITemplate: fileSource(in.ESITemplate),
		},
	}

	if value := strings.TrimSpace(in.Period); value != "" {
		period, err := models.ParsePeriod(value)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "period", value, err)
		}
		req.Period = period
	}
	if value := strings.TrimSpace(in.AsOf); value != "" {
		asOf, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "as-of", value, err).
				WithSuggestion("use the YYYY-MM-DD format")
		}
		req.AsOf = asOf
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func fileSource(path string) parsers.Source {
	path = strings.TrimSpace(path)
	if path == "" {
		return parsers.Source{}
	}
	return parsers.FileSource(path)
}
