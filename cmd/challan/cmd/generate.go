package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"challan-service/cmd/challan/config"
	"challan-service/internal/pipeline"
	"challan-service/internal/profile"
	"challan-service/internal/reporter"
	"challan-service/internal/writer"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Input file flags checked before a run
var inputFileFlags = []string{"payroll", "pf-payroll", "esi-payroll", "pf-roster", "esi-roster", "esi-template"}

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the PF and ESI challan files for a payroll month",
	Long: `Generate reads a company's payroll export and its active PF and ESI member
lists, calculates the monthly contributions and verifies every employee
against the rosters. The review report is always printed; the upload files
are written only when --approve is given.

This command requires:
- A company profile (somany or hng)
- The payroll workbook (somany) or the PF and ESI payroll workbooks (hng)
- The active PF member list and the ESI list of employees

Examples:
  # Review a Somany run without writing anything
  challan generate --company somany --payroll wages.xlsx \
    --pf-roster active_pf.csv --esi-roster esi_list.xls

  # Approve and write PF_CHALLAN.txt and ESI_CHALLAN.xlsx into ./out
  challan generate --company somany --payroll wages.xlsx \
    --pf-roster active_pf.csv --esi-roster esi_list.xls --approve --out-dir out

  # HNG with an explicit period and a PDF review report
  challan generate --company hng --pf-payroll pf.xlsx --esi-payroll esi.xlsx \
    --pf-roster active_pf.csv --esi-roster esi_list.xls \
    --period 2025-06 --output-format pdf --output-file review.pdf`,

	PreRunE: validateRunFlags,
	RunE:    runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addRunFlags(generateCmd)
	generateCmd.Flags().String("out-dir", ".", "directory the challan files are written to")
	generateCmd.Flags().Bool("approve", false, "write the challan files after a successful run")
}

// addRunFlags registers the flags shared by generate and verify
func addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// Input flags
	flags.StringP("company", "c", "", "company profile: "+strings.Join(profile.Names(), ", ")+" (required)")
	flags.StringP("payroll", "p", "", "payroll workbook holding the PF and ESI sheets")
	flags.String("pf-payroll", "", "PF payroll workbook for split layouts")
	flags.String("esi-payroll", "", "ESI payroll workbook for split layouts")
	flags.String("pf-roster", "", "active PF member list")
	flags.String("esi-roster", "", "ESI list of employees")
	flags.String("esi-template", "", "ESIC template workbook supplying the instructions sheet")

	// Period flags
	flags.String("period", "", "payroll month being filed (YYYY-MM), default is the previous month")
	flags.String("as-of", "", "run date (YYYY-MM-DD) the period is derived from")

	// Report flags
	flags.StringP("output-format", "f", "console", "report format: console, json, pdf")
	flags.StringP("output-file", "o", "", "report output file (default: stdout)")
	flags.Bool("include-records", false, "include the full PF and ESI rows in the report")
	flags.Bool("mismatches-only", false, "list only roster rows whose names differ")
}

// validateRunFlags binds the running command's flags to viper so values may
// also come from the config file or CHALLAN_* variables, then checks them
func validateRunFlags(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return errors.Unexpected("bind flags", err)
	}

	if strings.TrimSpace(viper.GetString("company")) == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "company", nil, nil).
			WithSuggestion("pass --company with one of: " + strings.Join(profile.Names(), ", "))
	}

	for _, name := range inputFileFlags {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		if path := viper.GetString(name); path != "" {
			if err := validateFileExists(path, name); err != nil {
				return err
			}
		}
	}

	if reportFile := viper.GetString("output-file"); reportFile != "" {
		dir := filepath.Dir(reportFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return errors.FileError(errors.CodeDirectoryError, dir, err)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, description, nil, nil)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, filePath, err).WithContext("flag", description)
	}
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err).WithContext("flag", description)
	}

	if info.IsDir() {
		return errors.FileError(errors.CodeDirectoryError, filePath, fmt.Errorf("%s is a directory, expected a file", description))
	}

	file, err := os.Open(filePath)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err).WithContext("flag", description)
	}
	file.Close()

	return nil
}

func inputsFromFlags() config.Inputs {
	return config.Inputs{
		Company:     viper.GetString("company"),
		Payroll:     viper.GetString("payroll"),
		PFPayroll:   viper.GetString("pf-payroll"),
		ESIPayroll:  viper.GetString("esi-payroll"),
		PFRoster:    viper.GetString("pf-roster"),
		ESIRoster:   viper.GetString("esi-roster"),
		ESITemplate: viper.GetString("esi-template"),
		Period:      viper.GetString("period"),
		AsOf:        viper.GetString("as-of"),
	}
}

// runChallan runs the pipeline and prints the review report
func runChallan(ctx context.Context, stdout io.Writer) (*pipeline.Result, error) {
	v := viper.GetViper()

	request, err := config.CreateRequest(inputsFromFlags())
	if err != nil {
		return nil, err
	}

	pipelineConfig, err := config.CreatePipelineConfig(v)
	if err != nil {
		return nil, err
	}
	service, err := pipeline.NewService(pipelineConfig)
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "pipeline", nil, err)
	}

	reportConfig, err := config.CreateReportConfig(v, viper.GetString("output-format"),
		viper.GetBool("include-records"), viper.GetBool("mismatches-only"))
	if err != nil {
		return nil, err
	}
	generator, err := reporter.NewSafeReportGenerator(reportConfig, logger.GetGlobalLogger())
	if err != nil {
		return nil, err
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Processing %s payroll...\n", request.Profile.Name)
	}

	result, err := service.Run(ctx, request)
	if err != nil {
		return nil, err
	}

	output := stdout
	if reportFile := viper.GetString("output-file"); reportFile != "" {
		file, err := os.Create(reportFile)
		if err != nil {
			return nil, errors.FileError(errors.CodeFilePermission, reportFile, err)
		}
		defer file.Close()
		output = file
	}

	if err := generator.GenerateReportSafely(result, output); err != nil {
		return nil, err
	}
	return result, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	result, err := runChallan(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if !viper.GetBool("approve") {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nReview complete for %s %s. Rerun with --approve to write %s and %s.\n",
			result.Company, result.Period, writer.PFFileName, writer.ESIFileName)
		return nil
	}

	paths, err := result.Artifacts.Save(viper.GetString("out-dir"))
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	}

	logger.WithFields(logger.Fields{
		"run_id":  result.RunID,
		"company": result.Company,
		"period":  result.Period.String(),
		"files":   len(paths),
	}).Info("Challan files written")
	return nil
}
