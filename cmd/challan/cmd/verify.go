package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check payroll identifiers against the member rosters",
	Long: `Verify runs the full calculation and roster check and prints the review
report, but never writes the challan files. Use it to fix unmatched UANs or
IP numbers before generating.

Examples:
  challan verify --company somany --payroll wages.xlsx \
    --pf-roster active_pf.csv --esi-roster esi_list.xls --mismatches-only
  challan verify --company hng --pf-payroll pf.xlsx --esi-payroll esi.xlsx \
    --pf-roster active_pf.csv --esi-roster esi_list.xls --output-format json`,

	PreRunE: validateRunFlags,
	RunE:    runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	addRunFlags(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	result, err := runChallan(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nAll %d employees found on both rosters (%d PF and %d ESI name differences).\n",
		result.Summary.Employees, result.Summary.PFNameMismatches, result.Summary.ESINameMismatches)
	return nil
}
