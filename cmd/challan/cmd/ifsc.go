package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"challan-service/cmd/challan/config"
	"challan-service/internal/ifsc"
	"challan-service/pkg/logger"
)

// ifscCmd represents the ifsc command
var ifscCmd = &cobra.Command{
	Use:   "ifsc CODE [CODE...]",
	Short: "Look up bank branch IFSC codes",
	Long: `Ifsc validates each code and looks it up in the public IFSC directory.
Codes are upper-cased before lookup. The command fails if any code is
malformed or cannot be found.

Examples:
  challan ifsc SBIN0000300
  challan ifsc hdfc0000001 icic0000002 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIFSC,
}

func init() {
	rootCmd.AddCommand(ifscCmd)

	ifscCmd.Flags().Bool("json", false, "print the lookup results as JSON")
	ifscCmd.Flags().String("base-url", "", "IFSC directory base URL")
	ifscCmd.Flags().Duration("timeout", 0, "lookup timeout")

	viper.BindPFlag(config.KeyIFSCBaseURL, ifscCmd.Flags().Lookup("base-url"))
	viper.BindPFlag(config.KeyIFSCTimeout, ifscCmd.Flags().Lookup("timeout"))
}

func runIFSC(cmd *cobra.Command, args []string) error {
	ifscConfig, err := config.CreateIFSCConfig(viper.GetViper())
	if err != nil {
		return err
	}
	client, err := ifsc.NewClient(ifscConfig)
	if err != nil {
		return err
	}

	var (
		results  []*ifsc.Result
		firstErr error
	)
	for _, code := range args {
		result, err := client.Lookup(cmd.Context(), code)
		if err != nil {
			logger.WithError(err).Debug("IFSC lookup failed")
			if firstErr == nil {
				firstErr = err
			}
			if result == nil {
				result = &ifsc.Result{Code: ifsc.Normalize(code), Status: ifsc.StatusError, Message: "Invalid IFSC format."}
			}
		}
		results = append(results, result)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		printIFSCResults(cmd, results)
	}

	return firstErr
}

func printIFSCResults(cmd *cobra.Command, results []*ifsc.Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"IFSC", "Status", "Bank", "Branch", "City", "Message"})
	for _, result := range results {
		bank := ""
		if result.Data != nil {
			bank = result.Bank()
		}
		tw.AppendRow(table.Row{
			result.Code,
			result.Status,
			bank,
			field(result.Data, "BRANCH"),
			field(result.Data, "CITY"),
			result.Message,
		})
	}
	tw.Render()
}

func field(data map[string]interface{}, key string) string {
	if value, ok := data[key]; ok && value != nil {
		return fmt.Sprint(value)
	}
	return ""
}
