package cmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"challan-service/internal/profile"
)

// profilesCmd represents the profiles command
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the supported company profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Company", "Aliases", "Layout", "Input flags", "Description"})

	for _, p := range profile.All() {
		tw.AppendRow(table.Row{
			p.Name,
			strings.Join(p.Aliases, ", "),
			p.Layout,
			strings.Join(inputFlags(p.Layout), " "),
			p.Description,
		})
	}
	tw.Render()
	return nil
}

// inputFlags lists the file flags a layout needs
func inputFlags(layout profile.Layout) []string {
	flags := []string{"--pf-roster", "--esi-roster"}
	if layout == profile.LayoutWorkbook {
		return append([]string{"--payroll"}, flags...)
	}
	return append([]string{"--pf-payroll", "--esi-payroll"}, flags...)
}
