package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vietdv277/sshdash/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long: `Open the full-screen dashboard. This is also what sshdash runs without a
subcommand.

Keys:
  tab, 1, 2     switch between Dashboard and Raw Data
  f, t          edit the start and end date (YYYY-MM-DD, empty clears)
  [, ], ←, →    cycle the event identifier
  i             pick source IPs (type to search, space toggles)
  e             export the filtered rows as CSV
  r             reset the filters
  q             quit

Logs go to --log-file only, never to the terminal.`,
	Aliases:     []string{"ui", "tui"},
	Annotations: map[string]string{terminalUIAnnotation: "true"},
	Args:        cobra.NoArgs,
	RunE:        runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	table, loader, err := loadTable(cmd.Context())
	if err != nil {
		return err
	}

	return ui.RunDashboard(table, ui.DashboardOptions{
		Source:    loader.Source().Name(),
		ExportDir: settings.ExportDir,
		TopN:      settings.TopN,
		Logger:    logger,
	})
}
