package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vietdv277/sshdash/internal/analytics"
	"github.com/vietdv277/sshdash/internal/ui"
)

var (
	summaryFilters filterFlags
	summaryHours   bool
	summaryWidth   int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print metrics, top source IPs and the hourly timeline",
	Long: `Print the dashboard view of the filtered dataset: total events, unique
source IPs, the most targeted user, the top source IPs and the hourly event
evolution.

Without --from or --to the range runs from the earliest to the latest date in
the dataset, as on the dashboard's first screen, so rows without a timestamp
are left out. --all-dates turns the date filter off and keeps them.

Examples:
  sshdash summary
  sshdash summary --all-dates
  sshdash summary --from 2025-12-10 --to 2025-12-11
  sshdash summary --event 4625 --ip 10.0.0.7,10.0.0.8 --hours`,
	Aliases: []string{"sum"},
	Args:    cobra.NoArgs,
	RunE:    runSummary,
}

func init() {
	summaryFilters.register(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryHours, "hours", false, "also print one line per hourly bucket")
	summaryCmd.Flags().IntVarP(&summaryWidth, "width", "w", 100, "chart width in columns")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	table, _, err := loadTable(cmd.Context())
	if err != nil {
		return err
	}

	filtered, err := summaryFilters.apply(table)
	if err != nil {
		return err
	}

	report := analytics.Build(filtered, settings.TopN)
	ui.PrintReport(os.Stdout, report, summaryWidth)
	if summaryHours && !report.Empty {
		ui.PrintHourlyTable(os.Stdout, report.Hourly)
	}
	return nil
}
