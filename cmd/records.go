package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vietdv277/sshdash/internal/ui"
)

var (
	recordsFilters filterFlags
	recordsLimit   int
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print the filtered rows as a table",
	Long: `Print the raw rows of the filtered dataset with every column. Dates default
to the dataset's bounds; --all-dates also lists rows without a timestamp.

Examples:
  sshdash records
  sshdash records --event 4625 --limit 0`,
	Aliases: []string{"raw", "ls"},
	Args:    cobra.NoArgs,
	RunE:    runRecords,
}

func init() {
	recordsFilters.register(recordsCmd)
	recordsCmd.Flags().IntVarP(&recordsLimit, "limit", "n", 50, "maximum rows to print, 0 for all")
	rootCmd.AddCommand(recordsCmd)
}

func runRecords(cmd *cobra.Command, args []string) error {
	table, _, err := loadTable(cmd.Context())
	if err != nil {
		return err
	}

	filtered, err := recordsFilters.apply(table)
	if err != nil {
		return err
	}

	ui.PrintRecordTable(os.Stdout, filtered, recordsLimit)
	return nil
}
