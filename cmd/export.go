package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vietdv277/sshdash/internal/export"
	"github.com/vietdv277/sshdash/internal/ui"
)

var (
	exportFilters filterFlags
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered rows as CSV",
	Long: `Write the filtered rows to ` + export.Filename + `. The timestamp column is
written in the same dd/mm/yy - HH:MM:SS format the loader reads, so an export
can be loaded again with --data.

-o takes a directory, a file path ending in .csv, or - for stdout. Without it
the file goes to the configured export directory.

A missing --from or --to defaults to the first or last date in the dataset,
which leaves out rows without a timestamp. Pass --all-dates to keep them.

Examples:
  sshdash export --event 4625
  sshdash export --from 2025-12-10 --to 2025-12-10 -o ./reports
  sshdash export --ip 10.0.0.7 -o - | head`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory, .csv file or - for stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	table, _, err := loadTable(cmd.Context())
	if err != nil {
		return err
	}

	filtered, err := exportFilters.apply(table)
	if err != nil {
		return err
	}

	if exportOutput == "-" {
		return export.Write(os.Stdout, filtered)
	}

	dir := exportOutput
	if dir == "" {
		dir = settings.ExportDir
	}

	var path string
	if filepath.Ext(dir) == ".csv" {
		path = dir
		err = export.WriteFileAs(path, filtered)
	} else {
		path, err = export.WriteFile(dir, filtered)
	}
	if err != nil {
		return err
	}

	logger.Info("export written", zap.String("path", path), zap.Int("rows", filtered.Len()))
	fmt.Printf("%s Exported %d rows to %s\n", ui.SuccessStyle.Render("✓"), filtered.Len(), path)
	return nil
}
