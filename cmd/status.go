package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietdv277/sshdash/internal/aws"
	"github.com/vietdv277/sshdash/internal/config"
	"github.com/vietdv277/sshdash/internal/dataset"
	"github.com/vietdv277/sshdash/internal/filter"
	"github.com/vietdv277/sshdash/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the data source and load status",
	Long: `Load the configured dataset and report where it comes from, how many rows
it has, how many timestamps could not be parsed and the observed date range.
For S3 datasets the AWS identity is checked first.

Examples:
  sshdash status
  sshdash status --data s3://bucket/logs/datasetssh.csv --profile prod`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fmt.Println("Current Status")
	fmt.Println(ui.MutedStyle.Render("─────────────────────────────────"))
	fmt.Println()

	path := settings.DataPath
	fmt.Printf("Data:     %s\n", ui.HeaderStyle.Render(path))
	fmt.Printf("Config:   %s\n", ui.MutedStyle.Render(configFileLabel()))

	if aws.IsS3URI(path) {
		if !displayAWSStatus(ctx) {
			return nil
		}
	}
	fmt.Println()

	fmt.Print("Load:     ")
	table, loader, err := loadTable(ctx)
	if err != nil {
		fmt.Println(ui.ErrorStyle.Render("✗ Failed"))
		if errors.Is(err, dataset.ErrFileNotFound) {
			fmt.Printf("          %s\n", ui.MutedStyle.Render("File not found: "+path))
			return nil
		}
		fmt.Printf("          %s\n", ui.MutedStyle.Render(err.Error()))
		return nil
	}

	stats := loader.Stats()
	fmt.Println(ui.SuccessStyle.Render("✓ Loaded") + ui.MutedStyle.Render(fmt.Sprintf(" in %s", stats.Duration.Round(time.Millisecond))))
	fmt.Printf("Columns:  %d\n", len(table.Columns))
	fmt.Printf("Rows:     %d\n", stats.Rows)
	if stats.NullTimestamps > 0 {
		fmt.Printf("Invalid:  %s\n", ui.WarningStyle.Render(fmt.Sprintf("%d rows with an unparseable timestamp", stats.NullTimestamps)))
	} else {
		fmt.Printf("Invalid:  %s\n", ui.MutedStyle.Render("none"))
	}

	bounds := filter.DateBounds(table)
	fmt.Printf("Dates:    %s → %s\n", filter.FormatDate(bounds.Start), filter.FormatDate(bounds.End))
	fmt.Printf("Events:   %d distinct\n", len(filter.EventOptions(table))-1)
	fmt.Printf("IPs:      %d distinct\n", len(filter.IPOptions(table)))

	return nil
}

// displayAWSStatus prints the caller identity used for S3 reads and reports
// whether authentication succeeded
func displayAWSStatus(ctx context.Context) bool {
	if settings.AWS.Profile == "" {
		fmt.Printf("Profile:  %s\n", ui.MutedStyle.Render("(default credential chain)"))
	} else if p, ok := aws.LookupProfile(settings.AWS.Profile); ok {
		fmt.Printf("Profile:  %s %s\n", p.Name, ui.MutedStyle.Render("("+p.Source+")"))
	} else {
		fmt.Printf("Profile:  %s %s\n", settings.AWS.Profile, ui.ErrorStyle.Render("(not found)"))
	}
	if settings.AWS.Endpoint != "" {
		fmt.Printf("Endpoint: %s\n", settings.AWS.Endpoint)
	}

	fmt.Print("Auth:     ")
	client, err := newAWSClient(ctx)
	if err == nil {
		var identity *aws.CallerIdentity
		if identity, err = client.GetCallerIdentity(ctx); err == nil {
			fmt.Println(ui.SuccessStyle.Render("✓ Authenticated"))
			fmt.Printf("Region:   %s\n", client.Region())
			fmt.Printf("Account:  %s\n", identity.Account)
			fmt.Printf("ARN:      %s\n", ui.MutedStyle.Render(identity.Arn))
			return true
		}
	}

	fmt.Println(ui.ErrorStyle.Render("✗ Not authenticated"))
	fmt.Printf("          %s\n", ui.MutedStyle.Render(err.Error()))
	fmt.Println()
	fmt.Println("To authenticate:")
	if settings.AWS.Profile != "" {
		fmt.Printf("  aws sso login --profile %s\n", settings.AWS.Profile)
	} else {
		fmt.Println("  aws configure")
	}
	return false
}

func configFileLabel() string {
	if configPath != "" {
		return configPath
	}
	return config.GetConfigPath()
}
