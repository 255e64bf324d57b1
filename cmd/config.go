package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vietdv277/sshdash/internal/config"
	"github.com/vietdv277/sshdash/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration file",
	Long: `Show or change the YAML configuration file.

Values are resolved as: flag > SSHDASH_* environment (also read from .env) >
config file > defaults. Environment names use the key in upper case with dots
replaced by underscores, e.g. SSHDASH_DATA_PATH or SSHDASH_SERVE_ADDR.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Println(ui.MutedStyle.Render("# " + configFileLabel()))
		fmt.Print(string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the configuration file",
	Long: `Set a value in the configuration file.

Keys:
  ` + strings.Join(config.Keys(), "\n  ") + `

Examples:
  sshdash config set data_path /var/log/ssh/datasetssh.csv.gz
  sshdash config set export_dir ~/exports
  sshdash config set serve.rate_limit 5`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(configPath, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s %s = %s\n", ui.SuccessStyle.Render("✓"), args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
