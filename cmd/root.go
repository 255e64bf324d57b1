package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vietdv277/sshdash/internal/aws"
	"github.com/vietdv277/sshdash/internal/config"
	"github.com/vietdv277/sshdash/internal/dataset"
	"github.com/vietdv277/sshdash/internal/logging"
	"github.com/vietdv277/sshdash/pkg/types"
)

// terminalUIAnnotation marks commands that take over the terminal and must
// not log to stderr
const terminalUIAnnotation = "terminal-ui"

var (
	// Global flags
	dataPath   string
	configPath string
	profile    string
	region     string
	logLevel   string
	logFile    string

	// Resolved in PersistentPreRunE
	settings *config.Config
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "sshdash",
	Short: "SSH log dashboard - explore SSH connection events from a CSV dataset",
	Long: `sshdash loads a CSV export of SSH connection events and lets you filter it
by date range, event identifier and source IP. It shows key metrics, the most
aggressive source IPs, the hourly event evolution and the raw rows, and can
export the filtered rows as CSV.

Interactive:
  sshdash                          # Open the dashboard
  sshdash --data logs.csv.gz       # Open a compressed dataset
  sshdash --data s3://bucket/key   # Read the dataset from S3

Scripting:
  sshdash summary --from 2025-12-10 --to 2025-12-11
  sshdash records --event 4625 --ip 10.0.0.7
  sshdash export --event 4625 -o ./out

Server:
  sshdash serve --addr :8080       # JSON API and CSV download`,
	Annotations:   map[string]string{terminalUIAnnotation: "true"},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: runDashboard,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err == nil {
		return
	}

	if errors.Is(err, dataset.ErrFileNotFound) {
		fmt.Fprintf(os.Stderr, "File not found: %s\n", currentDataPath())
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags (available to all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&dataPath, "data", "d", "", "dataset path, .gz/.zst or s3://bucket/key (default "+dataset.DefaultPath+")")
	pf.StringVar(&configPath, "config", "", "config file (default "+config.GetConfigPath()+")")
	pf.StringVarP(&profile, "profile", "p", "", "AWS profile for S3 datasets")
	pf.StringVarP(&region, "region", "r", "", "AWS region for S3 datasets")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")

	// Bind flags to viper
	_ = viper.BindPFlag("data_path", pf.Lookup("data"))
	_ = viper.BindPFlag("aws.profile", pf.Lookup("profile"))
	_ = viper.BindPFlag("aws.region", pf.Lookup("region"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.file", pf.Lookup("log-file"))
}

func initConfig() {
	// A .env file in the working directory is optional
	_ = godotenv.Load()

	// Read from environment variables: SSHDASH_DATA_PATH, SSHDASH_LOG_LEVEL, ...
	viper.SetEnvPrefix("SSHDASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// setup resolves the configuration and builds the logger for cmd
func setup(cmd *cobra.Command) error {
	cfg, err := resolveConfig(configPath)
	if err != nil {
		return err
	}
	settings = cfg

	build := logging.New
	if cmd.Annotations[terminalUIAnnotation] == "true" {
		build = logging.ForTerminalUI
	}
	l, err := build(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// resolveConfig layers flags over environment over the config file over
// defaults
func resolveConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	viper.SetDefault("data_path", cfg.DataPath)
	viper.SetDefault("export_dir", cfg.ExportDir)
	viper.SetDefault("top_n", cfg.TopN)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.file", cfg.Log.File)
	viper.SetDefault("aws.profile", cfg.AWS.Profile)
	viper.SetDefault("aws.region", cfg.AWS.Region)
	viper.SetDefault("aws.endpoint", cfg.AWS.Endpoint)
	viper.SetDefault("serve.addr", cfg.Serve.Addr)
	viper.SetDefault("serve.rate_limit", cfg.Serve.RateLimit)
	viper.SetDefault("serve.burst", cfg.Serve.Burst)

	cfg.DataPath = viper.GetString("data_path")
	cfg.ExportDir = viper.GetString("export_dir")
	cfg.TopN = viper.GetInt("top_n")
	cfg.Log.Level = viper.GetString("log.level")
	cfg.Log.File = viper.GetString("log.file")
	cfg.AWS.Profile = viper.GetString("aws.profile")
	cfg.AWS.Region = viper.GetString("aws.region")
	cfg.AWS.Endpoint = viper.GetString("aws.endpoint")
	cfg.Serve.Addr = viper.GetString("serve.addr")
	cfg.Serve.RateLimit = viper.GetFloat64("serve.rate_limit")
	cfg.Serve.Burst = viper.GetInt("serve.burst")

	if cfg.DataPath == "" {
		cfg.DataPath = dataset.DefaultPath
	}
	if cfg.TopN <= 0 {
		return nil, fmt.Errorf("top_n must be a positive integer, got %d", cfg.TopN)
	}
	return cfg, nil
}

func currentDataPath() string {
	if settings != nil {
		return settings.DataPath
	}
	if dataPath != "" {
		return dataPath
	}
	return dataset.DefaultPath
}

// newSource returns the dataset source for path: S3 for s3:// URIs, the
// local filesystem otherwise
func newSource(ctx context.Context, path string) (dataset.Source, error) {
	if !aws.IsS3URI(path) {
		return dataset.NewFileSource(path), nil
	}

	client, err := newAWSClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.NewS3Source(path)
}

func newAWSClient(ctx context.Context) (*aws.Client, error) {
	if err := aws.CheckProfile(settings.AWS.Profile); err != nil {
		return nil, err
	}
	return aws.NewClient(ctx,
		aws.WithProfile(settings.AWS.Profile),
		aws.WithRegion(settings.AWS.Region),
		aws.WithEndpoint(settings.AWS.Endpoint),
	)
}

// newLoader builds the memoizing loader for the configured dataset
func newLoader(ctx context.Context) (*dataset.Loader, error) {
	src, err := newSource(ctx, settings.DataPath)
	if err != nil {
		return nil, err
	}
	return dataset.NewLoader(src, dataset.WithLogger(logger)), nil
}

// loadTable loads the configured dataset once
func loadTable(ctx context.Context) (*types.LogTable, *dataset.Loader, error) {
	loader, err := newLoader(ctx)
	if err != nil {
		return nil, nil, err
	}
	table, err := loader.Load(ctx)
	if err != nil {
		return nil, loader, err
	}
	return table, loader, nil
}
