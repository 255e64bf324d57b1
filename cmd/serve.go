package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vietdv277/sshdash/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard views as a JSON API",
	Long: `Serve the dashboard over HTTP. Every endpoint accepts the filter query
parameters from, to (YYYY-MM-DD), event and ip (repeatable). A missing from
or to defaults to the dataset's first or last date; all_dates=true turns the
date filter off instead.

Endpoints:
  GET /api/options   event ids, source IPs and the date bounds
  GET /api/summary   metrics, top source IPs and the hourly series
  GET /api/records   columns and filtered rows
  GET /api/export    filtered rows as filtered_ssh_logs.csv
  GET /healthz

Requests are rate limited per client IP (serve.rate_limit, serve.burst).

Examples:
  sshdash serve
  sshdash serve --addr 127.0.0.1:9000
  curl 'localhost:8080/api/summary?event=4625&ip=10.0.0.7'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load up front so a missing dataset stops the server from starting
	table, loader, err := loadTable(ctx)
	if err != nil {
		return err
	}

	handler := server.NewHandler(loader, settings.TopN, logger)
	srv := server.NewServer(handler, server.Options{
		Addr:      settings.Serve.Addr,
		RateLimit: settings.Serve.RateLimit,
		Burst:     settings.Serve.Burst,
	})

	logger.Info("serving dataset",
		zap.String("source", loader.Source().Name()),
		zap.Int("rows", table.Len()),
		zap.String("addr", srv.Addr),
	)
	fmt.Fprintf(os.Stderr, "Serving %s (%d rows) on %s\n", loader.Source().Name(), table.Len(), srv.Addr)

	return server.Run(ctx, srv, logger)
}
