// Package server exposes the dashboard views over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vietdv277/sshdash/internal/analytics"
	"github.com/vietdv277/sshdash/internal/export"
	"github.com/vietdv277/sshdash/internal/filter"
	"github.com/vietdv277/sshdash/pkg/types"
)

// EmptyResultWarning is reported when no row matches the filters
const EmptyResultWarning = "No entries match the selected filters. Please adjust your selection."

// TableLoader returns the dataset; implementations cache it
type TableLoader interface {
	Load(ctx context.Context) (*types.LogTable, error)
}

// Handler serves the dashboard API
type Handler struct {
	loader TableLoader
	topN   int
	logger *zap.Logger
}

// NewHandler creates a Handler
func NewHandler(loader TableLoader, topN int, logger *zap.Logger) *Handler {
	if topN <= 0 {
		topN = analytics.DefaultTopN
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		loader: loader,
		topN:   topN,
		logger: logger,
	}
}

// RegisterRoutes registers the API routes on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /api/options", h.getOptions)
	mux.HandleFunc("GET /api/summary", h.getSummary)
	mux.HandleFunc("GET /api/records", h.getRecords)
	mux.HandleFunc("GET /api/export", h.getExport)
}

// OptionsResponse lists the values offered by the filter controls
type OptionsResponse struct {
	Events  []string `json:"events"`
	IPs     []string `json:"ips"`
	MinDate string   `json:"min_date"`
	MaxDate string   `json:"max_date"`
}

// SummaryResponse is the dashboard view of one selection
type SummaryResponse struct {
	analytics.Report
	Warning     string `json:"warning,omitempty"`
	TimeWarning string `json:"time_warning,omitempty"`
}

// RecordsResponse is the raw data view of one selection
type RecordsResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getOptions(w http.ResponseWriter, r *http.Request) {
	table, ok := h.table(w, r)
	if !ok {
		return
	}
	bounds := filter.DateBounds(table)
	writeJSON(w, http.StatusOK, OptionsResponse{
		Events:  filter.EventOptions(table),
		IPs:     filter.IPOptions(table),
		MinDate: filter.FormatDate(bounds.Start),
		MaxDate: filter.FormatDate(bounds.End),
	})
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	filtered, ok := h.filtered(w, r)
	if !ok {
		return
	}

	resp := SummaryResponse{Report: analytics.Build(filtered, h.topN)}
	if resp.Empty {
		resp.Warning = EmptyResultWarning
	} else if !resp.HasTimeData() {
		resp.TimeWarning = "Time data invalid or missing."
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getRecords(w http.ResponseWriter, r *http.Request) {
	filtered, ok := h.filtered(w, r)
	if !ok {
		return
	}

	rows := make([][]string, 0, filtered.Len())
	for _, rec := range filtered.Rows {
		rows = append(rows, rec.Fields)
	}
	writeJSON(w, http.StatusOK, RecordsResponse{
		Columns: filtered.Columns,
		Rows:    rows,
		Total:   filtered.Len(),
	})
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	filtered, ok := h.filtered(w, r)
	if !ok {
		return
	}

	data, err := export.ToCSV(filtered)
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", export.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// table loads the dataset or writes the load error
func (h *Handler) table(w http.ResponseWriter, r *http.Request) (*types.LogTable, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	table, err := h.loader.Load(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	return table, true
}

// filtered loads the dataset and applies the selection from the query string
func (h *Handler) filtered(w http.ResponseWriter, r *http.Request) (*types.LogTable, bool) {
	sel, allDates, err := selectionFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	table, ok := h.table(w, r)
	if !ok {
		return nil, false
	}

	if !allDates {
		sel = filter.FillDates(sel, table)
	}
	if sel.Dates.Complete() && sel.Dates.End.Before(sel.Dates.Start) {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return nil, false
	}

	filtered := filter.Apply(table, sel)
	h.logger.Debug("filters applied",
		zap.String("path", r.URL.Path),
		zap.Bool("all_dates", allDates),
		zap.Int("rows", filtered.Len()),
		zap.Int("total", table.Len()),
	)
	return filtered, true
}

// selectionFromQuery reads from, to, event, all_dates and repeated ip
// parameters. A missing from or to is filled from the data once it is
// loaded, unless all_dates is true.
func selectionFromQuery(r *http.Request) (types.FilterSelection, bool, error) {
	query := r.URL.Query()
	sel, err := filter.NewSelection(query.Get("from"), query.Get("to"), query.Get("event"), query["ip"])
	if err != nil {
		return sel, false, err
	}

	allDates := false
	if v := query.Get("all_dates"); v != "" {
		if allDates, err = strconv.ParseBool(v); err != nil {
			return sel, false, fmt.Errorf("invalid all_dates %q", v)
		}
	}
	if allDates && (query.Get("from") != "" || query.Get("to") != "") {
		return sel, false, errors.New("all_dates cannot be combined with from or to")
	}
	return sel, allDates, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Options configures the HTTP server
type Options struct {
	Addr      string
	RateLimit float64
	Burst     int
}

// NewServer builds an http.Server with the API routes and rate limiting
func NewServer(h *Handler, opts Options) *http.Server {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	limiter := NewRateLimiter(opts.RateLimit, opts.Burst)
	return &http.Server{
		Addr:         opts.Addr,
		Handler:      limiter.Middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
