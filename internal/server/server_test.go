package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vietdv277/sshdash/internal/dataset"
	"github.com/vietdv277/sshdash/internal/export"
)

const sampleCSV = `IP Source,Identifiant Evenement,Date et Heure,Utilisateur Vise
192.168.1.5,E1,10/12/25 - 06:55:46,root
192.168.1.5,E1,10/12/25 - 06:58:10,root
10.0.0.7,E2,10/12/25 - 09:01:02,admin
10.0.0.8,E2,11/12/25 - 10:00:00,admin
,E3,bad,
`

type memorySource struct{ content string }

func (s memorySource) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.content)), nil
}

func (s memorySource) Name() string { return "memory.csv" }

func setupMux(t *testing.T) *http.ServeMux {
	t.Helper()
	h := NewHandler(dataset.NewLoader(memorySource{sampleCSV}), 5, nil)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestOptions(t *testing.T) {
	rec := get(t, setupMux(t), "/api/options")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[OptionsResponse](t, rec)
	if strings.Join(resp.Events, ",") != "All,E1,E2,E3" {
		t.Errorf("events = %v", resp.Events)
	}
	if strings.Join(resp.IPs, ",") != "10.0.0.7,10.0.0.8,192.168.1.5" {
		t.Errorf("ips = %v", resp.IPs)
	}
	if resp.MinDate != "2025-12-10" || resp.MaxDate != "2025-12-11" {
		t.Errorf("bounds = %s..%s", resp.MinDate, resp.MaxDate)
	}
}

func TestSummary(t *testing.T) {
	rec := get(t, setupMux(t), "/api/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[SummaryResponse](t, rec)
	// The row without a timestamp falls outside the default date range.
	if resp.Metrics.TotalEvents != 4 || resp.Metrics.UniqueIPs != 3 || resp.Metrics.TopTargetUser != "root" {
		t.Errorf("metrics = %+v", resp.Metrics)
	}
	if len(resp.TopIPs) != 3 || resp.TopIPs[0].IP != "192.168.1.5" || resp.TopIPs[0].Count != 2 {
		t.Errorf("top ips = %+v", resp.TopIPs)
	}
	// 2025-12-10 06:00 through 2025-12-11 10:00 inclusive
	if len(resp.Hourly) != 29 {
		t.Errorf("hourly buckets = %d, want 29", len(resp.Hourly))
	}
	if resp.Warning != "" {
		t.Errorf("unexpected warning %q", resp.Warning)
	}
}

func TestSummaryAllDates(t *testing.T) {
	rec := get(t, setupMux(t), "/api/summary?all_dates=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[SummaryResponse](t, rec)
	if resp.Metrics.TotalEvents != 5 {
		t.Errorf("total = %d, want 5 with the date filter off", resp.Metrics.TotalEvents)
	}
}

func TestSummaryOneDateDefaultsOtherEnd(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"from=2025-12-11", 1},
		{"to=2025-12-10", 3},
		{"from=2025-12-10", 4},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(t, setupMux(t), "/api/summary?"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			resp := decode[SummaryResponse](t, rec)
			if resp.Metrics.TotalEvents != tt.want {
				t.Errorf("total = %d, want %d", resp.Metrics.TotalEvents, tt.want)
			}
		})
	}
}

func TestSummaryFiltered(t *testing.T) {
	rec := get(t, setupMux(t), "/api/summary?from=2025-12-10&to=2025-12-10&event=E2")
	resp := decode[SummaryResponse](t, rec)
	if resp.Metrics.TotalEvents != 1 || resp.Metrics.TopTargetUser != "admin" {
		t.Errorf("metrics = %+v", resp.Metrics)
	}
}

func TestSummaryEmptyResult(t *testing.T) {
	rec := get(t, setupMux(t), "/api/summary?ip=203.0.113.1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for an empty result", rec.Code)
	}
	resp := decode[SummaryResponse](t, rec)
	if !resp.Empty || resp.Warning != EmptyResultWarning {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Metrics.TotalEvents != 0 || resp.Metrics.TopTargetUser != "N/A" {
		t.Errorf("metrics = %+v", resp.Metrics)
	}
}

func TestSummaryBadDates(t *testing.T) {
	for _, q := range []string{
		"from=10/12/25",
		"from=2025-12-11&to=2025-12-10",
		"from=2025-12-12",
		"all_dates=maybe",
		"all_dates=true&from=2025-12-10",
	} {
		rec := get(t, setupMux(t), "/api/summary?"+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestRecords(t *testing.T) {
	rec := get(t, setupMux(t), "/api/records?ip=192.168.1.5&ip=10.0.0.8")
	resp := decode[RecordsResponse](t, rec)
	if resp.Total != 3 || len(resp.Rows) != 3 {
		t.Errorf("total = %d rows = %d", resp.Total, len(resp.Rows))
	}
	if len(resp.Columns) != 4 || resp.Rows[0][2] != "10/12/25 - 06:55:46" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestExport(t *testing.T) {
	rec := get(t, setupMux(t), "/api/export?event=E1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	want := fmt.Sprintf("attachment; filename=%q", export.Filename)
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Errorf("content disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("export lines = %d, want 3:\n%s", len(lines), rec.Body.String())
	}
}

func TestLoadFailure(t *testing.T) {
	h := NewHandler(dataset.NewLoader(dataset.NewFileSource(t.TempDir()+"/missing.csv")), 5, nil)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := get(t, mux, "/api/summary")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "file not found") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	h := NewHandler(dataset.NewLoader(memorySource{sampleCSV}), 5, nil)
	srv := NewServer(h, Options{RateLimit: 1, Burst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, get(t, srv.Handler, "/healthz").Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatal("disabled limiter rejected a request")
		}
	}
}
