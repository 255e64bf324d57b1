package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vietdv277/sshdash/internal/dataset"
	"github.com/vietdv277/sshdash/internal/filter"
	"github.com/vietdv277/sshdash/pkg/types"
)

func at(s string) types.LogRecord {
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return types.LogRecord{Timestamp: ts, TimestampValid: true}
}

func withIP(r types.LogRecord, ip string) types.LogRecord {
	r.SourceIP = ip
	return r
}

func withUser(r types.LogRecord, user string) types.LogRecord {
	r.TargetUser = user
	return r
}

var fullHeader = []string{types.ColumnSourceIP, types.ColumnEventID, types.ColumnTimestamp, types.ColumnTargetUser}

func ipTable(counts ...any) *types.LogTable {
	t := &types.LogTable{Columns: fullHeader}
	for i := 0; i < len(counts); i += 2 {
		ip := counts[i].(string)
		for n := 0; n < counts[i+1].(int); n++ {
			t.Rows = append(t.Rows, types.LogRecord{SourceIP: ip})
		}
	}
	return t
}

func TestTopSourceIPs(t *testing.T) {
	table := ipTable("A", 10, "B", 7, "C", 7, "D", 3)
	got := TopSourceIPs(table, DefaultTopN)

	want := []types.IPCount{{IP: "A", Count: 10}, {IP: "B", Count: 7}, {IP: "C", Count: 7}, {IP: "D", Count: 3}}
	if len(got) != len(want) {
		t.Fatalf("ranking = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ranking[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTopSourceIPsTruncatesAndBreaksTiesByFirstSeen(t *testing.T) {
	table := ipTable("F", 1, "E", 2, "D", 2, "C", 3, "B", 4, "A", 5, "G", 1)
	// interleave a later duplicate to check first-seen is by first occurrence
	table.Rows = append(table.Rows, types.LogRecord{SourceIP: "F"}, types.LogRecord{})

	got := TopSourceIPs(table, 5)
	want := []string{"A", "B", "C", "F", "E"}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	for i := range want {
		if got[i].IP != want[i] {
			t.Errorf("ranking[%d] = %s, want %s (%v)", i, got[i].IP, want[i], got)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Errorf("ranking not descending at %d: %v", i, got)
		}
	}
}

func TestTopSourceIPsEmpty(t *testing.T) {
	if got := TopSourceIPs(&types.LogTable{}, 5); len(got) != 0 {
		t.Errorf("ranking = %v, want empty", got)
	}
}

func TestSummarize(t *testing.T) {
	table := &types.LogTable{Columns: fullHeader, Rows: []types.LogRecord{
		withUser(withIP(at("2025-12-10 06:00"), "A"), "root"),
		withUser(withIP(at("2025-12-10 06:10"), "B"), "admin"),
		withUser(withIP(at("2025-12-10 06:20"), "A"), "admin"),
		withUser(withIP(at("2025-12-10 06:30"), ""), "root"),
		withUser(withIP(at("2025-12-10 06:40"), "C"), ""),
	}}

	got := Summarize(table)
	if got.TotalEvents != 5 {
		t.Errorf("total = %d, want 5", got.TotalEvents)
	}
	if got.UniqueIPs != 3 {
		t.Errorf("unique ips = %d, want 3", got.UniqueIPs)
	}
	// root and admin tie at 2; root was seen first
	if got.TopTargetUser != "root" {
		t.Errorf("top user = %q, want root", got.TopTargetUser)
	}
	if got.UniqueIPs > got.TotalEvents {
		t.Error("unique ips exceeds total events")
	}
}

func TestSummarizeTopTargetUserFallback(t *testing.T) {
	tests := []struct {
		name  string
		table *types.LogTable
	}{
		{"column absent", &types.LogTable{
			Columns: []string{types.ColumnSourceIP, types.ColumnEventID, types.ColumnTimestamp},
			Rows:    []types.LogRecord{withIP(at("2025-12-10 06:00"), "A")},
		}},
		{"all null", &types.LogTable{
			Columns: fullHeader,
			Rows:    []types.LogRecord{withIP(at("2025-12-10 06:00"), "A")},
		}},
		{"empty", &types.LogTable{Columns: fullHeader}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.table).TopTargetUser; got != types.NoTargetUser {
				t.Errorf("top user = %q, want N/A", got)
			}
		})
	}
}

func TestHourlyEvolution(t *testing.T) {
	table := &types.LogTable{Rows: []types.LogRecord{
		at("2025-12-10 08:59"),
		at("2025-12-10 06:00"),
		at("2025-12-10 06:59"),
		{}, // null timestamp
		at("2025-12-10 07:00"),
		at("2025-12-10 08:00"),
		at("2025-12-10 10:15"),
	}}

	got := HourlyEvolution(table)
	want := []struct {
		hour  string
		count int
	}{
		{"2025-12-10 06:00", 2},
		{"2025-12-10 07:00", 1},
		{"2025-12-10 08:00", 2},
		{"2025-12-10 09:00", 0},
		{"2025-12-10 10:00", 1},
	}
	if len(got) != len(want) {
		t.Fatalf("series = %v, want %d buckets", got, len(want))
	}
	total := 0
	for i, w := range want {
		if got[i].Start.Format("2006-01-02 15:04") != w.hour || got[i].Count != w.count {
			t.Errorf("bucket[%d] = %s/%d, want %s/%d", i, got[i].Start.Format("2006-01-02 15:04"), got[i].Count, w.hour, w.count)
		}
		total += got[i].Count
	}
	if total != 6 {
		t.Errorf("bucketed %d events, want 6 (null timestamp excluded)", total)
	}
}

func TestHourlyEvolutionWithoutTimestamps(t *testing.T) {
	table := &types.LogTable{Rows: []types.LogRecord{{SourceIP: "A"}, {SourceIP: "B"}}}
	if got := HourlyEvolution(table); got != nil {
		t.Errorf("series = %v, want nil", got)
	}
	r := Build(table, DefaultTopN)
	if r.HasTimeData() {
		t.Error("report should have no time data")
	}
}

func TestPeakHour(t *testing.T) {
	series := []types.HourBucket{{Count: 1}, {Count: 4}, {Count: 4}, {Count: 2}}
	peak, ok := PeakHour(series)
	if !ok || peak.Count != 4 {
		t.Errorf("peak = %v, %v", peak, ok)
	}
	if _, ok := PeakHour(nil); ok {
		t.Error("empty series has no peak")
	}
}

func TestBuildEmpty(t *testing.T) {
	r := Build(&types.LogTable{Columns: fullHeader}, DefaultTopN)
	if !r.Empty {
		t.Error("expected empty report")
	}
	if r.Metrics.TotalEvents != 0 || r.Metrics.UniqueIPs != 0 || r.Metrics.TopTargetUser != types.NoTargetUser {
		t.Errorf("metrics = %+v", r.Metrics)
	}
	if len(r.TopIPs) != 0 || len(r.Hourly) != 0 {
		t.Error("empty report should carry no series")
	}
}

// A single loaded row filtered on its own date yields the expected metrics.
func TestSingleRowScenario(t *testing.T) {
	csv := "IP Source,Identifiant Evenement,Date et Heure,Utilisateur Vise\n" +
		"192.168.1.5,EventX,10/12/25 - 06:55:46,root\n"
	table, _, err := dataset.Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}

	sel, err := filter.NewSelection("2025-12-10", "2025-12-10", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	r := Build(filter.Apply(table, sel), DefaultTopN)

	if r.Metrics.TotalEvents != 1 || r.Metrics.UniqueIPs != 1 || r.Metrics.TopTargetUser != "root" {
		t.Errorf("metrics = %+v", r.Metrics)
	}
	if len(r.TopIPs) != 1 || r.TopIPs[0].IP != "192.168.1.5" {
		t.Errorf("top ips = %v", r.TopIPs)
	}
	if len(r.Hourly) != 1 || r.Hourly[0].Start.Hour() != 6 {
		t.Errorf("hourly = %v", r.Hourly)
	}
}

func TestUnknownIPScenario(t *testing.T) {
	csv := "IP Source,Identifiant Evenement,Date et Heure,Utilisateur Vise\n" +
		"192.168.1.5,EventX,10/12/25 - 06:55:46,root\n"
	src := &memorySource{content: csv}
	table, err := dataset.NewLoader(src).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	sel, _ := filter.NewSelection("", "", types.AllEvents, []string{"203.0.113.1"})
	r := Build(filter.Apply(table, sel), DefaultTopN)
	if !r.Empty {
		t.Error("unknown IP should yield the empty state")
	}
}
