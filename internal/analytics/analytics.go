// Package analytics computes the dashboard metrics and chart series from a
// filtered log table.
package analytics

import (
	"sort"
	"time"

	"github.com/vietdv277/sshdash/pkg/types"
)

// DefaultTopN is the length of the source IP ranking
const DefaultTopN = 5

// Report bundles every view computed for one filter selection
type Report struct {
	Metrics types.Metrics      `json:"metrics"`
	TopIPs  []types.IPCount    `json:"top_ips"`
	Hourly  []types.HourBucket `json:"hourly"`
	Empty   bool               `json:"empty"`
}

// HasTimeData reports whether the hourly series can be charted
func (r *Report) HasTimeData() bool {
	return len(r.Hourly) > 0
}

// Build computes the full report for t. An empty table yields zero metrics
// and no series.
func Build(t *types.LogTable, topN int) Report {
	if t.Empty() {
		return Report{
			Metrics: types.Metrics{TopTargetUser: types.NoTargetUser},
			Empty:   true,
		}
	}
	return Report{
		Metrics: Summarize(t),
		TopIPs:  TopSourceIPs(t, topN),
		Hourly:  HourlyEvolution(t),
	}
}

// Summarize returns the key metrics of t
func Summarize(t *types.LogTable) types.Metrics {
	return types.Metrics{
		TotalEvents:   t.Len(),
		UniqueIPs:     uniqueIPs(t),
		TopTargetUser: topTargetUser(t),
	}
}

func uniqueIPs(t *types.LogTable) int {
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		if r.HasSourceIP() {
			seen[r.SourceIP] = struct{}{}
		}
	}
	return len(seen)
}

// topTargetUser returns the most frequent non-null target user. Ties go to
// the value seen first.
func topTargetUser(t *types.LogTable) string {
	if t == nil || !t.HasColumn(types.ColumnTargetUser) {
		return types.NoTargetUser
	}

	counts := make(map[string]int)
	var order []string
	for _, r := range t.Rows {
		if r.TargetUser == "" {
			continue
		}
		if counts[r.TargetUser] == 0 {
			order = append(order, r.TargetUser)
		}
		counts[r.TargetUser]++
	}

	top, best := types.NoTargetUser, 0
	for _, user := range order {
		if counts[user] > best {
			top, best = user, counts[user]
		}
	}
	return top
}

// TopSourceIPs ranks non-null source IPs by event count, descending, and
// keeps the first n. Equal counts keep first-seen order. n <= 0 keeps all.
func TopSourceIPs(t *types.LogTable, n int) []types.IPCount {
	counts := make(map[string]int)
	var ranking []types.IPCount
	for _, r := range t.Rows {
		if !r.HasSourceIP() {
			continue
		}
		if counts[r.SourceIP] == 0 {
			ranking = append(ranking, types.IPCount{IP: r.SourceIP})
		}
		counts[r.SourceIP]++
	}
	for i := range ranking {
		ranking[i].Count = counts[ranking[i].IP]
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})

	if n > 0 && len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

// HourlyEvolution counts events per calendar hour, from the first to the
// last populated hour with empty hours reported as zero. Rows without a
// timestamp are skipped; nil means no row had one.
func HourlyEvolution(t *types.LogTable) []types.HourBucket {
	buckets := make(map[time.Time]int)
	var first, last time.Time
	for i := range t.Rows {
		r := &t.Rows[i]
		if !r.HasTimestamp() {
			continue
		}
		hour := r.Timestamp.Truncate(time.Hour)
		buckets[hour]++
		if first.IsZero() || hour.Before(first) {
			first = hour
		}
		if last.IsZero() || hour.After(last) {
			last = hour
		}
	}
	if len(buckets) == 0 {
		return nil
	}

	series := make([]types.HourBucket, 0, int(last.Sub(first)/time.Hour)+1)
	for h := first; !h.After(last); h = h.Add(time.Hour) {
		series = append(series, types.HourBucket{Start: h, Count: buckets[h]})
	}
	return series
}

// PeakHour returns the bucket with the most events; ok is false for an
// empty series
func PeakHour(series []types.HourBucket) (peak types.HourBucket, ok bool) {
	for i, b := range series {
		if i == 0 || b.Count > peak.Count {
			peak = b
		}
	}
	return peak, len(series) > 0
}
