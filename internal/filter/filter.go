// Package filter derives filtered views of a log table and the option lists
// that drive the filter controls.
package filter

import (
	"fmt"
	"sort"
	"time"

	"github.com/vietdv277/sshdash/pkg/types"
)

// DateLayout is the input format for date filter values
const DateLayout = "2006-01-02"

// Apply returns the rows of t matching every criterion of sel.
// The source table is never modified.
func Apply(t *types.LogTable, sel types.FilterSelection) *types.LogTable {
	if t == nil {
		return &types.LogTable{}
	}

	rows := make([]types.LogRecord, 0, len(t.Rows))
	for i := range t.Rows {
		if Match(&t.Rows[i], sel) {
			rows = append(rows, t.Rows[i])
		}
	}
	return t.Derive(rows)
}

// Match reports whether a single record passes sel
func Match(r *types.LogRecord, sel types.FilterSelection) bool {
	return matchDates(r, sel.Dates) && matchEvent(r, sel) && matchIP(r, sel)
}

func matchDates(r *types.LogRecord, d types.DateRange) bool {
	if !d.Complete() {
		return true
	}
	if !r.HasTimestamp() {
		return false
	}
	date := r.Date()
	return !date.Before(truncateDate(d.Start)) && !date.After(truncateDate(d.End))
}

func matchEvent(r *types.LogRecord, sel types.FilterSelection) bool {
	if sel.AllEventsSelected() {
		return true
	}
	return r.EventID == sel.EventID
}

func matchIP(r *types.LogRecord, sel types.FilterSelection) bool {
	if !sel.IPRestricted() {
		return true
	}
	return r.HasSourceIP() && sel.SourceIPs[r.SourceIP]
}

// EventOptions returns "All" followed by distinct event ids in first-seen order
func EventOptions(t *types.LogTable) []string {
	options := []string{types.AllEvents}
	seen := make(map[string]bool)
	for _, r := range t.Rows {
		if seen[r.EventID] {
			continue
		}
		seen[r.EventID] = true
		options = append(options, r.EventID)
	}
	return options
}

// IPOptions returns the sorted distinct non-null source IPs
func IPOptions(t *types.LogTable) []string {
	seen := make(map[string]bool)
	var ips []string
	for _, r := range t.Rows {
		if !r.HasSourceIP() || seen[r.SourceIP] {
			continue
		}
		seen[r.SourceIP] = true
		ips = append(ips, r.SourceIP)
	}
	sort.Strings(ips)
	return ips
}

// DateBounds returns the earliest and latest observed dates. When no row has
// a timestamp both bounds are today's date.
func DateBounds(t *types.LogTable) types.DateRange {
	var bounds types.DateRange
	for i := range t.Rows {
		r := &t.Rows[i]
		if !r.HasTimestamp() {
			continue
		}
		date := r.Date()
		if bounds.Start.IsZero() || date.Before(bounds.Start) {
			bounds.Start = date
		}
		if bounds.End.IsZero() || date.After(bounds.End) {
			bounds.End = date
		}
	}
	if !bounds.Complete() {
		today := truncateDate(time.Now())
		bounds = types.DateRange{Start: today, End: today}
	}
	return bounds
}

// DefaultSelection returns the initial control state: full date bounds,
// every event and no IP restriction
func DefaultSelection(t *types.LogTable) types.FilterSelection {
	return types.FilterSelection{
		Dates:     DateBounds(t),
		EventID:   types.AllEvents,
		SourceIPs: make(map[string]bool),
	}
}

// FillDates sets the unset ends of sel's date range to DateBounds(t), so an
// empty range selects what DefaultSelection does
func FillDates(sel types.FilterSelection, t *types.LogTable) types.FilterSelection {
	if sel.Dates.Complete() {
		return sel
	}
	bounds := DateBounds(t)
	if sel.Dates.Start.IsZero() {
		sel.Dates.Start = bounds.Start
	}
	if sel.Dates.End.IsZero() {
		sel.Dates.End = bounds.End
	}
	return sel
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// FormatDate renders a date as YYYY-MM-DD
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// NewSelection builds a selection from raw control values. Empty date
// strings leave that end of the range unset.
func NewSelection(from, to, event string, ips []string) (types.FilterSelection, error) {
	sel := types.FilterSelection{
		EventID:   event,
		SourceIPs: make(map[string]bool, len(ips)),
	}
	if sel.EventID == "" {
		sel.EventID = types.AllEvents
	}
	for _, ip := range ips {
		if ip != "" {
			sel.SourceIPs[ip] = true
		}
	}

	var err error
	if from != "" {
		if sel.Dates.Start, err = ParseDate(from); err != nil {
			return sel, err
		}
	}
	if to != "" {
		if sel.Dates.End, err = ParseDate(to); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
