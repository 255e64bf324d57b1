package types

import "time"

// AllEvents is the event selection sentinel meaning "no restriction"
const AllEvents = "All"

// DateRange is an inclusive range of calendar dates. Either end may be unset
// while the operator is still picking; the filter only applies complete ranges.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Complete reports whether both ends of the range are set
func (d DateRange) Complete() bool {
	return !d.Start.IsZero() && !d.End.IsZero()
}

// FilterSelection holds the active filter criteria
type FilterSelection struct {
	Dates     DateRange       `json:"dates"`
	EventID   string          `json:"event_id"`
	SourceIPs map[string]bool `json:"source_ips"`
}

// AllEventsSelected reports whether the event filter is unrestricted
func (s *FilterSelection) AllEventsSelected() bool {
	return s.EventID == "" || s.EventID == AllEvents
}

// SelectedIPs returns the selected source IPs
func (s *FilterSelection) SelectedIPs() []string {
	ips := make([]string, 0, len(s.SourceIPs))
	for ip, ok := range s.SourceIPs {
		if ok {
			ips = append(ips, ip)
		}
	}
	return ips
}

// IPRestricted reports whether at least one source IP is selected
func (s *FilterSelection) IPRestricted() bool {
	for _, ok := range s.SourceIPs {
		if ok {
			return true
		}
	}
	return false
}
