package types

import "time"

// NoTargetUser is reported when no target username can be determined
const NoTargetUser = "N/A"

// Metrics summarizes a filtered table
type Metrics struct {
	TotalEvents   int    `json:"total_events"`
	UniqueIPs     int    `json:"unique_ips"`
	TopTargetUser string `json:"top_target_user"`
}

// IPCount is one entry of the source IP frequency ranking
type IPCount struct {
	IP    string `json:"ip"`
	Count int    `json:"count"`
}

// HourBucket counts events in the hour starting at Start
type HourBucket struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// LoadStats describes a completed dataset load
type LoadStats struct {
	Source         string        `json:"source"`
	Rows           int           `json:"rows"`
	NullTimestamps int           `json:"null_timestamps"`
	Duration       time.Duration `json:"duration"`
}
