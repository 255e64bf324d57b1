package types

import "time"

// Column names of the SSH event dataset
const (
	ColumnTimestamp  = "Date et Heure"
	ColumnEventID    = "Identifiant Evenement"
	ColumnSourceIP   = "IP Source"
	ColumnTargetUser = "Utilisateur Vise"
)

// LogRecord represents a single SSH connection event
type LogRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	TimestampValid bool      `json:"-"` // false when the source value did not parse
	EventID        string    `json:"event_id"`
	SourceIP       string    `json:"source_ip"`   // empty means null
	TargetUser     string    `json:"target_user"` // empty means null

	// Fields holds every raw cell in header order, untouched
	Fields []string `json:"fields"`
}

// HasTimestamp reports whether the record carries a parsed timestamp
func (r *LogRecord) HasTimestamp() bool {
	return r.TimestampValid
}

// HasSourceIP reports whether the source IP cell is non-null
func (r *LogRecord) HasSourceIP() bool {
	return r.SourceIP != ""
}

// Date returns the calendar date of the timestamp at midnight UTC
func (r *LogRecord) Date() time.Time {
	y, m, d := r.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LogTable is an ordered collection of records sharing one header.
// Tables are never mutated after construction; filters build new ones.
type LogTable struct {
	Columns []string    `json:"columns"`
	Rows    []LogRecord `json:"rows"`
}

// Len returns the number of rows
func (t *LogTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows
func (t *LogTable) Empty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the position of a column in the header, or -1
func (t *LogTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the header contains the named column
func (t *LogTable) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Derive returns a new table with the same header and the given rows
func (t *LogTable) Derive(rows []LogRecord) *LogTable {
	return &LogTable{Columns: t.Columns, Rows: rows}
}
