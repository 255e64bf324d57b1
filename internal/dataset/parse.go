package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/vietdv277/sshdash/pkg/types"
)

// Timestamp layouts. Parsing accepts single-digit day, month and hour like
// the dd/mm/yy format it mirrors; formatting always zero-pads.
const (
	TimestampParseLayout  = "2/1/06 - 15:04:05"
	TimestampFormatLayout = "02/01/06 - 15:04:05"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// naValues are cell values read as missing in the source IP and target user
// columns, in addition to the empty string
var naValues = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// nullable returns "" for missing-value markers and v otherwise
func nullable(v string) string {
	if naValues[v] {
		return ""
	}
	return v
}

// requiredColumns must be present in the header
var requiredColumns = []string{
	types.ColumnTimestamp,
	types.ColumnEventID,
	types.ColumnSourceIP,
}

// ParseTimestamp parses a dataset timestamp in UTC
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(TimestampParseLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatTimestamp renders a timestamp the way the dataset stores it
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampFormatLayout)
}

// Parse reads a CSV dataset. It returns the table and the number of rows
// whose timestamp could not be parsed.
func Parse(r io.Reader) (*types.LogTable, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	if !utf8.Valid(data) {
		return nil, 0, errors.New("invalid UTF-8 encoding")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	// Quotes inside unquoted cells are literal and short rows are padded
	// with null cells. Only rows longer than the header are rejected.
	cr := csv.NewReader(bytes.NewReader(data))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, errors.New("no columns to parse from file")
	}
	if err != nil {
		return nil, 0, err
	}

	table := &types.LogTable{Columns: header}
	for _, col := range requiredColumns {
		if !table.HasColumn(col) {
			return nil, 0, fmt.Errorf("missing required column %q", col)
		}
	}
	tsIdx := table.ColumnIndex(types.ColumnTimestamp)
	eventIdx := table.ColumnIndex(types.ColumnEventID)
	ipIdx := table.ColumnIndex(types.ColumnSourceIP)
	userIdx := table.ColumnIndex(types.ColumnTargetUser)

	nulls := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if len(fields) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, 0, fmt.Errorf("record on line %d: expected %d fields, saw %d", line, len(header), len(fields))
		}
		for len(fields) < len(header) {
			fields = append(fields, "")
		}

		rec := types.LogRecord{
			EventID:  fields[eventIdx],
			SourceIP: nullable(fields[ipIdx]),
			Fields:   fields,
		}
		rec.Timestamp, rec.TimestampValid = ParseTimestamp(fields[tsIdx])
		if !rec.TimestampValid {
			nulls++
		}
		if userIdx >= 0 {
			rec.TargetUser = nullable(fields[userIdx])
		}
		table.Rows = append(table.Rows, rec)
	}

	return table, nulls, nil
}
