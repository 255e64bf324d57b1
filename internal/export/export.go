// Package export serializes filtered log tables back to CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vietdv277/sshdash/internal/dataset"
	"github.com/vietdv277/sshdash/pkg/types"
)

// Download artifact metadata
const (
	Filename = "filtered_ssh_logs.csv"
	MIMEType = "text/csv"
)

// Write encodes t as CSV: header first, no index column. The timestamp
// column is rendered in the dataset layout, empty when null; every other
// cell is written verbatim.
func Write(w io.Writer, t *types.LogTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	tsIdx := t.ColumnIndex(types.ColumnTimestamp)
	out := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		copy(out, r.Fields)
		if tsIdx >= 0 {
			if r.HasTimestamp() {
				out[tsIdx] = dataset.FormatTimestamp(r.Timestamp)
			} else {
				out[tsIdx] = ""
			}
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ToCSV returns t encoded as UTF-8 CSV bytes
func ToCSV(t *types.LogTable) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes t to dir/Filename and returns the final path
func WriteFile(dir string, t *types.LogTable) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, Filename)
	if err := WriteFileAs(path, t); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFileAs writes t to path. The file is written to a temporary name
// first and renamed into place.
func WriteFileAs(path string, t *types.LogTable) error {
	data, err := ToCSV(t)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
