package dataset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/vietdv277/sshdash/pkg/types"
)

// sampleCSV mirrors the layout of the production dataset.
const sampleCSV = `IP Source,Identifiant Evenement,Date et Heure,Utilisateur Vise,Message
192.168.1.5,E1,10/12/25 - 06:55:46,root,Failed password
10.0.0.7,E2,10/12/25 - 07:01:02,admin,Invalid user
192.168.1.5,E1,not a date,root,Failed password
,E3,11/12/25 - 23:59:59,,Connection closed
`

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// countingSource counts Open calls.
type countingSource struct {
	content string
	opens   int
}

func (s *countingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	s.opens++
	return io.NopCloser(strings.NewReader(s.content)), nil
}

func (s *countingSource) Name() string { return "memory.csv" }

func TestLoad(t *testing.T) {
	path := writeTempCSV(t, "datasetssh.csv", sampleCSV)
	table, err := NewLoader(NewFileSource(path)).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if table.Len() != 4 {
		t.Fatalf("rows = %d, want 4", table.Len())
	}
	if len(table.Columns) != 5 || table.Columns[4] != "Message" {
		t.Errorf("columns = %v", table.Columns)
	}

	first := table.Rows[0]
	want := time.Date(2025, 12, 10, 6, 55, 46, 0, time.UTC)
	if !first.HasTimestamp() || !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v (valid=%v), want %v", first.Timestamp, first.TimestampValid, want)
	}
	if first.EventID != "E1" || first.SourceIP != "192.168.1.5" || first.TargetUser != "root" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Fields[4] != "Failed password" {
		t.Errorf("passthrough column = %q", first.Fields[4])
	}

	if table.Rows[2].HasTimestamp() {
		t.Error("unparseable timestamp should be null")
	}
	if table.Rows[3].HasSourceIP() {
		t.Error("empty IP cell should be null")
	}
}

func TestLoadLenientRows(t *testing.T) {
	content := "IP Source,Identifiant Evenement,Date et Heure,Utilisateur Vise,Message\n" +
		"192.168.1.5,E1\n" +
		"10.0.0.7,E2,10/12/25 - 07:01:02,root,Failed password for \"root\" from 10.0.0.7\n"
	path := writeTempCSV(t, "lenient.csv", content)
	table, err := NewLoader(NewFileSource(path)).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", table.Len())
	}

	short := table.Rows[0]
	if len(short.Fields) != 5 {
		t.Fatalf("short row fields = %d, want padded to 5", len(short.Fields))
	}
	if short.HasTimestamp() || short.TargetUser != "" || short.Fields[4] != "" {
		t.Errorf("padded cells should be null: %+v", short)
	}
	if short.SourceIP != "192.168.1.5" || short.EventID != "E1" {
		t.Errorf("unexpected short record: %+v", short)
	}

	quoted := table.Rows[1]
	if got, want := quoted.Fields[4], `Failed password for "root" from 10.0.0.7`; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if !quoted.HasTimestamp() || quoted.TargetUser != "root" {
		t.Errorf("unexpected quoted record: %+v", quoted)
	}
}

func TestLoadMissingValueMarkers(t *testing.T) {
	tests := []struct {
		ip, user string
		wantIP   string
		wantUser string
	}{
		{"N/A", "None", "", ""},
		{"NULL", "nan", "", ""},
		{"<NA>", "NA", "", ""},
		{"10.0.0.7", "n/a", "10.0.0.7", ""},
		{"10.0.0.7", "Nonexistent", "10.0.0.7", "Nonexistent"},
		{"na", "none", "na", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.ip+","+tt.user, func(t *testing.T) {
			content := "IP Source,Identifiant Evenement,Date et Heure,Utilisateur Vise\n" +
				tt.ip + ",E1,10/12/25 - 06:55:46," + tt.user + "\n"
			table, _, err := Parse(strings.NewReader(content))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			rec := table.Rows[0]
			if rec.SourceIP != tt.wantIP || rec.TargetUser != tt.wantUser {
				t.Errorf("ip, user = %q, %q, want %q, %q", rec.SourceIP, rec.TargetUser, tt.wantIP, tt.wantUser)
			}
			if rec.HasSourceIP() != (tt.wantIP != "") {
				t.Errorf("HasSourceIP = %v", rec.HasSourceIP())
			}
			if rec.Fields[0] != tt.ip {
				t.Errorf("raw cell = %q, want %q kept", rec.Fields[0], tt.ip)
			}
		})
	}
}

func TestLoadStats(t *testing.T) {
	path := writeTempCSV(t, "datasetssh.csv", sampleCSV)
	l := NewLoader(NewFileSource(path))
	if _, err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	stats := l.Stats()
	if stats.Rows != 4 || stats.NullTimestamps != 1 || stats.Source != path {
		t.Errorf("stats = %+v", stats)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	_, err := NewLoader(NewFileSource(path)).Load(context.Background())
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q should name the path", err)
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		t.Error("missing file must not be reported as LoadError")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"empty file", "", "no columns"},
		{"missing column", "IP Source,Date et Heure\n1.1.1.1,10/12/25 - 06:55:46\n", "Identifiant Evenement"},
		{"too many fields", "IP Source,Identifiant Evenement,Date et Heure\n1.1.1.1,E1,x,extra\n", "line 2: expected 3 fields, saw 4"},
		{"invalid utf8", "IP Source,Identifiant Evenement,Date et Heure\n\xff\xfe,E1,x\n", "UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempCSV(t, "bad.csv", tt.content)
			_, err := NewLoader(NewFileSource(path)).Load(context.Background())
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("err = %v, want *LoadError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want substring %q", err, tt.wantMsg)
			}
			if !strings.HasPrefix(err.Error(), "error loading data: ") {
				t.Errorf("err = %q, want load prefix", err)
			}
		})
	}
}

func TestLoadWithoutTargetUserColumn(t *testing.T) {
	content := "IP Source,Identifiant Evenement,Date et Heure\n1.1.1.1,E1,10/12/25 - 06:55:46\n"
	path := writeTempCSV(t, "nouser.csv", content)
	table, err := NewLoader(NewFileSource(path)).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if table.HasColumn(types.ColumnTargetUser) {
		t.Error("unexpected target user column")
	}
	if table.Rows[0].TargetUser != "" {
		t.Errorf("target user = %q, want null", table.Rows[0].TargetUser)
	}
}

func TestLoadStripsBOM(t *testing.T) {
	path := writeTempCSV(t, "bom.csv", "\xEF\xBB\xBF"+sampleCSV)
	table, err := NewLoader(NewFileSource(path)).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if table.Columns[0] != types.ColumnSourceIP {
		t.Errorf("first column = %q", table.Columns[0])
	}
}

func TestLoadCachesResult(t *testing.T) {
	src := &countingSource{content: sampleCSV}
	l := NewLoader(src)

	first, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if src.opens != 1 {
		t.Errorf("source opened %d times, want 1", src.opens)
	}
	if first != second {
		t.Error("second Load should return the cached table")
	}
}

func TestLoadCachesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.csv")
	l := NewLoader(NewFileSource(path))
	if _, err := l.Load(context.Background()); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v", err)
	}

	// Creating the file afterwards does not invalidate the memo.
	if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Load(context.Background()); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want cached ErrFileNotFound", err)
	}
}

func TestLoadCompressed(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte(sampleCSV))
	zw.Close()

	var zs bytes.Buffer
	enc, err := zstd.NewWriter(&zs)
	if err != nil {
		t.Fatal(err)
	}
	enc.Write([]byte(sampleCSV))
	enc.Close()

	for name, content := range map[string][]byte{
		"datasetssh.csv.gz":  gz.Bytes(),
		"datasetssh.csv.zst": zs.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, content, 0644); err != nil {
				t.Fatal(err)
			}
			table, err := NewLoader(NewFileSource(path)).Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if table.Len() != 4 {
				t.Errorf("rows = %d, want 4", table.Len())
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in    string
		want  time.Time
		valid bool
	}{
		{"10/12/25 - 06:55:46", time.Date(2025, 12, 10, 6, 55, 46, 0, time.UTC), true},
		{"1/2/25 - 6:05:09", time.Date(2025, 2, 1, 6, 5, 9, 0, time.UTC), true},
		{"31/12/99 - 23:59:59", time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC), true},
		{"2025-12-10 06:55:46", time.Time{}, false},
		{"32/12/25 - 06:55:46", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.in)
		if ok != tt.valid || !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 2, 1, 6, 5, 9, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "01/02/25 - 06:05:09" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}
