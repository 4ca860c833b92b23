package report_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lading/internal/arbiter"
	"lading/internal/manifest"
	"lading/internal/report"
	"lading/internal/runstore"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteMissingFiles(t *testing.T) {
	reportDir := t.TempDir()
	doc := &manifest.Document{
		ID:   "box_set",
		Path: "/manifests/box_set.csv",
	}
	missing := []manifest.Entry{
		{
			FileName: "a.bin", Size: 9, Checksum: "CBF43926",
			RelPath: filepath.Join("discs", "one"), Comment: "first disc",
			ManifestID: "box_set", Row: 1,
		},
		{
			FileName: "b.bin", Size: 3, Checksum: "00000000",
			ManifestID: "box_set", Row: 4,
		},
	}
	outcome := arbiter.ManifestOutcome{
		ManifestID:   "box_set",
		TotalEntries: 5,
		Matched:      3,
		Missing:      missing,
		Status:       arbiter.StatusPartial,
	}
	now := time.Date(2026, 8, 27, 9, 30, 0, 0, time.UTC)

	path, err := report.WriteMissingFiles(reportDir, "/dest", doc, outcome, now)
	if err != nil {
		t.Fatalf("WriteMissingFiles returned error: %v", err)
	}
	if path != filepath.Join(reportDir, "box_set_missing_files.csv") {
		t.Fatalf("unexpected report path: %s", path)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	wantHeader := []string{"FileName", "Size", "CRC32", "Path", "Comment", "ExpectedPath", "OriginalCSV", "TimeStamp"}
	if strings.Join(rows[0], "|") != strings.Join(wantHeader, "|") {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[0] != "a.bin" || first[1] != "9" || first[2] != "CBF43926" {
		t.Fatalf("unexpected first row: %v", first)
	}
	wantExpected := filepath.Join("/dest", "box_set", "discs", "one", "a.bin")
	if first[5] != wantExpected {
		t.Fatalf("unexpected expected path: %q want %q", first[5], wantExpected)
	}
	if first[6] != "/manifests/box_set.csv" {
		t.Fatalf("unexpected original csv: %q", first[6])
	}
	if first[7] != "2026-08-27 09:30:00" {
		t.Fatalf("unexpected timestamp: %q", first[7])
	}
}

func TestWriteConflicts(t *testing.T) {
	reportDir := t.TempDir()
	rows := []runstore.ConflictRow{
		{
			ManifestID: "m1", Row: 1, FileName: "match.bin", Size: 4,
			Checksum: "AAAAAAAA", SourcePath: "/pool/match.bin", DestPath: "/dest/match.bin",
			State: "match", SizesMeasured: true, SourceSize: 4, DestSize: 4,
			SourceCRC: "AAAAAAAA", DestCRC: "AAAAAAAA",
		},
		{
			ManifestID: "m1", Row: 2, FileName: "size.bin", Size: 4,
			Checksum: "BBBBBBBB", SourcePath: "/pool/size.bin", DestPath: "/dest/size.bin",
			State: "size_differs", SizesMeasured: true, SourceSize: 4, DestSize: 9,
			SourceCRC: "BBBBBBBB", DestCRC: "CCCCCCCC",
		},
		{
			ManifestID: "m1", Row: 3, FileName: "gone.bin", Size: 4,
			Checksum: "DDDDDDDD", SourcePath: "/pool/gone.bin", DestPath: "/dest/gone.bin",
			State: "destination_missing",
		},
		{
			ManifestID: "m1", Row: 4, FileName: "unv.bin", Size: 4,
			Checksum: "EEEEEEEE", SourcePath: "/pool/unv.bin", DestPath: "/dest/unv.bin",
			State: "unverified", SizesMeasured: true, SourceSize: 4, DestSize: 4,
		},
		{
			ManifestID: "m1", Row: 5, FileName: "empty.bin", Size: 0,
			Checksum: "00000000", SourcePath: "/pool/empty.bin", DestPath: "/dest/empty.bin",
			State: "unverified", SizesMeasured: true,
		},
		{
			ManifestID: "m1", Row: 6, FileName: "dark.bin", Size: 4,
			Checksum: "FFFFFFFF", SourcePath: "/pool/dark.bin", DestPath: "/dest/dark.bin",
			State: "unverified",
		},
	}

	path, err := report.WriteConflicts(reportDir, "run-1", rows)
	if err != nil {
		t.Fatalf("WriteConflicts returned error: %v", err)
	}
	if path != filepath.Join(reportDir, "conflicts_run-1.csv") {
		t.Fatalf("unexpected report path: %s", path)
	}

	records := readCSV(t, path)
	if len(records) != 7 {
		t.Fatalf("expected header plus 6 rows, got %d", len(records))
	}
	header := records[0]
	if header[0] != "FileName" || header[13] != "Notes" {
		t.Fatalf("unexpected header: %v", header)
	}

	byName := map[string][]string{}
	for _, rec := range records[1:] {
		byName[rec[0]] = rec
	}

	match := byName["match.bin"]
	if match[9] != "Yes" || match[12] != "Yes" || match[13] != "Match" {
		t.Fatalf("unexpected match row: %v", match)
	}

	size := byName["size.bin"]
	if size[9] != "No" || size[13] != "Size differs" {
		t.Fatalf("unexpected size row: %v", size)
	}

	gone := byName["gone.bin"]
	if gone[7] != "" || gone[9] != "" || gone[12] != "" {
		t.Fatalf("missing destination must leave measurements blank: %v", gone)
	}
	if gone[13] != "Destination missing" {
		t.Fatalf("unexpected note: %q", gone[13])
	}

	unv := byName["unv.bin"]
	if unv[9] != "Yes" || unv[12] != "" {
		t.Fatalf("size-only row rendered wrong: %v", unv)
	}
	if unv[13] != "Size match (CRC not verified)" {
		t.Fatalf("unexpected note: %q", unv[13])
	}

	// Two measured empty files are a real size match, not an unmeasured row.
	empty := byName["empty.bin"]
	if empty[7] != "0" || empty[8] != "0" || empty[9] != "Yes" {
		t.Fatalf("measured empty files rendered wrong: %v", empty)
	}
	if empty[13] != "Size match (CRC not verified)" {
		t.Fatalf("unexpected note: %q", empty[13])
	}

	// A row that was never measured asserts nothing about sizes.
	dark := byName["dark.bin"]
	if dark[7] != "" || dark[8] != "" || dark[9] != "" {
		t.Fatalf("unmeasured row must leave size columns blank: %v", dark)
	}
	if dark[13] != "Not verified" {
		t.Fatalf("unexpected note: %q", dark[13])
	}
}

func TestSummaryTable(t *testing.T) {
	outcomes := []arbiter.ManifestOutcome{
		{ManifestID: "box_one", TotalEntries: 3, Matched: 3, Status: arbiter.StatusComplete},
		{ManifestID: "box_two", TotalEntries: 4, Matched: 2,
			Missing: make([]manifest.Entry, 2), Status: arbiter.StatusPartial},
		{ManifestID: "loose", TotalEntries: 2, Matched: 1,
			Missing: make([]manifest.Entry, 1), Status: arbiter.StatusPartial, MoveOnly: true},
		{ManifestID: "forced", TotalEntries: 2, Matched: 1,
			Missing: make([]manifest.Entry, 1), Status: arbiter.StatusComplete, Forced: true},
	}
	table := report.Summary(outcomes)
	for _, want := range []string{"box_one", "complete", "partial", "move-only", "forced", "yes"} {
		if !strings.Contains(table, want) {
			t.Fatalf("summary missing %q:\n%s", want, table)
		}
	}
	if report.Summary(nil) != "" {
		t.Fatal("empty outcome list must render nothing")
	}
}

func TestMissingFilesPath(t *testing.T) {
	got := report.MissingFilesPath("/reports", "/manifests/box.csv")
	if got != filepath.Join("/reports", "box_missing_files.csv") {
		t.Fatalf("unexpected path: %s", got)
	}
}
