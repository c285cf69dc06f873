package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/sadopc/studyplan/internal/study"
)

func sampleData() []study.Entry {
	return []study.Entry{
		{
			ID:             "e1",
			DateStr:        "2025-12-01",
			Subject:        "数学A",
			Content:        "確率の演習",
			PlannedMinutes: 30,
			ActualMinutes:  30,
			IsDone:         true,
		},
		{
			ID:             "e2",
			DateStr:        "2025-12-02",
			Subject:        "数学A",
			PlannedMinutes: 20,
			ActualMinutes:  10,
		},
		{
			ID:             "e3",
			DateStr:        "2025-12-02",
			Subject:        "保健",
			PlannedMinutes: 0,
			ActualMinutes:  75,
		},
	}
}

// ============================================================
// CSV
// ============================================================

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sampleData(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records := readCSV(t, path)

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	want := []string{"e1", "2025-12-01", "数学A", "確率の演習", "30", "30", "0:30", "true"}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("row[%d] = %q, want %q", i, row[i], want[i])
		}
	}

	if records[3][6] != "1:15" {
		t.Fatalf("Actual = %q, want 1:15", records[3][6])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	entries := []study.Entry{
		{ID: "e1", Subject: "芸術", Content: `notes with "quotes" and, commas` + "\nsecond line"},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(entries, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][3] != entries[0].Content {
		t.Fatalf("content mangled: %q", records[1][3])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Entries) != 3 {
		t.Fatalf("count = %d entries = %d, want 3", result.Count, len(result.Entries))
	}
	if result.PlannedMinutes != 50 || result.ActualMinutes != 115 {
		t.Fatalf("totals = %d/%d, want 50/115", result.PlannedMinutes, result.ActualMinutes)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	e := result.Entries[0]
	if e.ID != "e1" || e.Date != "2025-12-01" || e.Subject != "数学A" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Actual != "0:30" || !e.Done {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if result.Entries[1].Content != "" {
		t.Fatalf("content = %q, want empty", result.Entries[1].Content)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Entries != nil {
		t.Fatal("entries should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

// ============================================================
// XLSX
// ============================================================

func TestToXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xlsx")

	if err := ToXLSX(sampleData(), path); err != nil {
		t.Fatalf("ToXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(entriesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 entry rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][0] != "e1" || rows[1][2] != "数学A" {
		t.Fatalf("unexpected entries sheet: %v", rows[:2])
	}
	if rows[2][5] != "10" {
		t.Fatalf("actual minutes = %q, want 10", rows[2][5])
	}

	subjects, err := f.GetRows(subjectsSheet)
	if err != nil {
		t.Fatal(err)
	}
	// header + 数学A + 保健, sorted by actual minutes
	if len(subjects) != 3 {
		t.Fatalf("expected 3 subject rows, got %d", len(subjects))
	}
	if subjects[1][0] != "保健" || subjects[2][0] != "数学A" {
		t.Fatalf("subjects not sorted by actual: %v", subjects)
	}
	if subjects[2][1] != "50" || subjects[2][2] != "40" || subjects[2][3] != "80" {
		t.Fatalf("数学A rollup = %v, want 50/40/80", subjects[2])
	}
	if len(subjects[1]) > 3 && subjects[1][3] != "" {
		t.Fatalf("保健 has no plan, rate should be blank: %v", subjects[1])
	}
}

func TestToXLSXBadPath(t *testing.T) {
	err := ToXLSX(nil, "/nonexistent/dir/file.xlsx")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Dispatch and helpers
// ============================================================

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	for _, format := range Formats {
		path := filepath.Join(dir, "out."+format)
		if err := Write(strings.ToUpper(format), sampleData(), path); err != nil {
			t.Fatalf("Write(%s): %v", format, err)
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Fatalf("%s: file not written", format)
		}
	}

	if err := Write("pdf", nil, filepath.Join(dir, "x.pdf")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
