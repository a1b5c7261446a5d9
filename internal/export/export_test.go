package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/nudge/internal/store"
)

func sampleData() []store.EntryDetail {
	end := time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC)

	return []store.EntryDetail{
		{
			ID:              1,
			ActivityID:      1,
			ActivityName:    "api refactor",
			CategoryID:      1,
			CategoryName:    "Coding",
			Color:           "#3B82F6",
			PromptedAt:      end,
			CreditedMinutes: 20,
		},
		{
			ID:              2,
			ActivityID:      2,
			ActivityName:    "standup",
			CategoryID:      2,
			CategoryName:    "Meetings",
			Color:           "#F59E0B",
			PromptedAt:      end.Add(30 * time.Minute),
			CreditedMinutes: 15,
		},
		{
			ID:              3,
			ActivityID:      3,
			ActivityName:    "inbox",
			CategoryID:      0,
			CategoryName:    "Uncategorized",
			Color:           "#6B7280",
			PromptedAt:      end.Add(time.Hour),
			CreditedMinutes: 5,
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	entries := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(entries, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Category", "Activity", "Start", "End", "Minutes"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[0] != "1" {
		t.Fatalf("ID = %q, want 1", row[0])
	}
	if row[1] != "Coding" {
		t.Fatalf("Category = %q, want Coding", row[1])
	}
	if row[2] != "api refactor" {
		t.Fatalf("Activity = %q, want 'api refactor'", row[2])
	}
	if row[5] != "20.0" {
		t.Fatalf("Minutes = %q, want 20.0", row[5])
	}

	// start must be end minus the credited minutes
	start, err := time.Parse(time.RFC3339, row[3])
	if err != nil {
		t.Fatalf("start is not valid RFC3339: %q", row[3])
	}
	end, err := time.Parse(time.RFC3339, row[4])
	if err != nil {
		t.Fatalf("end is not valid RFC3339: %q", row[4])
	}
	if end.Sub(start) != 20*time.Minute {
		t.Fatalf("end-start = %v, want 20m", end.Sub(start))
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, _ := r.ReadAll()
	if len(records) != 1 {
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
	entries := []store.EntryDetail{
		{
			ID:              1,
			ActivityName:    `notes with "quotes" and, commas`,
			CategoryName:    `Category "Special"`,
			PromptedAt:      time.Now(),
			CreditedMinutes: 20,
		},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(entries, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][1] != `Category "Special"` {
		t.Fatalf("category name mangled: %q", records[1][1])
	}
	if records[1][2] != `notes with "quotes" and, commas` {
		t.Fatalf("activity mangled: %q", records[1][2])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	entries := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(entries, path); err != nil {
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

	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(result.Entries))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	e := result.Entries[0]
	if e.ID != 1 {
		t.Fatalf("ID = %d, want 1", e.ID)
	}
	if e.Category != "Coding" {
		t.Fatalf("Category = %q, want Coding", e.Category)
	}
	if e.Activity != "api refactor" {
		t.Fatalf("Activity = %q", e.Activity)
	}
	if e.Minutes != 20 {
		t.Fatalf("Minutes = %v, want 20", e.Minutes)
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
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	entries := sampleData()
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(entries, path)

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	for _, e := range result.Entries {
		if _, err := time.Parse(time.RFC3339, e.Start); err != nil {
			t.Fatalf("start is not valid RFC3339: %q", e.Start)
		}
		if _, err := time.Parse(time.RFC3339, e.End); err != nil {
			t.Fatalf("end is not valid RFC3339: %q", e.End)
		}
	}
}
