package report

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sadopc/nudge/internal/store"
)

type fakeReader struct {
	details []store.EntryDetail
	skipped int
	err     error

	gotFrom, gotTo time.Time
}

func (f *fakeReader) EntriesInRange(from, to time.Time) ([]store.EntryDetail, int, error) {
	f.gotFrom, f.gotTo = from, to
	if f.err != nil {
		return nil, 0, f.err
	}
	var in []store.EntryDetail
	for _, d := range f.details {
		if !d.PromptedAt.Before(from) && d.PromptedAt.Before(to) {
			in = append(in, d)
		}
	}
	return in, f.skipped, nil
}

func newTestEngine(r Reader) *Engine {
	return NewEngine(r, log.New(io.Discard))
}

func detail(id int64, catID int64, catName string, end time.Time, minutes float64) store.EntryDetail {
	return store.EntryDetail{
		ID:              id,
		ActivityID:      id,
		ActivityName:    "work",
		CategoryID:      catID,
		CategoryName:    catName,
		Color:           "#3B82F6",
		PromptedAt:      end,
		CreditedMinutes: minutes,
	}
}

// ============================================================
// Day
// ============================================================

func TestDayTotals(t *testing.T) {
	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	r := &fakeReader{details: []store.EntryDetail{
		detail(1, 1, "Coding", day.Add(10*time.Hour), 20),
		detail(2, 1, "Coding", day.Add(11*time.Hour), 20),
		detail(3, 2, "Meetings", day.Add(12*time.Hour), 60),
	}}

	got := newTestEngine(r).Day(day)
	if got.Date != "2024-01-03" {
		t.Fatalf("date = %q", got.Date)
	}
	if got.TotalMinutes != 100 {
		t.Fatalf("total = %v, want 100", got.TotalMinutes)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got.Entries))
	}
	// Sorted by minutes descending.
	if got.Entries[0].CategoryName != "Meetings" || got.Entries[0].Minutes != 60 {
		t.Fatalf("first category = %+v", got.Entries[0])
	}
	if got.Entries[1].Minutes != 40 || got.Entries[1].Count != 2 {
		t.Fatalf("second category = %+v", got.Entries[1])
	}
}

func TestDaySortTieBreaksByName(t *testing.T) {
	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	r := &fakeReader{details: []store.EntryDetail{
		detail(1, 2, "Planning", day.Add(10*time.Hour), 20),
		detail(2, 1, "Coding", day.Add(11*time.Hour), 20),
	}}

	got := newTestEngine(r).Day(day)
	if got.Entries[0].CategoryName != "Coding" {
		t.Fatalf("equal minutes should sort by name: %+v", got.Entries)
	}
}

func TestDayDeduplicatesOverlap(t *testing.T) {
	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	// Second entry overlaps the first by 15 minutes.
	r := &fakeReader{details: []store.EntryDetail{
		detail(1, 1, "Coding", day.Add(10*time.Hour), 20),
		detail(2, 1, "Coding", day.Add(10*time.Hour+5*time.Minute), 20),
	}}

	got := newTestEngine(r).Day(day)
	if got.TotalMinutes != 25 {
		t.Fatalf("total = %v, want 25 after dedup", got.TotalMinutes)
	}
}

func TestDayReaderErrorYieldsEmptyReport(t *testing.T) {
	r := &fakeReader{err: errors.New("disk on fire")}

	got := newTestEngine(r).Day(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	if got.TotalMinutes != 0 || len(got.Entries) != 0 {
		t.Fatalf("expected empty report on reader error, got %+v", got)
	}
}

// ============================================================
// Week
// ============================================================

func TestMondayOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-03", "2024-01-01"}, // Wednesday
		{"2024-01-01", "2024-01-01"}, // Monday itself
		{"2024-01-07", "2024-01-01"}, // Sunday belongs to the prior Monday
		{"2024-01-08", "2024-01-08"}, // next Monday
	}
	for _, tt := range tests {
		in, _ := time.Parse("2006-01-02", tt.in)
		got := MondayOf(in)
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("MondayOf(%s) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestWeekAnchoring(t *testing.T) {
	// Wednesday 2024-01-03 reports the week 2024-01-01 through 2024-01-07.
	wed := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	r := &fakeReader{}

	got := newTestEngine(r).Week(wed)
	if got.StartDate != "2024-01-01" || got.EndDate != "2024-01-07" {
		t.Fatalf("week = %s..%s, want 2024-01-01..2024-01-07", got.StartDate, got.EndDate)
	}
	if len(got.Days) != 7 {
		t.Fatalf("expected 7 day buckets, got %d", len(got.Days))
	}
	if !r.gotFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("fetch from = %v", r.gotFrom)
	}
	if !r.gotTo.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("fetch to = %v", r.gotTo)
	}
}

func TestWeekBucketsAndTotals(t *testing.T) {
	mon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &fakeReader{details: []store.EntryDetail{
		detail(1, 1, "Coding", mon.Add(10*time.Hour), 20),                  // Monday
		detail(2, 1, "Coding", mon.Add(24*time.Hour+10*time.Hour), 40),    // Tuesday
		detail(3, 2, "Meetings", mon.Add(24*time.Hour+12*time.Hour), 30),  // Tuesday
		detail(4, 1, "Coding", mon.Add(6*24*time.Hour+9*time.Hour), 10),   // Sunday
		detail(5, 1, "Coding", mon.Add(8*24*time.Hour+10*time.Hour), 999), // next week, excluded
	}}

	got := newTestEngine(r).Week(mon)
	if got.Days[0].TotalMinutes != 20 {
		t.Fatalf("Monday = %v, want 20", got.Days[0].TotalMinutes)
	}
	if got.Days[1].TotalMinutes != 70 {
		t.Fatalf("Tuesday = %v, want 70", got.Days[1].TotalMinutes)
	}
	if got.Days[6].TotalMinutes != 10 {
		t.Fatalf("Sunday = %v, want 10", got.Days[6].TotalMinutes)
	}
	if got.TotalMinutes != 100 {
		t.Fatalf("week total = %v, want 100", got.TotalMinutes)
	}
	if got.Totals[0].CategoryName != "Coding" || got.Totals[0].Minutes != 70 {
		t.Fatalf("top category = %+v", got.Totals[0])
	}
}

func TestWeekTimelineOrdering(t *testing.T) {
	mon := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &fakeReader{details: []store.EntryDetail{
		detail(2, 1, "Coding", mon.Add(14*time.Hour), 20),
		detail(1, 1, "Coding", mon.Add(10*time.Hour), 20),
	}}

	got := newTestEngine(r).WeekTimeline(mon)
	entries := got.Days[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 Monday entries, got %d", len(entries))
	}
	if !entries[0].Start.Before(entries[1].Start) {
		t.Fatal("timeline entries should be in ascending start order")
	}
	if got.Days[0].TotalMinutes != 40 {
		t.Fatalf("Monday timeline total = %v", got.Days[0].TotalMinutes)
	}
}

// ============================================================
// Average
// ============================================================

func TestAverageDividesByActiveDays(t *testing.T) {
	// Entries on exactly 2 of the 30 days in range: the divisor is 2.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &fakeReader{details: []store.EntryDetail{
		detail(1, 1, "Coding", start.Add(10*time.Hour), 60),
		detail(2, 1, "Coding", start.Add(5*24*time.Hour+10*time.Hour), 20),
	}}

	got := newTestEngine(r).Average(start, start.AddDate(0, 0, 29))
	if len(got) != 1 {
		t.Fatalf("expected 1 category, got %d", len(got))
	}
	if got[0].Minutes != 40 {
		t.Fatalf("average = %v, want 40 (80 minutes over 2 active days)", got[0].Minutes)
	}
	if got[0].Count != 1 {
		t.Fatalf("average count = %v, want 1", got[0].Count)
	}
}

func TestAverageRoundsHalfAwayFromZero(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// 25 minutes over 2 active days = 12.5 → 12.5 stays; use 12.25 → 12.3.
	r := &fakeReader{details: []store.EntryDetail{
		detail(1, 1, "Coding", start.Add(10*time.Hour), 12.25),
		detail(2, 1, "Coding", start.Add(24*time.Hour+10*time.Hour), 12.25),
	}}

	got := newTestEngine(r).Average(start, start.AddDate(0, 0, 6))
	if got[0].Minutes != 12.3 {
		t.Fatalf("average = %v, want 12.3", got[0].Minutes)
	}
}

func TestAverageEmptyRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &fakeReader{}

	got := newTestEngine(r).Average(start, start.AddDate(0, 0, 29))
	if len(got) != 0 {
		t.Fatalf("expected no totals for empty range, got %+v", got)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{12.34, 12.3},
		{12.25, 12.3}, // half rounds away from zero
		{-12.25, -12.3},
		{7.84, 7.8},
		{0, 0},
	}
	for _, tt := range tests {
		if got := round1(tt.in); got != tt.want {
			t.Errorf("round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
