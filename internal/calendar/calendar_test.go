package calendar

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 11, hour, minute, 0, 0, time.UTC)
}

func ev(title string, start, end time.Time) Event {
	return Event{Title: title, Start: start, End: end}
}

// ============================================================
// Merge
// ============================================================

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMergeDisjoint(t *testing.T) {
	blocks := Merge([]Event{
		ev("Standup", at(9, 0), at(9, 15)),
		ev("Review", at(11, 0), at(12, 0)),
	})
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Title != "Standup" || blocks[1].Title != "Review" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
}

func TestMergeGapBoundary(t *testing.T) {
	// Exactly a 5-minute gap still merges; one second more does not.
	merged := Merge([]Event{
		ev("A", at(9, 0), at(9, 30)),
		ev("B", at(9, 35), at(10, 0)),
	})
	if len(merged) != 1 {
		t.Fatalf("5-minute gap should merge, got %d blocks", len(merged))
	}
	if merged[0].Title != "A + B" {
		t.Fatalf("title = %q, want %q", merged[0].Title, "A + B")
	}
	if !merged[0].End.Equal(at(10, 0)) {
		t.Fatalf("end = %v, want 10:00", merged[0].End)
	}

	split := Merge([]Event{
		ev("A", at(9, 0), at(9, 30)),
		ev("B", at(9, 35).Add(time.Second), at(10, 0)),
	})
	if len(split) != 2 {
		t.Fatalf("gap over 5 minutes should not merge, got %d blocks", len(split))
	}
}

func TestMergeOverlap(t *testing.T) {
	blocks := Merge([]Event{
		ev("Planning", at(9, 0), at(10, 0)),
		ev("1:1", at(9, 30), at(9, 45)), // nested, end does not extend
	})
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].End.Equal(at(10, 0)) {
		t.Fatalf("nested event must not shrink the block: end = %v", blocks[0].End)
	}
	if blocks[0].Title != "Planning + 1:1" {
		t.Fatalf("title = %q", blocks[0].Title)
	}
}

func TestMergeUnsortedInput(t *testing.T) {
	blocks := Merge([]Event{
		ev("B", at(9, 30), at(10, 0)),
		ev("A", at(9, 0), at(9, 32)),
	})
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Title != "A + B" {
		t.Fatalf("merge should sort by start first: title = %q", blocks[0].Title)
	}
	if !blocks[0].Start.Equal(at(9, 0)) {
		t.Fatalf("start = %v, want 09:00", blocks[0].Start)
	}
}

func TestMergeDuplicateTitles(t *testing.T) {
	blocks := Merge([]Event{
		ev("Standup", at(9, 0), at(9, 15)),
		ev("Standup", at(9, 15), at(9, 30)),
	})
	if blocks[0].Title != "Standup" {
		t.Fatalf("duplicate title should not repeat: %q", blocks[0].Title)
	}
}

func TestBusyBlockMinutes(t *testing.T) {
	b := BusyBlock{Start: at(9, 0), End: at(10, 30)}
	if b.Minutes() != 90 {
		t.Fatalf("minutes = %v, want 90", b.Minutes())
	}
}

// ============================================================
// UpcomingBlock
// ============================================================

func TestUpcomingBlockSkipsEnded(t *testing.T) {
	events := []Event{
		ev("Past", at(8, 0), at(8, 30)),
		ev("Current", at(9, 50), at(10, 30)),
		ev("Later", at(14, 0), at(15, 0)),
	}

	b := UpcomingBlock(events, at(10, 0))
	if b == nil {
		t.Fatal("expected a block")
	}
	if b.Title != "Current" {
		t.Fatalf("expected the in-progress block, got %q", b.Title)
	}
}

func TestUpcomingBlockNone(t *testing.T) {
	events := []Event{
		ev("Past", at(8, 0), at(8, 30)),
	}
	if b := UpcomingBlock(events, at(10, 0)); b != nil {
		t.Fatalf("expected nil, got %+v", b)
	}
}

func TestUpcomingBlockMergedSpan(t *testing.T) {
	// Two back-to-back meetings form one block; its end is what the
	// scheduler uses to push the next prompt out.
	events := []Event{
		ev("Sync", at(10, 0), at(10, 30)),
		ev("Retro", at(10, 32), at(11, 0)),
	}

	b := UpcomingBlock(events, at(9, 0))
	if b == nil {
		t.Fatal("expected a block")
	}
	if !b.End.Equal(at(11, 0)) {
		t.Fatalf("end = %v, want 11:00", b.End)
	}
	if b.Title != "Sync + Retro" {
		t.Fatalf("title = %q", b.Title)
	}
}
