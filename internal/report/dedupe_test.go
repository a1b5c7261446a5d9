package report

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 11, hour, minute, 0, 0, time.UTC)
}

func iv(id int64, end time.Time, minutes float64) Interval {
	return Interval{ID: id, CategoryID: 1, CategoryName: "Coding", End: end, Minutes: minutes}
}

func totalMinutes(ivs []Interval) float64 {
	var sum float64
	for _, i := range ivs {
		sum += i.Minutes
	}
	return sum
}

// ============================================================
// Dedupe
// ============================================================

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := Dedupe([]Interval{}); got != nil {
		t.Fatalf("expected nil for empty slice, got %v", got)
	}
}

func TestDedupeNoOverlap(t *testing.T) {
	in := []Interval{
		iv(1, at(10, 0), 20),
		iv(2, at(10, 30), 20),
	}
	out := Dedupe(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(out))
	}
	if out[0].Minutes != 20 || out[1].Minutes != 20 {
		t.Fatalf("non-overlapping intervals must keep full credit: %+v", out)
	}
}

func TestDedupeTrimsOverlap(t *testing.T) {
	// A covers 09:40–10:00 with 20 minutes. B ends 10:05 also crediting 20
	// minutes, so its start is clamped to A's end and it keeps only 5.
	a := iv(1, at(10, 0), 20)
	b := iv(2, at(10, 5), 20)

	out := Dedupe([]Interval{a, b})
	if len(out) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(out))
	}
	if out[0].Minutes != 20 {
		t.Fatalf("first interval = %v minutes, want 20", out[0].Minutes)
	}
	if out[1].Minutes != 5 {
		t.Fatalf("second interval = %v minutes, want 5", out[1].Minutes)
	}
	if !out[1].Start().Equal(at(10, 0)) {
		t.Fatalf("second interval should start at 10:00, got %v", out[1].Start())
	}
}

func TestDedupeDropsSubsumed(t *testing.T) {
	// Both end at 10:00; the longer one is processed first and absorbs the
	// whole span, leaving the shorter with zero duration.
	a := iv(1, at(10, 0), 60)
	b := iv(2, at(10, 0), 20)

	out := Dedupe([]Interval{a, b})
	if len(out) != 1 {
		t.Fatalf("expected 1 surviving interval, got %d", len(out))
	}
	if out[0].ID != 1 || out[0].Minutes != 60 {
		t.Fatalf("unexpected survivor: %+v", out[0])
	}
}

func TestDedupeSubsumedAfterTrim(t *testing.T) {
	// Three intervals sharing one end-heavy hour: the later ones trim down
	// and the fully covered one disappears.
	in := []Interval{
		iv(1, at(10, 0), 30),
		iv(2, at(10, 0), 20), // same end, fully covered by interval 1
		iv(3, at(10, 15), 15),
	}
	out := Dedupe(in)

	var sum float64
	for _, o := range out {
		sum += o.Minutes
	}
	// Union is 09:30–10:15 = 45 minutes.
	if sum != 45 {
		t.Fatalf("deduplicated total = %v, want 45", sum)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	in := []Interval{
		iv(1, at(10, 0), 20),
		iv(2, at(10, 5), 20),
		iv(3, at(10, 45), 30),
		iv(4, at(11, 0), 60),
	}
	once := Dedupe(in)
	twice := Dedupe(append([]Interval(nil), once...))

	if len(once) != len(twice) {
		t.Fatalf("idempotence broken: %d vs %d intervals", len(once), len(twice))
	}
	for i := range once {
		if once[i].Minutes != twice[i].Minutes || !once[i].End.Equal(twice[i].End) {
			t.Fatalf("idempotence broken at %d: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestDedupeConservation(t *testing.T) {
	// The deduplicated total never exceeds the raw total and equals the
	// length of the union of the input intervals.
	in := []Interval{
		iv(1, at(9, 30), 30), // 09:00–09:30
		iv(3, at(9, 40), 5),  // 09:35–09:40, disjoint gap after the first
		iv(2, at(9, 45), 30), // 09:15–09:45 → clamped to 09:40, keeps 5
		iv(4, at(11, 0), 20), // disjoint
	}
	out := Dedupe(in)

	if totalMinutes(out) > totalMinutes(in) {
		t.Fatal("dedupe must never increase total minutes")
	}
	// 30 + 5 + 5 + 20.
	if got := totalMinutes(out); got != 60 {
		t.Fatalf("deduplicated total = %v, want 60", got)
	}
}

func TestDedupeDoesNotMutateInput(t *testing.T) {
	in := []Interval{
		iv(1, at(10, 0), 20),
		iv(2, at(10, 5), 20),
	}
	Dedupe(in)
	if in[1].Minutes != 20 {
		t.Fatalf("input slice mutated: %v", in[1].Minutes)
	}
}

func TestIntervalStart(t *testing.T) {
	i := iv(1, at(10, 0), 20)
	if !i.Start().Equal(at(9, 40)) {
		t.Fatalf("start = %v, want 09:40", i.Start())
	}
}
