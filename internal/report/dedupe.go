package report

import (
	"sort"
	"time"
)

// Interval is one recorded activity span. It ends at End and extends
// backward by Minutes, i.e. the half-open range (End-Minutes, End].
type Interval struct {
	ID           int64
	CategoryID   int64
	CategoryName string
	Color        string
	End          time.Time
	Minutes      float64
}

// Start is the interval's derived start instant.
func (iv Interval) Start() time.Time {
	return iv.End.Add(-time.Duration(iv.Minutes * float64(time.Minute)))
}

// Dedupe resolves overlapping intervals into a non-overlapping partition.
// A late answer or an auto-logged meeting can credit more time than actually
// elapsed since the previous entry; without trimming, those minutes would be
// counted twice.
//
// The sweep is greedy: intervals are processed in ascending end order, and
// each interval's start is clamped to the furthest end seen so far. The
// earlier-ending interval keeps the contested time. Intervals left with no
// positive duration are dropped entirely.
//
// The result is ordered, pairwise non-overlapping, and never credits more
// total time than the input. Running Dedupe on its own output is a no-op.
func Dedupe(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].End.Before(sorted[j].End)
	})

	var out []Interval
	var latestEnd time.Time
	for _, iv := range sorted {
		start := iv.Start()
		if !latestEnd.IsZero() && start.Before(latestEnd) {
			start = latestEnd
		}
		adjusted := iv.End.Sub(start).Minutes()
		if adjusted <= 0 {
			// Fully subsumed by earlier intervals.
			continue
		}
		iv.Minutes = adjusted
		out = append(out, iv)
		if iv.End.After(latestEnd) {
			latestEnd = iv.End
		}
	}
	return out
}
