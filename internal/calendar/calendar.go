// Package calendar turns raw calendar events into busy blocks suitable for
// auto-logging meeting time.
package calendar

import (
	"context"
	"sort"
	"strings"
	"time"
)

// MergeGap is the largest gap between two events that still counts as one
// continuous busy block. Back-to-back meetings with a short break between
// them absorb a single prompt cycle.
const MergeGap = 5 * time.Minute

// Event is a single calendar event.
type Event struct {
	Title string
	Start time.Time
	End   time.Time
}

// BusyBlock is a merged span of meeting time.
type BusyBlock struct {
	Title string
	Start time.Time
	End   time.Time
}

func (b BusyBlock) Minutes() float64 {
	return b.End.Sub(b.Start).Minutes()
}

// Source supplies the next upcoming busy block. Implementations apply their
// own bounded timeout and return (nil, nil) when nothing is scheduled;
// failures should degrade to "no meeting" at the caller.
type Source interface {
	UpcomingBusyBlock(ctx context.Context) (*BusyBlock, error)
}

// Merge collapses overlapping and adjacent events (gap <= MergeGap) into
// busy blocks ordered by start time. Titles of distinct merged events are
// joined with " + ".
func Merge(events []Event) []BusyBlock {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	blocks := []BusyBlock{{Title: sorted[0].Title, Start: sorted[0].Start, End: sorted[0].End}}
	for _, ev := range sorted[1:] {
		last := &blocks[len(blocks)-1]
		if ev.Start.Sub(last.End) <= MergeGap {
			if ev.End.After(last.End) {
				last.End = ev.End
			}
			if !containsTitle(last.Title, ev.Title) {
				last.Title += " + " + ev.Title
			}
			continue
		}
		blocks = append(blocks, BusyBlock{Title: ev.Title, Start: ev.Start, End: ev.End})
	}
	return blocks
}

// UpcomingBlock returns the first merged block that has not ended yet.
func UpcomingBlock(events []Event, now time.Time) *BusyBlock {
	for _, b := range Merge(events) {
		if b.End.After(now) {
			return &b
		}
	}
	return nil
}

func containsTitle(joined, title string) bool {
	for _, part := range strings.Split(joined, " + ") {
		if part == title {
			return true
		}
	}
	return false
}
