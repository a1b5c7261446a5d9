// Package report builds day, week, and average reports from recorded
// entries. All functions are pure views over the store: a read failure
// yields an empty report, never an error to the caller.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sadopc/nudge/internal/store"
)

const dateLayout = "2006-01-02"

// Reader is the slice of the store the engine needs.
type Reader interface {
	EntriesInRange(from, to time.Time) ([]store.EntryDetail, int, error)
}

// CategoryTotal is a per-category rollup. Count is fractional because the
// average report divides it by the number of active days.
type CategoryTotal struct {
	CategoryID   int64
	CategoryName string
	Color        string
	Minutes      float64
	Count        float64
}

type DayReport struct {
	Date         string
	Entries      []CategoryTotal
	TotalMinutes float64
}

type WeekReport struct {
	StartDate    string
	EndDate      string
	Days         []DayReport
	Totals       []CategoryTotal
	TotalMinutes float64
}

// TimelineEntry keeps per-interval detail for rendering and delete-by-id.
type TimelineEntry struct {
	ID           int64
	CategoryName string
	Color        string
	Start        time.Time
	End          time.Time
	Minutes      float64
}

type DayTimeline struct {
	Date         string
	Entries      []TimelineEntry
	TotalMinutes float64
}

type WeekTimeline struct {
	StartDate string
	EndDate   string
	Days      []DayTimeline
}

// Engine aggregates deduplicated intervals into reports.
type Engine struct {
	reader Reader
	logger *log.Logger
}

func NewEngine(r Reader, logger *log.Logger) *Engine {
	return &Engine{reader: r, logger: logger}
}

// fetch loads entries in [from, to) and returns them as deduplicated
// intervals. Errors degrade to an empty result.
func (e *Engine) fetch(from, to time.Time) []Interval {
	details, skipped, err := e.reader.EntriesInRange(from, to)
	if err != nil {
		e.logger.Error("reading entries failed, returning empty report", "err", err)
		return nil
	}
	if skipped > 0 {
		e.logger.Warn("skipped entries with unparseable timestamps", "count", skipped)
	}

	intervals := make([]Interval, 0, len(details))
	for _, d := range details {
		intervals = append(intervals, Interval{
			ID:           d.ID,
			CategoryID:   d.CategoryID,
			CategoryName: d.CategoryName,
			Color:        d.Color,
			End:          d.PromptedAt,
			Minutes:      d.CreditedMinutes,
		})
	}
	return Dedupe(intervals)
}

// Day reports one local calendar day.
func (e *Engine) Day(date time.Time) DayReport {
	from := startOfDay(date)
	return buildDay(date, e.fetch(from, from.AddDate(0, 0, 1)))
}

// Week reports the Monday-to-Sunday week containing date. Entries are
// deduplicated across the whole week so an interval straddling midnight is
// never double-counted between days.
func (e *Engine) Week(date time.Time) WeekReport {
	monday := MondayOf(date)
	intervals := e.fetch(monday, monday.AddDate(0, 0, 7))
	loc := date.Location()

	byDay := bucketByDay(intervals, loc)
	days := make([]DayReport, 0, 7)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		days = append(days, buildDay(d, byDay[d.Format(dateLayout)]))
	}

	totals := sumCategories(intervals)
	var weekTotal float64
	for _, t := range totals {
		weekTotal += t.Minutes
	}

	return WeekReport{
		StartDate:    monday.Format(dateLayout),
		EndDate:      monday.AddDate(0, 0, 6).Format(dateLayout),
		Days:         days,
		Totals:       totals,
		TotalMinutes: weekTotal,
	}
}

// WeekTimeline returns per-interval detail for the week containing date,
// each day's intervals in ascending start order.
func (e *Engine) WeekTimeline(date time.Time) WeekTimeline {
	monday := MondayOf(date)
	intervals := e.fetch(monday, monday.AddDate(0, 0, 7))
	loc := date.Location()

	byDay := bucketByDay(intervals, loc)
	days := make([]DayTimeline, 0, 7)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		key := d.Format(dateLayout)

		var entries []TimelineEntry
		var total float64
		for _, iv := range byDay[key] {
			entries = append(entries, TimelineEntry{
				ID:           iv.ID,
				CategoryName: iv.CategoryName,
				Color:        iv.Color,
				Start:        iv.Start(),
				End:          iv.End,
				Minutes:      iv.Minutes,
			})
			total += iv.Minutes
		}
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].Start.Before(entries[b].Start)
		})
		days = append(days, DayTimeline{Date: key, Entries: entries, TotalMinutes: total})
	}

	return WeekTimeline{
		StartDate: monday.Format(dateLayout),
		EndDate:   monday.AddDate(0, 0, 6).Format(dateLayout),
		Days:      days,
	}
}

// Average reports per-category daily averages over [start, end] inclusive.
// The divisor is the number of distinct dates that actually contain an
// interval, not the nominal span: days the tool was not used do not dilute
// the average.
func (e *Engine) Average(start, end time.Time) []CategoryTotal {
	from := startOfDay(start)
	to := startOfDay(end).AddDate(0, 0, 1)
	intervals := e.fetch(from, to)
	loc := start.Location()

	activeDates := make(map[string]struct{})
	for _, iv := range intervals {
		activeDates[iv.End.In(loc).Format(dateLayout)] = struct{}{}
	}
	divisor := float64(len(activeDates))
	if divisor < 1 {
		divisor = 1
	}

	totals := sumCategories(intervals)
	for i := range totals {
		totals[i].Minutes = round1(totals[i].Minutes / divisor)
		totals[i].Count = round1(totals[i].Count / divisor)
	}
	return totals
}

// MondayOf returns local midnight of the Monday of the ISO week containing
// t. Sunday belongs to the week that started six days earlier.
func MondayOf(t time.Time) time.Time {
	day := startOfDay(t)
	wd := int(day.Weekday())
	if wd == 0 {
		return day.AddDate(0, 0, -6)
	}
	return day.AddDate(0, 0, -(wd - 1))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func bucketByDay(intervals []Interval, loc *time.Location) map[string][]Interval {
	byDay := make(map[string][]Interval)
	for _, iv := range intervals {
		key := iv.End.In(loc).Format(dateLayout)
		byDay[key] = append(byDay[key], iv)
	}
	return byDay
}

func buildDay(date time.Time, intervals []Interval) DayReport {
	totals := sumCategories(intervals)
	var total float64
	for _, t := range totals {
		total += t.Minutes
	}
	return DayReport{
		Date:         date.Format(dateLayout),
		Entries:      totals,
		TotalMinutes: total,
	}
}

// sumCategories rolls intervals up per category, sorted by minutes
// descending, ties broken by category name.
func sumCategories(intervals []Interval) []CategoryTotal {
	byCat := make(map[int64]*CategoryTotal)
	for _, iv := range intervals {
		t, ok := byCat[iv.CategoryID]
		if !ok {
			t = &CategoryTotal{
				CategoryID:   iv.CategoryID,
				CategoryName: iv.CategoryName,
				Color:        iv.Color,
			}
			byCat[iv.CategoryID] = t
		}
		t.Minutes += iv.Minutes
		t.Count++
	}

	out := make([]CategoryTotal, 0, len(byCat))
	for _, t := range byCat {
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
