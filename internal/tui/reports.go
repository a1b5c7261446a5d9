package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/nudge/internal/report"
	"github.com/sadopc/nudge/internal/store"
)

type reportMode int

const (
	reportSummary reportMode = iota
	reportTimeline
)

// timelineRow is a flattened timeline entry with its day label, so one
// cursor can walk the whole week.
type timelineRow struct {
	date  string
	entry report.TimelineEntry
}

type reportsModel struct {
	store  *store.Store
	engine *report.Engine
	width  int
	height int

	mode   reportMode
	offset int // weeks back from the current week (0 = current)

	week     report.WeekReport
	timeline report.WeekTimeline
	rows     []timelineRow
	cursor   int

	chart barchart.Model
}

func newReportsModel(st *store.Store, engine *report.Engine) reportsModel {
	return reportsModel{
		store:  st,
		engine: engine,
		chart:  barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	week     report.WeekReport
	timeline report.WeekTimeline
}

func (r reportsModel) refresh() tea.Cmd {
	date := r.anchorDate()
	return func() tea.Msg {
		return reportsDataMsg{
			week:     r.engine.Week(date),
			timeline: r.engine.WeekTimeline(date),
		}
	}
}

func (r reportsModel) anchorDate() time.Time {
	return time.Now().AddDate(0, 0, -7*r.offset)
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.week = msg.week
		r.timeline = msg.timeline
		r.rows = flattenTimeline(msg.timeline)
		if r.cursor >= len(r.rows) {
			r.cursor = max(0, len(r.rows)-1)
		}
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Enter):
			if r.mode == reportSummary {
				r.mode = reportTimeline
			} else {
				r.mode = reportSummary
			}
			return r, nil
		case key.Matches(msg, keys.Up):
			if r.mode == reportTimeline && r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.mode == reportTimeline && r.cursor < len(r.rows)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if r.mode == reportTimeline && len(r.rows) > 0 {
				id := r.rows[r.cursor].entry.ID
				return r, r.deleteEntry(id)
			}
		}
	}
	return r, nil
}

func (r reportsModel) deleteEntry(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := r.store.DeleteEntry(id); err != nil {
			return statusMsg{text: fmt.Sprintf("Delete error: %v", err), isError: true}
		}
		return entryDeletedMsg{}
	}
}

func flattenTimeline(tl report.WeekTimeline) []timelineRow {
	var rows []timelineRow
	for _, day := range tl.Days {
		for _, e := range day.Entries {
			rows = append(rows, timelineRow{date: day.Date, entry: e})
		}
	}
	return rows
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, day := range r.week.Days {
		d, _ := time.ParseInLocation("2006-01-02", day.Date, time.Local)
		label := d.Format("Mon 02")

		var values []barchart.BarValue
		for _, t := range day.Entries {
			values = append(values, barchart.BarValue{
				Name:  t.CategoryName,
				Value: t.Minutes / 60.0,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	summaryTab := inactiveTabStyle.Render("Summary")
	timelineTab := inactiveTabStyle.Render("Timeline")
	if r.mode == reportSummary {
		summaryTab = activeTabStyle.Render("Summary")
	} else {
		timelineTab = activeTabStyle.Render("Timeline")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, summaryTab, timelineTab)

	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", r.week.StartDate, r.week.EndDate))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", dateLabel,
	)

	var body string
	if r.mode == reportTimeline {
		body = r.renderTimeline(w)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			r.chart.View(), "", r.renderLegend(), "", r.renderTotals(w),
		)
	}

	nav := mutedStyle.Render("  ←/→: week  enter: switch mode  d: delete (timeline)")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (r reportsModel) renderTotals(w int) string {
	if len(r.week.Totals) == 0 {
		return mutedStyle.Render("  No data for this week")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-22s %10s %8s", "Category", "Time", "Prompts"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))

	for _, t := range r.week.Totals {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-20s %10s %8.0f",
			colorDot, t.CategoryName, formatMinutes(t.Minutes), t.Count,
		))
	}

	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	rows = append(rows, fmt.Sprintf("  %-22s %10s", "Total", formatMinutes(r.week.TotalMinutes)))

	return strings.Join(rows, "\n")
}

func (r reportsModel) renderTimeline(w int) string {
	if len(r.rows) == 0 {
		return mutedStyle.Render("  No entries this week")
	}

	var rows []string
	lastDate := ""
	for i, row := range r.rows {
		if row.date != lastDate {
			lastDate = row.date
			rows = append(rows, mutedStyle.Render("  "+row.date))
		}

		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(row.entry.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%s%s %s – %s  %-20s %s",
			cursor, colorDot,
			row.entry.Start.Local().Format("15:04"),
			row.entry.End.Local().Format("15:04"),
			row.entry.CategoryName,
			formatMinutes(row.entry.Minutes),
		)
		rows = append(rows, style.Render(line))
	}

	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	seen := make(map[int64]bool)
	var items []string
	for _, t := range r.week.Totals {
		if seen[t.CategoryID] {
			continue
		}
		seen[t.CategoryID] = true
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, t.CategoryName))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
