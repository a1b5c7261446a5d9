package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/nudge/internal/calendar"
	"github.com/sadopc/nudge/internal/meeting"
	"github.com/sadopc/nudge/internal/report"
	"github.com/sadopc/nudge/internal/schedule"
)

type dashboardModel struct {
	sched    *schedule.Scheduler
	meetings *meeting.Manager
	engine   *report.Engine
	width    int
	height   int

	tracking bool
	next     time.Time
	hasNext  bool
	today    report.DayReport
	upcoming *calendar.BusyBlock
}

func newDashboardModel(sched *schedule.Scheduler, meetings *meeting.Manager, engine *report.Engine) dashboardModel {
	return dashboardModel{
		sched:    sched,
		meetings: meetings,
		engine:   engine,
		tracking: sched.Tracking(),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	tracking bool
	next     time.Time
	hasNext  bool
	today    report.DayReport
	upcoming *calendar.BusyBlock
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		next, ok := d.sched.NextPromptAt()
		return dashboardDataMsg{
			tracking: d.sched.Tracking(),
			next:     next,
			hasNext:  ok,
			today:    d.engine.Day(time.Now()),
			upcoming: d.meetings.Upcoming(ctx),
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.tracking = msg.tracking
		d.next = msg.next
		d.hasNext = msg.hasNext
		d.today = msg.today
		d.upcoming = msg.upcoming
		return d, nil

	case TrackingMsg:
		d.tracking = msg.Active
		if msg.Active {
			if next, ok := d.sched.NextPromptAt(); ok {
				d.next = next
				d.hasNext = true
			}
		}
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Meeting):
			return d, d.logMeeting()
		}
	}
	return d, nil
}

// logMeeting credits the upcoming merged busy block as a Meetings entry and
// pushes the next prompt past its end.
func (d dashboardModel) logMeeting() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		block := d.meetings.Upcoming(ctx)
		if block == nil {
			return statusMsg{text: "No upcoming meeting found", isError: true}
		}
		if err := d.meetings.Log(*block); err != nil {
			return statusMsg{text: fmt.Sprintf("Meeting error: %v", err), isError: true}
		}
		return meetingLoggedMsg{title: block.Title, minutes: block.Minutes()}
	}
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	countdownPanel := d.renderCountdownPanel(contentWidth)
	todayPanel := d.renderTodayPanel(contentWidth)
	meetingPanel := d.renderMeetingPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, countdownPanel, todayPanel, meetingPanel)
}

func (d dashboardModel) renderCountdownPanel(w int) string {
	if !d.tracking {
		display := countdownOffStyle.Width(w - 6).Render("--:--")
		indicator := mutedStyle.Render("■  TRACKING OFF")
		hint := mutedStyle.Render("Press t to resume prompting")
		content := lipgloss.JoinVertical(lipgloss.Center, display, indicator, hint)
		return panelStyle.Width(w).Render(content)
	}

	var display, indicator string
	if d.hasNext {
		display = countdownStyle.Width(w - 6).Render(formatCountdown(time.Until(d.next)))
		indicator = successStyle.Render("●  NEXT PROMPT IN")
	} else {
		display = countdownStyle.Width(w - 6).Render("--:--")
		indicator = successStyle.Render("●  TRACKING ON")
	}

	content := lipgloss.JoinVertical(lipgloss.Center, display, indicator)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatMinutes(d.today.TotalMinutes))
	header := fmt.Sprintf("%s  %s", title, total)

	if len(d.today.Entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No entries today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	for _, t := range d.today.Entries {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("●")
		row := fmt.Sprintf("  %s %-20s %s  (%.0f prompts)",
			colorDot,
			t.CategoryName,
			formatMinutes(t.Minutes),
			t.Count,
		)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderMeetingPanel(w int) string {
	title := titleStyle.Render("Upcoming Meeting")

	if d.upcoming == nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing on the calendar"),
		)
		return panelStyle.Width(w).Render(content)
	}

	b := d.upcoming
	line := fmt.Sprintf("  %s  %s – %s  (%s)",
		highlightStyle.Render(b.Title),
		b.Start.Local().Format("15:04"),
		b.End.Local().Format("15:04"),
		formatMinutes(b.Minutes()),
	)
	hint := mutedStyle.Render("  m: log as Meetings and pause prompts until it ends")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, line, "", hint),
	)
}
