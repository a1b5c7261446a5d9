package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/nudge/internal/calendar"
	"github.com/sadopc/nudge/internal/export"
	"github.com/sadopc/nudge/internal/meeting"
	"github.com/sadopc/nudge/internal/report"
	"github.com/sadopc/nudge/internal/schedule"
	"github.com/sadopc/nudge/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store    *store.Store
	sched    *schedule.Scheduler
	meetings *meeting.Manager
	logger   *log.Logger
	width    int
	height   int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	// Busy block awaiting the user's confirmation after a prompt response.
	meetingConfirm *calendar.BusyBlock

	dashboard  dashboardModel
	reports    reportsModel
	categories categoriesModel
	settings   settingsModel
	prompt     promptModel

	help   help.Model
	status string
}

func NewApp(st *store.Store, sched *schedule.Scheduler, meetings *meeting.Manager, engine *report.Engine, logger *log.Logger) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      st,
		sched:      sched,
		meetings:   meetings,
		logger:     logger,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(sched, meetings, engine),
		reports:    newReportsModel(st, engine),
		categories: newCategoriesModel(st),
		settings:   newSettingsModel(st, sched),
		prompt:     newPromptModel(st, sched),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		a.settings.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.categories.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.prompt.setSize(a.width, contentHeight)
		return a, nil

	case PromptMsg:
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.show(msg.Prompt)
		a.status = ""
		return a, cmd

	case TrackingMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.settings, cmd = a.settings.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if msg.Active {
			a.status = "Tracking on"
		} else {
			a.status = "Tracking off"
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		// An open prompt captures all input.
		if a.prompt.active {
			var cmd tea.Cmd
			a.prompt, cmd = a.prompt.update(msg)
			return a, cmd
		}

		if a.meetingConfirm != nil {
			return a.updateMeetingConfirm(msg)
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Toggle):
			active := a.sched.Toggle()
			return a, func() tea.Msg { return TrackingMsg{Active: active} }
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewCategories
			return a, a.categories.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		// The dashboard countdown re-renders each second; every tenth tick
		// reloads data so totals follow entries recorded outside this view.
		cmds := []tea.Cmd{tickCmd()}
		if time.Time(msg).Second()%10 == 0 {
			cmds = append(cmds, a.dashboard.loadData())
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		if msg.isError {
			a.logger.Error(msg.text)
		}
		return a, nil

	case promptAnsweredMsg:
		a.status = "Recorded: " + msg.activity
		return a, tea.Batch(a.dashboard.loadData(), a.checkMeeting())

	case meetingFoundMsg:
		a.meetingConfirm = &msg.block
		return a, nil

	case meetingLoggedMsg:
		a.meetingConfirm = nil
		a.status = fmt.Sprintf("Logged meeting %q (%s)", msg.title, formatMinutes(msg.minutes))
		return a, a.dashboard.loadData()

	case entryDeletedMsg:
		a.status = "Entry deleted"
		return a, a.reports.refresh()

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	// Form completion and data messages flow to whichever view owns them.
	if a.prompt.active {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewCategories:
		return a.categories.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewReports:
		return a.reports.refresh()
	case viewCategories:
		return a.categories.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewReports:
		content = a.reports.view()
	case viewCategories:
		content = a.categories.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Overlays replace the view content wholesale.
	if a.prompt.active {
		content = a.prompt.view()
	} else if a.meetingConfirm != nil {
		content = a.renderMeetingConfirm()
	} else if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("nudge")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	trackingInfo := ""
	if a.sched.Tracking() {
		trackingInfo = successStyle.Render(" ● tracking")
		if a.sched.PendingPrompt() {
			trackingInfo = warningStyle.Render(" ● prompt open")
		}
	} else {
		trackingInfo = mutedStyle.Render(" ■ paused")
	}

	left := footerStyle.Render(helpView)
	right := trackingInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

// checkMeeting runs after every prompt response: when the calendar shows a
// busy block that overlaps now or starts within the merge gap, offer to log
// it so the schedule stays quiet until the meeting ends.
func (a App) checkMeeting() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		block := a.meetings.Upcoming(ctx)
		if block == nil || block.Start.After(time.Now().Add(calendar.MergeGap)) {
			return nil
		}
		return meetingFoundMsg{block: *block}
	}
}

func (a App) updateMeetingConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter), msg.String() == "y":
		block := *a.meetingConfirm
		a.meetingConfirm = nil
		return a, func() tea.Msg {
			if err := a.meetings.Log(block); err != nil {
				return statusMsg{text: fmt.Sprintf("Meeting error: %v", err), isError: true}
			}
			return meetingLoggedMsg{title: block.Title, minutes: block.Minutes()}
		}
	case key.Matches(msg, keys.Back), msg.String() == "n":
		a.meetingConfirm = nil
	}
	return a, nil
}

func (a App) renderMeetingConfirm() string {
	b := a.meetingConfirm
	rows := []string{
		titleStyle.Render("In a meeting?"),
		"",
		fmt.Sprintf("  %s", highlightStyle.Render(b.Title)),
		mutedStyle.Render(fmt.Sprintf("  %s to %s  (%s)",
			b.Start.Local().Format("15:04"),
			b.End.Local().Format("15:04"),
			formatMinutes(b.Minutes()),
		)),
		"",
		mutedStyle.Render("  enter: log as Meetings and pause prompts  esc: skip"),
	}
	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

var exportFormats = [2]string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export last 30 days"), ""}
	for i, name := range exportFormats {
		line := "  " + name
		style := normalItemStyle
		if i == a.exportCursor {
			line = "> " + name
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(line))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: write file  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		a.exportCursor = max(0, a.exportCursor-1)
	case key.Matches(msg, keys.Down):
		a.exportCursor = min(len(exportFormats)-1, a.exportCursor+1)
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		entries, _, err := a.store.EntriesInRange(now.AddDate(0, 0, -30), now.AddDate(0, 0, 1))
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := now.Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("nudge-export-%s.csv", dateStr))
			if err := export.ToCSV(entries, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("nudge-export-%s.json", dateStr))
			if err := export.ToJSON(entries, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
