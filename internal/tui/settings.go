package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/nudge/internal/schedule"
	"github.com/sadopc/nudge/internal/store"
)

type settingsModel struct {
	store  *store.Store
	sched  *schedule.Scheduler
	width  int
	height int

	settings   store.Settings
	raw        []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	interval *string
}

func newSettingsModel(st *store.Store, sched *schedule.Scheduler) settingsModel {
	interval := ""
	return settingsModel{
		store:    st,
		sched:    sched,
		interval: &interval,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings store.Settings
	raw      []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		raw, err := s.store.GetAllSettings()
		if err != nil {
			raw = nil
		}
		return settingsDataMsg{settings: s.store.Settings(), raw: raw}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.raw = msg.raw
		return s, nil

	case TrackingMsg:
		s.settings.TrackingActive = msg.Active
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.interval = strconv.Itoa(s.settings.IntervalMinutes)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Prompt interval (min)").
				Validate(func(v string) error {
					n, err := strconv.Atoi(v)
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number of minutes")
					}
					return nil
				}).
				Value(s.interval),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if minutes, err := strconv.Atoi(*s.interval); err == nil {
			if err := s.sched.SetIntervalMinutes(minutes); err != nil {
				return s, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
				}
			}
		}
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")

	tracking := errorStyle.Render("off")
	if s.settings.TrackingActive {
		tracking = successStyle.Render("on")
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s %s",
		lipgloss.NewStyle().Width(24).Render("Prompt interval"),
		highlightStyle.Render(fmt.Sprintf("%d min", s.settings.IntervalMinutes)),
	))
	rows = append(rows, fmt.Sprintf("  %s %s",
		lipgloss.NewStyle().Width(24).Render("Tracking"),
		tracking,
	))
	if len(s.raw) > 0 {
		rows = append(rows, "")
		rows = append(rows, mutedStyle.Render("  Stored keys"))
		for _, kv := range s.raw {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %s = %s", kv.Key, kv.Value)))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit interval  t: toggle tracking"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
