package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/nudge/internal/schedule"
	"github.com/sadopc/nudge/internal/store"
)

// promptModel is the overlay shown when the scheduler fires. It captures all
// input until the user answers or dismisses it.
type promptModel struct {
	store  *store.Store
	sched  *schedule.Scheduler
	width  int
	height int

	active bool
	prompt schedule.Prompt
	form   *huh.Form

	// Form field pointers (survive value copies)
	categoryID *int64
	activity   *string
}

func newPromptModel(st *store.Store, sched *schedule.Scheduler) promptModel {
	var cat int64
	activity := ""
	return promptModel{
		store:      st,
		sched:      sched,
		categoryID: &cat,
		activity:   &activity,
	}
}

func (p *promptModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p promptModel) show(prompt schedule.Prompt) (promptModel, tea.Cmd) {
	p.active = true
	p.prompt = prompt
	*p.activity = ""
	if len(prompt.Categories) > 0 {
		*p.categoryID = prompt.Categories[0].ID
	}

	catOptions := make([]huh.Option[int64], len(prompt.Categories))
	for i, c := range prompt.Categories {
		catOptions[i] = huh.NewOption(c.Name, c.ID)
	}

	// Most-used activities first, as typing suggestions.
	suggestions := make([]string, 0, len(prompt.Activities))
	for _, a := range prompt.Activities {
		suggestions = append(suggestions, a.Name)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().Title("Category").Options(catOptions...).Value(p.categoryID),
			huh.NewInput().Title("What were you doing?").
				Suggestions(suggestions).
				Value(p.activity),
		),
	).WithShowHelp(true).WithShowErrors(true)

	return p, p.form.Init()
}

func (p promptModel) update(msg tea.Msg) (promptModel, tea.Cmd) {
	if !p.active || p.form == nil {
		return p, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.active = false
			p.form = nil
			p.sched.DismissPrompt()
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.active = false
		p.form = nil
		return p, p.record()
	}

	return p, cmd
}

func (p promptModel) record() tea.Cmd {
	name := strings.TrimSpace(*p.activity)
	catID := *p.categoryID
	triggeredAt := p.prompt.TriggeredAt

	return func() tea.Msg {
		if name == "" {
			p.sched.DismissPrompt()
			return statusMsg{text: "Prompt dismissed (no activity given)"}
		}

		activity, err := p.store.FindOrCreateActivity(name, &catID)
		if err != nil {
			p.sched.DismissPrompt()
			return statusMsg{text: fmt.Sprintf("Activity error: %v", err), isError: true}
		}
		if err := p.sched.Respond(activity.ID, triggeredAt); err != nil {
			return statusMsg{text: fmt.Sprintf("Recording error: %v", err), isError: true}
		}
		return promptAnsweredMsg{activity: name}
	}
}

func (p promptModel) view() string {
	if !p.active || p.form == nil {
		return ""
	}

	title := titleStyle.Render("Time check")
	when := mutedStyle.Render(p.prompt.TriggeredAt.Local().Format("15:04"))
	header := fmt.Sprintf("%s  %s", title, when)

	w := p.width - 4
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", p.form.View()),
	)
}
