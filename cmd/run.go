package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/nudge/internal/calendar"
	"github.com/sadopc/nudge/internal/meeting"
	"github.com/sadopc/nudge/internal/report"
	"github.com/sadopc/nudge/internal/schedule"
	"github.com/sadopc/nudge/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE:  runApp,
}

func runApp(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	logger := newLogger()

	var p *tea.Program
	sched := schedule.New(st, logger, func(prompt schedule.Prompt) {
		if p != nil {
			p.Send(tui.PromptMsg{Prompt: prompt})
		}
	})

	var source calendar.Source
	if tokenPath, err := calendar.DefaultTokenPath(); err == nil {
		if _, err := os.Stat(tokenPath); err == nil {
			source = calendar.NewGraphSource(calendar.DefaultClientID, calendar.DefaultTenantID, tokenPath, logger)
		}
	}
	meetings := meeting.NewManager(st, sched, source, logger)

	engine := report.NewEngine(st, logger)
	app := tui.NewApp(st, sched, meetings, engine, logger)
	p = tea.NewProgram(app, tea.WithAltScreen())

	sched.SetStatusFunc(func(active bool) {
		p.Send(tui.TrackingMsg{Active: active})
	})
	sched.Start()
	defer sched.Stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
