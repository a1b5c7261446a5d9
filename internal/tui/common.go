package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/nudge/internal/calendar"
	"github.com/sadopc/nudge/internal/schedule"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewReports
	viewCategories
	viewSettings
)

var viewNames = []string{"Dashboard", "Reports", "Categories", "Settings"}

// --- Messages ---

// PromptMsg arrives when the scheduler decides it is time to ask what the
// user is doing. Sent into the program from outside the Bubble Tea loop.
type PromptMsg struct {
	Prompt schedule.Prompt
}

// TrackingMsg arrives when tracking is toggled on or off.
type TrackingMsg struct {
	Active bool
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type promptAnsweredMsg struct {
	activity string
}

// meetingFoundMsg arrives when the post-response calendar check finds a busy
// block close enough to now to be worth confirming.
type meetingFoundMsg struct {
	block calendar.BusyBlock
}

type meetingLoggedMsg struct {
	title   string
	minutes float64
}

type exportDoneMsg struct {
	path string
}

type entryDeletedMsg struct{}

// --- Helpers ---

func formatMinutes(m float64) string {
	h := int(m) / 60
	rem := m - float64(h*60)
	if h > 0 {
		return fmt.Sprintf("%dh %02.0fm", h, rem)
	}
	return fmt.Sprintf("%.0fm", rem)
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
