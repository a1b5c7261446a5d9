// Package meeting auto-logs calendar meetings as activity entries and
// keeps the prompt schedule from firing mid-meeting.
package meeting

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/sadopc/nudge/internal/calendar"
	"github.com/sadopc/nudge/internal/schedule"
	"github.com/sadopc/nudge/internal/store"
)

// meetingsCategory is the category meeting entries are credited against.
// When no active category with this name exists, meeting logging is skipped.
const meetingsCategory = "Meetings"

type Manager struct {
	store  *store.Store
	sched  *schedule.Scheduler
	source calendar.Source
	logger *log.Logger
}

func NewManager(st *store.Store, sched *schedule.Scheduler, src calendar.Source, logger *log.Logger) *Manager {
	return &Manager{store: st, sched: sched, source: src, logger: logger}
}

// Upcoming looks up the next busy block. Calendar failures degrade to
// "no meeting" so they never block the prompt response path.
func (m *Manager) Upcoming(ctx context.Context) *calendar.BusyBlock {
	if m.source == nil {
		return nil
	}
	block, err := m.source.UpcomingBusyBlock(ctx)
	if err != nil {
		m.logger.Warn("calendar lookup failed", "err", err)
		return nil
	}
	return block
}

// Log credits the block's duration to the Meetings category, ending at the
// block end, and pushes the next prompt past the meeting. It uses the same
// entry path as user prompts, so overlap with a manual entry is resolved by
// deduplication at report time.
func (m *Manager) Log(block calendar.BusyBlock) error {
	minutes := block.Minutes()
	if minutes <= 0 {
		return fmt.Errorf("meeting block %q has non-positive duration", block.Title)
	}

	cat, err := m.store.FindCategoryByName(meetingsCategory)
	if err != nil {
		return fmt.Errorf("find meetings category: %w", err)
	}
	if cat == nil {
		m.logger.Error("no active Meetings category, skipping meeting entry", "title", block.Title)
		return nil
	}

	activity, err := m.store.FindOrCreateActivity(block.Title, &cat.ID)
	if err != nil {
		return fmt.Errorf("meeting activity: %w", err)
	}

	if _, err := m.store.CreateEntry(activity.ID, block.End, block.End, minutes); err != nil {
		return fmt.Errorf("meeting entry: %w", err)
	}

	m.sched.AbsorbMeeting(block.End)
	m.logger.Info("logged meeting", "title", block.Title, "minutes", minutes)
	return nil
}
