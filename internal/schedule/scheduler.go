// Package schedule decides when to next interrupt the user. It is a small
// polling state machine: a fixed-period tick re-reads persisted state and
// fires a prompt when the stored next-prompt time has passed. Polling
// rather than a precise timer tolerates system sleep and clock changes
// without missed or duplicate fires.
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sadopc/nudge/internal/store"
)

const (
	// PollInterval is the fixed period between schedule checks.
	PollInterval = 10 * time.Second

	// afkDivisor sets the away threshold: a response arriving later than
	// interval/afkDivisor after its trigger reschedules from now, so a
	// long gap does not cause rapid-fire catch-up prompts.
	afkDivisor = 5
)

// Prompt is the event surfaced to the UI when it is time to ask the user
// what they are doing.
type Prompt struct {
	TriggeredAt time.Time
	Categories  []store.Category
	Activities  []store.Activity
}

// Scheduler owns the persisted next_prompt_at value and the pending-prompt
// flag. All transitions are serialized by one mutex; the poll loop never
// waits on the UI.
type Scheduler struct {
	store    *store.Store
	logger   *log.Logger
	onPrompt func(Prompt)
	onStatus func(active bool)

	// now is injectable so tests drive time without sleeping.
	now func() time.Time

	mu      sync.Mutex
	pending bool
	stop    chan struct{}
}

func New(st *store.Store, logger *log.Logger, onPrompt func(Prompt)) *Scheduler {
	return &Scheduler{
		store:    st,
		logger:   logger,
		onPrompt: onPrompt,
		now:      time.Now,
	}
}

// SetStatusFunc registers a callback notified when tracking is toggled.
func (s *Scheduler) SetStatusFunc(f func(active bool)) {
	s.onStatus = f
}

// Start begins polling if tracking is active. A stored next-prompt time
// further in the past than one full interval is stale (the machine slept,
// or the interval shrank) and is reset to now+interval instead of firing
// immediately.
func (s *Scheduler) Start() {
	s.stopLoop()

	settings := s.store.Settings()
	if !settings.TrackingActive {
		return
	}

	s.mu.Lock()
	s.repairSchedule(settings)
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go s.loop(stop)
}

// Stop cancels future poll ticks. In-flight report reads are unaffected.
func (s *Scheduler) Stop() {
	s.stopLoop()
}

func (s *Scheduler) stopLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Scheduler) loop(stop chan struct{}) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

// Toggle flips tracking on or off and returns the new state.
func (s *Scheduler) Toggle() bool {
	active := !s.store.Settings().TrackingActive
	value := "0"
	if active {
		value = "1"
	}
	if err := s.store.SetSetting(store.SettingTrackingActive, value); err != nil {
		s.logger.Error("persisting tracking state failed", "err", err)
	}

	if active {
		s.Start()
	} else {
		s.Stop()
	}
	if s.onStatus != nil {
		s.onStatus(active)
	}
	return active
}

// Tracking reports whether tracking is currently active.
func (s *Scheduler) Tracking() bool {
	return s.store.Settings().TrackingActive
}

// SetIntervalMinutes persists a new prompt interval. When tracking is
// active the stored schedule is re-evaluated against the new interval,
// exactly as on Start.
func (s *Scheduler) SetIntervalMinutes(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("interval must be positive, got %d", minutes)
	}
	if err := s.store.SetSetting(store.SettingIntervalMinutes, fmt.Sprintf("%d", minutes)); err != nil {
		return fmt.Errorf("persist interval: %w", err)
	}
	if s.store.Settings().TrackingActive {
		s.Start()
	}
	return nil
}

// poll runs one schedule check. When the prompt is due, the *next* prompt
// time is persisted before the prompt is surfaced, so a slow answer does
// not also delay the following prompt.
func (s *Scheduler) poll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.store.Settings()
	if !settings.TrackingActive {
		return
	}

	next, ok := s.nextPromptAt()
	if !ok {
		s.scheduleNext(settings)
		return
	}

	now := s.now()
	if now.Before(next) {
		return
	}

	// A next-prompt time more than one interval in the past means the
	// machine slept. Reset instead of firing into an empty room.
	if now.Sub(next) > time.Duration(settings.IntervalMinutes)*time.Minute {
		s.scheduleNext(settings)
		return
	}

	s.scheduleNext(settings)

	// At most one open prompt at a time.
	if s.pending {
		return
	}

	categories, err := s.store.ListCategories(true)
	if err != nil {
		s.logger.Error("listing categories failed, skipping prompt", "err", err)
		return
	}
	if len(categories) == 0 {
		// Nothing to prompt with.
		return
	}
	activities, err := s.store.ListActivitiesByUsage()
	if err != nil {
		s.logger.Error("listing activities failed", "err", err)
	}

	s.pending = true
	prompt := Prompt{TriggeredAt: now, Categories: categories, Activities: activities}
	if s.onPrompt != nil {
		// Deliver off the poll path; the UI must never block a tick.
		go s.onPrompt(prompt)
	}
}

// Respond records the user's answer to a prompt: one interval crediting the
// configured minutes, ending at the trigger instant. A long-delayed answer
// (AFK) also reschedules the next prompt from now.
func (s *Scheduler) Respond(activityID int64, triggeredAt time.Time) error {
	now := s.now()
	settings := s.store.Settings()

	_, err := s.store.CreateEntry(activityID, triggeredAt, now, float64(settings.IntervalMinutes))
	if err != nil {
		s.logger.Error("recording entry failed", "err", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false

	threshold := time.Duration(settings.IntervalMinutes) * time.Minute / afkDivisor
	if now.Sub(triggeredAt) > threshold {
		s.scheduleNext(settings)
	}
	return err
}

// DismissPrompt clears the pending prompt without recording anything.
func (s *Scheduler) DismissPrompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
}

// AbsorbMeeting pushes the next prompt out to the end of a logged meeting
// block, so no prompt fires mid-meeting for time already credited.
func (s *Scheduler) AbsorbMeeting(blockEnd time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistNext(blockEnd)
}

// NextPromptAt returns the stored next prompt time, if one is set.
func (s *Scheduler) NextPromptAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextPromptAt()
}

// PendingPrompt reports whether a prompt is currently open.
func (s *Scheduler) PendingPrompt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// repairSchedule initializes a missing next_prompt_at and resets a stale
// one. Callers hold s.mu.
func (s *Scheduler) repairSchedule(settings store.Settings) {
	next, ok := s.nextPromptAt()
	if !ok {
		s.scheduleNext(settings)
		return
	}
	staleAfter := time.Duration(settings.IntervalMinutes) * time.Minute
	if s.now().Sub(next) > staleAfter {
		s.scheduleNext(settings)
	}
}

func (s *Scheduler) nextPromptAt() (time.Time, bool) {
	raw, err := s.store.GetSetting(store.SettingNextPromptAt)
	if err != nil {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	s.logger.Warn("stored next prompt time is unparseable, resetting", "value", raw)
	return time.Time{}, false
}

func (s *Scheduler) scheduleNext(settings store.Settings) {
	s.persistNext(s.now().Add(time.Duration(settings.IntervalMinutes) * time.Minute))
}

func (s *Scheduler) persistNext(t time.Time) {
	if err := s.store.SetSetting(store.SettingNextPromptAt, t.UTC().Format(time.RFC3339Nano)); err != nil {
		s.logger.Error("persisting next prompt time failed", "err", err)
	}
}
