package store

import "time"

// Status models the soft-delete lifecycle: archived rows stay in the
// database so historical entries keep resolving a name and color.
type Status int

const (
	StatusActive Status = iota
	StatusArchived
)

func (s Status) Active() bool { return s == StatusActive }

type Category struct {
	ID        int64
	Name      string
	Color     string
	SortOrder int
	Status    Status
	CreatedAt time.Time
}

type Activity struct {
	ID         int64
	Name       string
	CategoryID *int64
	Status     Status
	CreatedAt  time.Time
}

// Entry is a recorded activity interval. It ends at PromptedAt and extends
// backward by CreditedMinutes.
type Entry struct {
	ID              int64
	ActivityID      int64
	PromptedAt      time.Time
	RespondedAt     time.Time
	CreditedMinutes float64
	CreatedAt       time.Time
}

// EntryDetail is an entry joined with its resolved activity and category,
// the shape report building consumes.
type EntryDetail struct {
	ID              int64
	ActivityID      int64
	ActivityName    string
	CategoryID      int64
	CategoryName    string
	Color           string
	PromptedAt      time.Time
	CreditedMinutes float64
}

type Setting struct {
	Key   string
	Value string
}

// Settings is the typed snapshot of the settings table.
type Settings struct {
	IntervalMinutes int
	TrackingActive  bool
}
