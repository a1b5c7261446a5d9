package store

import (
	"fmt"
	"time"
)

// timeLayout is the stored timestamp format: UTC, fixed-width millisecond
// precision, so lexicographic comparison in SQL matches time order.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts the stored layout plus plain RFC3339 variants, so rows
// written by earlier builds or by hand still decode.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// CreateEntry records an interval ending at promptedAt. Non-positive credit
// is rejected outright rather than stored and discarded at report time.
func (s *Store) CreateEntry(activityID int64, promptedAt, respondedAt time.Time, creditedMinutes float64) (*Entry, error) {
	if creditedMinutes <= 0 {
		return nil, fmt.Errorf("create entry: credited minutes must be positive, got %.2f", creditedMinutes)
	}
	res, err := s.db.Exec(
		`INSERT INTO entries (activity_id, prompted_at, responded_at, credited_minutes, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		activityID, formatTime(promptedAt), formatTime(respondedAt), creditedMinutes, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetEntry(id)
}

func (s *Store) GetEntry(id int64) (*Entry, error) {
	e := &Entry{}
	var promptedAt, respondedAt, createdAt string

	err := s.db.QueryRow(
		`SELECT id, activity_id, prompted_at, responded_at, credited_minutes, created_at
		 FROM entries WHERE id = ?`, id,
	).Scan(&e.ID, &e.ActivityID, &promptedAt, &respondedAt, &e.CreditedMinutes, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	if e.PromptedAt, err = parseTime(promptedAt); err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	e.RespondedAt, _ = parseTime(respondedAt)
	e.CreatedAt, _ = parseTime(createdAt)
	return e, nil
}

// EntriesInRange returns entries with prompted_at in [from, to), joined with
// their activity and category. Rows whose timestamp fails to parse are
// skipped; callers that care receive the skip count.
func (s *Store) EntriesInRange(from, to time.Time) ([]EntryDetail, int, error) {
	rows, err := s.db.Query(`
		SELECT e.id, e.activity_id, a.name,
		       COALESCE(c.id, 0), COALESCE(c.name, 'Uncategorized'), COALESCE(c.color, '#6B7280'),
		       e.prompted_at, e.credited_minutes
		FROM entries e
		JOIN activities a ON a.id = e.activity_id
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE e.prompted_at >= ? AND e.prompted_at < ?
		ORDER BY e.prompted_at ASC`,
		formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("entries in range: %w", err)
	}
	defer rows.Close()

	var details []EntryDetail
	skipped := 0
	for rows.Next() {
		var d EntryDetail
		var promptedAt string
		if err := rows.Scan(&d.ID, &d.ActivityID, &d.ActivityName,
			&d.CategoryID, &d.CategoryName, &d.Color,
			&promptedAt, &d.CreditedMinutes); err != nil {
			return nil, skipped, err
		}
		t, err := parseTime(promptedAt)
		if err != nil {
			skipped++
			continue
		}
		d.PromptedAt = t
		details = append(details, d)
	}
	return details, skipped, rows.Err()
}

func (s *Store) DeleteEntry(id int64) error {
	_, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	return err
}
