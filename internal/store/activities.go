package store

import (
	"database/sql"
	"fmt"
	"time"
)

func (s *Store) GetActivity(id int64) (*Activity, error) {
	a := &Activity{}
	var createdAt string
	var active int
	var categoryID sql.NullInt64
	err := s.db.QueryRow(
		`SELECT id, name, category_id, is_active, created_at FROM activities WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &categoryID, &active, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get activity %d: %w", id, err)
	}
	if categoryID.Valid {
		a.CategoryID = &categoryID.Int64
	}
	a.Status = statusFromFlag(active)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return a, nil
}

// ListActivitiesByUsage returns active activities ordered by how often they
// have been logged, most-used first, ties broken by name.
func (s *Store) ListActivitiesByUsage() ([]Activity, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.name, a.category_id, a.is_active, a.created_at
		FROM activities a
		LEFT JOIN entries e ON e.activity_id = a.id
		WHERE a.is_active = 1
		GROUP BY a.id
		ORDER BY COUNT(e.id) DESC, a.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		var createdAt string
		var active int
		var categoryID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Name, &categoryID, &active, &createdAt); err != nil {
			return nil, err
		}
		if categoryID.Valid {
			a.CategoryID = &categoryID.Int64
		}
		a.Status = statusFromFlag(active)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// FindOrCreateActivity looks up an active activity by name within the given
// category (case-insensitive) and creates one when missing. categoryID may
// be nil for uncategorized activities.
func (s *Store) FindOrCreateActivity(name string, categoryID *int64) (*Activity, error) {
	var id int64
	var err error
	if categoryID != nil {
		err = s.db.QueryRow(
			`SELECT id FROM activities WHERE LOWER(name) = LOWER(?) AND category_id = ? AND is_active = 1`,
			name, *categoryID,
		).Scan(&id)
	} else {
		err = s.db.QueryRow(
			`SELECT id FROM activities WHERE LOWER(name) = LOWER(?) AND category_id IS NULL AND is_active = 1`,
			name,
		).Scan(&id)
	}
	if err == nil {
		return s.GetActivity(id)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("find activity %q: %w", name, err)
	}

	res, err := s.db.Exec(`INSERT INTO activities (name, category_id) VALUES (?, ?)`, name, categoryID)
	if err != nil {
		return nil, fmt.Errorf("insert activity %q: %w", name, err)
	}
	id, _ = res.LastInsertId()
	return s.GetActivity(id)
}

func (s *Store) RenameActivity(id int64, name string) error {
	_, err := s.db.Exec(`UPDATE activities SET name = ? WHERE id = ?`, name, id)
	return err
}

func (s *Store) SetActivityCategory(id int64, categoryID *int64) error {
	_, err := s.db.Exec(`UPDATE activities SET category_id = ? WHERE id = ?`, categoryID, id)
	return err
}

// ArchiveActivity soft-deletes, same discipline as categories.
func (s *Store) ArchiveActivity(id int64) error {
	_, err := s.db.Exec(`UPDATE activities SET is_active = ? WHERE id = ?`, StatusArchived.flag(), id)
	return err
}
