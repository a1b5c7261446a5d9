package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func (s *Store) CreateCategory(name, color string) (*Category, error) {
	var maxOrder int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), -1) FROM categories`).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("max sort order: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO categories (name, color, sort_order) VALUES (?, ?, ?)`,
		name, color, maxOrder+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetCategory(id)
}

func (s *Store) GetCategory(id int64) (*Category, error) {
	c := &Category{}
	var createdAt string
	var active int
	err := s.db.QueryRow(
		`SELECT id, name, color, sort_order, is_active, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Color, &c.SortOrder, &active, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	c.Status = statusFromFlag(active)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func (s *Store) ListCategories(activeOnly bool) ([]Category, error) {
	query := `SELECT id, name, color, sort_order, is_active, created_at FROM categories`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		var createdAt string
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.SortOrder, &active, &createdAt); err != nil {
			return nil, err
		}
		c.Status = statusFromFlag(active)
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FindCategoryByName returns the active category with the given name,
// matched case-insensitively, or nil when none exists.
func (s *Store) FindCategoryByName(name string) (*Category, error) {
	c := &Category{}
	var createdAt string
	var active int
	err := s.db.QueryRow(
		`SELECT id, name, color, sort_order, is_active, created_at
		 FROM categories WHERE LOWER(name) = LOWER(?) AND is_active = 1`, name,
	).Scan(&c.ID, &c.Name, &c.Color, &c.SortOrder, &active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category %q: %w", name, err)
	}
	c.Status = statusFromFlag(active)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func (s *Store) UpdateCategory(id int64, name, color string, sortOrder int) error {
	_, err := s.db.Exec(
		`UPDATE categories SET name = ?, color = ?, sort_order = ? WHERE id = ?`,
		name, color, sortOrder, id,
	)
	return err
}

// ArchiveCategory soft-deletes: the row stays so historical entries keep
// resolving the category name and color.
func (s *Store) ArchiveCategory(id int64) error {
	_, err := s.db.Exec(`UPDATE categories SET is_active = ? WHERE id = ?`, StatusArchived.flag(), id)
	return err
}

func statusFromFlag(active int) Status {
	if active == 1 {
		return StatusActive
	}
	return StatusArchived
}

func (s Status) flag() int {
	if s == StatusActive {
		return 1
	}
	return 0
}
