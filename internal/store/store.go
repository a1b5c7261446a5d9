package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS categories (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		color       TEXT NOT NULL DEFAULT '#3B82F6',
		sort_order  INTEGER NOT NULL DEFAULT 0,
		is_active   INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS activities (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		category_id INTEGER REFERENCES categories(id),
		is_active   INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS entries (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		activity_id      INTEGER NOT NULL REFERENCES activities(id),
		prompted_at      TEXT NOT NULL,
		responded_at     TEXT NOT NULL,
		credited_minutes REAL NOT NULL,
		created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_entries_activity ON entries(activity_id);
	CREATE INDEX IF NOT EXISTS idx_entries_prompted ON entries(prompted_at);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('interval_minutes', '20'),
		('tracking_active',  '1');
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.seedCategories()
}

// seedCategories inserts the default category set on a fresh database.
func (s *Store) seedCategories() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		name  string
		color string
	}{
		{"Coding", "#3B82F6"},
		{"Code Review", "#8B5CF6"},
		{"Meetings", "#F59E0B"},
		{"Planning", "#10B981"},
		{"Debugging", "#EF4444"},
		{"Documentation", "#6366F1"},
		{"Slack / Email", "#EC4899"},
		{"Learning", "#14B8A6"},
		{"Break", "#6B7280"},
	}
	for i, d := range defaults {
		if _, err := s.db.Exec(
			`INSERT INTO categories (name, color, sort_order) VALUES (?, ?, ?)`,
			d.name, d.color, i,
		); err != nil {
			return fmt.Errorf("seed category %q: %w", d.name, err)
		}
	}
	return nil
}

// DefaultDBPath returns ~/.config/nudge/nudge.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "nudge", "nudge.db"), nil
}
