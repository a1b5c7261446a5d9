package store

import (
	"fmt"
	"strconv"
)

const (
	defaultIntervalMinutes = 20

	// SettingNextPromptAt is written by the scheduler, not seeded.
	SettingNextPromptAt    = "next_prompt_at"
	SettingIntervalMinutes = "interval_minutes"
	SettingTrackingActive  = "tracking_active"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Settings returns a typed snapshot. Missing or malformed values fall back
// to defaults so a damaged settings table never breaks the scheduler.
func (s *Store) Settings() Settings {
	out := Settings{IntervalMinutes: defaultIntervalMinutes, TrackingActive: true}

	if v, err := s.GetSetting(SettingIntervalMinutes); err == nil {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.IntervalMinutes = n
		}
	}
	if v, err := s.GetSetting(SettingTrackingActive); err == nil {
		out.TrackingActive = v == "1"
	}
	return out
}
