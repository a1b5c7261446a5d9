// Package logging provides the process-wide file logger. The log lives next
// to the database and is trimmed in place once it grows past a size cap, so
// an always-on background tool never fills the disk.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const (
	maxSize   = 1 << 20 // bytes before rotation
	keepLines = 500
)

// New opens (creating if needed) the log file at path and returns a logger
// writing to it. Oversized files are truncated to their last keepLines
// lines first.
func New(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := rotate(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	return logger, nil
}

// Discard returns a logger that drops everything, for tests and for
// commands that must stay quiet.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// DefaultPath returns ~/.config/nudge/nudge.log.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "nudge", "nudge.log"), nil
}

func rotate(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() <= maxSize {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read log file: %w", err)
	}
	lines := bytes.Split(data, []byte("\n"))
	if len(lines) > keepLines {
		lines = lines[len(lines)-keepLines:]
	}
	kept := bytes.Join(lines, []byte("\n"))
	if err := os.WriteFile(path, kept, 0o644); err != nil {
		return fmt.Errorf("trim log file: %w", err)
	}
	return nil
}
