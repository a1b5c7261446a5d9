package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "nudge.log")

	logger, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log file missing message: %q", data)
	}
}

func TestNewAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nudge.log")

	first, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	first.Info("first run")

	second, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	second.Info("second run")

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Fatalf("reopening should append, got %q", data)
	}
}

func TestRotateTrimsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nudge.log")

	// Build a file over the size cap with numbered lines.
	var buf bytes.Buffer
	line := strings.Repeat("x", 2048)
	for i := 0; buf.Len() <= maxSize; i++ {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := bytes.Split(data, []byte("\n"))
	if len(lines) > keepLines {
		t.Fatalf("expected at most %d lines after rotation, got %d", keepLines, len(lines))
	}
}

func TestRotateLeavesSmallFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nudge.log")
	content := "keep me\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), content) {
		t.Fatalf("small file should be untouched, got %q", data)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// Must not panic or write anywhere.
	logger.Error("dropped")
}
