package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "vadmin.log")
	book, err := New(path, "info")
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	t.Cleanup(func() { _ = book.Close() })
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vadmin.log")
	book, err := New(path, "info")
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	t.Cleanup(func() { _ = book.Close() })
	book.Debug("hidden")
	book.Append(LevelWarn, "set_active failed", Fields{"version": "v123"})
	lines, total := book.Tail(10)
	if total != 1 {
		t.Fatalf("total lines = %d, want 1: %v", total, lines)
	}
	if !strings.Contains(lines[0], "level=warning") || !strings.Contains(lines[0], "version=v123") {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatalf("expected level error")
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines, total := book.Tail(3); lines != nil || total != 0 {
		t.Fatalf("nil logbook tail = %v, %d", lines, total)
	}
	if err := book.Close(); err != nil {
		t.Fatalf("close nil logbook: %v", err)
	}
	Discard().Error("dropped")
}
