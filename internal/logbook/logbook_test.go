package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")
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
		if !strings.Contains(lines[idx], book.Session()) {
			t.Fatalf("line %d = %q, missing session id", idx, lines[idx])
		}
	}
}

func TestLevelFiltersEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.log")
	book, err := New(path, "warn")
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	t.Cleanup(func() { _ = book.Close() })
	book.Debug("too quiet")
	book.Info("still quiet")
	book.Warn("heads up")
	book.Error("broken")
	lines, total := book.Tail(10)
	if total != 2 {
		t.Fatalf("total = %d, want 2: %v", total, lines)
	}
	if !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[1], "ERROR") {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("nil tail = %v/%d", lines, total)
	}
	if book.Path() != "" || book.Session() != "" {
		t.Fatalf("nil logbook should report empty path and session")
	}
	if err := book.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
