package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPruneLogsRemovesOnlyOldMatches(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -30)

	write := func(name string, mod time.Time) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
		return path
	}
	stale := write("mangatl-20240101T000000.000Z.log", old)
	current := write("mangatl-20240102T000000.000Z.log", old)
	fresh := write("mangatl-20990101T000000.000Z.log", time.Now())
	other := write("notes.txt", old)

	result := PruneLogs(NewNop(), dir, "mangatl-*.log", 7, current)
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	for _, path := range []string{current, fresh, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
}

func TestPruneLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mangatl-old.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	old := time.Now().AddDate(-1, 0, 0)
	_ = os.Chtimes(path, old, old)

	if result := PruneLogs(nil, dir, "mangatl-*.log", 0); len(result.Removed) != 0 {
		t.Fatalf("expected no removals, got %v", result.Removed)
	}
}
