package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreMarkCompletedAndReload(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if store.IsCompleted(`album:"?!"(2000)`) {
		t.Fatalf("album unexpectedly marked as completed")
	}

	for _, name := range []string{`album:"?!"(2000)`, `album:"Prisoner 709"(2017)`, `album:"?!"(2000)`} {
		if err := store.MarkCompleted(name); err != nil {
			t.Fatalf("MarkCompleted %s failed: %v", name, err)
		}
	}

	reloaded, err := Open(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reloaded.IsCompleted(`album:"?!"(2000)`) || !reloaded.IsCompleted(`album:"Prisoner 709"(2017)`) {
		t.Fatalf("reloaded store missing completed albums: %v", reloaded.Completed())
	}

	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var entries []string
	if err := json.Unmarshal(b, &entries); err != nil {
		t.Fatalf("state file should contain JSON array: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestStoreReset(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.MarkCompleted("a"); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	reloaded, err := Open(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(reloaded.Completed()) != 0 {
		t.Fatalf("expected empty state after reset, got %v", reloaded.Completed())
	}
}

func TestNewStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := NewStore(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
