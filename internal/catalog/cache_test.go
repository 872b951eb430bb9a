package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rcap107/caparezzology/internal/model"
)

const page = "https://www.azlyrics.com/c/caparezza.html"

func TestCacheSaveLoadKeepsOrder(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), FileName))

	albums := model.AlbumGrouping{
		{Name: `album:"Verità supposte"(2003)`, SongURLs: []string{"https://x/2", "https://x/1"}},
		{Name: `album:"?!"(2000)`, SongURLs: []string{"https://x/3"}},
	}
	if err := cache.Save(page, albums); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, fetchedAt, err := cache.Load(page)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(albums, loaded); diff != "" {
		t.Fatalf("loaded grouping mismatch (-want +got):\n%s", diff)
	}
	if fetchedAt.IsZero() {
		t.Fatalf("expected non-zero fetchedAt")
	}
}

func TestCacheLoadNotExist(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "missing.json"))
	_, _, err := cache.Load(page)
	if err == nil || !os.IsNotExist(err) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestCacheLoadOtherPageIsMiss(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), FileName))
	if err := cache.Save("https://www.azlyrics.com/o/other.html", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, _, err := cache.Load(page)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected miss for another page, got %v", err)
	}
}

func TestCacheLoadInvalidTimestamp(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), FileName)
	body := `{"fetchedAt":"not-a-time","pageUrl":"` + page + `","albums":[]}`
	if err := os.WriteFile(cachePath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, _, err := NewCache(cachePath).Load(page); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCacheSaveWritesRecentFetchedAt(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), FileName))

	before := time.Now().Add(-2 * time.Second)
	if err := cache.Save(page, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_, fetchedAt, err := cache.Load(page)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if fetchedAt.Before(before) {
		t.Fatalf("unexpected stale fetchedAt: %s", fetchedAt)
	}
}
