package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rcap107/caparezzology/internal/fsutil"
	"github.com/rcap107/caparezzology/internal/model"
)

// FileName is the default cache file name inside the lyrics output dir.
const FileName = "albums_cache.json"

// Cache persists the album grouping scraped from a discography page, so
// re-runs do not need to fetch the listing again.
type Cache struct {
	path string
}

// NewCache creates a discography cache at a target path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

type payload struct {
	FetchedAt string              `json:"fetchedAt"`
	PageURL   string              `json:"pageUrl"`
	Albums    model.AlbumGrouping `json:"albums"`
}

// Load returns the cached grouping for pageURL. A missing file, or a cache
// written for a different page, is reported as os.ErrNotExist.
func (c *Cache) Load(pageURL string) (model.AlbumGrouping, time.Time, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return nil, time.Time{}, err
	}

	var p payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, time.Time{}, fmt.Errorf("parse album cache %s: %w", c.path, err)
	}
	if p.PageURL != pageURL {
		return nil, time.Time{}, fmt.Errorf("album cache %s is for %q: %w", c.path, p.PageURL, os.ErrNotExist)
	}

	var fetchedAt time.Time
	if p.FetchedAt != "" {
		parsed, err := time.Parse(time.RFC3339, p.FetchedAt)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse fetchedAt in album cache %s: %w", c.path, err)
		}
		fetchedAt = parsed
	}

	return p.Albums, fetchedAt, nil
}

// Save writes the grouping for pageURL atomically.
func (c *Cache) Save(pageURL string, albums model.AlbumGrouping) error {
	p := payload{
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		PageURL:   pageURL,
		Albums:    albums,
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal album cache: %w", err)
	}
	if err := fsutil.WriteFileAtomic(c.path, b); err != nil {
		return fmt.Errorf("write album cache: %w", err)
	}
	return nil
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return c.path
}
