package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rcap107/caparezzology/internal/fsutil"
)

// FileName is the state file kept at the root of the lyrics output dir.
const FileName = "completed_albums.json"

// Store tracks albums whose every song was scraped without failures, so a
// re-run can skip them. It is used from a single goroutine.
type Store struct {
	path string
	set  map[string]struct{}
}

// Open loads the state file in dir, starting empty if it does not exist.
func Open(dir string) (*Store, error) {
	return NewStore(filepath.Join(dir, FileName))
}

// NewStore loads state from path, starting empty if the file does not exist.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path: path,
		set:  make(map[string]struct{}),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read state file %s: %w", path, err)
	}

	var albums []string
	if err := json.Unmarshal(b, &albums); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	for _, a := range albums {
		s.set[a] = struct{}{}
	}
	return s, nil
}

// IsCompleted reports whether an album has already been scraped.
func (s *Store) IsCompleted(album string) bool {
	_, ok := s.set[album]
	return ok
}

// MarkCompleted records an album and persists the state.
func (s *Store) MarkCompleted(album string) error {
	if _, ok := s.set[album]; ok {
		return nil
	}
	s.set[album] = struct{}{}
	return s.save()
}

// Reset forgets every album, e.g. to force a full re-scrape.
func (s *Store) Reset() error {
	if len(s.set) == 0 {
		return nil
	}
	s.set = make(map[string]struct{})
	return s.save()
}

// Completed lists recorded albums in sorted order.
func (s *Store) Completed() []string {
	albums := make([]string, 0, len(s.set))
	for name := range s.set {
		albums = append(albums, name)
	}
	sort.Strings(albums)
	return albums
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	payload, err := json.Marshal(s.Completed())
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, payload); err != nil {
		return fmt.Errorf("persist state %s: %w", s.path, err)
	}
	return nil
}
