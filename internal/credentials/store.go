package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rcap107/caparezzology/internal/logging"
)

// Ext marks a file in the credentials directory as a credential.
const Ext = ".id"

// Store holds named secrets loaded from *.id files. It is read-only after Load.
type Store struct {
	values map[string]string
}

// Load scans dir (non-recursive) for credential files. Unreadable files are
// logged and skipped; a missing directory produces an empty store.
func Load(dir string, logger *logging.Logger) (*Store, error) {
	s := &Store{values: make(map[string]string)}

	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read credentials dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Ext {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			logger.Errorf("Error loading %s: %v", entry.Name(), err)
			continue
		}
		name := strings.TrimSuffix(entry.Name(), Ext)
		s.values[name] = strings.TrimSpace(string(b))
		logger.Infof("Loaded credential: %s", name)
	}

	if len(s.values) == 0 {
		logger.Warnf("No credential files (%s) found in %s", Ext, dir)
	}
	return s, nil
}

// FromMap builds a store from in-memory values.
func FromMap(values map[string]string) *Store {
	s := &Store{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get returns the credential value and whether it exists.
func (s *Store) Get(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.values[name]
	return v, ok
}

// Names returns the loaded credential names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports how many credentials were loaded.
func (s *Store) Len() int {
	return len(s.values)
}
