// Package ledger provides the durable "<uri>|<dest_dir>" -> local path record
// that keeps file names stable across runs.
//
// The ledger is a flat JSON object. One Store is shared by every worker of a
// run; each Record rewrites the whole file through a temp-file rename while
// holding the store's lock, so concurrent records never lose updates.
package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/glorpus-work/multifetch/pkg/errors"
	"github.com/glorpus-work/multifetch/pkg/fsutil"
)

// DefaultFileName is the ledger file used when no path is configured.
const DefaultFileName = "downloaded_files.json"

const jsonIndent = "    "

// Key builds the ledger key for a URI and the destination directory it was requested for.
func Key(uri, destDir string) string {
	return uri + "|" + destDir
}

// Store is the in-memory ledger backed by a JSON file.
type Store struct {
	path    string
	entries map[string]string
	rwMutex sync.RWMutex
}

// Open loads the ledger at path. A missing file yields an empty store that
// will be created on the first Record.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.ErrLedgerPathEmpty
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidPath, "ledger path %s: %v", path, err)
	}

	store := &Store{path: absPath, entries: make(map[string]string)}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("%w: %w", errors.ErrLedgerLoad, err)
	}
	defer func() { _ = file.Close() }()

	if err := store.parse(file); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrLedgerLoad, absPath, err)
	}
	return store, nil
}

func (s *Store) parse(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &s.entries)
}

// Path returns the absolute location of the ledger file.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns the path recorded for uri and destDir.
func (s *Store) Lookup(uri, destDir string) (string, bool) {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	localPath, ok := s.entries[Key(uri, destDir)]
	return localPath, ok
}

// Record stores localPath for uri and destDir and persists the whole ledger.
// On a persistence failure the in-memory entry is kept, so the rest of the
// run still resolves the same path.
func (s *Store) Record(uri, destDir, localPath string) error {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	s.entries[Key(uri, destDir)] = localPath
	return s.saveLocked()
}

// Forget removes the entry for uri and destDir and persists the ledger.
// It reports whether an entry existed.
func (s *Store) Forget(uri, destDir string) (bool, error) {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	key := Key(uri, destDir)
	if _, ok := s.entries[key]; !ok {
		return false, nil
	}
	delete(s.entries, key)
	return true, s.saveLocked()
}

// Entries returns a copy of every key -> path pair.
func (s *Store) Entries() map[string]string {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Keys returns the ledger keys in sorted order.
func (s *Store) Keys() []string {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.entries, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrLedgerSave, err)
	}
	if err := fsutil.EnsureFileDir(s.path); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrLedgerSave, err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrLedgerSave, err)
	}
	return nil
}
