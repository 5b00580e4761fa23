// Package cas implements the completion ledger.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store implements ports.CompletionStore using a flat JSON file.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.CompletionRecord
}

var _ ports.CompletionStore = (*Store)(nil)

// NewStore opens the ledger at path. A missing file is an empty ledger.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.CompletionRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // path comes from the run settings
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read ledger"), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to decode ledger"), "path", s.path)
	}
	return nil
}

// save writes the ledger through a temporary file so a crash never leaves it truncated.
// The caller holds the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to encode ledger")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create ledger directory")
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create ledger")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write ledger")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to write ledger")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return zerr.Wrap(err, "failed to replace ledger")
	}
	return nil
}

// Get returns the record stored under key, or nil if there is none.
func (s *Store) Get(key string) (*domain.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.cache[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Put stores the record and persists the ledger.
func (s *Store) Put(record domain.CompletionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[record.Key()] = record
	return s.save()
}

// Delete removes the record stored under key and persists the ledger.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[key]; !ok {
		return nil
	}
	delete(s.cache, key)
	return s.save()
}

// Records returns every record sorted by key.
func (s *Store) Records() ([]domain.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CompletionRecord, 0, len(s.cache))
	for _, k := range slices.Sorted(maps.Keys(s.cache)) {
		out = append(out, s.cache[k])
	}
	return out, nil
}

// Opener implements ports.CompletionStoreOpener.
type Opener struct{}

// Open opens the ledger at path.
func (Opener) Open(path string) (ports.CompletionStore, error) {
	return NewStore(path)
}
