// Package filestore persists a single AuthState snapshot as a 0600
// JSON file, the single-machine-process default (spec §6.6).
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sagemsg/gmweb/auth"
	"github.com/sagemsg/gmweb/authstore"
)

// Store is an authstore.Store backed by one JSON file per key, stored
// as sibling files named "<key>.json" under dir.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a Store rooted at dir, creating it (0700) if absent.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("filestore: creating %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Save writes snap to its key's file, replacing any prior contents.
func (s *Store) Save(_ context.Context, key string, snap auth.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: marshaling snapshot: %w", err)
	}

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("filestore: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("filestore: renaming into place: %w", err)
	}
	return nil
}

// Load reads the snapshot stored for key, or authstore.ErrNotFound if
// none exists.
func (s *Store) Load(_ context.Context, key string) (auth.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return auth.Snapshot{}, authstore.ErrNotFound
	}
	if err != nil {
		return auth.Snapshot{}, fmt.Errorf("filestore: reading %s: %w", s.path(key), err)
	}

	var snap auth.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return auth.Snapshot{}, fmt.Errorf("filestore: unmarshaling snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes key's stored snapshot, if any. Deleting a key that
// was never saved is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: removing %s: %w", s.path(key), err)
	}
	return nil
}
