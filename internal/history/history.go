// Package history maintains the bounded operation-history ring buffer
// at history.json (spec.md §4.8, C9). Writes are best-effort: a failure
// to persist history never fails the install/uninstall operation that
// produced the entry.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/winpacman/core/internal/logging"
	"github.com/winpacman/core/internal/model"
)

// Store guards concurrent access to one history.json file.
type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

// Append adds entry to the ring buffer, evicting the oldest entries
// past model.MaxHistoryEntries, and persists the result. Errors are
// logged, not returned, per spec.md §4.8's best-effort contract.
func (s *Store) Append(entry model.HistoryEntry) {
	log := logging.Component("history")
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readLocked()
	if err != nil {
		log.Warn("reading history before append", "error", err)
		entries = nil
	}

	entries = append(entries, entry)
	if len(entries) > model.MaxHistoryEntries {
		entries = entries[len(entries)-model.MaxHistoryEntries:]
	}

	if err := s.writeLocked(entries); err != nil {
		log.Warn("writing history", "error", err)
	}
}

// List returns the current ring buffer, most-recent last.
func (s *Store) List() ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *Store) readLocked() ([]model.HistoryEntry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) writeLocked(entries []model.HistoryEntry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
