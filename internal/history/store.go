// Package history persists the log of completed downloads as a single JSON
// document, newest entry first.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vidgrab/internal/core"
	"vidgrab/internal/utils"
)

// ErrNotFound is returned by Find when no entry has the requested id
var ErrNotFound = errors.New("history entry not found")

// EmptyMessage is rendered in place of an empty history
const EmptyMessage = "No downloads yet."

const fileVersion = "1.0"

type historyFile struct {
	Entries []core.HistoryEntry `json:"entries"`
	SavedAt time.Time           `json:"saved_at"`
	Version string              `json:"version"`
}

// Store reads and rewrites the history file. A limit of 0 keeps every entry.
type Store struct {
	path  string
	limit int
	mutex sync.Mutex
}

func NewStore(path string, limit int) *Store {
	if limit < 0 {
		limit = 0
	}
	return &Store{path: path, limit: limit}
}

// Path returns the history file location
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored entries, newest first. A missing file is an empty history.
func (s *Store) Load() ([]core.HistoryEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.read()
}

// Save prepends entry and rewrites the whole file, evicting the oldest
// entries past the limit.
func (s *Store) Save(entry core.HistoryEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.read()
	if err != nil {
		utils.LogWarning("HISTORY", "Unreadable history file, starting fresh: %v", err)
		entries = nil
	}

	entries = append([]core.HistoryEntry{entry}, entries...)
	if s.limit > 0 && len(entries) > s.limit {
		utils.LogDebug("HISTORY", "Evicting %d old entries", len(entries)-s.limit)
		entries = entries[:s.limit]
	}

	return s.write(entries)
}

// Find returns the entry with the given id
func (s *Store) Find(id string) (core.HistoryEntry, error) {
	entries, err := s.Load()
	if err != nil {
		return core.HistoryEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return core.HistoryEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear removes every entry
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.write([]core.HistoryEntry{})
}

func (s *Store) read() ([]core.HistoryEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []core.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var file historyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history file: %w", err)
	}

	if file.Version != fileVersion {
		utils.LogWarning("HISTORY", "History file version mismatch (found %q, expected %q), starting fresh",
			file.Version, fileVersion)
		return []core.HistoryEntry{}, nil
	}

	if file.Entries == nil {
		return []core.HistoryEntry{}, nil
	}
	return file.Entries, nil
}

func (s *Store) write(entries []core.HistoryEntry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(historyFile{
		Entries: entries,
		SavedAt: time.Now(),
		Version: fileVersion,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Write to temp file first, then rename so readers never see a partial file
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp history file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename history file: %w", err)
	}

	utils.LogDebug("HISTORY", "History saved with %d entries", len(entries))
	return nil
}
