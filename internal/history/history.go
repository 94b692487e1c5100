// Package history persists past readings to a single JSON file: a bounded
// list, newest first. Persistence is best-effort — a reading that cannot be
// saved is lost without disturbing the live session, and a corrupt file
// degrades to an empty history.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mystictarot/mystic/internal/oracle"
	"github.com/mystictarot/mystic/internal/session"
)

// MaxItems caps the stored history; saving beyond the cap evicts the
// oldest entries.
const MaxItems = 50

// Item is one persisted reading. Field names match the format the store
// has always written.
type Item struct {
	ID          string              `json:"id"`
	Timestamp   int64               `json:"timestamp"` // epoch millis
	SpreadID    string              `json:"spreadId"`
	DrawnCards  []session.DrawnCard `json:"drawnCards"`
	ChatHistory []oracle.Message    `json:"chatHistory"`
}

// Store reads and writes the history file. Access is mutex-guarded
// read-modify-write; concurrent processes are out of scope and the last
// writer wins.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewStore creates a Store backed by the file at path. The file and its
// directory are created lazily on first save.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{path: path, logger: logger}
}

// Readings returns all stored readings, newest first. A missing or
// unreadable file yields an empty list, never an error.
func (s *Store) Readings() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() []Item {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("history: read failed", "path", s.path, "error", err)
		}
		return nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("history: corrupt file, starting empty", "path", s.path, "error", err)
		return nil
	}
	return items
}

// Save persists item: an existing reading (same id) is overwritten in
// place, a new one is inserted at the front, and anything beyond MaxItems
// is evicted. Write failures are logged and swallowed.
func (s *Store) Save(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()

	replaced := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append([]Item{item}, items...)
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}

	if err := s.write(items); err != nil {
		s.logger.Warn("history: save failed", "path", s.path, "error", err)
	}
}

// Clear removes the history file.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("history: clear failed", "path", s.path, "error", err)
	}
}

// write serializes items and replaces the history file via a temp file and
// rename, so a reader never observes a partial write.
func (s *Store) write(items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("history: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("history: mkdir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("history: create temp: %w", err)
	}
	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("history: write: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("history: close: %w", closeErr)
	}
	if renameErr := os.Rename(tmp.Name(), s.path); renameErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("history: finalize: %w", renameErr)
	}
	return nil
}
