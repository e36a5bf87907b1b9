// Package history records what the visual helper has captured or received
// from the design tool during a session.
package history

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jmylchreest/figaid/internal/analysis"
	"github.com/jmylchreest/figaid/internal/document"
	"github.com/jmylchreest/figaid/internal/geometry"
)

// EntryType distinguishes screen captures from design-tool exports.
type EntryType string

// Entry types.
const (
	TypeCapture     EntryType = "capture"
	TypeFigmaExport EntryType = "figma-export"
)

// DefaultRecent is the number of entries returned by the history endpoint.
const DefaultRecent = 10

// Item is one saved export within a figma-export entry.
type Item struct {
	Name     string         `json:"name"`
	Type     string         `json:"type,omitempty"`
	Bounds   *geometry.Rect `json:"bounds,omitempty"`
	Filename string         `json:"filename"`
	URL      string         `json:"url"`
}

// Entry is a single history record. Capture entries carry the capture
// fields and its analysis; export entries carry the viewport and items.
type Entry struct {
	ID        string    `json:"id"`
	Type      EntryType `json:"type"`
	Timestamp int64     `json:"timestamp"`

	Filename string           `json:"filename,omitempty"`
	Path     string           `json:"filepath,omitempty"`
	App      string           `json:"app,omitempty"`
	URL      string           `json:"url,omitempty"`
	Analysis *analysis.Result `json:"analysis,omitempty"`

	Viewport *document.Viewport `json:"viewport,omitempty"`
	Items    []Item             `json:"items,omitempty"`
}

// Files returns the capture file names referenced by the entry.
func (e Entry) Files() []string {
	var files []string
	if e.Filename != "" {
		files = append(files, e.Filename)
	}
	for _, item := range e.Items {
		if item.Filename != "" {
			files = append(files, item.Filename)
		}
	}
	return files
}

// Store is an in-memory, append-only history safe for concurrent use.
// A positive limit caps the number of retained entries.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
}

// NewStore creates a Store. A limit of zero or less retains everything.
func NewStore(limit int) *Store {
	return &Store{limit: limit}
}

// Add appends an entry, assigning an ID when it has none, and returns the
// stored copy.
func (s *Store) Add(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = append([]Entry(nil), s.entries[len(s.entries)-s.limit:]...)
	}
	return e
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Recent returns up to n of the newest entries, oldest first.
func (s *Store) Recent(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n >= 0 && len(s.entries) > n {
		start = len(s.entries) - n
	}
	return append([]Entry{}, s.entries[start:]...)
}

// All returns every retained entry, oldest first.
func (s *Store) All() []Entry {
	return s.Recent(-1)
}

// Get looks up an entry by ID.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}
