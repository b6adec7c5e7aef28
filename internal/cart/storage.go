package cart

import (
	"encoding/json"
	"os"
)

// FileStore persists cart snapshots as a JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored snapshot. A missing or malformed file yields
// (nil, nil): stale garbage is discarded, never surfaced.
func (s *FileStore) Load() ([]Item, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil
	}
	return items, nil
}

// Save writes the whole snapshot.
func (s *FileStore) Save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// MemoryStore is a Store for tests and short-lived sessions.
type MemoryStore struct {
	items []Item
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Load returns the last saved snapshot.
func (s *MemoryStore) Load() ([]Item, error) { return s.items, nil }

// Save replaces the snapshot.
func (s *MemoryStore) Save(items []Item) error {
	s.items = items
	return nil
}
