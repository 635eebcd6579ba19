// Package memodesk provides a public API for the memodesk memo store.
//
// Example usage:
//
//	import "github.com/memodesk/memodesk/pkg/memodesk"
//
//	store, err := memodesk.Open("")  // user config dir, memos.db
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	m, err := store.Create("Groceries", "milk, eggs")
//	hits, err := store.Search("eggs")
package memodesk

import (
	"github.com/memodesk/memodesk/internal/config"
	"github.com/memodesk/memodesk/internal/memo"
)

// Re-exported model types.
type (
	Memo          = memo.Memo
	CreateRequest = memo.CreateRequest
	UpdateRequest = memo.UpdateRequest
	Stats         = memo.Stats
	Config        = config.Config
)

// Store is a handle on an open memo store. It is safe for concurrent use.
type Store struct {
	svc *memo.Service
}

// Open opens the SQLite memo database in dataDir, or in the user config
// directory when dataDir is empty.
func Open(dataDir string) (*Store, error) {
	cfg := config.Default()
	cfg.Storage.DataDir = dataDir
	return OpenWithConfig(cfg)
}

// OpenWithConfig opens the store described by cfg.
func OpenWithConfig(cfg *Config) (*Store, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	svc, err := memo.Open(cfg, memo.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{svc: svc}, nil
}

// OpenMemory returns a store that keeps memos in memory only.
func OpenMemory() *Store {
	return &Store{svc: memo.NewService(memo.NewMemoryStore(), memo.Options{})}
}

// LoadConfig loads memodesk.yaml from dir, falling back to defaults.
func LoadConfig(dir string) (*Config, error) {
	return config.Load(dir)
}

// Create stores a new memo.
func (s *Store) Create(title, content string) (*Memo, error) {
	return s.svc.Create(CreateRequest{Title: title, Content: content})
}

// List returns all memos, most recently updated first.
func (s *Store) List() ([]*Memo, error) {
	return s.svc.List()
}

// Get returns the memo with id, or nil if there is none.
func (s *Store) Get(id int64) (*Memo, error) {
	return s.svc.Get(id)
}

// Update replaces a memo's title and content.
func (s *Store) Update(id int64, title, content string) (*Memo, error) {
	return s.svc.Update(UpdateRequest{ID: id, Title: title, Content: content})
}

// Delete removes a memo and reports whether it existed.
func (s *Store) Delete(id int64) (bool, error) {
	return s.svc.Delete(id)
}

// Search returns memos whose title or content contains query.
func (s *Store) Search(query string) ([]*Memo, error) {
	return s.svc.Search(query)
}

// Stats reports the memo count and database location.
func (s *Store) Stats() (*Stats, error) {
	return s.svc.Stats()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.svc.Close()
}
