package memo

import (
	"sort"
	"sync"
	"time"

	apperrors "github.com/memodesk/memodesk/internal/errors"
)

// MemoryPath is reported as the database path of a MemoryStore.
const MemoryPath = ":memory:"

// MemoryStore implements an in-memory memo store with the same ordering and
// search semantics as SQLiteStore.
type MemoryStore struct {
	mu     sync.RWMutex
	memos  map[int64]*Memo
	nextID int64
	now    Clock
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock is NewMemoryStore with an injected clock.
func NewMemoryStoreWithClock(now Clock) *MemoryStore {
	return &MemoryStore{
		memos: make(map[int64]*Memo),
		now:   now,
	}
}

// Create stores a new memo. Ids are never reused, even after deletion.
func (s *MemoryStore) Create(title, content string) (*Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	now := FormatTime(s.now())
	m := &Memo{ID: &id, Title: title, Content: content, CreatedAt: now, UpdatedAt: now}
	s.memos[id] = m
	return m.clone(), nil
}

// List returns all memos, most recently updated first
func (s *MemoryStore) List() ([]*Memo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(func(*Memo) bool { return true }), nil
}

// Get retrieves a memo by id
func (s *MemoryStore) Get(id int64) (*Memo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.memos[id]; ok {
		return m.clone(), nil
	}
	return nil, nil
}

// Update overwrites title and content
func (s *MemoryStore) Update(id int64, title, content string) (*Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memos[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "memo %d not found", id)
	}

	now := FormatTime(s.now())
	if now < m.CreatedAt {
		now = m.CreatedAt
	}
	m.Title = title
	m.Content = content
	m.UpdatedAt = now
	return m.clone(), nil
}

// Delete removes a memo
func (s *MemoryStore) Delete(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.memos[id]; !ok {
		return false, nil
	}
	delete(s.memos, id)
	return true, nil
}

// Search matches query against title or content like SQLite's LIKE '%query%'
func (s *MemoryStore) Search(query string) ([]*Memo, error) {
	pattern := "%" + query + "%"

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(func(m *Memo) bool {
		return likeMatch(pattern, m.Title) || likeMatch(pattern, m.Content)
	}), nil
}

// Stats returns the memo count; an in-memory store has no file
func (s *MemoryStore) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Stats{
		TotalMemos:   int64(len(s.memos)),
		DatabasePath: MemoryPath,
		DatabaseSize: 0,
	}, nil
}

// Path returns MemoryPath
func (s *MemoryStore) Path() string {
	return MemoryPath
}

// Close closes the store (no-op for memory)
func (s *MemoryStore) Close() error {
	return nil
}

// sorted returns matching memos by updated_at descending, ties in id order.
// Callers hold the read lock.
func (s *MemoryStore) sorted(keep func(*Memo) bool) []*Memo {
	memos := make([]*Memo, 0, len(s.memos))
	for _, m := range s.memos {
		if keep(m) {
			memos = append(memos, m.clone())
		}
	}

	sort.Slice(memos, func(i, j int) bool {
		if memos[i].UpdatedAt != memos[j].UpdatedAt {
			return memos[i].UpdatedAt > memos[j].UpdatedAt
		}
		return *memos[i].ID < *memos[j].ID
	})
	return memos
}
