package memo

import "time"

// Backend defines the interface for memo storage backends
type Backend interface {
	Create(title, content string) (*Memo, error)
	List() ([]*Memo, error)
	// Get returns (nil, nil) when no memo has the id.
	Get(id int64) (*Memo, error)
	// Update fails with a NOT_FOUND error when no memo has the id.
	Update(id int64, title, content string) (*Memo, error)
	// Delete reports whether a memo was removed.
	Delete(id int64) (bool, error)
	Search(query string) ([]*Memo, error)
	Stats() (*Stats, error)

	Path() string
	Close() error
}

// Clock supplies timestamps; tests inject a fake.
type Clock func() time.Time
