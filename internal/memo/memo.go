// Package memo owns the memo table: the model, the storage backends
// (SQLite and in-memory) and the Service that every command surface calls.
package memo

import (
	"time"
)

// TimeFormat is RFC 3339 with fixed-width nanoseconds. Fixed width keeps the
// lexical order of stored timestamps equal to their chronological order.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Memo is a persisted note.
type Memo struct {
	ID        *int64 `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// New builds an unpersisted memo. ID stays nil until a store assigns one.
func New(title, content string) *Memo {
	now := FormatTime(time.Now())
	return &Memo{
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Persisted reports whether the memo carries a store-assigned id.
func (m *Memo) Persisted() bool {
	return m.ID != nil
}

// IDValue returns the id or 0 for an unpersisted memo.
func (m *Memo) IDValue() int64 {
	if m.ID == nil {
		return 0
	}
	return *m.ID
}

// Created parses CreatedAt.
func (m *Memo) Created() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, m.CreatedAt)
}

// Updated parses UpdatedAt.
func (m *Memo) Updated() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, m.UpdatedAt)
}

// clone returns a deep copy so callers cannot alias backend state.
func (m *Memo) clone() *Memo {
	c := *m
	if m.ID != nil {
		id := *m.ID
		c.ID = &id
	}
	return &c
}

// FormatTime renders t in UTC using TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// CreateRequest is the payload for creating a memo.
type CreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateRequest is the payload for updating a memo.
type UpdateRequest struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Stats summarises the store.
type Stats struct {
	TotalMemos   int64  `json:"total_memos"`
	DatabasePath string `json:"database_path"`
	DatabaseSize int64  `json:"database_size"`
}
