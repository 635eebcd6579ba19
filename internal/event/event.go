package event

import (
	"fmt"
	"time"
)

// EventType identifies the kind of lifecycle event.
type EventType string

const (
	// Memo lifecycle
	MemoCreated  EventType = "memo.created"
	MemoUpdated  EventType = "memo.updated"
	MemoDeleted  EventType = "memo.deleted"
	MemoSearched EventType = "memo.searched"

	// Store
	StoreOpened EventType = "store.opened"
	StoreClosed EventType = "store.closed"
)

var knownTypes = map[EventType]bool{
	MemoCreated:  true,
	MemoUpdated:  true,
	MemoDeleted:  true,
	MemoSearched: true,
	StoreOpened:  true,
	StoreClosed:  true,
}

// ParseEventType validates an event name from configuration.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !knownTypes[t] {
		return "", fmt.Errorf("unknown event type: %s", s)
	}
	return t, nil
}

// Event carries data about a lifecycle occurrence.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]interface{}) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	}
}
