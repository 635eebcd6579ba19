package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/telemetry"
)

const clientBuffer = 64

// SSEEvent is one frame on /api/events. ID increases by one per broadcast
// and is sent as the SSE id field.
type SSEEvent struct {
	ID        uint64      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	MemoID    int64       `json:"memo_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Client is one open event stream. MemoID 0 receives every event.
type Client struct {
	ID     string
	MemoID int64
	Events chan SSEEvent
}

// Broker fans bus events out to SSE clients. It runs as a blocking hook so
// event ids follow emit order; Broadcast never waits on a client, and a
// client whose buffer is full misses the event.
type Broker struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *telemetry.Logger

	seq     atomic.Uint64
	dropped atomic.Int64
}

func NewBroker(logger *telemetry.Logger) *Broker {
	return &Broker{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Subscribe registers a client until ctx is done, then closes its channel.
func (b *Broker) Subscribe(ctx context.Context, clientID string, memoID int64) *Client {
	c := &Client{ID: clientID, MemoID: memoID, Events: make(chan SSEEvent, clientBuffer)}

	b.mu.Lock()
	b.clients[clientID] = c
	b.mu.Unlock()
	b.logger.Debug("SSE client connected", "client", clientID, "memo_id", memoID)

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.clients, clientID)
		close(c.Events)
		b.mu.Unlock()
		b.logger.Debug("SSE client disconnected", "client", clientID)
	}()
	return c
}

func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Dropped counts events discarded for slow clients.
func (b *Broker) Dropped() int64 {
	return b.dropped.Load()
}

// Broadcast stamps ev with the next id and queues it for every interested client.
func (b *Broker) Broadcast(ev SSEEvent) {
	ev.ID = b.seq.Add(1)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.clients {
		if c.MemoID != 0 && c.MemoID != ev.MemoID {
			continue
		}
		select {
		case c.Events <- ev:
		default:
			b.dropped.Add(1)
			b.logger.Warn("Dropping SSE event for slow client", "client", c.ID, "event_id", ev.ID)
		}
	}
}

// Name, Matches, IsBlocking and Handle attach the broker to the event bus.

func (b *Broker) Name() string                 { return "sse-broker" }
func (b *Broker) Matches(event.EventType) bool { return true }
func (b *Broker) IsBlocking() bool             { return true }

func (b *Broker) Handle(ev event.Event) error {
	memoID, _ := ev.Data["memo_id"].(int64)
	b.Broadcast(SSEEvent{
		Type:      string(ev.Type),
		Timestamp: ev.Timestamp,
		MemoID:    memoID,
		Data:      ev.Data,
	})
	return nil
}
