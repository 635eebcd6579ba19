package event

import (
	"fmt"
	"sync"
)

// Bus fans memo lifecycle events out to hooks.
//
// Blocking hooks run in registration order on the emitting goroutine and the
// first failure is returned. Non-blocking hooks each get a goroutine; their
// failures and panics are logged. A nil *Bus accepts every call and does
// nothing.
type Bus struct {
	mu       sync.RWMutex
	hooks    []Hook
	enabled  bool
	logger   Logger
	inflight sync.WaitGroup
}

// Logger is the subset of telemetry.Logger the bus writes warnings to.
type Logger interface {
	Warn(msg string, keyvals ...interface{})
}

// NewBus returns an enabled bus. logger may be nil.
func NewBus(logger Logger) *Bus {
	return &Bus{enabled: true, logger: logger}
}

// Register appends a hook.
func (b *Bus) Register(h Hook) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks = append(b.hooks, h)
}

// Unregister removes every hook with the given name and reports whether any
// was found. Hooks already running are not interrupted.
func (b *Bus) Unregister(name string) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.hooks[:0]
	for _, h := range b.hooks {
		if h.Name() != name {
			kept = append(kept, h)
		}
	}
	removed := len(kept) != len(b.hooks)
	for i := len(kept); i < len(b.hooks); i++ {
		b.hooks[i] = nil
	}
	b.hooks = kept
	return removed
}

// HookNames lists registered hooks in dispatch order.
func (b *Bus) HookNames() []string {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, len(b.hooks))
	for i, h := range b.hooks {
		names[i] = h.Name()
	}
	return names
}

// SetEnabled turns dispatch on or off.
func (b *Bus) SetEnabled(enabled bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// snapshot returns the hooks matching t, or nil when the bus is disabled.
func (b *Bus) snapshot(t EventType) []Hook {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.enabled {
		return nil
	}
	var matched []Hook
	for _, h := range b.hooks {
		if h.Matches(t) {
			matched = append(matched, h)
		}
	}
	return matched
}

// Emit dispatches ev and returns the first blocking hook error.
func (b *Bus) Emit(ev Event) error {
	if b == nil {
		return nil
	}
	for _, h := range b.snapshot(ev.Type) {
		if !h.IsBlocking() {
			b.spawn(h, ev)
			continue
		}
		if err := h.Handle(ev); err != nil {
			return fmt.Errorf("blocking hook %s failed: %w", h.Name(), err)
		}
	}
	return nil
}

func (b *Bus) spawn(h Hook, ev Event) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				b.warn("Non-blocking hook panicked", "hook", h.Name(), "event", string(ev.Type), "panic", r)
			}
		}()
		if err := h.Handle(ev); err != nil {
			b.warn("Non-blocking hook failed", "hook", h.Name(), "event", string(ev.Type), "error", err)
		}
	}()
}

func (b *Bus) warn(msg string, keyvals ...interface{}) {
	if b.logger != nil {
		b.logger.Warn(msg, keyvals...)
	}
}

// Wait blocks until every non-blocking hook started so far has returned.
func (b *Bus) Wait() {
	if b == nil {
		return
	}
	b.inflight.Wait()
}

// Emitf builds and emits an event, logging instead of returning hook errors.
// Memo writes are already committed when it runs.
func (b *Bus) Emitf(t EventType, data map[string]interface{}) {
	if b == nil {
		return
	}
	if err := b.Emit(NewEvent(t, data)); err != nil {
		b.warn("Event hook failed", "event", string(t), "error", err)
	}
}
