package testutil

import (
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/memodesk/memodesk/internal/config"
	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/memo"
	"github.com/memodesk/memodesk/internal/telemetry"
)

// TestHarness provides everything needed for integration tests:
// config, a memo service, events, metrics and assertion helpers.
type TestHarness struct {
	T        *testing.T
	Config   *config.Config
	Service  *memo.Service
	EventBus *event.Bus
	Metrics  *telemetry.Metrics
	Logger   *telemetry.Logger

	mu     sync.Mutex
	events []event.Event // captured events
}

// NewTestHarness creates a harness over an in-memory store.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()
	return NewHarnessWithBackend(t, memo.NewMemoryStore())
}

// NewSQLiteHarness creates a harness over a SQLite file in a temp dir.
func NewSQLiteHarness(t *testing.T, driver string) *TestHarness {
	t.Helper()
	store, err := memo.NewSQLiteStore(driver, filepath.Join(t.TempDir(), "memos.db"))
	if err != nil {
		t.Fatal(err)
	}
	return NewHarnessWithBackend(t, store)
}

// NewHarnessWithBackend wraps an arbitrary backend. The service is closed
// when the test ends.
func NewHarnessWithBackend(t *testing.T, backend memo.Backend) *TestHarness {
	t.Helper()

	logger := TestLogger()
	bus := event.NewBus(logger)
	metrics := telemetry.NewMetrics()

	h := &TestHarness{
		T:        t,
		Config:   TestConfig(),
		EventBus: bus,
		Metrics:  metrics,
		Logger:   logger,
	}

	// Capture events via a hook
	bus.Register(&eventCapture{harness: h})

	h.Service = memo.NewService(backend, memo.Options{Bus: bus, Metrics: metrics, Logger: logger})
	t.Cleanup(func() {
		h.Service.Close()
		bus.Wait()
	})
	return h
}

// Events returns a copy of the captured events.
func (h *TestHarness) Events() []event.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]event.Event(nil), h.events...)
}

// AssertEventEmitted checks that an event with the given type was emitted.
func (h *TestHarness) AssertEventEmitted(eventType event.EventType) {
	h.T.Helper()
	if h.EventCount(eventType) == 0 {
		h.T.Errorf("expected event %q to be emitted", eventType)
	}
}

// AssertNoEvent checks that an event type was NOT emitted.
func (h *TestHarness) AssertNoEvent(eventType event.EventType) {
	h.T.Helper()
	if h.EventCount(eventType) > 0 {
		h.T.Errorf("expected event %q NOT to be emitted, but it was", eventType)
	}
}

// EventCount returns the number of events with the given type.
func (h *TestHarness) EventCount(eventType event.EventType) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := 0
	for _, e := range h.events {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// MustCreate stores a memo or fails the test.
func (h *TestHarness) MustCreate(title, content string) *memo.Memo {
	h.T.Helper()
	m, err := h.Service.Create(memo.CreateRequest{Title: title, Content: content})
	if err != nil {
		h.T.Fatalf("create %q: %v", title, err)
	}
	return m
}

// eventCapture is a blocking hook that records events.
type eventCapture struct {
	harness *TestHarness
}

func (c *eventCapture) Name() string                 { return "test-capture" }
func (c *eventCapture) Matches(event.EventType) bool { return true } // match all
func (c *eventCapture) IsBlocking() bool             { return true } // sync for tests

func (c *eventCapture) Handle(ev event.Event) error {
	c.harness.mu.Lock()
	defer c.harness.mu.Unlock()
	c.harness.events = append(c.harness.events, ev)
	return nil
}

// TestLogger returns a logger that discards everything below error.
func TestLogger() *telemetry.Logger {
	return telemetry.NewLoggerWith("error", "text", io.Discard)
}

// TestConfig returns a default config using the in-memory driver.
func TestConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	return cfg
}
