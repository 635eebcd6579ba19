package memo

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/memodesk/memodesk/internal/config"
	apperrors "github.com/memodesk/memodesk/internal/errors"
	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/telemetry"
)

// recorder is a blocking hook that keeps every event it sees.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Name() string                 { return "recorder" }
func (r *recorder) Matches(event.EventType) bool { return true }
func (r *recorder) IsBlocking() bool             { return true }
func (r *recorder) Handle(ev event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []event.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *recorder, *telemetry.Metrics) {
	t.Helper()
	rec := &recorder{}
	bus := event.NewBus(nil)
	bus.Register(rec)
	metrics := telemetry.NewMetrics()

	svc := NewService(NewMemoryStoreWithClock(newStepClock().Now), Options{Bus: bus, Metrics: metrics})
	t.Cleanup(func() { svc.Close() })
	return svc, rec, metrics
}

func TestService_EmitsLifecycleEvents(t *testing.T) {
	svc, rec, _ := newTestService(t)

	m, err := svc.Create(CreateRequest{Title: "t", Content: "c"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(UpdateRequest{ID: *m.ID, Title: "t2", Content: "c2"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Search("t2"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Delete(*m.ID); err != nil {
		t.Fatal(err)
	}
	// Deleting again removes nothing and emits nothing.
	if _, err := svc.Delete(*m.ID); err != nil {
		t.Fatal(err)
	}

	want := []event.EventType{event.MemoCreated, event.MemoUpdated, event.MemoSearched, event.MemoDeleted}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestService_Metrics(t *testing.T) {
	svc, _, metrics := newTestService(t)

	m, _ := svc.Create(CreateRequest{Title: "a"})
	svc.Get(*m.ID)
	svc.List()
	svc.Stats()
	svc.Search("a")
	svc.Update(UpdateRequest{ID: 404, Title: "x"})

	s := metrics.GetSummary()
	if s["memos_created"] != int64(1) {
		t.Errorf("expected 1 created, got %v", s["memos_created"])
	}
	if s["reads"] != int64(3) {
		t.Errorf("expected 3 reads, got %v", s["reads"])
	}
	if s["searches"] != int64(1) {
		t.Errorf("expected 1 search, got %v", s["searches"])
	}
	if s["errors"] != int64(0) {
		t.Errorf("NOT_FOUND must not count as an error, got %v", s["errors"])
	}
}

func TestService_UpdateMissingIsNotFound(t *testing.T) {
	svc, rec, _ := newTestService(t)

	_, err := svc.Update(UpdateRequest{ID: 9999, Title: "x", Content: "y"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(rec.types()) != 0 {
		t.Errorf("failed update must not emit events, got %v", rec.types())
	}

	st, err := svc.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalMemos != 0 {
		t.Errorf("expected no rows, got %d", st.TotalMemos)
	}
}

func TestService_RejectsInvalidUTF8(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(CreateRequest{Title: string([]byte{0xff, 0xfe}), Content: "ok"})
	if apperrors.AsCode(err) != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}

	m, err := svc.Create(CreateRequest{Title: "ok"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Update(UpdateRequest{ID: *m.ID, Title: "ok", Content: string([]byte{0xc3})})
	if apperrors.AsCode(err) != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestService_UpdateMonotonicity(t *testing.T) {
	svc := NewService(NewMemoryStore(), Options{})
	defer svc.Close()

	m, err := svc.Create(CreateRequest{Title: "t", Content: "c"})
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	u, err := svc.Update(UpdateRequest{ID: *m.ID, Title: "t2", Content: "c2"})
	if err != nil {
		t.Fatal(err)
	}

	created, err := m.Created()
	if err != nil {
		t.Fatal(err)
	}
	updated, err := u.Updated()
	if err != nil {
		t.Fatal(err)
	}
	if updated.Before(created) {
		t.Errorf("updated_at %v before created_at %v", updated, created)
	}
	if u.CreatedAt != m.CreatedAt {
		t.Errorf("created_at changed: %s -> %s", m.CreatedAt, u.CreatedAt)
	}
}

func TestOpen_SQLiteInDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app-data")
	cfg := config.Default()
	cfg.Storage.DataDir = dir

	rec := &recorder{}
	bus := event.NewBus(nil)
	bus.Register(rec)

	svc, err := Open(cfg, Options{Bus: bus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer svc.Close()

	if svc.Backend().Path() != filepath.Join(dir, "memos.db") {
		t.Errorf("unexpected path %s", svc.Backend().Path())
	}
	if _, err := os.Stat(filepath.Join(dir, "memos.db")); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
	if got := rec.types(); len(got) != 1 || got[0] != event.StoreOpened {
		t.Errorf("expected store.opened, got %v", got)
	}
}

func TestOpen_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"

	svc, err := Open(cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	st, err := svc.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.DatabasePath != MemoryPath || st.DatabaseSize != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestOpen_DataDirFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Storage.DataDir = filepath.Join(blocker, "data")

	_, err := Open(cfg, Options{})
	if !errors.Is(err, apperrors.ErrInitialization) {
		t.Fatalf("expected ErrInitialization, got %v", err)
	}
	if apperrors.Suggestion(err) == "" {
		t.Error("expected a suggestion on initialization errors")
	}
}

func TestMemo_New(t *testing.T) {
	m := New("draft", "unsaved")
	if m.Persisted() || m.IDValue() != 0 {
		t.Error("new memo must not carry an id")
	}
	if m.CreatedAt != m.UpdatedAt {
		t.Error("new memo timestamps should match")
	}
	if _, err := m.Created(); err != nil {
		t.Errorf("timestamp should parse as RFC 3339: %v", err)
	}
}

func TestFormatTime_LexicalOrder(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 100_000_000, time.UTC)
	later := base.Add(20 * time.Millisecond)
	if !(FormatTime(base) < FormatTime(later)) {
		t.Errorf("expected %s < %s", FormatTime(base), FormatTime(later))
	}

	local := time.Date(2025, 1, 1, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))
	if got := FormatTime(local); got != "2025-01-01T00:00:00.000000000Z" {
		t.Errorf("expected UTC rendering, got %s", got)
	}
}
