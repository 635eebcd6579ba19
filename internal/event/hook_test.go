package event

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/memodesk/memodesk/internal/config"
)

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		events []EventType
		probe  EventType
		want   bool
	}{
		{"listed", []EventType{MemoCreated, MemoUpdated}, MemoUpdated, true},
		{"not listed", []EventType{MemoCreated, MemoUpdated}, MemoDeleted, false},
		{"empty matches all", nil, StoreClosed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newFilter("f", tt.events, false).Matches(tt.probe); got != tt.want {
				t.Errorf("Matches(%s) = %v, want %v", tt.probe, got, tt.want)
			}
		})
	}
}

func TestShellHook_Environment(t *testing.T) {
	var out bytes.Buffer
	hook := NewShellHook("env", `printf "%s/%s" "$MEMODESK_EVENT_TYPE" "$MEMODESK_MEMO_ID"`, []EventType{MemoCreated}, false)
	hook.Stdout = &out

	ev := NewEvent(MemoCreated, map[string]interface{}{"memo_id": int64(42)})
	if err := hook.Handle(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "memo.created/42" {
		t.Errorf("unexpected hook output %q", out.String())
	}

	out.Reset()
	if err := hook.Handle(NewEvent(StoreOpened, map[string]interface{}{"path": "x"})); err != nil {
		t.Fatal(err)
	}
	if out.String() != "store.opened/" {
		t.Errorf("store events carry no memo id, got %q", out.String())
	}
}

func TestShellHook_Failure(t *testing.T) {
	hook := NewShellHook("fail", "exit 3", nil, true)
	if err := hook.Handle(NewEvent(MemoCreated, nil)); err == nil {
		t.Fatal("expected error from failed shell command")
	}
}

func TestShellHook_Timeout(t *testing.T) {
	hook := NewShellHook("slow", "sleep 5", nil, true)
	hook.Timeout = 100 * time.Millisecond

	start := time.Now()
	err := hook.Handle(NewEvent(MemoUpdated, nil))
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("hook was not cut off at its timeout")
	}
}

func TestWebhookHook_Post(t *testing.T) {
	var (
		mu     sync.Mutex
		body   []byte
		header http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		body, header = b, r.Header.Clone()
		mu.Unlock()
	}))
	defer server.Close()

	hook := NewWebhookHook("web", server.URL, []EventType{MemoDeleted}, true)
	if err := hook.Handle(NewEvent(MemoDeleted, map[string]interface{}{"memo_id": int64(3)})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got := header.Get("X-Memodesk-Event"); got != "memo.deleted" {
		t.Errorf("expected event header, got %q", got)
	}
	if got := header.Get("Content-Type"); got != "application/json" {
		t.Errorf("unexpected content type %q", got)
	}

	var payload Event
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to parse webhook payload: %v", err)
	}
	if payload.Type != MemoDeleted || payload.Data["memo_id"] != float64(3) {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestWebhookHook_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	hook := NewWebhookHook("web", server.URL, nil, true)
	err := hook.Handle(NewEvent(StoreClosed, nil))
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

// warnOnly implements Logger but not LeveledLogger.
type warnOnly struct{ msgs []string }

func (w *warnOnly) Warn(msg string, keyvals ...interface{}) { w.msgs = append(w.msgs, msg) }

func TestLogHook_FallsBackToWarn(t *testing.T) {
	logger := &warnOnly{}
	hook := NewLogHook("audit", []EventType{MemoCreated}, logger, "info")

	if err := hook.Handle(NewEvent(MemoCreated, map[string]interface{}{"title": "a"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logger.msgs) != 1 || logger.msgs[0] != "Memo event" {
		t.Errorf("expected one warn call, got %v", logger.msgs)
	}
	if hook.IsBlocking() {
		t.Error("log hook should always be non-blocking")
	}
}

func TestParseEventType(t *testing.T) {
	if _, err := ParseEventType("memo.updated"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseEventType("task.started"); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestBuildHooks(t *testing.T) {
	cfg := config.HooksConfig{
		Enabled: true,
		Hooks: []config.HookConfig{
			{Name: "sh", Type: "shell", Command: "true", Events: []string{"memo.created"}, Blocking: true, Timeout: "2s"},
			{Name: "web", Type: "webhook", URL: "http://localhost:1/hook"},
			{Name: "audit", Type: "log", Level: "debug", Events: []string{"memo.deleted"}},
		},
	}

	hooks, err := BuildHooks(cfg, &testLogger{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hooks) != 3 {
		t.Fatalf("expected 3 hooks, got %d", len(hooks))
	}
	if !hooks[0].IsBlocking() || hooks[0].Matches(MemoDeleted) {
		t.Error("shell hook should be blocking and filtered to memo.created")
	}
	if sh := hooks[0].(*ShellHook); sh.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %s", sh.Timeout)
	}
	if !hooks[1].Matches(MemoSearched) {
		t.Error("webhook without events should match all")
	}
	if _, ok := hooks[2].(*LogHook); !ok {
		t.Errorf("expected *LogHook, got %T", hooks[2])
	}
}

func TestBuildHooks_Disabled(t *testing.T) {
	hooks, err := BuildHooks(config.HooksConfig{Hooks: []config.HookConfig{{Name: "x", Type: "log"}}}, nil)
	if err != nil || hooks != nil {
		t.Fatalf("expected no hooks, got %v, %v", hooks, err)
	}
}

func TestBuildHooks_UnknownEvent(t *testing.T) {
	cfg := config.HooksConfig{
		Enabled: true,
		Hooks:   []config.HookConfig{{Name: "bad", Type: "log", Events: []string{"crew.started"}}},
	}
	_, err := BuildHooks(cfg, &testLogger{})
	if err == nil || !strings.Contains(err.Error(), "unknown event type") {
		t.Fatalf("expected unknown event error, got %v", err)
	}
}
