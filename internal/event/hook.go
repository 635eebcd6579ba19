package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"time"
)

// DefaultHookTimeout bounds shell and webhook hooks without a configured timeout.
const DefaultHookTimeout = 10 * time.Second

// Hook receives events from a Bus.
type Hook interface {
	Name() string
	// Matches reports whether the hook wants events of type t.
	Matches(t EventType) bool
	// IsBlocking reports whether the emitter waits for Handle and sees its error.
	IsBlocking() bool
	Handle(ev Event) error
}

// filter holds the name, event filter and blocking flag shared by the
// built-in hooks. An empty event list matches everything.
type filter struct {
	name     string
	events   map[EventType]bool
	blocking bool
}

func newFilter(name string, events []EventType, blocking bool) filter {
	f := filter{name: name, blocking: blocking}
	if len(events) > 0 {
		f.events = make(map[EventType]bool, len(events))
		for _, t := range events {
			f.events[t] = true
		}
	}
	return f
}

func (f filter) Name() string             { return f.name }
func (f filter) IsBlocking() bool         { return f.blocking }
func (f filter) Matches(t EventType) bool { return f.events == nil || f.events[t] }

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultHookTimeout
	}
	return d
}

// memoID extracts the memo id carried by memo events.
func memoID(ev Event) (int64, bool) {
	id, ok := ev.Data["memo_id"].(int64)
	return id, ok
}

// ShellHook runs `sh -c Command` with the event in its environment:
//
//	MEMODESK_EVENT_TYPE  event type, e.g. memo.created
//	MEMODESK_EVENT_JSON  the whole event as JSON
//	MEMODESK_MEMO_ID     memo id, for memo events only
type ShellHook struct {
	filter
	Command string
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
}

func NewShellHook(name, command string, events []EventType, blocking bool) *ShellHook {
	return &ShellHook{
		filter:  newFilter(name, events, blocking),
		Command: command,
		Stdout:  os.Stderr,
		Stderr:  os.Stderr,
	}
}

func (h *ShellHook) Handle(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutOrDefault(h.Timeout))
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Env = append(os.Environ(),
		"MEMODESK_EVENT_TYPE="+string(ev.Type),
		"MEMODESK_EVENT_JSON="+string(payload),
	)
	if id, ok := memoID(ev); ok {
		cmd.Env = append(cmd.Env, "MEMODESK_MEMO_ID="+strconv.FormatInt(id, 10))
	}
	cmd.Stdout = h.Stdout
	cmd.Stderr = h.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("shell hook %s timed out after %s", h.name, timeoutOrDefault(h.Timeout))
		}
		return fmt.Errorf("shell hook %s failed: %w", h.name, err)
	}
	return nil
}

// WebhookHook POSTs the event as JSON. The event type is also sent in the
// X-Memodesk-Event header. Any status >= 400 is a failure; transport errors,
// 429 and 5xx are retried under Retry. Timeout bounds each attempt.
type WebhookHook struct {
	filter
	URL     string
	Timeout time.Duration
	Retry   RetryPolicy
	Client  *http.Client
}

func NewWebhookHook(name, url string, events []EventType, blocking bool) *WebhookHook {
	return &WebhookHook{
		filter: newFilter(name, events, blocking),
		URL:    url,
	}
}

func (h *WebhookHook) Handle(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return h.Retry.do(context.Background(), func() error {
		return h.post(ev.Type, body)
	})
}

func (h *WebhookHook) post(t EventType, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeoutOrDefault(h.Timeout))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook %s: %w", h.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "memodesk-hook")
	req.Header.Set("X-Memodesk-Event", string(t))

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s failed: %w", h.name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return &statusError{hook: h.name, status: resp.StatusCode}
	}
	return nil
}

// LeveledLogger is satisfied by telemetry.Logger.
type LeveledLogger interface {
	Logger
	Info(msg string, keyvals ...interface{})
	Debug(msg string, keyvals ...interface{})
}

// LogHook writes each event to the logger. It never blocks the emitter.
type LogHook struct {
	filter
	logger Logger
	level  string // debug, info, warn
}

func NewLogHook(name string, events []EventType, logger Logger, level string) *LogHook {
	if level == "" {
		level = "info"
	}
	return &LogHook{
		filter: newFilter(name, events, false),
		logger: logger,
		level:  level,
	}
}

func (h *LogHook) Handle(ev Event) error {
	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]interface{}, 0, len(keys)*2+2)
	keyvals = append(keyvals, "event_type", string(ev.Type))
	for _, k := range keys {
		keyvals = append(keyvals, k, ev.Data[k])
	}

	msg := "Memo event"
	ll, ok := h.logger.(LeveledLogger)
	switch {
	case !ok || h.level == "warn":
		h.logger.Warn(msg, keyvals...)
	case h.level == "debug":
		ll.Debug(msg, keyvals...)
	default:
		ll.Info(msg, keyvals...)
	}
	return nil
}
