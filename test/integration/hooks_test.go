//go:build integration

package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memodesk/memodesk/internal/config"
	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/memo"
	"github.com/memodesk/memodesk/internal/testutil"
)

func TestShellHookSeesMemoEvents(t *testing.T) {
	out := filepath.Join(t.TempDir(), "events.log")

	cfg := config.HooksConfig{
		Enabled: true,
		Hooks: []config.HookConfig{{
			Name:     "journal",
			Type:     "shell",
			Events:   []string{"memo.created", "memo.deleted"},
			Blocking: true,
			Command:  `echo "$MEMODESK_EVENT_TYPE" >> ` + out,
		}},
	}

	logger := testutil.TestLogger()
	hooks, err := event.BuildHooks(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	bus := event.NewBus(logger)
	bus.RegisterAll(hooks)

	svc := memo.NewService(memo.NewMemoryStore(), memo.Options{Bus: bus, Logger: logger})
	defer svc.Close()

	m, err := svc.Create(memo.CreateRequest{Title: "hooked"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(memo.UpdateRequest{ID: *m.ID, Title: "still hooked"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Delete(*m.ID); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"memo.created", "memo.deleted"}, strings.Fields(string(content)))
}

func TestFailingBlockingHookKeepsWrite(t *testing.T) {
	cfg := config.HooksConfig{
		Enabled: true,
		Hooks: []config.HookConfig{{
			Name: "broken", Type: "shell", Events: []string{"memo.created"}, Blocking: true, Command: "exit 3",
		}},
	}

	h := testutil.NewTestHarness(t)
	hooks, err := event.BuildHooks(cfg, h.Logger)
	if err != nil {
		t.Fatal(err)
	}
	h.EventBus.RegisterAll(hooks)

	m := h.MustCreate("survives", "")
	got, err := h.Service.Get(*m.ID)
	require.NoError(t, err)
	assert.NotNil(t, got, "memo should be stored even though the hook failed")
	h.AssertEventEmitted(event.MemoCreated)
}
