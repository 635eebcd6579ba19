package event

import (
	"fmt"
	"time"

	"github.com/memodesk/memodesk/internal/config"
)

// BuildHooks turns hook configuration into hooks. A disabled section yields none.
func BuildHooks(cfg config.HooksConfig, logger Logger) ([]Hook, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	hooks := make([]Hook, 0, len(cfg.Hooks))
	for _, hc := range cfg.Hooks {
		events := make([]EventType, 0, len(hc.Events))
		for _, name := range hc.Events {
			t, err := ParseEventType(name)
			if err != nil {
				return nil, fmt.Errorf("hook %s: %w", hc.Name, err)
			}
			events = append(events, t)
		}

		var timeout time.Duration
		if hc.Timeout != "" {
			d, err := time.ParseDuration(hc.Timeout)
			if err != nil {
				return nil, fmt.Errorf("hook %s: invalid timeout: %w", hc.Name, err)
			}
			timeout = d
		}

		switch hc.Type {
		case "shell":
			h := NewShellHook(hc.Name, hc.Command, events, hc.Blocking)
			h.Timeout = timeout
			hooks = append(hooks, h)
		case "webhook":
			h := NewWebhookHook(hc.Name, hc.URL, events, hc.Blocking)
			h.Timeout = timeout
			h.Retry = DefaultRetryPolicy(hc.Retries)
			hooks = append(hooks, h)
		case "log":
			if logger == nil {
				return nil, fmt.Errorf("hook %s: log hooks need a logger", hc.Name)
			}
			hooks = append(hooks, NewLogHook(hc.Name, events, logger, hc.Level))
		default:
			return nil, fmt.Errorf("hook %s: unsupported type %q", hc.Name, hc.Type)
		}
	}
	return hooks, nil
}

// RegisterAll registers each hook on the bus.
func (b *Bus) RegisterAll(hooks []Hook) {
	for _, h := range hooks {
		b.Register(h)
	}
}
