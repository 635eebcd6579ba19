package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWith("warn", "text", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "memo_id", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "memo_id=1") {
		t.Errorf("expected warn line with fields, got %q", out)
	}
}

func TestLogger_SetLevelReachesDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWith("warn", "text", &buf)
	child := logger.WithFields(map[string]interface{}{"surface": "http"})

	child.Debug("before")
	logger.SetLevel("debug")
	child.Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("debug line logged before level change")
	}
	if !strings.Contains(out, "after") || !strings.Contains(out, "surface=http") {
		t.Errorf("expected debug line from child logger, got %q", out)
	}
	if logger.Level() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", logger.Level())
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWith("info", "json", &buf)

	logger.WithFields(map[string]interface{}{"surface": "cli"}).Info("memo created", "memo_id", 7)

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON log line: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "memo created" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
	if rec["surface"] != "cli" {
		t.Errorf("expected surface field, got %v", rec["surface"])
	}
}

func TestLogger_WithFile(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWith("info", "text", &buf)

	path := filepath.Join(t.TempDir(), "logs", "memodesk.log")
	if err := logger.WithFile(path); err != nil {
		t.Fatal(err)
	}
	logger.Info("to both")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to both") {
		t.Errorf("expected file to contain log line, got %q", string(data))
	}
	if !strings.Contains(buf.String(), "to both") {
		t.Error("expected original writer to still receive log lines")
	}
}
