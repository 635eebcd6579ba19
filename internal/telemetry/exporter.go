package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MetricsExporter receives metrics snapshots.
type MetricsExporter interface {
	Export(snapshot MetricsSnapshot) error
	Close() error
}

// MetricsSnapshot is one exported line.
type MetricsSnapshot struct {
	Seq       uint64                 `json:"seq"`
	Timestamp time.Time              `json:"timestamp"`
	Event     string                 `json:"event"` // memo.created, server.shutdown, memodesk.exit
	PID       int                    `json:"pid"`
	Metrics   map[string]interface{} `json:"metrics"`
	Labels    map[string]string      `json:"labels,omitempty"`
}

// JSONLExporter appends snapshots to a JSONL file. When maxBytes is positive
// and a write would grow the file past it, the file is moved to path+".1"
// (replacing any previous one) and a fresh file is started.
type JSONLExporter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
	size     int64
	seq      uint64
}

// NewJSONLExporter opens path for appending, creating parent directories.
func NewJSONLExporter(path string, maxBytes int64) (*JSONLExporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create metrics directory: %w", err)
	}
	e := &JSONLExporter{path: path, maxBytes: maxBytes}
	if err := e.open(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *JSONLExporter) open() error {
	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open metrics file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat metrics file: %w", err)
	}
	e.file = f
	e.size = info.Size()
	return nil
}

func (e *JSONLExporter) rotate() error {
	if err := e.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(e.path, e.path+".1"); err != nil {
		return fmt.Errorf("failed to rotate metrics file: %w", err)
	}
	return e.open()
}

// Export stamps the snapshot with the next sequence number and the process id
// and writes it as one line.
func (e *JSONLExporter) Export(snapshot MetricsSnapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.file == nil {
		return fmt.Errorf("metrics exporter is closed")
	}

	e.seq++
	snapshot.Seq = e.seq
	snapshot.PID = os.Getpid()

	line, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	if e.maxBytes > 0 && e.size > 0 && e.size+int64(len(line)) > e.maxBytes {
		if err := e.rotate(); err != nil {
			return err
		}
	}

	n, err := e.file.Write(line)
	e.size += int64(n)
	return err
}

// Path returns the active file path.
func (e *JSONLExporter) Path() string {
	return e.path
}

// Close closes the active file. Further exports fail.
func (e *JSONLExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}
