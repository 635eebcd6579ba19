package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects memo store operation counters
type Metrics struct {
	mu sync.RWMutex

	// Counters
	MemosCreated int64
	MemosUpdated int64
	MemosDeleted int64
	Reads        int64
	Searches     int64
	Errors       int64

	// Histograms (simplified)
	opLatencies []time.Duration

	// Exporter (optional)
	exporter MetricsExporter
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		opLatencies: make([]time.Duration, 0, 1000),
	}
}

// IncCreated increments the created counter
func (m *Metrics) IncCreated() {
	atomic.AddInt64(&m.MemosCreated, 1)
}

// IncUpdated increments the updated counter
func (m *Metrics) IncUpdated() {
	atomic.AddInt64(&m.MemosUpdated, 1)
}

// IncDeleted increments the deleted counter
func (m *Metrics) IncDeleted() {
	atomic.AddInt64(&m.MemosDeleted, 1)
}

// IncReads increments the reads counter (list, get, stats)
func (m *Metrics) IncReads() {
	atomic.AddInt64(&m.Reads, 1)
}

// IncSearches increments the searches counter
func (m *Metrics) IncSearches() {
	atomic.AddInt64(&m.Searches, 1)
}

// IncErrors increments the failed-operation counter
func (m *Metrics) IncErrors() {
	atomic.AddInt64(&m.Errors, 1)
}

// RecordLatency records a store operation latency
func (m *Metrics) RecordLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opLatencies = append(m.opLatencies, d)
}

// GetSummary returns a summary of collected metrics
func (m *Metrics) GetSummary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := map[string]interface{}{
		"memos_created": atomic.LoadInt64(&m.MemosCreated),
		"memos_updated": atomic.LoadInt64(&m.MemosUpdated),
		"memos_deleted": atomic.LoadInt64(&m.MemosDeleted),
		"reads":         atomic.LoadInt64(&m.Reads),
		"searches":      atomic.LoadInt64(&m.Searches),
		"errors":        atomic.LoadInt64(&m.Errors),
	}

	if len(m.opLatencies) > 0 {
		var total time.Duration
		for _, d := range m.opLatencies {
			total += d
		}
		summary["avg_op_latency_us"] = total.Microseconds() / int64(len(m.opLatencies))
	}

	return summary
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	atomic.StoreInt64(&m.MemosCreated, 0)
	atomic.StoreInt64(&m.MemosUpdated, 0)
	atomic.StoreInt64(&m.MemosDeleted, 0)
	atomic.StoreInt64(&m.Reads, 0)
	atomic.StoreInt64(&m.Searches, 0)
	atomic.StoreInt64(&m.Errors, 0)

	m.opLatencies = m.opLatencies[:0]
}

// SetExporter attaches a metrics exporter.
func (m *Metrics) SetExporter(e MetricsExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exporter = e
}

// Flush exports the current metrics snapshot with the given event label.
func (m *Metrics) Flush(event string, labels map[string]string) {
	m.mu.RLock()
	exporter := m.exporter
	m.mu.RUnlock()

	if exporter == nil {
		return
	}

	snapshot := MetricsSnapshot{
		Timestamp: time.Now(),
		Event:     event,
		Metrics:   m.GetSummary(),
		Labels:    labels,
	}
	// Best-effort export.
	_ = exporter.Export(snapshot)
}

// Close closes the attached exporter, if any.
func (m *Metrics) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exporter == nil {
		return nil
	}
	err := m.exporter.Close()
	m.exporter = nil
	return err
}
