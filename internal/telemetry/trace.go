package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type traceKey struct{}

// TraceContext correlates one inbound command (CLI invocation, HTTP request,
// tool call) with the log lines it produces.
type TraceContext struct {
	RequestID string `json:"request_id"`
	Surface   string `json:"surface"` // cli, http, mcp
	Operation string `json:"operation,omitempty"`
	MemoID    int64  `json:"memo_id,omitempty"`
}

// NewTraceContext creates a trace context with a fresh request id.
func NewTraceContext(surface string) *TraceContext {
	return &TraceContext{
		RequestID: uuid.NewString(),
		Surface:   surface,
	}
}

// WithOperation returns a copy with the Operation set.
func (tc *TraceContext) WithOperation(op string) *TraceContext {
	child := *tc
	child.Operation = op
	return &child
}

// WithMemo returns a copy with the MemoID set.
func (tc *TraceContext) WithMemo(id int64) *TraceContext {
	child := *tc
	child.MemoID = id
	return &child
}

// Fields returns key-value pairs suitable for structured logging.
func (tc *TraceContext) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"request_id": tc.RequestID,
		"surface":    tc.Surface,
	}
	if tc.Operation != "" {
		fields["op"] = tc.Operation
	}
	if tc.MemoID != 0 {
		fields["memo_id"] = tc.MemoID
	}
	return fields
}

// ContextWithTrace stores a TraceContext in the context.
func ContextWithTrace(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceKey{}, tc)
}

// TraceFromContext extracts a TraceContext from the context, or nil.
func TraceFromContext(ctx context.Context) *TraceContext {
	tc, _ := ctx.Value(traceKey{}).(*TraceContext)
	return tc
}

// WithTrace returns a logger enriched with trace fields from the context.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	tc := TraceFromContext(ctx)
	if tc == nil {
		return l
	}
	return l.WithFields(tc.Fields())
}
