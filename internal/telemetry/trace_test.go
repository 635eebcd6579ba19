package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTraceContext_New(t *testing.T) {
	a := NewTraceContext("http")
	b := NewTraceContext("http")

	if a.Surface != "http" {
		t.Errorf("expected surface 'http', got %q", a.Surface)
	}
	if a.RequestID == "" {
		t.Error("expected non-empty RequestID")
	}
	if a.RequestID == b.RequestID {
		t.Error("request ids should be unique")
	}
}

func TestTraceContext_WithOperationMemo(t *testing.T) {
	tc := NewTraceContext("mcp")
	withOp := tc.WithOperation("update_memo")
	withMemo := withOp.WithMemo(42)

	if withOp.Operation != "update_memo" {
		t.Errorf("expected op 'update_memo', got %q", withOp.Operation)
	}
	if withMemo.MemoID != 42 {
		t.Errorf("expected memo 42, got %d", withMemo.MemoID)
	}
	if tc.Operation != "" || withOp.MemoID != 0 {
		t.Error("original should not be modified")
	}
}

func TestTraceContext_ContextPropagation(t *testing.T) {
	tc := NewTraceContext("cli")
	ctx := ContextWithTrace(context.Background(), tc)

	extracted := TraceFromContext(ctx)
	if extracted == nil {
		t.Fatal("expected trace in context")
	}
	if extracted.RequestID != tc.RequestID {
		t.Errorf("expected request id %q, got %q", tc.RequestID, extracted.RequestID)
	}

	if TraceFromContext(context.Background()) != nil {
		t.Error("expected nil trace from empty context")
	}
}

func TestTraceContext_Fields(t *testing.T) {
	tc := NewTraceContext("http").WithOperation("delete").WithMemo(3)

	fields := tc.Fields()
	if fields["surface"] != "http" {
		t.Error("expected surface in fields")
	}
	if fields["op"] != "delete" {
		t.Error("expected op in fields")
	}
	if fields["memo_id"] != int64(3) {
		t.Error("expected memo_id in fields")
	}
}

func TestLogger_WithTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWith("debug", "text", &buf)
	tc := NewTraceContext("http").WithOperation("search")
	ctx := ContextWithTrace(context.Background(), tc)

	logger.WithTrace(ctx).Info("handled")
	if !strings.Contains(buf.String(), "request_id="+tc.RequestID) {
		t.Errorf("expected request id in log line, got %q", buf.String())
	}

	if logger.WithTrace(context.Background()) != logger {
		t.Error("expected same logger without trace")
	}
}
