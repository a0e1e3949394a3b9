package contextkeys

import (
	"context"
	"testing"
)

func TestContextWithRunID(t *testing.T) {
	ctx := context.Background()

	ctx = ContextWithRunID(ctx, "RUN_01J9Z")
	if got := RunIDFromContext(ctx); got != "RUN_01J9Z" {
		t.Errorf("RunIDFromContext() = %v, want %v", got, "RUN_01J9Z")
	}

	emptyCtx := context.Background()
	if got := RunIDFromContext(emptyCtx); got != "" {
		t.Errorf("RunIDFromContext() on empty context = %v, want empty string", got)
	}
}

func TestContextWithCorrelationID(t *testing.T) {
	ctx := context.Background()

	ctx = ContextWithCorrelationID(ctx, "corr-789")
	if got := CorrelationIDFromContext(ctx); got != "corr-789" {
		t.Errorf("CorrelationIDFromContext() = %v, want %v", got, "corr-789")
	}

	emptyCtx := context.Background()
	if got := CorrelationIDFromContext(emptyCtx); got != "" {
		t.Errorf("CorrelationIDFromContext() on empty context = %v, want empty string", got)
	}
}

func TestGetTraceContext(t *testing.T) {
	ctx := context.Background()
	ctx = ContextWithCorrelationID(ctx, "corr-123")
	ctx = ContextWithRunID(ctx, "RUN_0001")

	trace := GetTraceContext(ctx)

	if trace.CorrelationID != "corr-123" {
		t.Errorf("TraceContext.CorrelationID = %v, want %v", trace.CorrelationID, "corr-123")
	}
	if trace.RunID != "RUN_0001" {
		t.Errorf("TraceContext.RunID = %v, want %v", trace.RunID, "RUN_0001")
	}
}

func TestIsValidTraceContext(t *testing.T) {
	emptyCtx := context.Background()
	if IsValidTraceContext(emptyCtx) {
		t.Error("IsValidTraceContext() on empty context should be false")
	}

	corrCtx := ContextWithCorrelationID(context.Background(), "corr-123")
	if !IsValidTraceContext(corrCtx) {
		t.Error("IsValidTraceContext() with correlation ID should be true")
	}

	runCtx := ContextWithRunID(context.Background(), "RUN_0001")
	if !IsValidTraceContext(runCtx) {
		t.Error("IsValidTraceContext() with run ID should be true")
	}

	bothCtx := ContextWithRunID(ContextWithCorrelationID(context.Background(), "corr-123"), "RUN_0001")
	if !IsValidTraceContext(bothCtx) {
		t.Error("IsValidTraceContext() with both IDs should be true")
	}
}

func TestChainedContext(t *testing.T) {
	ctx := context.Background()
	ctx = ContextWithCorrelationID(ctx, "corr-123")
	ctx = ContextWithRunID(ctx, "RUN_0001")

	if CorrelationIDFromContext(ctx) != "corr-123" {
		t.Error("CorrelationID lost in chained context")
	}
	if RunIDFromContext(ctx) != "RUN_0001" {
		t.Error("RunID lost in chained context")
	}
}
