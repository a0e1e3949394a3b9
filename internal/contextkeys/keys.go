// Package contextkeys provides standardized context key definitions for
// request-scoped values carried across a pipeline run: the run's own
// identifier and an optional caller-supplied correlation id for
// stitching OMEGA's structured logs back to an external request.
package contextkeys

import "context"

// Key is the type for all context keys in this package to avoid collisions.
type Key string

const (
	// RunIDKey is the context key for the current run_id (spec.md §4.1's
	// RUN_<ULID>, or a GENESIS/CANON/VOICE scoped variant).
	RunIDKey Key = "run_id"

	// CorrelationIDKey is the context key for an external correlation id,
	// set by a caller that embeds OMEGA in a larger request flow.
	CorrelationIDKey Key = "correlation_id"
)

// ContextWithRunID returns a new context with the run ID set.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// RunIDFromContext retrieves the run ID from the context.
// Returns empty string if not found.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithCorrelationID returns a new context with the correlation ID set.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// CorrelationIDFromContext retrieves the correlation ID from the context.
// Returns empty string if not found.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// TraceContext holds the trace identifiers for a run.
type TraceContext struct {
	RunID         string
	CorrelationID string
}

// GetTraceContext extracts the trace identifiers from a context.
func GetTraceContext(ctx context.Context) TraceContext {
	return TraceContext{
		RunID:         RunIDFromContext(ctx),
		CorrelationID: CorrelationIDFromContext(ctx),
	}
}

// IsValidTraceContext reports whether ctx carries at least a run ID or
// a correlation ID.
func IsValidTraceContext(ctx context.Context) bool {
	return RunIDFromContext(ctx) != "" || CorrelationIDFromContext(ctx) != ""
}
