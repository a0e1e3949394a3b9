package pipeline

import (
	"time"

	"omega/internal/telemetry"
)

// Pass receives a mutable context and returns either a PassResult
// (success, with an artifact map to merge into the context) or an
// error. Passes must compute input_hash from their own designated
// input slice of the context; the Runner fills in prev_hash,
// output_hash, and chain_hash via buildProof.
type Pass interface {
	ID() string
	Run(ctx *Context) (artifacts map[string]any, err error)
	// InputHash returns the hash of the slice of ctx this pass reads,
	// computed before Run mutates anything that slice depends on.
	InputHash(ctx *Context) string
}

// runPass executes p against ctx, builds its proof, appends the result
// to ctx, and merges successful artifacts. It never returns an error
// itself: pass failures are captured in the returned PassResult. metrics
// and tracer may be nil, in which case no metrics or no spans,
// respectively, are recorded.
func runPass(p Pass, ctx *Context, metrics *telemetry.Metrics, tracer *telemetry.Tracer, parent telemetry.SpanID) PassResult {
	var span *telemetry.Span
	if tracer != nil {
		span = tracer.StartSpanWithParent(p.ID(), parent)
		span.SetTag("run_id", ctx.RunID)
	}

	start := time.Now().UTC()
	inputHash := p.InputHash(ctx)
	prevHash := ctx.LastChainHash()

	artifacts, err := p.Run(ctx)
	if artifacts == nil {
		artifacts = map[string]any{}
	}

	proof := buildProof(p.ID(), inputHash, artifacts, prevHash, start)
	duration := time.Since(start)
	proof.DurationMS = duration.Milliseconds()

	result := PassResult{
		PassID:    p.ID(),
		Success:   err == nil,
		Artifacts: artifacts,
		Proof:     proof,
	}
	if err != nil {
		result.Error = err.Error()
	}

	if metrics != nil {
		metrics.Counter("pipeline.pass." + p.ID() + ".runs")
		metrics.Timer("pipeline.pass."+p.ID()+".duration", duration)
		if err != nil {
			metrics.Counter("pipeline.pass." + p.ID() + ".errors")
		}
	}
	if span != nil {
		if err != nil {
			span.FinishWithError(err)
		} else {
			span.Finish()
		}
	}

	ctx.recordPass(result)
	if err == nil {
		for k, v := range artifacts {
			ctx.Merge(k, v)
		}
	}
	return result
}
