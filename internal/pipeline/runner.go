package pipeline

import (
	"time"

	"omega/internal/telemetry"
)

// Runner executes passes in a fixed order: Intake -> CanonGuard ->
// Emotion (Sprint-A baseline, spec.md §4.3). A failing pass halts the
// run; downstream passes do not execute, but the context (and the
// PipelineRun produced from it) still reports every pass that did run.
type Runner struct {
	passes  []Pass
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

// NewRunner builds a runner over the given passes, executed in the order
// given; DefaultPasses supplies the Sprint-A baseline sequence.
func NewRunner(passes ...Pass) *Runner {
	return &Runner{passes: passes}
}

// WithTelemetry attaches a metrics collector and tracer to the runner.
// Either may be nil. Counters and timers are recorded per pass
// (pipeline.pass.<id>.runs/errors/duration); the tracer gets one root
// span per run with a child span per pass.
func (r *Runner) WithTelemetry(metrics *telemetry.Metrics, tracer *telemetry.Tracer) *Runner {
	r.metrics = metrics
	r.tracer = tracer
	return r
}

// DefaultPasses returns Intake -> CanonGuard -> Emotion(mode) in the
// fixed order spec.md §4.3 mandates.
func DefaultPasses(emotionMode EmotionMode) []Pass {
	return []Pass{
		NewIntakePass(),
		NewCanonGuardPass(),
		NewEmotionPass(emotionMode),
	}
}

// Run executes the configured passes in order against a freshly built
// Context and returns the resulting PipelineRun.
func (r *Runner) Run(ctx *Context) PipelineRun {
	var root telemetry.SpanID
	if r.tracer != nil {
		span := r.tracer.StartSpan("pipeline.run")
		span.SetTag("run_id", ctx.RunID)
		span.SetTag("provider_id", ctx.ProviderID)
		defer span.Finish()
		root = span.ID
	}
	if r.metrics != nil {
		r.metrics.Counter("pipeline.run.started")
	}

	for _, p := range r.passes {
		result := runPass(p, ctx, r.metrics, r.tracer, root)
		if !result.Success {
			ctx.AddFlag(result.Error)
			break
		}
	}

	if r.metrics != nil {
		if ctx.Success {
			r.metrics.Counter("pipeline.run.succeeded")
		} else {
			r.metrics.Counter("pipeline.run.failed")
		}
	}

	return PipelineRun{
		Schema:     runSchema,
		RunID:      ctx.RunID,
		Seed:       ctx.Seed,
		ProviderID: ctx.ProviderID,
		InputHash:  ctx.InputHash,
		Passes:     ctx.Passes,
		GlobalHash: globalHash(ctx.Seed, ctx.InputHash, ctx.ProviderID, ctx.Passes),
		Success:    ctx.Success,
		Timestamp:  time.Now().UTC(),
	}
}
