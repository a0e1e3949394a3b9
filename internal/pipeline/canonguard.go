package pipeline

import (
	"strings"

	"omega/internal/hashing"
	"omega/internal/omegaerr"
)

const maxInputBytes = 1 << 20 // 1 MB

// CanonGuardPass enforces input invariants: non-empty after trim, at
// most 1 MB, seed > 0. Failure is reported as CANON_VIOLATION and halts
// the run (spec.md §4.3).
//
// Open Question resolution: input_hash is the canonical hash of the
// slice of the context this pass actually reads (the trimmed input),
// per spec.md's own recommendation, rather than a synthetic literal.
type CanonGuardPass struct{}

func NewCanonGuardPass() *CanonGuardPass { return &CanonGuardPass{} }

func (p *CanonGuardPass) ID() string { return "CanonGuard" }

func (p *CanonGuardPass) InputHash(ctx *Context) string {
	return hashing.PlainHash(strings.TrimSpace(ctx.RawInput))
}

func (p *CanonGuardPass) Run(ctx *Context) (map[string]any, error) {
	trimmed := strings.TrimSpace(ctx.RawInput)
	if trimmed == "" {
		return nil, omegaerr.New(omegaerr.CodePipelineCanonViolation, "CANON_VIOLATION: input is empty after trim")
	}
	if len(trimmed) > maxInputBytes {
		return nil, omegaerr.New(omegaerr.CodePipelineCanonViolation, "CANON_VIOLATION: input exceeds 1 MB")
	}
	if ctx.Seed == 0 {
		return nil, omegaerr.New(omegaerr.CodePipelineCanonViolation, "CANON_VIOLATION: seed must be > 0")
	}
	return map[string]any{"canon_guard_passed": true}, nil
}
