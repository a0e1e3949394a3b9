package model

import (
	"context"

	"omega/internal/telemetry"
)

// Fallback tries Primary, then Secondary, then Mock, returning the first
// successful response. Primary and Secondary are optional (nil is
// skipped); Mock is always present and never fails on a well-formed
// request, so Fallback always produces a result once Mock is reached.
//
// Grounded on an adapter-registry fallback behavior (try adapters in
// priority order, fall through on error), simplified to OMEGA's
// three-tier Primary/Secondary/Mock chain.
type Fallback struct {
	Primary   Provider
	Secondary Provider
	Mock      Provider
	Logger    *telemetry.Logger
}

// NewFallback constructs a Fallback chain. mock must not be nil.
func NewFallback(primary, secondary, mock Provider, logger *telemetry.Logger) *Fallback {
	return &Fallback{Primary: primary, Secondary: secondary, Mock: mock, Logger: logger}
}

func (f *Fallback) Name() string { return "fallback" }

// Generate tries each configured provider in order, logging and
// continuing past a failure, and returns the first success.
func (f *Fallback) Generate(ctx context.Context, req GenerationRequest) (GenerationResponse, error) {
	var lastErr error
	for _, p := range []Provider{f.Primary, f.Secondary, f.Mock} {
		if p == nil {
			continue
		}
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if f.Logger != nil {
			f.Logger.WithField("provider", p.Name()).WithError(err).Warn("provider failed, falling back")
		}
	}
	return GenerationResponse{}, lastErr
}
