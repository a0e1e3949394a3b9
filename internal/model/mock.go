package model

import (
	"context"
	"fmt"

	"omega/internal/hashing"
	"omega/internal/omegaerr"
)

// DeterministicMockProvider produces byte-identical completions for a
// given (seed, system_prompt, user_prompt) triple. It is the provider of
// last resort in a Fallback chain and the only provider used by
// determinism tests, since it never makes a network call.
//
// Grounded on original_source/omega-ui/src-tauri/src/ai/mock.rs
// (MockDeterministicProvider): same fingerprint/response-hash
// construction, same temperature guard.
type DeterministicMockProvider struct {
	ProviderID string
	LatencyMS  uint64
}

// NewDeterministicMockProvider returns a mock provider with the standard
// fixed latency. LatencyMS is recorded on the response but never
// participates in response_hash.
func NewDeterministicMockProvider() *DeterministicMockProvider {
	return &DeterministicMockProvider{
		ProviderID: "mock-deterministic-v1",
		LatencyMS:  10,
	}
}

func (p *DeterministicMockProvider) Name() string { return p.ProviderID }

// Generate rejects any non-zero temperature, then computes a response
// deterministically from the request's seed and prompts.
func (p *DeterministicMockProvider) Generate(_ context.Context, req GenerationRequest) (GenerationResponse, error) {
	if req.Temperature != 0 {
		return GenerationResponse{}, omegaerr.New(omegaerr.CodeProviderInvalidTemperature,
			"deterministic mock provider requires temperature=0")
	}

	fingerprint := fmt.Sprintf("seed=%d|sys=%s|user=%s", req.Seed, req.SystemPrompt, req.UserPrompt)
	content := fmt.Sprintf("[MOCK] seed=%d hash=%s", req.Seed,
		hashing.PlainHash(fmt.Sprintf("%d", req.Seed), fingerprint)[:12])
	responseHash := hashing.PlainHash(fmt.Sprintf("%d", req.Seed), fingerprint, content)

	return GenerationResponse{
		ProviderID:   p.ProviderID,
		Content:      content,
		ResponseHash: responseHash,
		LatencyMS:    p.LatencyMS,
	}, nil
}
