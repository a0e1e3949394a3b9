// Package model provides the provider abstraction used by the VOICE
// hybrid wrapper's AI-assist path: a common interface over whatever
// backend produces prose from a prompt, plus a deterministic mock
// implementation and a Primary -> Secondary -> Mock fallback composite.
//
// The Provider interface, GenerationRequest/GenerationResponse shapes,
// and ProviderConfig follow a familiar adapter-registry shape; streaming,
// tool calling, and model-listing surfaces are dropped because nothing in
// this module's domain exercises them (VOICE generates prose, not tool
// calls, and never streams into a replay-verified record).
package model

import (
	"context"
)

// Provider is the common interface for anything that can produce a
// completion for the VOICE hybrid wrapper.
type Provider interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResponse, error)
	Name() string
}

// GenerationRequest contains the parameters for a single completion.
type GenerationRequest struct {
	RunID        string  `json:"run_id"`
	Seed         uint64  `json:"seed"`
	SystemPrompt string  `json:"system_prompt"`
	UserPrompt   string  `json:"user_prompt"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

// GenerationResponse is the standardized response from any provider.
type GenerationResponse struct {
	ProviderID   string `json:"provider_id"`
	Content      string `json:"content"`
	ResponseHash string `json:"response_hash"`
	LatencyMS    uint64 `json:"latency_ms"`
}

// ProviderConfig contains common configuration for a hosted provider.
type ProviderConfig struct {
	APIKey     string `json:"-" env:"API_KEY"`
	BaseURL    string `json:"base_url,omitempty" env:"BASE_URL"`
	Timeout    int    `json:"timeout,omitempty" env:"TIMEOUT" default:"30"`
	MaxRetries int    `json:"max_retries,omitempty" env:"MAX_RETRIES" default:"3"`
}

// IsConfigured reports whether the provider has the minimum configuration
// required to make a real network call.
func (c ProviderConfig) IsConfigured() bool {
	return c.APIKey != ""
}
