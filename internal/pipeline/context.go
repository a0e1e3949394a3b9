// Package pipeline implements the hash-chain pipeline runner: an ordered
// sequence of passes over an immutable input, each producing a content-
// addressed proof linked to the previous proof, terminating in a
// PipelineRun with a single global hash.
//
// Grounded structurally on a package-per-concern layout and
// PassResult-like artifact/error conventions; the hash-chain
// mechanics themselves are specified directly (spec.md §3, §4.3).
package pipeline

import (
	"time"

	"omega/internal/canonicaljson"
	"omega/internal/hashing"
)

// Context carries the run identifier, seed, provider id, raw/hashed
// input, a growing ordered mapping of artifact keys to values, the
// completed pass results so far, audit flags, and a success flag. It is
// created by the Runner, mutated only by passes in sequence, and
// consumed to emit the final PipelineRun.
type Context struct {
	RunID      string
	Seed       uint64
	ProviderID string
	RawInput   string
	InputHash  string

	artifactKeys   []string
	artifacts      map[string]any
	Passes         []PassResult
	Flags          []string
	Success        bool
	lastChainHash  string
}

// NewContext creates a context for a single run. inputHash is the plain
// SHA-256 hex of rawInput (computed by the caller, since passes may read
// only a slice of it for their own input_hash).
func NewContext(runID string, seed uint64, providerID, rawInput, inputHash string) *Context {
	return &Context{
		RunID:      runID,
		Seed:       seed,
		ProviderID: providerID,
		RawInput:   rawInput,
		InputHash:  inputHash,
		artifacts:  make(map[string]any),
		Success:    true,
	}
}

// Merge adds an artifact into the context's ordered map. Keys are kept in
// first-insertion order for deterministic iteration by MergedArtifacts.
func (c *Context) Merge(key string, value any) {
	if _, exists := c.artifacts[key]; !exists {
		c.artifactKeys = append(c.artifactKeys, key)
	}
	c.artifacts[key] = value
}

// Artifact returns an artifact previously merged into the context.
func (c *Context) Artifact(key string) (any, bool) {
	v, ok := c.artifacts[key]
	return v, ok
}

// MergedArtifacts returns all artifacts as an ordered map.
func (c *Context) MergedArtifacts() map[string]any {
	out := make(map[string]any, len(c.artifacts))
	for _, k := range c.artifactKeys {
		out[k] = c.artifacts[k]
	}
	return out
}

// LastChainHash returns the previous pass's chain_hash, or the literal
// "GENESIS_HASH" if no pass has completed yet.
func (c *Context) LastChainHash() string {
	if c.lastChainHash == "" {
		return "GENESIS_HASH"
	}
	return c.lastChainHash
}

func (c *Context) recordPass(result PassResult) {
	c.Passes = append(c.Passes, result)
	c.lastChainHash = result.Proof.ChainHash
	if !result.Success {
		c.Success = false
	}
}

// AddFlag appends an audit note visible on the final PipelineRun.
func (c *Context) AddFlag(flag string) {
	c.Flags = append(c.Flags, flag)
}

// PassResult is the outcome of a single pass.
type PassResult struct {
	PassID    string         `json:"pass_id"`
	Success   bool           `json:"success"`
	Artifacts map[string]any `json:"artifacts"`
	Proof     PassProof      `json:"proof"`
	Error     string         `json:"error,omitempty"`
}

// PassProof binds a pass's input/output to the chain.
type PassProof struct {
	PassID     string    `json:"pass_id"`
	InputHash  string    `json:"input_hash"`
	OutputHash string    `json:"output_hash"`
	ChainHash  string    `json:"chain_hash"`
	PrevHash   string    `json:"prev_hash"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms"`
}

// buildProof computes a PassProof per spec.md §3/§4.3:
// chain_hash = H(pass_id | prev_hash | input_hash | output_hash).
func buildProof(passID, inputHash string, artifacts map[string]any, prevHash string, start time.Time) PassProof {
	outputJSON, _ := canonicaljson.Marshal(artifacts)
	outputHash := hashing.PlainHash(outputJSON)
	chainHash := hashing.PlainHash(passID, prevHash, inputHash, outputHash)
	return PassProof{
		PassID:     passID,
		InputHash:  inputHash,
		OutputHash: outputHash,
		ChainHash:  chainHash,
		PrevHash:   prevHash,
		Timestamp:  start,
		DurationMS: 0,
	}
}

// PipelineRun is the final, content-addressed result of a run.
type PipelineRun struct {
	Schema     string       `json:"schema"`
	RunID      string       `json:"run_id"`
	Seed       uint64       `json:"seed"`
	ProviderID string       `json:"provider_id"`
	InputHash  string       `json:"input_hash"`
	Passes     []PassResult `json:"passes"`
	GlobalHash string       `json:"global_hash"`
	Success    bool         `json:"success"`
	Timestamp  time.Time    `json:"timestamp"`
}

const runSchema = "OMEGA_RUN_V1"

// globalHash computes H(seed | input_hash | provider_id | chain_hash...).
func globalHash(seed uint64, inputHash, providerID string, passes []PassResult) string {
	parts := make([]string, 0, 3+len(passes))
	parts = append(parts, uint64ToString(seed), inputHash, providerID)
	for _, p := range passes {
		parts = append(parts, p.Proof.ChainHash)
	}
	return hashing.PlainHash(parts...)
}

func uint64ToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
