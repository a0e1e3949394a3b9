// Package voicehybrid implements the VOICE hybrid wrapper named in
// spec.md §4.6: a deterministic prompt builder over a VOICE profile and
// a style policy, plus a record/replay store with anti-tamper hashing
// around the model.Provider boundary.
//
// Grounded on original_source/omega-ui/src-tauri/src/{modules,
// interfaces}/voice_hybrid/{policy,prompt_builder,hybrid,replay,
// replay_store}.rs, scaled down to match spec.md's framing of this
// subsystem as "a consumer of the same discipline...summarized as an
// instance of the pattern rather than detailed independently": the
// scoring module and the canon-bridge/canon-mapping modules (which
// stage VOICE-derived facts back into CANON) are not carried over,
// since nothing in spec.md names that integration.
package voicehybrid

import (
	"sort"
	"strings"

	"omega/internal/omegaerr"
	"omega/internal/voice"
)

// MetricTarget is a single style objective: a target value for a VOICE
// metric key, with a tolerance and a lock level.
type MetricTarget struct {
	Dimension voice.Dimension `json:"dimension"`
	Key       string          `json:"key"`
	Target    float64         `json:"target"`
	Tolerance float64         `json:"tolerance"`
	Unit      string          `json:"unit"`
	Lock      voice.Lock      `json:"lock"`
}

// Satisfied reports whether value falls within target +/- tolerance.
func (t MetricTarget) Satisfied(value float64) bool {
	diff := value - t.Target
	if diff < 0 {
		diff = -diff
	}
	return diff <= t.Tolerance
}

// SignatureMarker is an expected signature word or phrase.
type SignatureMarker struct {
	Text    string     `json:"text"`
	MinRate *float64   `json:"min_rate,omitempty"`
	Lock    voice.Lock `json:"lock"`
}

// Policy is a versioned, auditable style target for the hybrid wrapper.
// Maps are serialized key-sorted by canonicaljson wherever a Policy
// participates in a hash, so iteration order here never matters.
type Policy struct {
	PolicyVersion    string             `json:"policy_version"`
	PolicyID         string             `json:"policy_id"`
	Language         string             `json:"language"`
	DimensionWeights map[string]float64 `json:"dimension_weights"`
	MetricTargets    []MetricTarget     `json:"metric_targets"`
	SignatureMarkers []SignatureMarker  `json:"signature_markers"`
	HardRules        []string           `json:"hard_rules"`
	SoftRules        []string           `json:"soft_rules"`
	Notes            map[string]string  `json:"notes"`
}

// MinimalPolicy returns a valid, empty-bodied policy identified by id
// and language, the base a caller builds a real policy from.
func MinimalPolicy(policyID, language string) Policy {
	return Policy{
		PolicyVersion:    "2.0.0",
		PolicyID:         policyID,
		Language:         language,
		DimensionWeights: map[string]float64{},
		Notes: map[string]string{
			"created_by":      "OMEGA",
			"schema_version": "2.0.0",
		},
	}
}

// Validate checks the policy's own invariants, independent of any
// profile it will later be applied to.
func (p Policy) Validate() error {
	if strings.TrimSpace(p.PolicyID) == "" {
		return omegaerr.New(omegaerr.CodeVoiceConfigInvalid, "policy_id cannot be empty")
	}
	if strings.TrimSpace(p.PolicyVersion) == "" {
		return omegaerr.New(omegaerr.CodeVoiceConfigInvalid, "policy_version cannot be empty")
	}
	if strings.TrimSpace(p.Language) == "" {
		return omegaerr.New(omegaerr.CodeVoiceConfigInvalid, "language cannot be empty")
	}
	for k, v := range p.DimensionWeights {
		if v < 0 || v > 1 {
			return omegaerr.Newf(omegaerr.CodeVoiceConfigInvalid, "dimension_weight %v for %s out of [0,1]", v, k)
		}
	}
	for _, t := range p.MetricTargets {
		if t.Tolerance < 0 {
			return omegaerr.Newf(omegaerr.CodeVoiceConfigInvalid, "tolerance cannot be negative for %s", t.Key)
		}
	}
	return nil
}

func sortedDimensionWeightKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Mode selects how the hybrid wrapper treats the provider boundary.
type Mode string

const (
	// ModeOff calls the provider if one is given, records nothing.
	ModeOff Mode = "Off"
	// ModeRecord calls the provider and writes a replay record.
	ModeRecord Mode = "Record"
	// ModeReplay reads a stored record, never calling a provider.
	ModeReplay Mode = "Replay"
)

// RequiresProvider reports whether this mode needs a non-nil provider.
func (m Mode) RequiresProvider() bool { return m == ModeRecord }

// RequiresRecord reports whether this mode needs an existing record.
func (m Mode) RequiresRecord() bool { return m == ModeReplay }

// Config governs one hybrid analysis run.
type Config struct {
	RunID                 string
	RequiredPolicyVersion string
	Mode                  Mode
	Seed                  uint64
	VoiceConfig           voice.Config
}

// Validate checks the run configuration's own invariants.
func (c Config) Validate() error {
	if strings.TrimSpace(c.RunID) == "" {
		return omegaerr.New(omegaerr.CodeVoiceConfigInvalid, "run_id cannot be empty")
	}
	if strings.TrimSpace(c.RequiredPolicyVersion) == "" {
		return omegaerr.New(omegaerr.CodeVoiceConfigInvalid, "required_policy_version cannot be empty")
	}
	switch c.Mode {
	case ModeOff, ModeRecord, ModeReplay:
	default:
		return omegaerr.Newf(omegaerr.CodeVoiceConfigInvalid, "unknown mode %q", c.Mode)
	}
	return c.VoiceConfig.Validate()
}
