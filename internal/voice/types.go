// Package voice implements the 8-dimension deterministic stylistic
// analyzer: rhythm, vocabulary, texture, tonality, structure,
// signature, cadence, figures (spec.md §4.6).
package voice

import (
	"math"
	"strconv"

	"omega/internal/omegaerr"
)

// Lock marks whether a metric may drift across re-analyses of the same
// voice (Soft) or is treated as an identity marker (Hard).
type Lock string

const (
	LockSoft Lock = "Soft"
	LockHard Lock = "Hard"
)

// Dimension is one of the eight stylistic axes a profile scores.
type Dimension string

const (
	DimensionRhythm     Dimension = "D1Rhythm"
	DimensionVocabulary Dimension = "D2Vocabulary"
	DimensionTexture    Dimension = "D3Texture"
	DimensionTonality   Dimension = "D4Tonality"
	DimensionStructure  Dimension = "D5Structure"
	DimensionSignature  Dimension = "D6Signature"
	DimensionCadence    Dimension = "D7Cadence"
	DimensionFigures    Dimension = "D8Figures"
)

// AllDimensions lists all eight dimensions in a fixed order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimensionRhythm, DimensionVocabulary, DimensionTexture, DimensionTonality,
		DimensionStructure, DimensionSignature, DimensionCadence, DimensionFigures,
	}
}

// Tolerances bound how far a SOFT metric may drift between two
// profiles of the same voice before a mismatch is reported.
type Tolerances struct {
	SentenceLenAvgDelta  float64
	PunctuationRateDelta float64
	LexicalRichnessDelta float64
	DialogueRatioDelta   float64
	GenericRatioDelta    float64
}

// DefaultTolerances returns the baseline drift tolerances (spec.md §4.6).
func DefaultTolerances() Tolerances {
	return Tolerances{
		SentenceLenAvgDelta:  3.0,
		PunctuationRateDelta: 0.02,
		LexicalRichnessDelta: 0.05,
		DialogueRatioDelta:   0.05,
		GenericRatioDelta:    0.03,
	}
}

// Config governs one analysis run.
type Config struct {
	Language      string
	EnableD7D8    bool
	Deterministic bool
	Tolerances    Tolerances
	SignatureTopN int
	MinTextLength int
}

// DefaultConfig returns the baseline analyzer configuration, scoped
// to this analyzer's deterministic-only mode.
func DefaultConfig() Config {
	return Config{
		Language:      "en",
		EnableD7D8:    true,
		Deterministic: true,
		Tolerances:    DefaultTolerances(),
		SignatureTopN: 24,
		MinTextLength: 50,
	}
}

var supportedLanguages = map[string]bool{"en": true, "fr": true}

// Validate checks the configuration's own invariants, independent of
// any text being analyzed.
func (c Config) Validate() error {
	if c.Language == "" {
		return omegaerr.New(omegaerr.CodeVoiceConfigInvalid, "language cannot be empty")
	}
	if !supportedLanguages[c.Language] {
		return omegaerr.Newf(omegaerr.CodeVoiceConfigInvalid, "unsupported language %q", c.Language)
	}
	if !c.Deterministic {
		return omegaerr.New(omegaerr.CodeVoiceConfigInvalid, "this analyzer requires deterministic=true")
	}
	if c.SignatureTopN <= 0 || c.SignatureTopN > 100 {
		return omegaerr.Newf(omegaerr.CodeVoiceConfigInvalid, "signature_top_n must be 1-100, got %d", c.SignatureTopN)
	}
	if c.MinTextLength <= 0 {
		return omegaerr.New(omegaerr.CodeVoiceConfigInvalid, "min_text_length must be > 0")
	}
	return nil
}

// Fingerprint is the canonical string fed into profile_id's hash,
// capturing every config field that can change a profile's metrics.
func (c Config) Fingerprint() string {
	d7d8 := "false"
	if c.EnableD7D8 {
		d7d8 = "true"
	}
	det := "false"
	if c.Deterministic {
		det = "true"
	}
	return "lang=" + c.Language + "|d7d8=" + d7d8 + "|det=" + det + "|topn=" + strconv.Itoa(c.SignatureTopN)
}

// Metric is a single scored dimension value.
type Metric struct {
	Dimension Dimension `json:"dimension"`
	Key       string    `json:"key"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Lock      Lock      `json:"lock"`
}

func softMetric(dim Dimension, key string, value float64, unit string) Metric {
	return Metric{Dimension: dim, Key: key, Value: value, Unit: unit, Lock: LockSoft}
}

func hardMetric(dim Dimension, key string, value float64, unit string) Metric {
	return Metric{Dimension: dim, Key: key, Value: value, Unit: unit, Lock: LockHard}
}

// Validate enforces VOICE's numeric invariants: no NaN/Inf, ratios and
// entropy in [0,1], count-like units non-negative.
func (m Metric) Validate() error {
	if math.IsNaN(m.Value) {
		return omegaerr.Newf(omegaerr.CodeVoiceMetricsInvalid, "%s: value is NaN", m.Key)
	}
	if math.IsInf(m.Value, 0) {
		return omegaerr.Newf(omegaerr.CodeVoiceMetricsInvalid, "%s: value is infinite", m.Key)
	}
	if (m.Unit == "ratio" || m.Unit == "entropy") && (m.Value < 0 || m.Value > 1) {
		return omegaerr.Newf(omegaerr.CodeVoiceMetricsInvalid, "%s: %s out of [0,1]: %v", m.Key, m.Unit, m.Value)
	}
	switch m.Unit {
	case "words", "chars", "sentences", "count":
		if m.Value < 0 {
			return omegaerr.Newf(omegaerr.CodeVoiceMetricsInvalid, "%s: %s cannot be negative: %v", m.Key, m.Unit, m.Value)
		}
	}
	return nil
}

// Profile is the complete style profile for one corpus.
type Profile struct {
	SchemaVersion   int               `json:"schema_version"`
	Language        string            `json:"language"`
	ProfileID       string            `json:"profile_id"`
	CorpusHash      string            `json:"corpus_hash"`
	Metrics         []Metric          `json:"metrics"`
	SignatureTokens []string          `json:"signature_tokens"`
	Notes           map[string]string `json:"notes"`
}

// SchemaVersion is the current profile schema version.
const SchemaVersion = 1

// AnalysisResult wraps a Profile with non-fatal warnings and timing.
type AnalysisResult struct {
	Profile    Profile
	Warnings   []string
	DurationMS uint64
}
