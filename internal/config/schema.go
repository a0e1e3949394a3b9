// Package config provides typed, validated configuration for OMEGA.
// Configuration resolution order (highest priority first):
// 1. Environment variables (OMEGA_*)
// 2. Config file (~/.omega/config.json or OMEGA_CONFIG_PATH)
// 3. Defaults
//
// The resolution order, the reflect-driven env-tag loader, and the
// ValidationResult pattern follow a standard layered-config shape,
// rebuilt around OMEGA's four subsystems plus the provider/telemetry
// ambient concerns.
package config

import (
	"omega/internal/genesis"
	"omega/internal/voice"
)

// Config is the top-level configuration structure.
type Config struct {
	// Pipeline controls the Intake -> CanonGuard -> Emotion runner
	Pipeline PipelineConfig `json:"pipeline"`

	// Genesis controls the GENESIS planner's bounds and behavior
	Genesis GenesisConfig `json:"genesis"`

	// Canon controls the CANON fact store
	Canon CanonConfig `json:"canon"`

	// Voice controls the VOICE stylistic analyzer
	Voice VoiceConfig `json:"voice"`

	// Provider controls the model.Provider fallback chain used by the
	// Emotion pass's hybrid/boost modes and the VOICE hybrid wrapper
	Provider ProviderConfig `json:"provider"`

	// Telemetry controls observability
	Telemetry TelemetryConfig `json:"telemetry"`
}

// PipelineConfig controls the deterministic pass runner.
type PipelineConfig struct {
	// DefaultSeed is used when a run request omits one
	DefaultSeed uint64 `json:"default_seed" env:"OMEGA_DEFAULT_SEED" default:"1"`

	// MaxInputBytes is CanonGuard's CANON-002 ceiling (1 MB per spec.md §4.3)
	MaxInputBytes int64 `json:"max_input_bytes" env:"OMEGA_MAX_INPUT_BYTES" default:"1048576"`

	// EmotionMode selects the Emotion pass analyzer: deterministic, hybrid, boost
	EmotionMode string `json:"emotion_mode" env:"OMEGA_EMOTION_MODE" default:"deterministic"`

	// LexiconVersion is recorded in Emotion pass artifacts
	LexiconVersion string `json:"lexicon_version" env:"OMEGA_LEXICON_VERSION" default:"v1"`
}

// GenesisConfig controls the GENESIS planner's structural bounds.
// Bounds() converts this into a genesis.Bounds, so the numeric limits
// live in exactly one place (internal/genesis.DefaultBounds) instead of
// being duplicated here and re-validated independently.
type GenesisConfig struct {
	MinWords            int `json:"min_words" env:"OMEGA_GENESIS_MIN_WORDS" default:"50"`
	MaxWords            int `json:"max_words" env:"OMEGA_GENESIS_MAX_WORDS" default:"50000"`
	MinActCount         int `json:"min_act_count" env:"OMEGA_GENESIS_MIN_ACT_COUNT" default:"1"`
	MaxActCount         int `json:"max_act_count" env:"OMEGA_GENESIS_MAX_ACT_COUNT" default:"10"`
	MaxContinuityClaims int `json:"max_continuity_claims" env:"OMEGA_GENESIS_MAX_CLAIMS" default:"1000"`
	MaxMajorTurns       int `json:"max_major_turns" env:"OMEGA_GENESIS_MAX_MAJOR_TURNS" default:"100"`
	MaxConstraints      int `json:"max_constraints" env:"OMEGA_GENESIS_MAX_CONSTRAINTS" default:"100"`
}

// Bounds converts c into the genesis.Bounds BuildPlan expects.
func (c GenesisConfig) Bounds() genesis.Bounds {
	return genesis.Bounds{
		MinWords:            c.MinWords,
		MaxWords:            c.MaxWords,
		MinActCount:         c.MinActCount,
		MaxActCount:         c.MaxActCount,
		MaxContinuityClaims: c.MaxContinuityClaims,
		MaxMajorTurns:       c.MaxMajorTurns,
		MaxConstraints:      c.MaxConstraints,
	}
}

// genesisConfigFromBounds mirrors genesis.DefaultBounds() into a
// GenesisConfig, so Default() never hand-copies the numbers.
func genesisConfigFromBounds(b genesis.Bounds) GenesisConfig {
	return GenesisConfig{
		MinWords:            b.MinWords,
		MaxWords:            b.MaxWords,
		MinActCount:         b.MinActCount,
		MaxActCount:         b.MaxActCount,
		MaxContinuityClaims: b.MaxContinuityClaims,
		MaxMajorTurns:       b.MaxMajorTurns,
		MaxConstraints:      b.MaxConstraints,
	}
}

// CanonConfig controls the CANON fact store.
type CanonConfig struct {
	// MaxFactValueBytes bounds a single CanonFact's JSON value
	MaxFactValueBytes int `json:"max_fact_value_bytes" env:"OMEGA_CANON_MAX_VALUE_BYTES" default:"65536"`

	// SnapshotInterval is how many ledger events accumulate between snapshots (0 = never)
	SnapshotInterval int `json:"snapshot_interval" env:"OMEGA_CANON_SNAPSHOT_INTERVAL" default:"100"`
}

// VoiceConfig controls the VOICE stylistic analyzer. ToVoiceConfig
// converts it into a voice.Config, the analyzer's own validated type.
type VoiceConfig struct {
	Language      string `json:"language" env:"OMEGA_VOICE_LANGUAGE" default:"en"`
	EnableD7D8    bool   `json:"enable_d7_d8" env:"OMEGA_VOICE_ENABLE_D7_D8" default:"true"`
	SignatureTopN int    `json:"signature_top_n" env:"OMEGA_VOICE_SIGNATURE_TOP_N" default:"24"`
	MinTextLength int    `json:"min_text_length" env:"OMEGA_VOICE_MIN_TEXT_LENGTH" default:"50"`
}

// ToVoiceConfig builds the voice.Config this configuration describes,
// carrying default tolerances unchanged since spec.md names no
// environment override surface for them.
func (c VoiceConfig) ToVoiceConfig() voice.Config {
	return voice.Config{
		Language:      c.Language,
		EnableD7D8:    c.EnableD7D8,
		Deterministic: true,
		Tolerances:    voice.DefaultTolerances(),
		SignatureTopN: c.SignatureTopN,
		MinTextLength: c.MinTextLength,
	}
}

func voiceConfigFromDefault(v voice.Config) VoiceConfig {
	return VoiceConfig{
		Language:      v.Language,
		EnableD7D8:    v.EnableD7D8,
		SignatureTopN: v.SignatureTopN,
		MinTextLength: v.MinTextLength,
	}
}

// ProviderConfig controls the Primary/Secondary/Mock provider chain
// used by the Emotion pass's hybrid/boost modes and the VOICE hybrid
// wrapper's AI-assist path.
type ProviderConfig struct {
	// Mode selects which tier is wired as Primary: "hosted", "local", "mock"
	Mode string `json:"mode" env:"OMEGA_PROVIDER_MODE" default:"mock"`

	PrimaryAPIKey     string `json:"-" env:"OMEGA_PROVIDER_API_KEY"`
	PrimaryBaseURL    string `json:"primary_base_url,omitempty" env:"OMEGA_PROVIDER_BASE_URL"`
	PrimaryTimeout    int    `json:"primary_timeout" env:"OMEGA_PROVIDER_TIMEOUT" default:"30"`
	PrimaryMaxRetries int    `json:"primary_max_retries" env:"OMEGA_PROVIDER_MAX_RETRIES" default:"3"`
}

// TelemetryConfig controls observability.
type TelemetryConfig struct {
	LogLevel       string `json:"log_level" env:"OMEGA_LOG_LEVEL" default:"info"`
	LogDir         string `json:"log_dir" env:"OMEGA_LOG_DIR" default:""`
	MetricsEnabled bool   `json:"metrics_enabled" env:"OMEGA_METRICS_ENABLED" default:"true"`
	MetricsPath    string `json:"metrics_path" env:"OMEGA_METRICS_PATH" default:""`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			DefaultSeed:    1,
			MaxInputBytes:  1024 * 1024,
			EmotionMode:    "deterministic",
			LexiconVersion: "v1",
		},
		Genesis: genesisConfigFromBounds(genesis.DefaultBounds()),
		Canon: CanonConfig{
			MaxFactValueBytes: 64 * 1024,
			SnapshotInterval:  100,
		},
		Voice: voiceConfigFromDefault(voice.DefaultConfig()),
		Provider: ProviderConfig{
			Mode:              "mock",
			PrimaryTimeout:    30,
			PrimaryMaxRetries: 3,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}
