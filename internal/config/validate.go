package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s: %s", e.Field, e.Message)
}

// ValidationResult contains validation errors.
type ValidationResult struct {
	Errors []*ValidationError
}

// Valid returns true if there are no validation errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Error returns a formatted error string.
func (r *ValidationResult) Error() string {
	if r.Valid() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{
		Errors: make([]*ValidationError, 0),
	}

	result.validatePipeline(c)
	result.validateGenesis(c)
	result.validateCanon(c)
	result.validateVoice(c)
	result.validateProvider(c)
	result.validateTelemetry(c)

	return result
}

func (r *ValidationResult) validatePipeline(c *Config) {
	if c.Pipeline.MaxInputBytes <= 0 {
		r.add("pipeline.max_input_bytes", "must be > 0")
	}
	switch c.Pipeline.EmotionMode {
	case "deterministic", "hybrid", "boost":
	default:
		r.add("pipeline.emotion_mode", "must be one of: deterministic, hybrid, boost")
	}
	if strings.TrimSpace(c.Pipeline.LexiconVersion) == "" {
		r.add("pipeline.lexicon_version", "must not be empty")
	}
}

func (r *ValidationResult) validateGenesis(c *Config) {
	b := c.Genesis.Bounds()
	if b.MinWords < 0 || b.MaxWords < 0 {
		r.add("genesis.min_words/max_words", "must be >= 0")
	}
	if b.MinWords > b.MaxWords {
		r.add("genesis.min_words", "must be <= max_words")
	}
	if b.MinActCount < 1 {
		r.add("genesis.min_act_count", "must be >= 1")
	}
	if b.MinActCount > b.MaxActCount {
		r.add("genesis.min_act_count", "must be <= max_act_count")
	}
	if b.MaxContinuityClaims < 0 {
		r.add("genesis.max_continuity_claims", "must be >= 0")
	}
	if b.MaxMajorTurns < 0 {
		r.add("genesis.max_major_turns", "must be >= 0")
	}
	if b.MaxConstraints < 0 {
		r.add("genesis.max_constraints", "must be >= 0")
	}
}

func (r *ValidationResult) validateCanon(c *Config) {
	if c.Canon.MaxFactValueBytes <= 0 {
		r.add("canon.max_fact_value_bytes", "must be > 0")
	}
	if c.Canon.SnapshotInterval < 0 {
		r.add("canon.snapshot_interval", "must be >= 0 (0 = never)")
	}
}

func (r *ValidationResult) validateVoice(c *Config) {
	if err := c.Voice.ToVoiceConfig().Validate(); err != nil {
		r.add("voice", err.Error())
	}
}

func (r *ValidationResult) validateProvider(c *Config) {
	switch c.Provider.Mode {
	case "hosted", "local", "mock":
	default:
		r.add("provider.mode", "must be one of: hosted, local, mock")
	}
	if c.Provider.Mode == "hosted" && c.Provider.PrimaryAPIKey == "" {
		r.add("provider.primary_api_key", "required when provider.mode is 'hosted'")
	}
	if c.Provider.PrimaryTimeout <= 0 {
		r.add("provider.primary_timeout", "must be > 0")
	}
	if c.Provider.PrimaryMaxRetries < 0 {
		r.add("provider.primary_max_retries", "must be >= 0")
	}
}

func (r *ValidationResult) validateTelemetry(c *Config) {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "fatal": true}
	if !validLevels[c.Telemetry.LogLevel] {
		r.add("telemetry.log_level", "must be one of: debug, info, warn, error, fatal")
	}
	if c.Telemetry.LogDir != "" && !filepath.IsAbs(c.Telemetry.LogDir) {
		r.add("telemetry.log_dir", "must be an absolute path")
	}
	if c.Telemetry.MetricsPath != "" && !filepath.IsAbs(c.Telemetry.MetricsPath) {
		r.add("telemetry.metrics_path", "must be an absolute path")
	}
}

func (r *ValidationResult) add(field, message string) {
	r.Errors = append(r.Errors, &ValidationError{
		Field:   field,
		Message: message,
	})
}

// MustValidate validates the config and panics if invalid.
func (c *Config) MustValidate() {
	result := c.Validate()
	if !result.Valid() {
		panic(result.Error())
	}
}

// ValidateWithDefaults fills zero-valued fields from Default() before
// validating, so a partially-populated Config (e.g. loaded from a
// sparse file) still validates against a complete set of values.
func (c *Config) ValidateWithDefaults() error {
	defaults := Default()

	if c.Pipeline.DefaultSeed == 0 {
		c.Pipeline.DefaultSeed = defaults.Pipeline.DefaultSeed
	}
	if c.Pipeline.MaxInputBytes == 0 {
		c.Pipeline.MaxInputBytes = defaults.Pipeline.MaxInputBytes
	}
	if c.Pipeline.EmotionMode == "" {
		c.Pipeline.EmotionMode = defaults.Pipeline.EmotionMode
	}
	if c.Pipeline.LexiconVersion == "" {
		c.Pipeline.LexiconVersion = defaults.Pipeline.LexiconVersion
	}
	if c.Genesis == (GenesisConfig{}) {
		c.Genesis = defaults.Genesis
	}
	if c.Canon.MaxFactValueBytes == 0 {
		c.Canon.MaxFactValueBytes = defaults.Canon.MaxFactValueBytes
	}
	if c.Voice.Language == "" {
		c.Voice = defaults.Voice
	}
	if c.Provider.Mode == "" {
		c.Provider.Mode = defaults.Provider.Mode
	}
	if c.Provider.PrimaryTimeout == 0 {
		c.Provider.PrimaryTimeout = defaults.Provider.PrimaryTimeout
	}
	if c.Telemetry.LogLevel == "" {
		c.Telemetry.LogLevel = defaults.Telemetry.LogLevel
	}

	result := c.Validate()
	if !result.Valid() {
		return fmt.Errorf("configuration validation failed: %s", result.Error())
	}

	return nil
}
