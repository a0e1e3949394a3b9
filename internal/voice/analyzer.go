package voice

import (
	"sort"
	"time"

	"omega/internal/canonicalizer"
	"omega/internal/omegaerr"
)

// Analyze runs the full 8-dimension stylistic analysis over text under
// cfg, producing a validated Profile (spec.md §4.6).
func Analyze(text string, cfg Config) (AnalysisResult, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return AnalysisResult{}, err
	}

	canonical := canonicalizeText(text)
	if canonical == "" {
		return AnalysisResult{}, omegaerr.New(omegaerr.CodeVoiceEmptyInput, "canonicalized text is empty")
	}
	if len([]rune(canonical)) < cfg.MinTextLength {
		return AnalysisResult{}, omegaerr.Newf(omegaerr.CodeVoiceEmptyInput, "text too short: min %d, got %d", cfg.MinTextLength, len([]rune(canonical)))
	}

	hash := corpusHash(canonical)
	fingerprint := cfg.Fingerprint()
	profileID := buildProfileID(hash, fingerprint)

	tokens := canonicalizer.TokenizeWords(canonical)
	sentences := canonicalizer.SplitSentences(canonical)
	paragraphs := canonicalizer.SplitParagraphs(canonical)

	nTokens := float64(len(tokens))
	if nTokens < 1 {
		nTokens = 1
	}
	nChars := float64(len([]rune(canonical)))
	if nChars < 1 {
		nChars = 1
	}

	var metrics []Metric
	var warnings []string

	metrics = append(metrics, computeD1Rhythm(sentences, canonical)...)
	metrics = append(metrics, computeD2Vocabulary(tokens, nTokens)...)
	metrics = append(metrics, computeD3Texture(tokens, nTokens)...)
	metrics = append(metrics, computeD4Tonality(tokens, nTokens)...)
	metrics = append(metrics, computeD5Structure(tokens, sentences, nTokens)...)

	sigMetrics, signatureTokens := computeD6Signature(tokens, nChars, canonical, cfg.SignatureTopN)
	metrics = append(metrics, sigMetrics...)

	if cfg.EnableD7D8 {
		metrics = append(metrics, computeD7Cadence(paragraphs, tokens, nTokens)...)
		metrics = append(metrics, computeD8Figures(canonical, nChars)...)
	} else {
		warnings = append(warnings, "D7/D8 disabled by config")
	}

	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Key < metrics[j].Key })

	for _, m := range metrics {
		if err := m.Validate(); err != nil {
			return AnalysisResult{}, err
		}
	}

	profile := Profile{
		SchemaVersion:   SchemaVersion,
		Language:        cfg.Language,
		ProfileID:       profileID,
		CorpusHash:      hash,
		Metrics:         metrics,
		SignatureTokens: signatureTokens,
		Notes: map[string]string{
			"cfg_fingerprint":  fingerprint,
			"analyzer":         "stats",
			"analyzer_version": "1.0.0",
			"canonicalization": "whitespace_collapse+NFKC+LF+trim",
		},
	}

	if err := ValidateProfile(profile); err != nil {
		return AnalysisResult{}, err
	}

	return AnalysisResult{
		Profile:    profile,
		Warnings:   warnings,
		DurationMS: uint64(time.Since(start).Milliseconds()),
	}, nil
}

// ValidateProfile re-checks every profile-level invariant spec.md §4.6
// names: schema version, profile_id/corpus_hash format, sorted metrics,
// per-metric validity, and sorted-unique signature tokens.
func ValidateProfile(p Profile) error {
	if p.SchemaVersion != SchemaVersion {
		return omegaerr.Newf(omegaerr.CodeVoiceInvariant, "expected schema_version %d, got %d", SchemaVersion, p.SchemaVersion)
	}
	if len(p.ProfileID) != 70 || p.ProfileID[:6] != "VOICE_" {
		return omegaerr.Newf(omegaerr.CodeVoiceInvariant, "profile_id must be VOICE_<64hex>, got %q", p.ProfileID)
	}
	if !isHex64(p.ProfileID[6:]) {
		return omegaerr.Newf(omegaerr.CodeVoiceInvariant, "profile_id suffix must be 64 hex chars: %q", p.ProfileID[6:])
	}
	if !isHex64(p.CorpusHash) {
		return omegaerr.Newf(omegaerr.CodeVoiceInvariant, "corpus_hash must be 64 hex chars, got %q", p.CorpusHash)
	}

	for i := 1; i < len(p.Metrics); i++ {
		if p.Metrics[i-1].Key > p.Metrics[i].Key {
			return omegaerr.New(omegaerr.CodeVoiceInvariant, "metrics not sorted by key")
		}
	}
	for _, m := range p.Metrics {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	for i := 1; i < len(p.SignatureTokens); i++ {
		if p.SignatureTokens[i-1] >= p.SignatureTokens[i] {
			return omegaerr.New(omegaerr.CodeVoiceInvariant, "signature_tokens not sorted and unique")
		}
	}

	return nil
}

func isHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}
