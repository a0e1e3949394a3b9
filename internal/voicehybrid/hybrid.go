package voicehybrid

import (
	"context"
	"fmt"

	"omega/internal/canonicalizer"
	"omega/internal/hashing"
	"omega/internal/model"
	"omega/internal/omegaerr"
	"omega/internal/voice"
)

// Result is the outcome of one hybrid analysis: the certified VOICE
// base profile, the deterministic guidance built from it, a compliance
// score, the provider completion (if any), and the replay record that
// was either read or just written.
type Result struct {
	Base            voice.AnalysisResult
	Guidance        Prompt
	ComplianceScore float64
	Completion      *string
	Replay          *ReplayRecord
	Warnings        []string
}

// computeInputHash hashes the canonicalized input text the same way
// VOICE's own corpus_hash is computed, so a hybrid input_hash and a
// base profile's corpus_hash agree whenever they cover the same text.
func computeInputHash(text string) string {
	return hashing.PlainHash(canonicalizer.Canonicalize(text))
}

// AnalyzeHybrid runs the certified VOICE analyzer over inputText, builds
// deterministic guidance from policy, and resolves the provider
// boundary according to cfg.Mode: Off calls provider opportunistically,
// Record calls it and seals a replay record, Replay reads a stored
// record and refuses on any identity mismatch (spec.md §4.6, scenario
// 6). VOICE's own metrics are never altered by this wrapper (base is
// exactly what voice.Analyze would return standalone).
//
// Grounded on modules/voice_hybrid/hybrid.rs::HybridVoiceAnalyzer::
// analyze_hybrid, trimmed of the JSON-file-specific replay path and the
// scoring submodule (compliance score here uses the same two-tier
// base.Warnings rule the original applies, since nothing in spec.md
// asks for a richer score).
func AnalyzeHybrid(ctx context.Context, inputText string, policy Policy, cfg Config, provider model.Provider, store ReplayStore) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := policy.Validate(); err != nil {
		return Result{}, err
	}
	if policy.PolicyVersion != cfg.RequiredPolicyVersion {
		return Result{}, omegaerr.Newf(omegaerr.CodeVoiceConfigInvalid,
			"policy_version %q does not match required %q", policy.PolicyVersion, cfg.RequiredPolicyVersion)
	}

	base, err := voice.Analyze(inputText, cfg.VoiceConfig)
	if err != nil {
		return Result{}, err
	}

	guidance := BuildPrompt(policy, base.Profile)
	inputHash := computeInputHash(inputText)
	key := recordKey(cfg.RunID)

	var warnings []string
	var completion *string
	var replayRecord *ReplayRecord

	switch cfg.Mode {
	case ModeOff:
		if provider != nil {
			resp, genErr := provider.Generate(ctx, model.GenerationRequest{
				RunID: cfg.RunID, Seed: cfg.Seed, UserPrompt: guidance.Text, Temperature: 0,
			})
			if genErr != nil {
				warnings = append(warnings, fmt.Sprintf("provider error: %v", genErr))
			} else {
				completion = &resp.Content
			}
		} else {
			warnings = append(warnings, "NO_PROVIDER: mode=Off but provider=nil")
		}

	case ModeRecord:
		if provider == nil {
			return Result{}, omegaerr.New(omegaerr.CodeProviderUnavailable, "mode=Record requires a provider")
		}
		resp, genErr := provider.Generate(ctx, model.GenerationRequest{
			RunID: cfg.RunID, Seed: cfg.Seed, UserPrompt: guidance.Text, Temperature: 0,
		})
		if genErr != nil {
			return Result{}, genErr
		}
		completion = &resp.Content

		rec := NewReplayRecord(cfg.RunID, provider.Name())
		rec.PolicyID = policy.PolicyID
		rec.PolicyVersion = policy.PolicyVersion
		rec.GuidanceHash = guidance.GuidanceHash
		rec.InputHash = inputHash
		rec.Prompt = guidance.Text
		rec.Completion = resp.Content

		if err := store.WriteRecord(key, rec); err != nil {
			return Result{}, err
		}
		loaded, err := store.ReadRecord(key)
		if err != nil {
			return Result{}, err
		}
		replayRecord = &loaded

	case ModeReplay:
		loaded, err := store.ReadRecord(key)
		if err != nil {
			return Result{}, omegaerr.Newf(omegaerr.CodeStorageNotFound, "no replay record for run %q", cfg.RunID)
		}
		switch {
		case loaded.PolicyID != policy.PolicyID:
			return Result{}, omegaerr.New(omegaerr.CodeVoiceReplayMismatch, "replay mismatch: field=policy_id")
		case loaded.PolicyVersion != policy.PolicyVersion:
			return Result{}, omegaerr.New(omegaerr.CodeVoiceReplayMismatch, "replay mismatch: field=policy_version")
		case loaded.GuidanceHash != guidance.GuidanceHash:
			return Result{}, omegaerr.New(omegaerr.CodeVoiceReplayMismatch, "replay mismatch: field=guidance_hash")
		case loaded.InputHash != inputHash:
			return Result{}, omegaerr.New(omegaerr.CodeVoiceReplayMismatch, "replay mismatch: field=input_hash")
		}
		completion = &loaded.Completion
		replayRecord = &loaded
	}

	complianceScore := 1.0
	if len(base.Warnings) > 0 {
		complianceScore = 0.8
	}

	return Result{
		Base:            base,
		Guidance:        guidance,
		ComplianceScore: complianceScore,
		Completion:      completion,
		Replay:          replayRecord,
		Warnings:        warnings,
	}, nil
}
