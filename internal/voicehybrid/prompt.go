package voicehybrid

import (
	"fmt"
	"sort"
	"strings"

	"omega/internal/hashing"
	"omega/internal/voice"
)

// Prompt is the deterministic guidance a policy produces against a base
// VOICE profile: a rendered prompt plus the directive/constraint lines
// that went into it and a stable guidance_hash.
type Prompt struct {
	GuidanceHash    string   `json:"guidance_hash"`
	Text            string   `json:"prompt"`
	Directives      []string `json:"directives"`
	HardConstraints []string `json:"hard_constraints"`
}

func findMetric(profile voice.Profile, key string) (float64, bool) {
	for _, m := range profile.Metrics {
		if m.Key == key {
			return m.Value, true
		}
	}
	return 0, false
}

func fmtF64(x float64) string {
	return fmt.Sprintf("%.6f", x)
}

func markerToRule(m SignatureMarker) string {
	if m.Lock == voice.LockHard {
		return fmt.Sprintf("HARD: include marker %q (required)", m.Text)
	}
	return fmt.Sprintf("SOFT: prefer marker %q", m.Text)
}

func targetToRule(t MetricTarget, current float64, hasCurrent bool) string {
	cur := "N/A"
	if hasCurrent {
		cur = fmtF64(current)
	}
	base := fmt.Sprintf("%s %s target=%s tol=%s current=%s", t.Dimension, t.Key, fmtF64(t.Target), fmtF64(t.Tolerance), cur)
	if t.Lock == voice.LockHard {
		return "HARD: " + base
	}
	return "SOFT: " + base
}

func canonicalLines(lines []string) string {
	trimmed := make([]string, len(lines))
	for i, l := range lines {
		trimmed[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(trimmed, "\n")
}

// BuildPrompt renders policy against baseProfile into a deterministic
// Prompt. Same (policy, baseProfile) always yields the same
// guidance_hash and text (spec.md §4.6's "deterministic prompt builder
// that emits a stable guidance_hash over policy + base profile").
//
// Grounded on modules/voice_hybrid/prompt_builder.rs::PromptBuilder::
// build, with the guidance_hash computed via the domain-separated
// hasher (hashing.DomainVoiceSelector) rather than a plain SHA-256 of
// the rendered prompt, so the selector domain tag the original defined
// but never wired is actually exercised here.
func BuildPrompt(policy Policy, baseProfile voice.Profile) Prompt {
	var directives, hardConstraints []string

	for _, r := range policy.SoftRules {
		directives = append(directives, "SOFT: "+strings.TrimSpace(r))
	}
	for _, r := range policy.HardRules {
		hardConstraints = append(hardConstraints, "HARD: "+strings.TrimSpace(r))
	}
	for _, t := range policy.MetricTargets {
		current, ok := findMetric(baseProfile, t.Key)
		line := targetToRule(t, current, ok)
		if t.Lock == voice.LockHard {
			hardConstraints = append(hardConstraints, line)
		} else {
			directives = append(directives, line)
		}
	}
	for _, m := range policy.SignatureMarkers {
		line := markerToRule(m)
		if m.Lock == voice.LockHard {
			hardConstraints = append(hardConstraints, line)
		} else {
			directives = append(directives, line)
		}
	}

	sort.Strings(directives)
	sort.Strings(hardConstraints)

	var lines []string
	lines = append(lines,
		"SYSTEM: You are OMEGA VOICE_HYBRID. Follow constraints exactly.",
		"POLICY_ID: "+policy.PolicyID,
		"POLICY_VERSION: "+policy.PolicyVersion,
		"LANG: "+policy.Language,
		"BASE_PROFILE_ID: "+baseProfile.ProfileID,
		"BASE_CORPUS_HASH: "+baseProfile.CorpusHash,
		"",
		"HARD_CONSTRAINTS:",
	)
	if len(hardConstraints) == 0 {
		lines = append(lines, "- (none)")
	} else {
		for _, c := range hardConstraints {
			lines = append(lines, "- "+c)
		}
	}
	lines = append(lines, "", "DIRECTIVES:")
	if len(directives) == 0 {
		lines = append(lines, "- (none)")
	} else {
		for _, d := range directives {
			lines = append(lines, "- "+d)
		}
	}
	lines = append(lines, "", "DIMENSION_WEIGHTS:")
	weightKeys := sortedDimensionWeightKeys(policy.DimensionWeights)
	if len(weightKeys) == 0 {
		lines = append(lines, "- (none)")
	} else {
		for _, k := range weightKeys {
			lines = append(lines, fmt.Sprintf("- %s=%s", k, fmtF64(policy.DimensionWeights[k])))
		}
	}

	prompt := canonicalLines(lines)

	h := hashing.NewDomainHasher(hashing.DomainVoiceSelector).
		UpdateString(policy.PolicyID).
		UpdateString(policy.PolicyVersion).
		UpdateString(baseProfile.ProfileID).
		UpdateString(baseProfile.CorpusHash).
		UpdateStringList(hardConstraints).
		UpdateStringList(directives).
		UpdateString(prompt)

	return Prompt{
		GuidanceHash:    h.FinalizeHex(),
		Text:            prompt,
		Directives:      directives,
		HardConstraints: hardConstraints,
	}
}

// PromptsIdentical reports whether two prompts carry the same guidance.
func PromptsIdentical(a, b Prompt) bool { return a.GuidanceHash == b.GuidanceHash }
