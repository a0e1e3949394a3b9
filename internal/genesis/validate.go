package genesis

import (
	"strings"

	"omega/internal/canonicalizer"
	"omega/internal/entityid"
	"omega/internal/omegaerr"
)

// Bounds are the configured min/max word bounds and structural limits a
// request must respect. Defaults match spec.md §4.5.
type Bounds struct {
	MinWords           int
	MaxWords           int
	MinActCount        int
	MaxActCount        int
	MaxContinuityClaims int
	MaxMajorTurns      int
	MaxConstraints     int
}

// DefaultBounds returns the bounds spec.md §4.5/§9 names: [50, 50000]
// words, [1, 10] acts. The claim/turn/constraint ceilings come from the
// original implementation's ValidationBounds::default().
func DefaultBounds() Bounds {
	return Bounds{
		MinWords: 50, MaxWords: 50000,
		MinActCount: 1, MaxActCount: 10,
		MaxContinuityClaims: 1000,
		MaxMajorTurns:       100,
		MaxConstraints:      100,
	}
}

// ValidateRequest performs phase 1 of the planner: field presence,
// bounds, and format checks (spec.md §4.5 step 1).
func ValidateRequest(req Request, bounds Bounds) error {
	if strings.TrimSpace(canonicalizer.NFKC(req.SagaID)) == "" {
		return omegaerr.New(omegaerr.CodeGenesisMissingField, "saga_id is required")
	}
	if strings.TrimSpace(canonicalizer.NFKC(req.VoiceProfileRef)) == "" {
		return omegaerr.New(omegaerr.CodeGenesisMissingField, "voice_profile_ref is required")
	}
	if req.Target.Scenes <= 0 {
		return omegaerr.New(omegaerr.CodeGenesisSceneCountZero, "target.scenes must be > 0")
	}
	for _, id := range req.CanonReadScope {
		if err := entityid.Validate(id); err != nil {
			return err
		}
	}
	if len(req.ContinuityClaims) == 0 {
		return omegaerr.New(omegaerr.CodeGenesisClaimEmptyID, "continuity_claims must be non-empty")
	}
	if len(req.ContinuityClaims) > bounds.MaxContinuityClaims {
		return omegaerr.Newf(omegaerr.CodeGenesisClaimDuplicate, "too many continuity claims: %d > %d", len(req.ContinuityClaims), bounds.MaxContinuityClaims)
	}
	seenClaims := map[string]bool{}
	for _, claim := range req.ContinuityClaims {
		if strings.TrimSpace(claim.ClaimID) == "" {
			return omegaerr.New(omegaerr.CodeGenesisClaimEmptyID, "claim_id must be non-empty")
		}
		normalized := canonicalizer.NFKC(claim.ClaimID)
		if seenClaims[normalized] {
			return omegaerr.Newf(omegaerr.CodeGenesisClaimDuplicate, "duplicate claim_id %q (modulo normalization)", claim.ClaimID)
		}
		seenClaims[normalized] = true
		if _, err := entityid.ParseSeverity(normalizeSeverity(claim.Severity)); err != nil {
			return err
		}
	}
	if req.Target.MinWords > req.Target.MaxWords {
		return omegaerr.New(omegaerr.CodeGenesisWordBoundsOrder, "target.min_words must be <= target.max_words")
	}
	if req.Target.MinWords < bounds.MinWords || req.Target.MaxWords > bounds.MaxWords {
		return omegaerr.Newf(omegaerr.CodeGenesisWordBoundsRange, "target word bounds must lie within [%d, %d]", bounds.MinWords, bounds.MaxWords)
	}
	if req.ArcSpec.ActCount < bounds.MinActCount || req.ArcSpec.ActCount > bounds.MaxActCount {
		return omegaerr.Newf(omegaerr.CodeGenesisArcActCount, "arc_spec.act_count must be within [%d, %d]", bounds.MinActCount, bounds.MaxActCount)
	}
	if len(req.ArcSpec.MajorTurns) == 0 {
		return omegaerr.New(omegaerr.CodeGenesisArcNoMajorTurns, "arc_spec.major_turns must be non-empty")
	}
	if len(req.ArcSpec.MajorTurns) > bounds.MaxMajorTurns {
		return omegaerr.Newf(omegaerr.CodeGenesisArcNoMajorTurns, "too many major turns: %d > %d", len(req.ArcSpec.MajorTurns), bounds.MaxMajorTurns)
	}
	if len(req.Constraints) > bounds.MaxConstraints {
		return omegaerr.Newf(omegaerr.CodeGenesisInvalidRequest, "too many constraints: %d > %d", len(req.Constraints), bounds.MaxConstraints)
	}
	return nil
}

// normalizeSeverity maps the case-insensitive spec.md §6 severity
// aliases onto the canonical Severity labels.
func normalizeSeverity(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "P0-CRITICAL", "P0", "CRITICAL", "P0CRITICAL":
		return string(entityid.SeverityP0Critical)
	case "P1-HIGH", "P1", "HIGH", "P1HIGH":
		return string(entityid.SeverityP1High)
	case "P2-MEDIUM", "P2", "MEDIUM", "P2MEDIUM":
		return string(entityid.SeverityP2Medium)
	case "P3-LOW", "P3", "LOW", "P3LOW":
		return string(entityid.SeverityP3Low)
	default:
		return s
	}
}
