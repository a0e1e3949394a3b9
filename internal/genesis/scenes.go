package genesis

import (
	"fmt"
	"sort"
	"strings"
)

const (
	defaultPOV   = "third_limited"
	defaultTense = "past"
	defaultTone  = "dramatic"
)

// MaterializeScenes is phase 5: builds a SceneSpec per beat.
func MaterializeScenes(req Request, beats []BeatKind) []SceneSpec {
	pov := stringConstraint(req.Constraints, "pov", defaultPOV)
	tense := stringConstraint(req.Constraints, "tense", defaultTense)
	tone := resolveTone(req.Constraints, req.Target.ToneHint)

	scope := dedupedSortedScope(req.CanonReadScope)

	claims := make([]ContinuityClaim, len(req.ContinuityClaims))
	copy(claims, req.ContinuityClaims)
	sort.Slice(claims, func(i, j int) bool { return claims[i].ClaimID < claims[j].ClaimID })

	constraintKeys := make([]string, 0, len(req.Constraints))
	for k := range req.Constraints {
		constraintKeys = append(constraintKeys, k)
	}
	sort.Strings(constraintKeys)

	specs := make([]SceneSpec, 0, len(beats))
	bridgeIdx := 0
	for i, beat := range beats {
		label := BeatLabel(beat, bridgeIdx)
		if beat == BeatBridge {
			bridgeIdx++
		}
		specs = append(specs, SceneSpec{
			Index:          i,
			POV:            pov,
			Tense:          tense,
			Tone:           tone,
			CanonReadScope: scope,
			Length:         LengthSpec{Min: req.Target.MinWords, Max: req.Target.MaxWords},
			Instructions:   buildInstructions(req, beat, label, constraintKeys, claims),
			BeatKind:       beat,
			BeatLabel:      label,
		})
	}
	return specs
}

func buildInstructions(req Request, beat BeatKind, label string, constraintKeys []string, claims []ContinuityClaim) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BEAT_KIND: %s\n", beat)
	fmt.Fprintf(&b, "BEAT_LABEL: %s\n", label)
	fmt.Fprintf(&b, "ARC_TITLE: %s\n", req.ArcSpec.Title)
	fmt.Fprintf(&b, "ARC_PREMISE: %s\n", req.ArcSpec.Premise)
	fmt.Fprintf(&b, "ARC_STAKES: %s\n", req.ArcSpec.Stakes)

	goal := beatGoal(beat, label)
	fmt.Fprintf(&b, "GOAL: %s\n", goal)
	fmt.Fprintf(&b, "CONFLICT: %s\n", beatConflict(beat))
	fmt.Fprintf(&b, "OUTCOME_HINT: %s\n", beatOutcomeHint(beat))

	if len(constraintKeys) > 0 {
		b.WriteString("CONSTRAINTS:\n")
		for _, k := range constraintKeys {
			fmt.Fprintf(&b, "  %s: %v\n", k, req.Constraints[k])
		}
	}

	b.WriteString("CONTINUITY_CLAIMS:\n")
	for _, c := range claims {
		fmt.Fprintf(&b, "  %s: %s.%s expects %v (%s)\n", c.ClaimID, c.EntityID, c.Key, c.Expected, c.Severity)
	}

	return b.String()
}

func beatGoal(beat BeatKind, label string) string {
	switch beat {
	case BeatSetup:
		return "establish the scene's stakes and point of view"
	case BeatConfrontation:
		return "bring the central conflict into direct confrontation"
	case BeatPayoff:
		return "resolve the arc's central tension"
	case BeatBridge:
		idx := 0
		fmt.Sscanf(label, "BRIDGE-%d", &idx)
		return BridgeGoal(idx - 1)
	default:
		return "advance the narrative"
	}
}

func beatConflict(beat BeatKind) string {
	switch beat {
	case BeatSetup:
		return "introduce the obstacle standing between the protagonist and their goal"
	case BeatConfrontation:
		return "force a direct clash between opposing interests"
	case BeatPayoff:
		return "settle the conflict decisively"
	default:
		return "complicate the existing conflict"
	}
}

func beatOutcomeHint(beat BeatKind) string {
	switch beat {
	case BeatSetup:
		return "the protagonist commits to a course of action"
	case BeatConfrontation:
		return "the conflict escalates beyond easy resolution"
	case BeatPayoff:
		return "the arc's stakes are resolved, for better or worse"
	default:
		return "the situation shifts, raising or redirecting stakes"
	}
}

func stringConstraint(constraints map[string]any, key, fallback string) string {
	if v, ok := constraints[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func resolveTone(constraints map[string]any, hint *string) string {
	if v, ok := constraints["tone"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if hint != nil && *hint != "" {
		return *hint
	}
	return defaultTone
}

func dedupedSortedScope(scope []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(scope))
	for _, id := range scope {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
