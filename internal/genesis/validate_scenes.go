package genesis

import (
	"strings"

	"omega/internal/omegaerr"
)

// ValidateScenes performs phase 6: structural checks on the materialized
// scene specs (spec.md §4.5 step 6).
func ValidateScenes(req Request, specs []SceneSpec) error {
	if len(specs) != req.Target.Scenes {
		return omegaerr.Newf(omegaerr.CodeGenesisSceneSpecInvalid, "expected %d scenes, materialized %d", req.Target.Scenes, len(specs))
	}

	requiredTokens := []string{"GOAL:", "CONFLICT:", "OUTCOME_HINT:", "CONTINUITY_CLAIMS:"}

	seenKinds := map[BeatKind]bool{}
	for _, s := range specs {
		if s.POV == "" || s.Tense == "" || s.Tone == "" {
			return omegaerr.Newf(omegaerr.CodeGenesisSceneSpecInvalid, "scene %d: pov/tense/tone must be non-empty", s.Index)
		}
		if len(s.CanonReadScope) == 0 {
			return omegaerr.New(omegaerr.CodeGenesisNoCanonScope, "scene canon_read_scope must be non-empty")
		}
		for _, tok := range requiredTokens {
			if !strings.Contains(s.Instructions, tok) {
				return omegaerr.Newf(omegaerr.CodeGenesisSceneSpecInvalid, "scene %d: instructions missing required token %q", s.Index, tok)
			}
		}
		seenKinds[s.BeatKind] = true
	}

	if req.Target.RequireBeats && len(specs) >= 3 {
		for _, kind := range []BeatKind{BeatSetup, BeatConfrontation, BeatPayoff} {
			if !seenKinds[kind] {
				return omegaerr.Newf(omegaerr.CodeGenesisBeatCoverage, "require_beats set but %s beat is missing", kind)
			}
		}
	}

	return nil
}
