package genesis

import (
	"fmt"
	"sort"
	"time"
)

// BuildPlan runs the full seven-phase pipeline: validate, canonicalize,
// hash, generate beats, materialize scene specs, validate specs, build
// the proof chain (spec.md §4.5).
func BuildPlan(req Request, bounds Bounds) (Plan, error) {
	if err := ValidateRequest(req, bounds); err != nil {
		return Plan{}, err
	}

	canonical, err := Canonicalize(req)
	if err != nil {
		return Plan{}, err
	}
	requestHash := HashRequest(canonical)

	beats := GenerateBeats(req.Target.Scenes)
	specs := MaterializeScenes(req, beats)

	if err := ValidateScenes(req, specs); err != nil {
		return Plan{}, err
	}

	proof, _, err := BuildProof(requestHash, specs, req.Seed, time.Now().UTC())
	if err != nil {
		return Plan{}, err
	}

	stagedFacts := make([]string, 0, len(req.ContinuityClaims))
	for _, c := range req.ContinuityClaims {
		stagedFacts = append(stagedFacts, fmt.Sprintf("%s.%s", c.EntityID, c.Key))
	}
	sort.Strings(stagedFacts)

	return Plan{
		PlanID:      proof.Manifest["plan_id"],
		RequestHash: requestHash,
		SceneSpecs:  specs,
		PlanProof:   proof,
		StagedFacts: stagedFacts,
		Warnings:    CollectWarnings(req),
	}, nil
}
