package genesis

import (
	"time"

	"omega/internal/canonicaljson"
	"omega/internal/hashing"
	"omega/internal/omegaerr"
)

// BuildProof is phase 7: seals the materialized scenes behind a
// length-prefixed hash chain rooted at RootHash() (spec.md §4.5 step 7).
func BuildProof(requestHash string, specs []SceneSpec, seed uint64, createdUTC time.Time) (Proof, []HashLink, error) {
	links := make([]HashLink, 0, len(specs))
	prev := RootHash()

	for _, s := range specs {
		sceneJSON, err := canonicaljson.Marshal(s)
		if err != nil {
			return Proof{}, nil, err
		}
		sceneHash := hashing.NewDomainHasher(hashing.DomainScene).
			UpdateString(sceneJSON).
			FinalizeHex()
		chainHash := hashing.NewDomainHasher(hashing.DomainChainLink).
			UpdateString(prev).
			UpdateString(sceneHash).
			FinalizeHex()
		links = append(links, HashLink{
			Index:     s.Index,
			SceneHash: sceneHash,
			PrevHash:  prev,
			ChainHash: chainHash,
		})
		prev = chainHash
	}

	tip := RootHash()
	if len(links) > 0 {
		tip = links[len(links)-1].ChainHash
	}

	planID := hashing.NewDomainHasher(hashing.DomainManifest).
		UpdateString(requestHash).
		UpdateString(tip).
		FinalizeHex()

	manifest := map[string]string{
		"canonical_request_hash": requestHash,
		"scene_chain_tip":        tip,
		"plan_id":                planID,
	}

	proof := Proof{
		Seed:                 seed,
		CanonicalRequestHash: requestHash,
		SceneHashChain:       links,
		Manifest:             manifest,
		CreatedUTC:           createdUTC,
	}
	return proof, links, nil
}

// VerifyPlanProof recomputes the scene hash chain and manifest from
// scratch and compares it against the proof a Plan carries.
func VerifyPlanProof(plan Plan) error {
	chain := plan.PlanProof.SceneHashChain
	if len(chain) != len(plan.SceneSpecs) {
		return omegaerr.Newf(omegaerr.CodeGenesisProofChainLength, "proof has %d links for %d scenes", len(chain), len(plan.SceneSpecs))
	}

	prev := RootHash()
	for i, s := range plan.SceneSpecs {
		link := chain[i]
		if link.Index != s.Index {
			return omegaerr.Newf(omegaerr.CodeGenesisProofLinkIndex, "link %d: index mismatch (want %d, got %d)", i, s.Index, link.Index)
		}
		if link.PrevHash != prev {
			return omegaerr.Newf(omegaerr.CodeGenesisProofPrevHash, "link %d: prev_hash mismatch", i)
		}
		sceneJSON, err := canonicaljson.Marshal(s)
		if err != nil {
			return err
		}
		wantSceneHash := hashing.NewDomainHasher(hashing.DomainScene).
			UpdateString(sceneJSON).
			FinalizeHex()
		if link.SceneHash != wantSceneHash {
			return omegaerr.Newf(omegaerr.CodeGenesisProofSceneHash, "link %d: scene_hash mismatch", i)
		}
		wantChainHash := hashing.NewDomainHasher(hashing.DomainChainLink).
			UpdateString(link.PrevHash).
			UpdateString(link.SceneHash).
			FinalizeHex()
		if link.ChainHash != wantChainHash {
			return omegaerr.Newf(omegaerr.CodeGenesisProofChainHash, "link %d: chain_hash mismatch", i)
		}
		prev = link.ChainHash
	}

	if plan.PlanProof.CanonicalRequestHash != plan.RequestHash {
		return omegaerr.New(omegaerr.CodeGenesisProofRequestHash, "proof.canonical_request_hash does not match plan.request_hash")
	}

	manifestTip, ok := plan.PlanProof.Manifest["scene_chain_tip"]
	if !ok {
		return omegaerr.New(omegaerr.CodeGenesisProofManifestFields, "manifest missing scene_chain_tip")
	}
	if manifestTip != prev {
		return omegaerr.New(omegaerr.CodeGenesisProofManifestTip, "manifest scene_chain_tip does not match recomputed chain tip")
	}

	manifestRequestHash, ok := plan.PlanProof.Manifest["canonical_request_hash"]
	if !ok {
		return omegaerr.New(omegaerr.CodeGenesisProofManifestFields, "manifest missing canonical_request_hash")
	}
	if manifestRequestHash != plan.RequestHash {
		return omegaerr.New(omegaerr.CodeGenesisProofRequestHash, "manifest canonical_request_hash does not match plan.request_hash")
	}

	wantPlanID := hashing.NewDomainHasher(hashing.DomainManifest).
		UpdateString(plan.RequestHash).
		UpdateString(prev).
		FinalizeHex()
	if plan.PlanID != wantPlanID {
		return omegaerr.New(omegaerr.CodeGenesisProofPlanID, "plan_id does not match recomputed manifest hash")
	}

	return nil
}
