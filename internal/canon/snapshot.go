package canon

import (
	"sort"
	"time"

	"omega/internal/hashing"
	"omega/internal/omegaerr"
)

// ExportSnapshot serializes the store's current facts, sorted by
// (entity_id, key), with a snapshot hash over the sorted fact hashes.
func (s *Store) ExportSnapshot(metadata map[string]any) Snapshot {
	facts := make([]Fact, 0, len(s.facts))
	for _, f := range s.facts {
		facts = append(facts, f)
	}
	sort.Slice(facts, func(i, j int) bool {
		if facts[i].EntityID != facts[j].EntityID {
			return facts[i].EntityID < facts[j].EntityID
		}
		return facts[i].Key < facts[j].Key
	})

	hashes := make([]string, len(facts))
	for i, f := range facts {
		hashes[i] = f.Hash
	}
	snapshotHash := hashing.PlainHash(hashes...)

	return Snapshot{
		SchemaVersion: schemaVersion,
		SnapshotID:    "SNAP_" + snapshotHash,
		CreatedAt:     time.Now().UTC(),
		Facts:         facts,
		Metadata:      metadata,
		SnapshotHash:  snapshotHash,
		Stats:         SnapshotStats{FactCount: len(facts)},
	}
}

// ImportSnapshot recomputes snapshot.SnapshotHash and rejects on
// mismatch, then applies facts per policy. DryRun reports what would
// happen without mutating the store.
func (s *Store) ImportSnapshot(snapshot Snapshot, policy ImportPolicy) (ImportResult, error) {
	hashes := make([]string, len(snapshot.Facts))
	for i, f := range snapshot.Facts {
		hashes[i] = f.Hash
	}
	recomputed := hashing.PlainHash(hashes...)
	if recomputed != snapshot.SnapshotHash {
		return ImportResult{}, omegaerr.New(omegaerr.CodeCanonSnapshotMismatch,
			"snapshot hash mismatch: recomputed hash does not match recorded snapshot_hash")
	}

	result := ImportResult{DryRun: policy == ImportDryRun}

	if policy == ImportReplaceAll {
		if policy != ImportDryRun {
			s.facts = make(map[string]Fact)
			s.byEntity = make(map[string]map[string]string)
		}
	}

	for _, fact := range snapshot.Facts {
		assertPolicy := PolicyOverrideIfHigherConfidence
		if policy == ImportReplaceAll {
			assertPolicy = PolicyArchitectOverride
		}

		if policy == ImportDryRun {
			if _, exists := s.lookup(fact.EntityID, fact.Key); exists {
				result.Updated++
			} else {
				result.Created++
			}
			continue
		}

		outcome, _, err := s.AssertFact(fact, assertPolicy)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		switch outcome {
		case OutcomeCreated:
			result.Created++
		case OutcomeUpdated:
			result.Updated++
		case OutcomeConflict:
			result.Conflict++
		}
	}

	return result, nil
}
