package canon

import "testing"

func TestResolveConflictMemoizesDecision(t *testing.T) {
	ClearConflictDecisionCache()
	existing := Fact{Hash: "h1", Confidence: 0.5, Lock: LockNone}
	proposed := Fact{Hash: "h2", Confidence: 0.9, Lock: LockNone}

	first := resolveConflict(existing, proposed, PolicyOverrideIfHigherConfidence)
	if !first.Overwrite || first.Outcome != OutcomeUpdated {
		t.Fatalf("expected overwrite on higher confidence, got %+v", first)
	}

	key := conflictCacheKey(existing, proposed, PolicyOverrideIfHigherConfidence)
	decisionMu.RLock()
	_, cached := decisionCache[key]
	decisionMu.RUnlock()
	if !cached {
		t.Fatal("expected decision to be cached after first resolution")
	}

	second := resolveConflict(existing, proposed, PolicyOverrideIfHigherConfidence)
	if second != first {
		t.Fatalf("expected cached decision to match fresh computation, got %+v vs %+v", second, first)
	}
}

func TestResolveConflictHardLockAlwaysDenies(t *testing.T) {
	ClearConflictDecisionCache()
	existing := Fact{Hash: "h1", Lock: LockHard}
	proposed := Fact{Hash: "h2", Confidence: 1.0}

	decision := resolveConflict(existing, proposed, PolicyArchitectOverride)
	if decision.Overwrite || decision.Outcome != OutcomeConflict {
		t.Fatalf("expected Hard lock to deny even ArchitectOverride, got %+v", decision)
	}
}

func TestResolveConflictIdenticalHashReportsUpdatedWithoutOverwrite(t *testing.T) {
	ClearConflictDecisionCache()
	existing := Fact{Hash: "same", Confidence: 0.5}
	proposed := Fact{Hash: "same", Confidence: 0.1}

	decision := resolveConflict(existing, proposed, PolicyKeepExisting)
	if decision.Overwrite {
		t.Fatal("identical-hash reassert must not overwrite")
	}
	if decision.Outcome != OutcomeUpdated {
		t.Fatalf("expected Updated for identical-hash reassert, got %s", decision.Outcome)
	}
}
