package canon

import "testing"

func TestAssertFactCreatesThenUpdatesOnHigherConfidence(t *testing.T) {
	s := NewStore()

	outcome, fact, err := s.AssertFact(Fact{
		EntityID: "CHAR:aria", Key: "eye_color", Value: "blue", Source: SourceImport,
	}, PolicyAskUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("expected Created, got %s", outcome)
	}
	if fact.Confidence != DefaultConfidence(SourceImport) {
		t.Errorf("expected default confidence, got %f", fact.Confidence)
	}

	outcome, _, err = s.AssertFact(Fact{
		EntityID: "CHAR:aria", Key: "eye_color", Value: "green", Source: SourceAi, Confidence: 0.95,
	}, PolicyOverrideIfHigherConfidence)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Fatalf("expected Updated (higher confidence), got %s", outcome)
	}

	outcome, _, err = s.AssertFact(Fact{
		EntityID: "CHAR:aria", Key: "eye_color", Value: "brown", Source: SourceAi, Confidence: 0.1,
	}, PolicyOverrideIfHigherConfidence)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeConflict {
		t.Fatalf("expected Conflict (lower confidence), got %s", outcome)
	}
}

func TestIdenticalHashReassertReturnsUpdatedUnchanged(t *testing.T) {
	s := NewStore()
	f := Fact{EntityID: "LOC:tower", Key: "height_m", Value: 40, Source: SourceUser}
	_, first, _ := s.AssertFact(f, PolicyAskUser)

	eventsBefore := len(s.Events())
	outcome, second, err := s.AssertFact(f, PolicyAskUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Errorf("expected Updated for identical-hash reassert, got %s", outcome)
	}
	if second.Hash != first.Hash {
		t.Error("expected unchanged hash on identical-hash reassert")
	}
	if len(s.Events()) != eventsBefore {
		t.Error("identical-hash reassert must not append a new ledger event")
	}
}

func TestHardLockInviolable(t *testing.T) {
	s := NewStore()
	_, fact, _ := s.AssertFact(Fact{
		EntityID: "CHAR:aria", Key: "name", Value: "Aria", Source: SourceUser,
	}, PolicyAskUser)

	if err := s.Lock(fact.FactID, LockHard); err != nil {
		t.Fatalf("unexpected error locking: %v", err)
	}

	locked, _ := s.Query("CHAR:aria", "name")
	outcome, _, err := s.AssertFact(Fact{
		EntityID: "CHAR:aria", Key: "name", Value: "Someone Else", Source: SourceArchitect,
	}, PolicyArchitectOverride)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeConflict {
		t.Errorf("expected Hard lock to block ArchitectOverride, got %s", outcome)
	}
	after, _ := s.Query("CHAR:aria", "name")
	if after.Hash != locked.Hash {
		t.Error("Hard-locked fact must not change")
	}
}

func TestLedgerChainVerifies(t *testing.T) {
	s := NewStore()
	s.AssertFact(Fact{EntityID: "CHAR:aria", Key: "name", Value: "Aria", Source: SourceUser}, PolicyAskUser)
	s.AssertFact(Fact{EntityID: "CHAR:aria", Key: "eye_color", Value: "blue", Source: SourceUser}, PolicyAskUser)
	s.AssertFact(Fact{EntityID: "CHAR:aria", Key: "eye_color", Value: "green", Source: SourceArchitect}, PolicyArchitectOverride)

	if idx := s.VerifyLedger(); idx != -1 {
		t.Errorf("expected intact ledger, broke at index %d", idx)
	}
}

func TestLedgerChainDetectsTamper(t *testing.T) {
	s := NewStore()
	s.AssertFact(Fact{EntityID: "CHAR:aria", Key: "name", Value: "Aria", Source: SourceUser}, PolicyAskUser)
	s.events[0].EventHash = "tampered"

	if idx := s.VerifyLedger(); idx != 0 {
		t.Errorf("expected tamper detected at index 0, got %d", idx)
	}
}

func TestExportImportSnapshotRoundTrip(t *testing.T) {
	s := NewStore()
	s.AssertFact(Fact{EntityID: "CHAR:aria", Key: "name", Value: "Aria", Source: SourceUser}, PolicyAskUser)
	s.AssertFact(Fact{EntityID: "LOC:tower", Key: "height_m", Value: 40, Source: SourceUser}, PolicyAskUser)

	snapshot := s.ExportSnapshot(nil)

	fresh := NewStore()
	result, err := fresh.ImportSnapshot(snapshot, ImportReplaceAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 2 {
		t.Errorf("expected 2 created, got %d", result.Created)
	}

	roundTripped := fresh.ExportSnapshot(nil)
	if roundTripped.SnapshotHash != snapshot.SnapshotHash {
		t.Error("expected snapshot hash to survive export/import round trip")
	}
}

func TestImportSnapshotRejectsTamperedHash(t *testing.T) {
	s := NewStore()
	s.AssertFact(Fact{EntityID: "CHAR:aria", Key: "name", Value: "Aria", Source: SourceUser}, PolicyAskUser)
	snapshot := s.ExportSnapshot(nil)
	snapshot.SnapshotHash = "tampered"

	fresh := NewStore()
	if _, err := fresh.ImportSnapshot(snapshot, ImportValidateThenMerge); err == nil {
		t.Error("expected tampered snapshot hash to be rejected")
	}
}

func TestImportSnapshotDryRunDoesNotMutate(t *testing.T) {
	s := NewStore()
	s.AssertFact(Fact{EntityID: "CHAR:aria", Key: "name", Value: "Aria", Source: SourceUser}, PolicyAskUser)
	snapshot := s.ExportSnapshot(nil)

	fresh := NewStore()
	result, err := fresh.ImportSnapshot(snapshot, ImportDryRun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 1 || !result.DryRun {
		t.Errorf("unexpected dry run result: %+v", result)
	}
	if len(fresh.ExportSnapshot(nil).Facts) != 0 {
		t.Error("DryRun must not mutate the store")
	}
}

func TestInvalidEntityIDRejected(t *testing.T) {
	s := NewStore()
	if _, _, err := s.AssertFact(Fact{EntityID: "bad", Key: "x", Value: 1, Source: SourceUser}, PolicyAskUser); err == nil {
		t.Error("expected invalid entity id to be rejected")
	}
}

func TestInvalidConfidenceRejected(t *testing.T) {
	s := NewStore()
	if _, _, err := s.AssertFact(Fact{
		EntityID: "CHAR:x", Key: "k", Value: 1, Source: SourceUser, Confidence: 1.5,
	}, PolicyAskUser); err == nil {
		t.Error("expected out-of-range confidence to be rejected")
	}
}
