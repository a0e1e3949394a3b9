package persist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"omega/internal/canon"
	"omega/internal/pipeline"
	"omega/internal/voicehybrid"
)

func testRun() pipeline.PipelineRun {
	return pipeline.PipelineRun{
		Schema:     "OMEGA_RUN_V1",
		RunID:      "RUN_TEST_0001",
		Seed:       7,
		ProviderID: "mock",
		InputHash:  "deadbeef",
		GlobalHash: "cafebabe",
		Success:    true,
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "omega.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	run := testRun()

	if err := s.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.RunID != run.RunID || got.GlobalHash != run.GlobalHash {
		t.Fatalf("round-tripped run differs: got %+v, want %+v", got, run)
	}
}

func TestGetRunMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetRun(context.Background(), "RUN_MISSING"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteReplayStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	replay := s.ReplayStore()

	rec := voicehybrid.NewReplayRecord("RUN_TEST_0001", "mock")
	rec.PolicyID = "POLICY_1"
	rec.PolicyVersion = "2.0.0"
	rec.GuidanceHash = "abc123"
	rec.InputHash = "deadbeef"
	rec.Completion = "a deterministic completion"

	key := voicehybrid.RecordKey(rec.RunID)
	if err := replay.WriteRecord(key, rec); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}

	got, err := replay.ReadRecord(key)
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if got.Completion != rec.Completion || got.RecordHash == "" {
		t.Fatalf("round-tripped record wrong: %+v", got)
	}
}

func TestSaveAndGetSnapshot(t *testing.T) {
	s := openTestStore(t)
	store := canon.NewStore()
	store.AssertFact(canon.Fact{EntityID: "CHAR:aria", Key: "name", Value: "Aria", Source: canon.SourceUser}, canon.PolicyAskUser)
	snapshot := store.ExportSnapshot(nil)

	if err := s.SaveSnapshot(context.Background(), snapshot); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := s.GetSnapshot(context.Background(), snapshot.SnapshotID)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.SnapshotHash != snapshot.SnapshotHash {
		t.Fatalf("round-tripped snapshot hash differs: got %s, want %s", got.SnapshotHash, snapshot.SnapshotHash)
	}

	latest, err := s.LatestSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if latest.SnapshotID != snapshot.SnapshotID {
		t.Fatalf("expected latest snapshot to be the one just saved, got %s", latest.SnapshotID)
	}
}

func TestGetSnapshotMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetSnapshot(context.Background(), "SNAP_MISSING"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.LatestSnapshot(context.Background()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for empty snapshot table, got %v", err)
	}
}

func TestSQLiteReplayStoreMissing(t *testing.T) {
	s := openTestStore(t)
	replay := s.ReplayStore()
	if _, err := replay.ReadRecord(voicehybrid.RecordKey("RUN_NOPE")); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
