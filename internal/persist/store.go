// Package persist implements the "file persistence for runs and
// replay" collaborator spec.md §6 names but leaves abstract: a
// sqlite-backed store for completed PipelineRun values and the VOICE
// hybrid wrapper's replay records, plus the manifest/path-validation
// helpers a caller uses when it writes run.json, manifest.sha256, and
// a human log to disk.
//
// The embed.FS migration runner, WAL mode, and schema_migrations
// bookkeeping follow a standard sqlite-store shape; the table set is
// rebuilt around OMEGA's durable record types instead of a prior
// multi-tenant runs/events/audit/jobs/nodes/sessions schema.
package persist

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"omega/internal/canon"
	"omega/internal/pipeline"
	"omega/internal/voicehybrid"
)

// ErrNotFound is returned when a lookup finds no matching record.
var ErrNotFound = errors.New("persist: not found")

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is a sqlite-backed persistence layer for PipelineRun values and
// VOICE hybrid replay records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and runs
// any pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations(version TEXT PRIMARY KEY);`); err != nil {
		return err
	}
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	for _, e := range entries {
		v := e.Name()
		var exists string
		err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = ?", v).Scan(&exists)
		if err == nil {
			continue
		} else if err != sql.ErrNoRows {
			return err
		}
		body, err := migrationFS.ReadFile("migrations/" + v)
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, string(body)); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations(version) VALUES(?)", v); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun persists a completed PipelineRun, keyed by its run_id.
func (s *Store) SaveRun(ctx context.Context, run pipeline.PipelineRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	success := 0
	if run.Success {
		success = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(id, seed, provider_id, input_hash, global_hash, success, payload_json, created_at)
		 VALUES(?,?,?,?,?,?,?,?)`,
		run.RunID, run.Seed, run.ProviderID, run.InputHash, run.GlobalHash, success, string(payload),
		run.Timestamp.UTC().Format(time.RFC3339Nano))
	return err
}

// GetRun loads a previously saved PipelineRun by its run_id.
func (s *Store) GetRun(ctx context.Context, runID string) (pipeline.PipelineRun, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload_json FROM runs WHERE id = ?", runID).Scan(&payload)
	if err == sql.ErrNoRows {
		return pipeline.PipelineRun{}, ErrNotFound
	}
	if err != nil {
		return pipeline.PipelineRun{}, err
	}
	var run pipeline.PipelineRun
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return pipeline.PipelineRun{}, err
	}
	return run, nil
}

// SaveSnapshot persists a CANON snapshot, keyed by its snapshot_id.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot canon.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO canon_snapshots(id, snapshot_hash, fact_count, payload_json, created_at)
		 VALUES(?,?,?,?,?)`,
		snapshot.SnapshotID, snapshot.SnapshotHash, snapshot.Stats.FactCount, string(payload),
		snapshot.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// GetSnapshot loads a previously saved CANON snapshot by its snapshot_id.
func (s *Store) GetSnapshot(ctx context.Context, snapshotID string) (canon.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload_json FROM canon_snapshots WHERE id = ?", snapshotID).Scan(&payload)
	if err == sql.ErrNoRows {
		return canon.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return canon.Snapshot{}, err
	}
	var snapshot canon.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return canon.Snapshot{}, err
	}
	return snapshot, nil
}

// LatestSnapshot loads the most recently saved CANON snapshot, for
// callers (like the CLI) that track a single running store per database
// rather than an explicit snapshot id.
func (s *Store) LatestSnapshot(ctx context.Context) (canon.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload_json FROM canon_snapshots ORDER BY created_at DESC LIMIT 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return canon.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return canon.Snapshot{}, err
	}
	var snapshot canon.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return canon.Snapshot{}, err
	}
	return snapshot, nil
}

// SQLiteReplayStore adapts Store to voicehybrid.ReplayStore.
type SQLiteReplayStore struct {
	store *Store
}

// ReplayStore returns a voicehybrid.ReplayStore backed by this Store.
func (s *Store) ReplayStore() *SQLiteReplayStore {
	return &SQLiteReplayStore{store: s}
}

// WriteRecord persists rec under key, sealing its record_hash first.
func (r *SQLiteReplayStore) WriteRecord(key string, rec voicehybrid.ReplayRecord) error {
	sealed, err := voicehybrid.SealReplayRecord(rec)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(sealed)
	if err != nil {
		return err
	}
	_, err = r.store.db.Exec(
		`INSERT OR REPLACE INTO voice_hybrid_records(key, run_id, policy_id, policy_version, guidance_hash, payload_json, created_at)
		 VALUES(?,?,?,?,?,?,?)`,
		key, sealed.RunID, sealed.PolicyID, sealed.PolicyVersion, sealed.GuidanceHash, string(payload),
		time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// ReadRecord loads and verifies the record stored under key.
func (r *SQLiteReplayStore) ReadRecord(key string) (voicehybrid.ReplayRecord, error) {
	var payload string
	err := r.store.db.QueryRow("SELECT payload_json FROM voice_hybrid_records WHERE key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return voicehybrid.ReplayRecord{}, ErrNotFound
	}
	if err != nil {
		return voicehybrid.ReplayRecord{}, err
	}
	var rec voicehybrid.ReplayRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return voicehybrid.ReplayRecord{}, err
	}
	if err := voicehybrid.VerifyReplayRecord(rec); err != nil {
		return voicehybrid.ReplayRecord{}, err
	}
	return rec, nil
}
