package voicehybrid

import (
	"sort"
	"strings"
	"sync"

	"omega/internal/canonicaljson"
	"omega/internal/hashing"
	"omega/internal/omegaerr"
)

// ReplayRecord is a persisted record of one provider call: the
// identifiers needed to detect replay against a changed policy or
// input, the prompt/completion pair, and an anti-tamper record_hash.
// Never carries a provider API key or other secret (spec.md §4.6).
type ReplayRecord struct {
	SchemaVersion int               `json:"schema_version"`
	RunID         string            `json:"run_id"`
	PolicyID      string            `json:"policy_id"`
	PolicyVersion string            `json:"policy_version"`
	GuidanceHash  string            `json:"guidance_hash"`
	Provider      string            `json:"provider"`
	InputHash     string            `json:"input_hash"`
	Prompt        string            `json:"prompt"`
	Completion    string            `json:"completion"`
	RecordHash    string            `json:"record_hash"`
	Meta          map[string]string `json:"meta"`
}

// ReplayRecordSchemaVersion is the current record schema version.
const ReplayRecordSchemaVersion = 1

// NewReplayRecord returns a record with only its required identity
// fields set; callers fill in the rest before writing it.
func NewReplayRecord(runID, provider string) ReplayRecord {
	return ReplayRecord{
		SchemaVersion: ReplayRecordSchemaVersion,
		RunID:         runID,
		PolicyID:      "UNSET",
		PolicyVersion: "UNSET",
		GuidanceHash:  "UNSET",
		Provider:      provider,
		InputHash:     "UNSET",
		Meta:          map[string]string{},
	}
}

// ValidateStructure checks the record's shape, independent of its hash.
func (r ReplayRecord) ValidateStructure() error {
	if r.SchemaVersion != ReplayRecordSchemaVersion {
		return omegaerr.Newf(omegaerr.CodeVoiceInvariant, "unsupported replay record schema_version %d", r.SchemaVersion)
	}
	if strings.TrimSpace(r.RunID) == "" {
		return omegaerr.New(omegaerr.CodeVoiceInvariant, "run_id cannot be empty")
	}
	if strings.TrimSpace(r.Provider) == "" {
		return omegaerr.New(omegaerr.CodeVoiceInvariant, "provider cannot be empty")
	}
	if strings.TrimSpace(r.PolicyVersion) == "" {
		return omegaerr.New(omegaerr.CodeVoiceInvariant, "policy_version cannot be empty")
	}
	return nil
}

// computeRecordHash hashes the canonical JSON of r with RecordHash
// blanked, the same canonical-then-hash pattern audit/receipts.go uses
// for ExecutionReceipt.ReceiptHash.
func computeRecordHash(r ReplayRecord) (string, error) {
	r.RecordHash = ""
	canon, err := canonicaljson.Marshal(r)
	if err != nil {
		return "", omegaerr.Newf(omegaerr.CodeVoiceInvariant, "marshaling replay record: %v", err)
	}
	return hashing.PlainHash(canon), nil
}

// sealRecordHash returns r with RecordHash set to the hash of its own
// canonical content.
func sealRecordHash(r ReplayRecord) (ReplayRecord, error) {
	h, err := computeRecordHash(r)
	if err != nil {
		return ReplayRecord{}, err
	}
	r.RecordHash = h
	return r, nil
}

// verifyRecordHash reports whether r's stored record_hash matches its
// own content, detecting tampering after the fact.
func verifyRecordHash(r ReplayRecord) error {
	want, err := computeRecordHash(r)
	if err != nil {
		return err
	}
	if r.RecordHash != want {
		return omegaerr.Newf(omegaerr.CodeVoiceRecordTamper, "replay record %s: record_hash mismatch", r.RunID)
	}
	return nil
}

// ReplayStore abstracts record/replay persistence. Callers in
// production wire this to internal/persist (sqlite-backed); tests use
// InMemoryReplayStore.
type ReplayStore interface {
	WriteRecord(key string, rec ReplayRecord) error
	ReadRecord(key string) (ReplayRecord, error)
}

// recordKey is the storage key for a run's replay record, a caller-
// chosen, path-validated location per spec.md §6 — the "VOICE_HYBRID/"
// prefix namespaces it alongside other record kinds a store might hold.
func recordKey(runID string) string {
	return "VOICE_HYBRID/" + runID
}

// RecordKey exports recordKey for external ReplayStore implementations
// (internal/persist's sqlite-backed adapter, CLI tooling) that need the
// same key a ModeRecord/ModeReplay run derives from its run_id.
func RecordKey(runID string) string { return recordKey(runID) }

// SealReplayRecord validates rec's structure and returns it with
// RecordHash set to the hash of its own canonical content. Exported for
// external ReplayStore implementations outside this package.
func SealReplayRecord(rec ReplayRecord) (ReplayRecord, error) {
	if err := rec.ValidateStructure(); err != nil {
		return ReplayRecord{}, err
	}
	return sealRecordHash(rec)
}

// VerifyReplayRecord reports whether rec's stored record_hash matches
// its own content. Exported for external ReplayStore implementations.
func VerifyReplayRecord(rec ReplayRecord) error {
	return verifyRecordHash(rec)
}

// InMemoryReplayStore is a ReplayStore backed by a mutex-guarded map,
// grounded on the original's InMemoryReplayStore test double and used
// here as the default store for callers that don't need durability.
type InMemoryReplayStore struct {
	mu      sync.RWMutex
	records map[string]ReplayRecord
}

// NewInMemoryReplayStore returns an empty store.
func NewInMemoryReplayStore() *InMemoryReplayStore {
	return &InMemoryReplayStore{records: map[string]ReplayRecord{}}
}

// WriteRecord seals rec's record_hash and stores it under key.
func (s *InMemoryReplayStore) WriteRecord(key string, rec ReplayRecord) error {
	if err := rec.ValidateStructure(); err != nil {
		return err
	}
	sealed, err := sealRecordHash(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = sealed
	return nil
}

// ReadRecord fetches the record at key, verifying its record_hash
// before returning it.
func (s *InMemoryReplayStore) ReadRecord(key string) (ReplayRecord, error) {
	s.mu.RLock()
	rec, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return ReplayRecord{}, omegaerr.Newf(omegaerr.CodeStorageNotFound, "no replay record at %q", key)
	}
	if err := verifyRecordHash(rec); err != nil {
		return ReplayRecord{}, err
	}
	return rec, nil
}

// Keys returns all stored keys, sorted, for diagnostics and tests.
func (s *InMemoryReplayStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
