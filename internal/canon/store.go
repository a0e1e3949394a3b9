package canon

import (
	"sort"
	"time"

	"omega/internal/canonicaljson"
	"omega/internal/entityid"
	"omega/internal/hashing"
	"omega/internal/invariants"
	"omega/internal/omegaerr"
)

const schemaVersion = 1

// Store is a single-writer in-memory CANON fact store. Concurrent access
// from multiple goroutines requires wrapping it in SyncStore or an
// equivalent external mutual-exclusion primitive (spec.md §5).
type Store struct {
	facts    map[string]Fact // fact_id -> fact
	byEntity map[string]map[string]string // entity_id -> key -> fact_id
	events   []Event
	seq      uint64
}

// NewStore returns an empty CANON store.
func NewStore() *Store {
	return &Store{
		facts:    make(map[string]Fact),
		byEntity: make(map[string]map[string]string),
	}
}

func factHash(entityID, key string, value any, source Source, lock Lock) (string, error) {
	valueJSON, err := canonicaljson.Marshal(value)
	if err != nil {
		return "", err
	}
	return hashing.PlainHash(entityID, key, valueJSON, string(source), string(lock)), nil
}

// AssertFact validates and asserts fact under policy, returning the
// outcome and the stored fact (with hash/fact_id/version filled in).
func (s *Store) AssertFact(fact Fact, policy Policy) (AssertOutcome, Fact, error) {
	if err := entityid.Validate(fact.EntityID); err != nil {
		return "", Fact{}, err
	}
	if fact.Confidence < 0 || fact.Confidence > 1 {
		return "", Fact{}, omegaerr.Newf(omegaerr.CodeCanonInvalidConfidence,
			"confidence %f out of [0,1]", fact.Confidence)
	}
	if fact.ValidFrom != nil && fact.ValidTo != nil && fact.ValidFrom.After(*fact.ValidTo) {
		return "", Fact{}, omegaerr.New(omegaerr.CodeCanonInvalidValidity, "valid_from must be <= valid_to")
	}
	if fact.Lock == "" {
		fact.Lock = LockNone
	}
	if fact.Source == "" {
		fact.Source = SourceSystem
	}
	if fact.Confidence == 0 {
		fact.Confidence = DefaultConfidence(fact.Source)
	}

	computedHash, err := factHash(fact.EntityID, fact.Key, fact.Value, fact.Source, fact.Lock)
	if err != nil {
		return "", Fact{}, err
	}
	fact.Hash = computedHash
	fact.FactID = "FACT_" + computedHash
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now().UTC()
	}

	existingID, hasExisting := s.lookup(fact.EntityID, fact.Key)
	if !hasExisting {
		fact.Version = 1
		s.put(fact)
		s.appendEvent(OpCreate, fact, nil)
		return OutcomeCreated, fact, nil
	}

	existing := s.facts[existingID]
	decision := resolveConflict(existing, fact, policy)
	if decision.Outcome == OutcomeUpdated && !decision.Overwrite {
		// identical-hash reassert (spec.md §9): no new ledger event, the
		// existing fact is reported unchanged.
		return OutcomeUpdated, existing, nil
	}
	if !decision.Overwrite {
		return OutcomeConflict, existing, nil
	}

	fact.Version = existing.Version + 1
	previous := existing
	s.put(fact)
	s.appendEvent(OpUpdate, fact, &previous)
	return OutcomeUpdated, fact, nil
}

// Query returns the fact at (entity, key), if any.
func (s *Store) Query(entity, key string) (Fact, bool) {
	id, ok := s.lookup(entity, key)
	if !ok {
		return Fact{}, false
	}
	return s.facts[id], true
}

// QueryEntity returns all facts for an entity, sorted by key.
func (s *Store) QueryEntity(entity string) []Fact {
	keys := s.byEntity[entity]
	facts := make([]Fact, 0, len(keys))
	for _, id := range keys {
		facts = append(facts, s.facts[id])
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].Key < facts[j].Key })
	return facts
}

// Lock sets a fact's lock level and emits a Lock/Unlock event.
func (s *Store) Lock(factID string, level Lock) error {
	fact, ok := s.facts[factID]
	if !ok {
		return omegaerr.Newf(omegaerr.CodeCanonNotFound, "fact %q not found", factID)
	}
	previous := fact
	fact.Lock = level
	hash, err := factHash(fact.EntityID, fact.Key, fact.Value, fact.Source, fact.Lock)
	if err != nil {
		return err
	}
	fact.Hash = hash
	fact.FactID = "FACT_" + hash
	s.replace(previous.FactID, fact)

	op := OpLock
	if level == LockNone {
		op = OpUnlock
	}
	s.appendEvent(op, fact, &previous)
	return nil
}

// Delete removes a fact and emits a Delete event.
func (s *Store) Delete(factID string) error {
	fact, ok := s.facts[factID]
	if !ok {
		return omegaerr.Newf(omegaerr.CodeCanonNotFound, "fact %q not found", factID)
	}
	delete(s.facts, factID)
	if keys, ok := s.byEntity[fact.EntityID]; ok {
		delete(keys, fact.Key)
	}
	s.appendEvent(OpDelete, fact, &fact)
	return nil
}

// Events returns the ledger in append order.
func (s *Store) Events() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// VerifyLedger walks the event chain and confirms every link. Returns
// the index of the first broken link, or -1 if the chain is intact.
func (s *Store) VerifyLedger() int {
	prev := "GENESIS"
	for i, ev := range s.events {
		expected := hashing.PlainHash(uint64ToString(ev.Seq), string(ev.Op), ev.Fact.Hash, prev)
		if ev.EventHash != expected {
			invariants.ChainHashPreserved(expected, ev.EventHash)
			return i
		}
		prev = ev.EventHash
	}
	return -1
}

func (s *Store) lookup(entity, key string) (string, bool) {
	keys, ok := s.byEntity[entity]
	if !ok {
		return "", false
	}
	id, ok := keys[key]
	return id, ok
}

func (s *Store) put(fact Fact) {
	s.facts[fact.FactID] = fact
	if s.byEntity[fact.EntityID] == nil {
		s.byEntity[fact.EntityID] = make(map[string]string)
	}
	s.byEntity[fact.EntityID][fact.Key] = fact.FactID
}

func (s *Store) replace(oldID string, fact Fact) {
	delete(s.facts, oldID)
	s.put(fact)
}

func (s *Store) appendEvent(op EventOp, fact Fact, previous *Fact) {
	s.seq++
	prevHash := "GENESIS"
	if len(s.events) > 0 {
		prevHash = s.events[len(s.events)-1].EventHash
	}
	eventHash := hashing.PlainHash(uint64ToString(s.seq), string(op), fact.Hash, prevHash)
	ev := Event{
		EventID:           "EVT_" + eventHash,
		Op:                op,
		Fact:              fact,
		PreviousFact:      previous,
		Timestamp:         time.Now().UTC(),
		PreviousEventHash: prevHash,
		EventHash:         eventHash,
		Seq:               s.seq,
	}
	s.events = append(s.events, ev)
}

func uint64ToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
