package canon

import (
	"strconv"
	"strings"
	"sync"
)

// conflictDecision is the result of resolving a conflict between an
// existing fact and a proposed one under a Policy: whether the proposed
// fact wins, and the outcome AssertFact should report.
type conflictDecision struct {
	Overwrite bool
	Outcome   AssertOutcome
}

// decisionCache memoizes conflict resolution for identical
// (existing-hash, proposed-hash, policy, existing-confidence,
// proposed-confidence) keys. Confidence is not part of a fact's hash, so
// it is keyed separately. Policy evaluation is a pure function of these
// inputs, so a decision made once never needs to be recomputed for the
// same key.
var (
	decisionCache = make(map[string]conflictDecision)
	decisionMu    sync.RWMutex
)

// ClearConflictDecisionCache drops all memoized conflict decisions. Tests
// that assert on cache population call this between cases.
func ClearConflictDecisionCache() {
	decisionMu.Lock()
	defer decisionMu.Unlock()
	decisionCache = make(map[string]conflictDecision)
}

func conflictCacheKey(existing, proposed Fact, policy Policy) string {
	var b strings.Builder
	b.WriteString(existing.Hash)
	b.WriteByte('|')
	b.WriteString(proposed.Hash)
	b.WriteByte('|')
	b.WriteString(string(policy))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(existing.Confidence, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(proposed.Confidence, 'g', -1, 64))
	return b.String()
}

// resolveConflict decides whether proposed may overwrite existing under
// policy. It never mutates either fact and never touches the store, so
// its result depends only on its three arguments and can be cached.
func resolveConflict(existing, proposed Fact, policy Policy) conflictDecision {
	key := conflictCacheKey(existing, proposed, policy)

	decisionMu.RLock()
	if cached, ok := decisionCache[key]; ok {
		decisionMu.RUnlock()
		return cached
	}
	decisionMu.RUnlock()

	decision := resolveConflictUncached(existing, proposed, policy)

	decisionMu.Lock()
	decisionCache[key] = decision
	decisionMu.Unlock()

	return decision
}

func resolveConflictUncached(existing, proposed Fact, policy Policy) conflictDecision {
	if existing.Hash == proposed.Hash {
		return conflictDecision{Overwrite: false, Outcome: OutcomeUpdated}
	}
	if existing.Lock == LockHard {
		return conflictDecision{Overwrite: false, Outcome: OutcomeConflict}
	}

	allow := false
	switch policy {
	case PolicyArchitectOverride:
		allow = true
	case PolicyOverrideIfHigherConfidence:
		allow = proposed.Confidence > existing.Confidence
	case PolicyKeepExisting, PolicyAskUser:
		allow = false
	}

	if !allow {
		return conflictDecision{Overwrite: false, Outcome: OutcomeConflict}
	}
	return conflictDecision{Overwrite: true, Outcome: OutcomeUpdated}
}
