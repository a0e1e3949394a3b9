// Package invariants reports breaches of OMEGA's core guarantees so that
// callers embedding the pipeline, planner, or store can wire them into
// their own alerting without the core taking a direct dependency on any
// particular reporting backend.
package invariants

import (
	"errors"
	"sync/atomic"
)

type ViolationReporter interface {
	RecordInvariantViolation(name string)
}

var violationReporter atomic.Value

func SetViolationReporter(reporter ViolationReporter) {
	violationReporter.Store(reporter)
}

func reportViolation(name string) {
	reporter, _ := violationReporter.Load().(ViolationReporter)
	if reporter != nil {
		reporter.RecordInvariantViolation(name)
	}
}

// ChainHashPreserved checks that a recomputed chain hash still matches a
// previously recorded one. Used by CANON's ledger verification to assert
// continuity before trusting a hash chain tip.
func ChainHashPreserved(expected, recomputed string) bool {
	if expected != recomputed {
		reportViolation("chain_hash_mismatch")
		return false
	}
	return true
}

// HardLockInviolable reports a violation if a Hard-locked fact's hash
// changed across an assert attempt. The CANON store must never let this
// happen; any occurrence is an implementation bug, not a policy outcome.
func HardLockInviolable(factHashBefore, factHashAfter string) bool {
	if factHashBefore != factHashAfter {
		reportViolation("hard_lock_violated")
		return false
	}
	return true
}

// ReplaySnapshotMatches enforces that a VOICE-hybrid replay only proceeds
// against the exact recorded snapshot it was generated against.
func ReplaySnapshotMatches(expectedSnapshotHash, replaySnapshotHash string) error {
	if expectedSnapshotHash != replaySnapshotHash {
		reportViolation("replay_snapshot_hash_mismatch")
		return errors.New("replay snapshot hash mismatch")
	}
	return nil
}
