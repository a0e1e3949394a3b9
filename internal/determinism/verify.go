// Package determinism verifies OMEGA's core invariant directly: running
// the same input through a deterministic operation repeatedly must
// produce byte-identical output every time (spec.md §5, §8). It does not
// duplicate internal/hashing or internal/canonicaljson's hashing
// primitives — it drives whatever trial function a caller supplies
// (typically one closing over a pipeline.Runner or genesis.BuildPlan
// call) and compares the hashes those primitives already produce.
package determinism

import (
	"fmt"
	"io"
)

// Reporter receives progress as VerifyDeterminism runs successive trials.
type Reporter interface {
	ReportTrial(n int, hash string)
}

// VerifyDeterminism executes trial n times and confirms every call
// returns the same hash. It returns the common hash on success, or the
// first trial's hash alongside an error identifying the first
// divergence.
func VerifyDeterminism(n int, trial func() (string, error), reporter Reporter) (string, error) {
	if n < 2 {
		return "", fmt.Errorf("determinism verification requires at least 2 trials, got %d", n)
	}

	var firstHash string
	for i := 0; i < n; i++ {
		hash, err := trial()
		if err != nil {
			return "", fmt.Errorf("trial %d failed: %w", i, err)
		}

		if reporter != nil {
			reporter.ReportTrial(i, hash)
		}

		if firstHash == "" {
			firstHash = hash
		} else if firstHash != hash {
			return firstHash, fmt.Errorf("nondeterminism detected at trial %d: expected %s, got %s", i, firstHash, hash)
		}
	}

	return firstHash, nil
}

// WriterReporter prints each trial's hash to Out, for CLI callers that
// want to show progress as VerifyDeterminism runs.
type WriterReporter struct {
	Out io.Writer
}

func (r *WriterReporter) ReportTrial(n int, hash string) {
	fmt.Fprintf(r.Out, "trial %d: %s\n", n+1, hash)
}
