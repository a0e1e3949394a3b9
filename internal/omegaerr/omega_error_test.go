package omegaerr

import (
	"errors"
	"testing"
)

func TestNewSetsRetryableAndDeterministic(t *testing.T) {
	err := New(CodeGenesisProofSceneHash, "scene hash mismatch")
	if !err.Deterministic {
		t.Error("expected a tamper-detection code to be marked deterministic")
	}
	if err.Retryable {
		t.Error("tamper failures must never be retryable")
	}

	transient := New(CodeProviderTimeout, "timed out")
	if !transient.Retryable {
		t.Error("expected provider timeout to be retryable")
	}
}

func TestWrapPreservesExistingOmegaError(t *testing.T) {
	inner := New(CodeCanonLockViolation, "locked")
	wrapped := Wrap(inner, CodeUnknown, "ignored")
	if wrapped != inner {
		t.Error("Wrap should return the original *OmegaError unchanged")
	}
}

func TestWrapWrapsPlainError(t *testing.T) {
	plain := errors.New("boom")
	wrapped := Wrap(plain, CodeStorageReadFailed, "read failed")
	if wrapped.Cause != plain {
		t.Error("expected cause to be preserved")
	}
	if wrapped.Code != CodeStorageReadFailed {
		t.Errorf("expected code %s, got %s", CodeStorageReadFailed, wrapped.Code)
	}
}

func TestMarshalJSONOmitsCause(t *testing.T) {
	err := New(CodeCanonHashMismatch, "hash mismatch").WithCause(errors.New("internal detail"))
	data, marshalErr := err.MarshalJSON()
	if marshalErr != nil {
		t.Fatalf("marshal failed: %v", marshalErr)
	}
	if contains(string(data), "internal detail") {
		t.Error("marshaled error must not leak cause text")
	}
}

func TestGetCodeAndIsRetryable(t *testing.T) {
	if GetCode(nil) != "" {
		t.Error("expected empty code for nil error")
	}
	plain := errors.New("x")
	if GetCode(plain) != CodeUnknown {
		t.Error("expected CodeUnknown for non-OmegaError")
	}
	if IsRetryable(plain) {
		t.Error("non-OmegaError should not be retryable")
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
