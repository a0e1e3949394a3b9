package omegaerr

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
)

// Classify maps an unknown error into an *OmegaError. Used at system
// boundaries (provider calls, persistence I/O) so that core code only
// ever deals with the typed error, per spec.md §7's "resource errors"
// and "provider errors" buckets.
func Classify(err error) *OmegaError {
	if err == nil {
		return nil
	}
	if oe, ok := err.(*OmegaError); ok {
		return oe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(CodeTimeout, "operation timed out").WithCause(err).SetRetryable(true)
	}
	if errors.Is(err, context.Canceled) {
		return New(CodeCancelled, "operation cancelled").WithCause(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return New(CodeProviderTimeout, "network timeout").WithCause(err).SetRetryable(true)
		}
		return New(CodeProviderUnavailable, "network error").WithCause(err).SetRetryable(true)
	}

	var syscallErr syscall.Errno
	if errors.As(err, &syscallErr) {
		switch syscallErr {
		case syscall.ECONNREFUSED:
			return New(CodeProviderUnavailable, "connection refused").WithCause(err).SetRetryable(true)
		case syscall.ETIMEDOUT:
			return New(CodeProviderTimeout, "connection timed out").WithCause(err).SetRetryable(true)
		case syscall.EMFILE, syscall.ENFILE, syscall.ENOSPC:
			return New(CodeStorageWriteFailed, "resource exhausted").WithCause(err)
		}
	}

	if errors.Is(err, os.ErrNotExist) {
		return New(CodeStorageNotFound, "file not found").WithCause(err)
	}
	if errors.Is(err, os.ErrPermission) {
		return New(CodeStorageReadFailed, "permission denied").WithCause(err)
	}

	return New(CodeUnknown, "an unexpected error occurred").WithCause(err)
}

// ClassifyWithCode classifies an error, falling back to defaultCode when
// no more specific classification applies.
func ClassifyWithCode(err error, defaultCode Code) *OmegaError {
	if err == nil {
		return nil
	}
	classified := Classify(err)
	if classified.Code == CodeUnknown {
		classified.Code = defaultCode
	}
	return classified
}
