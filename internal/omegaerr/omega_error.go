package omegaerr

import (
	"encoding/json"
	"fmt"
	"time"
)

// OmegaError is the canonical error type for OMEGA. All errors thrown
// across a subsystem boundary should be an *OmegaError.
//
// An OmegaError is never part of a hashed path: Timestamp and Cause are
// deliberately excluded from any digest computation so that error
// reporting never perturbs determinism (spec.md §9, "Timestamp handling").
type OmegaError struct {
	Code          Code              `json:"code"`
	Message       string            `json:"message"`
	Suggestion    string            `json:"suggestion,omitempty"`
	Deterministic bool              `json:"deterministic"`
	Cause         error             `json:"-"`
	Context       map[string]string `json:"context,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	Retryable     bool              `json:"retryable"`
}

func (e *OmegaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (%s): %v", e.Code, e.Message, e.Suggestion, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *OmegaError) Unwrap() error { return e.Cause }

func (e *OmegaError) WithCause(cause error) *OmegaError {
	e.Cause = cause
	return e
}

func (e *OmegaError) WithSuggestion(suggestion string) *OmegaError {
	e.Suggestion = suggestion
	return e
}

func (e *OmegaError) WithDeterminism(deterministic bool) *OmegaError {
	e.Deterministic = deterministic
	return e
}

func (e *OmegaError) WithContext(key, value string) *OmegaError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = Redact(value)
	return e
}

func (e *OmegaError) WithContextMap(ctx map[string]string) *OmegaError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	for k, v := range ctx {
		e.Context[k] = Redact(v)
	}
	return e
}

func (e *OmegaError) SetRetryable(retryable bool) *OmegaError {
	e.Retryable = retryable
	return e
}

// SafeError returns a string safe for logging (no cause details).
func (e *OmegaError) SafeError() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *OmegaError) MarshalJSON() ([]byte, error) {
	type safeErr struct {
		Code          string            `json:"code"`
		Category      string            `json:"category"`
		Message       string            `json:"message"`
		Suggestion    string            `json:"suggestion,omitempty"`
		Deterministic bool              `json:"deterministic"`
		Context       map[string]string `json:"context,omitempty"`
		Timestamp     time.Time         `json:"timestamp"`
		Retryable     bool              `json:"retryable"`
	}
	return json.Marshal(safeErr{
		Code:          string(e.Code),
		Category:      e.Code.Category(),
		Message:       e.Message,
		Suggestion:    e.Suggestion,
		Deterministic: e.Deterministic,
		Context:       e.Context,
		Timestamp:     e.Timestamp,
		Retryable:     e.Retryable,
	})
}

// New creates a new OmegaError with the given code and message.
func New(code Code, message string) *OmegaError {
	return &OmegaError{
		Code:          code,
		Message:       message,
		Timestamp:     time.Now().UTC(),
		Retryable:     code.IsRetryable(),
		Deterministic: code.IsDeterministicFailure(),
	}
}

func Newf(code Code, format string, args ...interface{}) *OmegaError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with an OmegaError. If already an
// OmegaError, it is returned unchanged.
func Wrap(err error, code Code, message string) *OmegaError {
	if err == nil {
		return nil
	}
	if oe, ok := err.(*OmegaError); ok {
		return oe
	}
	return New(code, message).WithCause(err)
}

func Wrapf(err error, code Code, format string, args ...interface{}) *OmegaError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func IsOmegaError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*OmegaError)
	return ok
}

func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	if oe, ok := err.(*OmegaError); ok {
		return oe.Code
	}
	return CodeUnknown
}

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if oe, ok := err.(*OmegaError); ok {
		return oe.Retryable
	}
	return false
}
