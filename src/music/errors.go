package music

import (
	"errors"
	"fmt"
)

// Flow-control and failure sentinels shared across the pipeline.
var (
	// ErrNoMatches means no candidate met the configured thresholds.
	// Surfaced as a distinct kind for flow control, not a real failure.
	ErrNoMatches = errors.New("no matches")

	// ErrRateLimited is returned when an external service answers 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrValidationFailed means a rewritten file did not re-parse as
	// audio; the original file was left untouched.
	ErrValidationFailed = errors.New("rewritten file failed validation")

	// ErrUnchanged means the operation was a no-op, e.g. cover art was
	// already present and only_if_missing was requested.
	ErrUnchanged = errors.New("unchanged")
)

// FingerprintError wraps fingerprint tool failures.
type FingerprintError struct {
	Msg string
	Err error
}

func (e *FingerprintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fingerprint: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("fingerprint: %s", e.Msg)
}

func (e *FingerprintError) Unwrap() error { return e.Err }

// APIError is a well-formed error answer from an external service.
type APIError struct {
	Msg string
}

func (e *APIError) Error() string { return fmt.Sprintf("api error: %s", e.Msg) }

// ContractViolationError means a service answered something its wire
// contract does not allow.
type ContractViolationError struct {
	Expected string
	Actual   string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("contract violation: expected %s, got %s", e.Expected, e.Actual)
}

// MetadataError is a per-file tag read/write failure.
type MetadataError struct {
	Path string
	Msg  string
	Err  error
}

func (e *MetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata %s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("metadata %s: %s", e.Path, e.Msg)
}

func (e *MetadataError) Unwrap() error { return e.Err }
