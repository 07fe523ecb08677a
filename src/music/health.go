package music

import "time"

// HealthStatus is the per-file identification outcome.
type HealthStatus string

const (
	HealthOK            HealthStatus = "ok"
	HealthError         HealthStatus = "error"
	HealthNoMatch       HealthStatus = "no_match"
	HealthLowConfidence HealthStatus = "low_confidence"
	HealthUnknown       HealthStatus = "unknown"
)

// HealthErrorKind classifies why a health check failed.
type HealthErrorKind string

const (
	HealthErrDecode           HealthErrorKind = "decode_error"
	HealthErrEmptyFingerprint HealthErrorKind = "empty_fingerprint"
	HealthErrIO               HealthErrorKind = "io_error"
	HealthErrTimeout          HealthErrorKind = "timeout"
	HealthErrAPI              HealthErrorKind = "api_error"
)

// FileHealth is the lazily created per-path health record. A record is
// invalidated when the file's content hash changes.
//
// Invariants: Status == HealthError implies ErrorKind is non-empty;
// Status == HealthOK implies Confidence is non-nil.
type FileHealth struct {
	Path        string
	Status      HealthStatus
	ErrorKind   HealthErrorKind
	ErrorMsg    string
	Fingerprint string
	Confidence  *float64
	RecordingID string
	FileSize    int64
	ContentHash string
	CheckedAt   time.Time
}
