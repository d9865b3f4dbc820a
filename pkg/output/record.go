// Package output provides JSONL output for sweep results.
//
// Output is structured as typed record envelopes containing per-object
// outcomes, errors, and progress updates. Each line is a self-contained
// JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: gosweep.<type>.v<version>
const (
	// TypeDelete identifies per-object delete outcome records.
	TypeDelete = "gosweep.delete.v1"

	// TypeBucket identifies per-bucket outcome records.
	TypeBucket = "gosweep.bucket.v1"

	// TypeError identifies error records.
	TypeError = "gosweep.error.v1"

	// TypeProgress identifies progress update records.
	TypeProgress = "gosweep.progress.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "gosweep.summary.v1"

	// TypePreflight identifies preflight capability check records.
	TypePreflight = "gosweep.preflight.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific payload
// in the Data field. The type field determines how to interpret Data.
type Record struct {
	// Type identifies the record type (e.g., "gosweep.delete.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this sweep run.
	JobID string `json:"job_id"`

	// Client identifies the storage backend (e.g., "s3", "file").
	Client string `json:"client"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// DeleteRecord is the data payload for a single object outcome.
type DeleteRecord struct {
	// Bucket is the bucket the object lives in.
	Bucket string `json:"bucket"`

	// Key is the full object key.
	Key string `json:"key"`

	// Size is the object size in bytes.
	Size int64 `json:"size"`

	// TimeCreated is the object's creation timestamp.
	TimeCreated time.Time `json:"time_created"`

	// DryRun is true if the delete was only simulated.
	DryRun bool `json:"dry_run,omitempty"`

	// AlreadyGone is true if the object was missing at delete time.
	// Missing objects count as deleted (idempotent delete).
	AlreadyGone bool `json:"already_gone,omitempty"`
}

// BucketRecord is the data payload for a per-bucket outcome.
type BucketRecord struct {
	// Bucket is the bucket name.
	Bucket string `json:"bucket"`

	// Namespace is the storage namespace the bucket belongs to.
	Namespace string `json:"namespace,omitempty"`

	// ObjectsListed is the number of objects enumerated.
	ObjectsListed int64 `json:"objects_listed"`

	// ObjectsMatched is the number of objects the policy selected.
	ObjectsMatched int64 `json:"objects_matched"`

	// ObjectsDeleted is the number of objects actually deleted.
	ObjectsDeleted int64 `json:"objects_deleted"`

	// ObjectsFailed is the number of per-object failures.
	ObjectsFailed int64 `json:"objects_failed"`

	// Error notes a bucket-level enumeration failure, if any.
	Error string `json:"error,omitempty"`
}

// PreflightRecord is the data payload for preflight capability checks.
//
// Preflight records are emitted early, before the sweep starts. They provide
// an explicit contract for what was checked and whether the principal appears
// to have the required permissions.
type PreflightRecord struct {
	Mode    string                 `json:"mode"`
	Results []PreflightCheckResult `json:"results"`
}

// PreflightCheckResult is a single capability check result.
type PreflightCheckResult struct {
	Capability string `json:"capability"`
	Allowed    bool   `json:"allowed"`
	Method     string `json:"method,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorRecord is the data payload for errors.
//
// Errors are emitted as records rather than failing the entire sweep,
// allowing partial results when some operations fail.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Bucket is the bucket related to this error, if applicable.
	Bucket string `json:"bucket,omitempty"`

	// Key is the object key related to this error, if applicable.
	Key string `json:"key,omitempty"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeAccessDenied indicates permission failure.
	ErrCodeAccessDenied = "ACCESS_DENIED"

	// ErrCodeNotFound indicates the object or bucket was not found.
	ErrCodeNotFound = "NOT_FOUND"

	// ErrCodeThrottled indicates rate limiting.
	ErrCodeThrottled = "THROTTLED"

	// ErrCodeUnavailable indicates the backend was unavailable.
	ErrCodeUnavailable = "UNAVAILABLE"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "INTERNAL"
)

// ProgressRecord is the data payload for progress updates.
type ProgressRecord struct {
	// Phase indicates the current sweep phase.
	Phase string `json:"phase"`

	// Buckets is the number of buckets processed so far.
	Buckets int64 `json:"buckets"`

	// ObjectsListed is the total number of objects seen so far.
	ObjectsListed int64 `json:"objects_listed"`

	// ObjectsDeleted is the number of objects deleted so far.
	ObjectsDeleted int64 `json:"objects_deleted"`

	// Bucket is the bucket currently being swept, if applicable.
	Bucket string `json:"bucket,omitempty"`
}

// Progress phase constants.
const (
	// PhaseStarting indicates the sweep is initializing.
	PhaseStarting = "starting"

	// PhaseSweeping indicates buckets are being swept.
	PhaseSweeping = "sweeping"

	// PhaseComplete indicates the sweep has finished.
	PhaseComplete = "complete"
)

// SummaryRecord is the data payload for final summaries.
type SummaryRecord struct {
	// Now is the retention cutoff snapshot used for the whole run.
	Now time.Time `json:"now"`

	// Policy describes the retention policy applied.
	Policy string `json:"policy"`

	// Buckets is the number of buckets processed.
	Buckets int64 `json:"buckets"`

	// ObjectsListed is the total number of objects enumerated.
	ObjectsListed int64 `json:"objects_listed"`

	// ObjectsMatched is the number of objects the policy selected.
	ObjectsMatched int64 `json:"objects_matched"`

	// ObjectsDeleted is the number of objects deleted.
	ObjectsDeleted int64 `json:"objects_deleted"`

	// ObjectsFailed is the number of per-object failures.
	ObjectsFailed int64 `json:"objects_failed"`

	// Duration is the total sweep duration.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is a human-readable duration string.
	DurationHuman string `json:"duration"`

	// DryRun is true if no deletes were issued.
	DryRun bool `json:"dry_run,omitempty"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
