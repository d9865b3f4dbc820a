package sweep

import (
	"time"
)

// Failure records a single per-object failure inside a bucket.
type Failure struct {
	// Key is the object key that failed.
	Key string

	// Reason is a human-readable failure description.
	Reason string
}

// BucketReport is the outcome of sweeping a single bucket.
type BucketReport struct {
	// Bucket is the bucket name.
	Bucket string

	// Namespace is the storage namespace the bucket belongs to.
	Namespace string

	// ObjectsListed is the number of objects enumerated in this bucket.
	ObjectsListed int64

	// ObjectsMatched is the number of objects the retention policy selected.
	ObjectsMatched int64

	// ObjectsDeleted is the number of objects deleted (or that were already
	// gone - idempotent delete). Zero in dry-run mode.
	ObjectsDeleted int64

	// Failures lists per-object failures. Deletes that failed for reasons
	// other than the object already being absent land here.
	Failures []Failure

	// Err notes a bucket-level enumeration failure. When set, the bucket
	// was not (fully) swept; counters reflect what happened before the
	// failure.
	Err error
}

// Failed returns true if the bucket's enumeration failed.
func (r *BucketReport) Failed() bool {
	return r.Err != nil
}

// Report is the outcome of an entire sweep run.
type Report struct {
	// Now is the snapshot time every retention decision was evaluated
	// against. Captured once, before the first predicate evaluation.
	Now time.Time

	// Buckets holds per-bucket outcomes in bucket listing order.
	Buckets []BucketReport

	// ObjectsListed is the total number of objects enumerated.
	ObjectsListed int64

	// ObjectsMatched is the total number of objects the policy selected.
	ObjectsMatched int64

	// ObjectsDeleted is the total number of objects deleted.
	ObjectsDeleted int64

	// ObjectsFailed is the total number of per-object failures.
	ObjectsFailed int64

	// Duration is the total time spent sweeping.
	Duration time.Duration

	// DryRun is true if no deletes were issued.
	DryRun bool
}
