// Package sweep implements the retention sweep engine.
//
// A sweep is a fixed three-stage pipeline:
//   - enumerate buckets visible under the configured namespace, draining
//     pagination fully before proceeding
//   - per bucket, enumerate objects with their creation timestamps
//   - evaluate the retention policy per object and delete matches
//
// The snapshot time is captured once at the start of the run, so every
// predicate evaluation across all buckets uses one consistent cutoff.
// Buckets are swept by a bounded worker pool; a failure in one bucket never
// aborts the others. Only a failure to obtain the initial bucket listing is
// fatal.
package sweep

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/3leaps/gosweep/pkg/match"
	"github.com/3leaps/gosweep/pkg/output"
	"github.com/3leaps/gosweep/pkg/retention"
	"github.com/3leaps/gosweep/pkg/storage"
)

// Config configures sweep behavior.
type Config struct {
	// Concurrency is the number of buckets swept in parallel.
	// Default: 4
	Concurrency int

	// RateLimit is the maximum storage requests per second across the
	// whole run. Zero means unlimited (backend handles its own throttling).
	// Default: 0
	RateLimit float64

	// MaxRetries is the maximum number of attempts for a single storage
	// call that fails transiently (throttling, temporary unavailability).
	// Default: 4
	MaxRetries uint

	// BucketPrefix restricts bucket enumeration to names with this prefix.
	// This is the compartment-style scope narrowing; finer filtering goes
	// through the bucket matcher.
	BucketPrefix string

	// ProgressEvery controls how often progress records are emitted.
	// A progress record is written every N deleted objects. Zero uses the
	// default; a negative value disables progress records entirely.
	// Default: 1000
	ProgressEvery int

	// DryRun evaluates and reports matches without issuing deletes.
	DryRun bool
}

// DefaultConfig returns the default sweep configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency:   4,
		MaxRetries:    4,
		ProgressEvery: 1000,
	}
}

// Sweeper executes a retention sweep against a storage client.
//
// Sweeper is safe for single use only. Create a new Sweeper for each run.
type Sweeper struct {
	client storage.Client
	policy retention.Policy
	writer output.Writer
	config Config
	jobID  string

	buckets *match.Matcher // optional bucket name filter
	keys    *match.Matcher // optional object key filter

	// Rate limiter (nil if unlimited)
	limiter *rate.Limiter

	// Atomic counters for progress reporting
	bucketsDone    atomic.Int64
	objectsListed  atomic.Int64
	objectsDeleted atomic.Int64
}

// New creates a new sweeper.
//
// Parameters:
//   - c: Storage client for listing and deleting
//   - policy: Retention predicate deciding deletion eligibility
//   - w: Writer for JSONL output
//   - jobID: Correlation ID for this run
//   - cfg: Sweep configuration (use DefaultConfig() as base)
func New(c storage.Client, policy retention.Policy, w output.Writer, jobID string, cfg Config) *Sweeper {
	// Apply defaults for zero values
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.ProgressEvery == 0 {
		cfg.ProgressEvery = DefaultConfig().ProgressEvery
	}

	s := &Sweeper{
		client: c,
		policy: policy,
		writer: w,
		config: cfg,
		jobID:  jobID,
	}

	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return s
}

// WithBucketMatcher restricts the sweep to buckets matching m.
// Returns the sweeper for method chaining.
func (s *Sweeper) WithBucketMatcher(m *match.Matcher) *Sweeper {
	s.buckets = m
	return s
}

// WithKeyMatcher restricts deletion candidates to keys matching m.
// Returns the sweeper for method chaining.
func (s *Sweeper) WithKeyMatcher(m *match.Matcher) *Sweeper {
	s.keys = m
	return s
}

// Run executes the sweep and returns the report.
//
// Run blocks until the sweep completes or the context is cancelled.
// Cancellation is graceful: no new storage calls are issued, in-flight
// calls finish, and the partial report accumulated so far is returned
// alongside the context error.
//
// The only fatal error is failing to obtain the initial bucket listing;
// every other failure is recorded in the report and the sweep continues.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	// Single retention cutoff for the whole run. Captured before any
	// predicate evaluation, never re-read mid-sweep.
	now := time.Now().UTC()

	// Best effort, like every record write below. Only the bucket listing
	// failure is fatal.
	_ = s.writeProgress(ctx, output.PhaseStarting, "")

	buckets, err := s.listBuckets(ctx)
	if err != nil {
		// Nothing to act on.
		return nil, err
	}

	report := &Report{
		Now:     now,
		Buckets: make([]BucketReport, len(buckets)),
		DryRun:  s.config.DryRun,
	}

	s.sweepBuckets(ctx, now, buckets, report.Buckets)

	for i := range report.Buckets {
		br := &report.Buckets[i]
		report.ObjectsListed += br.ObjectsListed
		report.ObjectsMatched += br.ObjectsMatched
		report.ObjectsDeleted += br.ObjectsDeleted
		report.ObjectsFailed += int64(len(br.Failures))
		s.writeBucketRecord(ctx, br)
	}
	report.Duration = time.Since(start)

	_ = s.writeProgress(ctx, output.PhaseComplete, "")
	if err := s.writeSummary(ctx, report); err != nil {
		return report, err
	}

	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	return report, nil
}

// listBuckets drains the paginated bucket listing, applying the prefix scope
// and the optional bucket matcher. Failure here is the one fatal sweep error.
func (s *Sweeper) listBuckets(ctx context.Context) ([]storage.Bucket, error) {
	var buckets []storage.Bucket
	var token string

	for {
		if err := s.waitForRateLimit(ctx); err != nil {
			return nil, err
		}

		page, err := withRetry(ctx, s.config.MaxRetries, func() (*storage.BucketPage, error) {
			return s.client.ListBuckets(ctx, storage.ListBucketsOptions{
				Prefix:            s.config.BucketPrefix,
				ContinuationToken: token,
			})
		})
		if err != nil {
			return nil, err
		}

		for _, b := range page.Buckets {
			if s.buckets != nil && !s.buckets.Match(b.Name) {
				continue
			}
			buckets = append(buckets, b)
		}

		if !page.IsTruncated || page.ContinuationToken == "" {
			return buckets, nil
		}
		token = page.ContinuationToken
	}
}

// sweepBuckets sweeps all buckets with bounded concurrency, writing each
// outcome into reports at the bucket's listing position.
func (s *Sweeper) sweepBuckets(ctx context.Context, now time.Time, buckets []storage.Bucket, reports []BucketReport) {
	sem := make(chan struct{}, s.config.Concurrency)
	var wg sync.WaitGroup

	for i, b := range buckets {
		reports[i] = BucketReport{Bucket: b.Name, Namespace: b.Namespace}

		// Acquire semaphore or bail on cancellation.
		select {
		case <-ctx.Done():
			reports[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}
		if err := ctx.Err(); err != nil {
			<-sem
			reports[i].Err = err
			continue
		}

		wg.Add(1)
		go func(b storage.Bucket, rep *BucketReport) {
			defer wg.Done()
			defer func() { <-sem }()

			s.sweepBucket(ctx, now, b, rep)
			s.bucketsDone.Add(1)
		}(b, &reports[i])
	}

	wg.Wait()
}

// sweepBucket enumerates one bucket's objects page by page, evaluating the
// retention policy and deleting matches as each page arrives.
func (s *Sweeper) sweepBucket(ctx context.Context, now time.Time, b storage.Bucket, rep *BucketReport) {
	var token string

	for {
		if err := ctx.Err(); err != nil {
			rep.Err = err
			return
		}
		if err := s.waitForRateLimit(ctx); err != nil {
			rep.Err = err
			return
		}

		page, err := withRetry(ctx, s.config.MaxRetries, func() (*storage.ObjectPage, error) {
			return s.client.ListObjects(ctx, b.Name, storage.ListObjectsOptions{
				ContinuationToken: token,
			})
		})
		if err != nil {
			// Bucket-level enumeration failure: record and move on.
			rep.Err = err
			s.writeError(ctx, errorCode(err), err.Error(), b.Name, "")
			return
		}

		for _, obj := range page.Objects {
			if ctx.Err() != nil {
				rep.Err = ctx.Err()
				return
			}

			if s.keys != nil && !s.keys.Match(obj.Key) {
				continue
			}
			rep.ObjectsListed++
			s.objectsListed.Add(1)

			if !s.policy.Eligible(now, obj.TimeCreated) {
				continue
			}
			rep.ObjectsMatched++

			s.deleteObject(ctx, b.Name, obj, rep)
		}

		if !page.IsTruncated || page.ContinuationToken == "" {
			return
		}
		token = page.ContinuationToken
	}
}

// deleteObject issues a single delete, honoring dry-run and idempotent
// delete semantics. Failures are recorded in the report, never returned.
func (s *Sweeper) deleteObject(ctx context.Context, bucket string, obj storage.ObjectSummary, rep *BucketReport) {
	rec := &output.DeleteRecord{
		Bucket:      bucket,
		Key:         obj.Key,
		Size:        obj.Size,
		TimeCreated: obj.TimeCreated,
	}

	if s.config.DryRun {
		rec.DryRun = true
		_ = s.writer.WriteDelete(ctx, rec)
		return
	}

	if err := s.waitForRateLimit(ctx); err != nil {
		rep.Failures = append(rep.Failures, Failure{Key: obj.Key, Reason: err.Error()})
		return
	}

	_, err := withRetry(ctx, s.config.MaxRetries, func() (struct{}, error) {
		return struct{}{}, s.client.DeleteObject(ctx, bucket, obj.Key)
	})
	switch {
	case err == nil:
		rep.ObjectsDeleted++
	case storage.IsNotFound(err):
		// Already absent counts as deleted.
		rec.AlreadyGone = true
		rep.ObjectsDeleted++
	default:
		rep.Failures = append(rep.Failures, Failure{Key: obj.Key, Reason: err.Error()})
		s.writeError(ctx, errorCode(err), err.Error(), bucket, obj.Key)
		return
	}

	_ = s.writer.WriteDelete(ctx, rec)

	n := s.objectsDeleted.Add(1)
	if s.config.ProgressEvery > 0 && n%int64(s.config.ProgressEvery) == 0 {
		_ = s.writeProgress(ctx, output.PhaseSweeping, bucket)
	}
}

// withRetry retries op with exponential backoff for transient errors.
// Non-transient errors and context cancellation stop immediately.
func withRetry[T any](ctx context.Context, maxTries uint, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !storage.IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(maxTries))
}

// waitForRateLimit blocks until the rate limiter allows a request.
// Returns immediately if rate limiting is disabled.
func (s *Sweeper) waitForRateLimit(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// writeProgress emits a progress record. No-op when progress is disabled.
func (s *Sweeper) writeProgress(ctx context.Context, phase, bucket string) error {
	if s.config.ProgressEvery < 0 {
		return nil
	}
	return s.writer.WriteProgress(ctx, &output.ProgressRecord{
		Phase:          phase,
		Buckets:        s.bucketsDone.Load(),
		ObjectsListed:  s.objectsListed.Load(),
		ObjectsDeleted: s.objectsDeleted.Load(),
		Bucket:         bucket,
	})
}

// writeBucketRecord emits a per-bucket outcome record.
func (s *Sweeper) writeBucketRecord(ctx context.Context, br *BucketReport) {
	rec := &output.BucketRecord{
		Bucket:         br.Bucket,
		Namespace:      br.Namespace,
		ObjectsListed:  br.ObjectsListed,
		ObjectsMatched: br.ObjectsMatched,
		ObjectsDeleted: br.ObjectsDeleted,
		ObjectsFailed:  int64(len(br.Failures)),
	}
	if br.Err != nil {
		rec.Error = br.Err.Error()
	}
	// Best effort - the report is the source of truth.
	_ = s.writer.WriteBucket(ctx, rec)
}

// writeSummary emits the final summary record.
func (s *Sweeper) writeSummary(ctx context.Context, r *Report) error {
	return s.writer.WriteSummary(ctx, &output.SummaryRecord{
		Now:            r.Now,
		Policy:         s.policy.String(),
		Buckets:        int64(len(r.Buckets)),
		ObjectsListed:  r.ObjectsListed,
		ObjectsMatched: r.ObjectsMatched,
		ObjectsDeleted: r.ObjectsDeleted,
		ObjectsFailed:  r.ObjectsFailed,
		Duration:       r.Duration,
		DurationHuman:  r.Duration.Round(time.Millisecond).String(),
		DryRun:         r.DryRun,
	})
}

// writeError emits an error record. Best effort.
func (s *Sweeper) writeError(ctx context.Context, code, message, bucket, key string) {
	_ = s.writer.WriteError(ctx, &output.ErrorRecord{
		Code:    code,
		Message: message,
		Bucket:  bucket,
		Key:     key,
	})
}

// errorCode maps a storage error to a machine-readable record code.
func errorCode(err error) string {
	switch {
	case storage.IsAccessDenied(err):
		return output.ErrCodeAccessDenied
	case storage.IsNotFound(err), storage.IsBucketNotFound(err):
		return output.ErrCodeNotFound
	case storage.IsThrottled(err):
		return output.ErrCodeThrottled
	case storage.IsUnavailable(err):
		return output.ErrCodeUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return output.ErrCodeInternal
	default:
		return output.ErrCodeInternal
	}
}
