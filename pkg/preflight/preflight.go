// Package preflight runs capability checks before a sweep starts.
//
// A sweep that fails halfway through for a permission reason is worse than
// one that refuses to start: checks here surface missing list/delete
// capabilities up front and are recorded in the output stream.
package preflight

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/3leaps/gosweep/pkg/output"
	"github.com/3leaps/gosweep/pkg/storage"
)

// Mode defines how aggressive preflight checks are.
type Mode string

const (
	// ModePlanOnly performs no storage calls.
	ModePlanOnly Mode = "plan-only"

	// ModeReadSafe verifies listing works with a single one-bucket page.
	ModeReadSafe Mode = "read-safe"

	// ModeDeleteProbe additionally round-trips a put+delete of a scratch
	// object in the first visible bucket.
	ModeDeleteProbe Mode = "delete-probe"
)

// Spec controls how preflight checks are executed.
type Spec struct {
	Mode Mode

	// BucketPrefix narrows the probe listing, mirroring the sweep scope.
	BucketPrefix string

	// ProbeKey is the scratch object key for delete probes.
	// Default: ".gosweep-probe".
	ProbeKey string
}

// Capability names are stable strings used in JSONL output.
const (
	CapListBuckets  = "buckets.list"
	CapDeleteObject = "objects.delete"
)

// ErrProbeUnsupported indicates the client cannot perform a delete probe.
var ErrProbeUnsupported = errors.New("client does not support write probes")

// Sweep runs preflight checks for a sweep job.
//
// The returned record is always populated with whatever was checked; a
// non-nil error means the sweep should not proceed.
func Sweep(ctx context.Context, c storage.Client, spec Spec) (*output.PreflightRecord, error) {
	rec := &output.PreflightRecord{
		Mode:    string(spec.Mode),
		Results: []output.PreflightCheckResult{},
	}

	if spec.Mode == ModePlanOnly {
		return rec, nil
	}

	method := fmt.Sprintf("ListBuckets(prefix=%q,max=1)", spec.BucketPrefix)
	page, err := c.ListBuckets(ctx, storage.ListBucketsOptions{
		Prefix:     spec.BucketPrefix,
		MaxBuckets: 1,
	})
	if err != nil {
		rec.Results = append(rec.Results, output.PreflightCheckResult{
			Capability: CapListBuckets,
			Allowed:    false,
			Method:     method,
			ErrorCode:  normalizeErrorCode(err),
			Detail:     err.Error(),
		})
		return rec, err
	}
	rec.Results = append(rec.Results, output.PreflightCheckResult{
		Capability: CapListBuckets,
		Allowed:    true,
		Method:     method,
	})

	if spec.Mode != ModeDeleteProbe {
		return rec, nil
	}
	if len(page.Buckets) == 0 {
		// Nothing to probe against; the sweep itself will be a no-op.
		return rec, nil
	}

	return rec, deleteProbe(ctx, c, page.Buckets[0].Name, spec.ProbeKey, rec)
}

// deleteProbe puts and deletes a scratch object to verify delete permission.
func deleteProbe(ctx context.Context, c storage.Client, bucket, key string, rec *output.PreflightRecord) error {
	if key == "" {
		key = ".gosweep-probe"
	}

	putter, ok := c.(storage.ObjectPutter)
	if !ok {
		rec.Results = append(rec.Results, output.PreflightCheckResult{
			Capability: CapDeleteObject,
			Allowed:    false,
			Detail:     ErrProbeUnsupported.Error(),
		})
		return ErrProbeUnsupported
	}

	method := fmt.Sprintf("PutObject+DeleteObject(%s/%s)", bucket, key)
	if err := putter.PutObject(ctx, bucket, key, bytes.NewReader(nil), 0); err != nil {
		rec.Results = append(rec.Results, output.PreflightCheckResult{
			Capability: CapDeleteObject,
			Allowed:    false,
			Method:     method,
			ErrorCode:  normalizeErrorCode(err),
			Detail:     err.Error(),
		})
		return err
	}
	if err := c.DeleteObject(ctx, bucket, key); err != nil && !storage.IsNotFound(err) {
		rec.Results = append(rec.Results, output.PreflightCheckResult{
			Capability: CapDeleteObject,
			Allowed:    false,
			Method:     method,
			ErrorCode:  normalizeErrorCode(err),
			Detail:     err.Error(),
		})
		return err
	}

	rec.Results = append(rec.Results, output.PreflightCheckResult{
		Capability: CapDeleteObject,
		Allowed:    true,
		Method:     method,
	})
	return nil
}

func normalizeErrorCode(err error) string {
	switch {
	case storage.IsAccessDenied(err):
		return output.ErrCodeAccessDenied
	case storage.IsBucketNotFound(err), storage.IsNotFound(err):
		return output.ErrCodeNotFound
	case storage.IsThrottled(err):
		return output.ErrCodeThrottled
	case storage.IsUnavailable(err):
		return output.ErrCodeUnavailable
	default:
		return output.ErrCodeInternal
	}
}
