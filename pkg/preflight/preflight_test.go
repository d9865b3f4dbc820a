package preflight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gosweep/pkg/output"
	"github.com/3leaps/gosweep/pkg/storage"
	"github.com/3leaps/gosweep/pkg/storage/file"
)

func newFileClient(t *testing.T, buckets ...string) *file.Client {
	t.Helper()
	c, err := file.New(file.Config{BaseDir: t.TempDir(), Namespace: "ns"})
	require.NoError(t, err)
	for _, b := range buckets {
		require.NoError(t, c.CreateBucket(context.Background(), b))
	}
	return c
}

func TestSweepPlanOnly(t *testing.T) {
	// Plan-only must not touch storage: a client with no buckets works too,
	// but use a nil-safe failing client to prove no calls are made.
	rec, err := Sweep(context.Background(), failingClient{}, Spec{Mode: ModePlanOnly})
	require.NoError(t, err)
	assert.Equal(t, "plan-only", rec.Mode)
	assert.Empty(t, rec.Results)
}

func TestSweepReadSafe(t *testing.T) {
	c := newFileClient(t, "tmp-a")

	rec, err := Sweep(context.Background(), c, Spec{Mode: ModeReadSafe})
	require.NoError(t, err)
	require.Len(t, rec.Results, 1)
	assert.Equal(t, CapListBuckets, rec.Results[0].Capability)
	assert.True(t, rec.Results[0].Allowed)
}

func TestSweepReadSafeFailure(t *testing.T) {
	rec, err := Sweep(context.Background(), failingClient{}, Spec{Mode: ModeReadSafe})
	require.Error(t, err)
	require.Len(t, rec.Results, 1)
	assert.False(t, rec.Results[0].Allowed)
	assert.Equal(t, output.ErrCodeAccessDenied, rec.Results[0].ErrorCode)
}

func TestSweepDeleteProbe(t *testing.T) {
	c := newFileClient(t, "tmp-a")

	rec, err := Sweep(context.Background(), c, Spec{Mode: ModeDeleteProbe})
	require.NoError(t, err)
	require.Len(t, rec.Results, 2)
	assert.Equal(t, CapDeleteObject, rec.Results[1].Capability)
	assert.True(t, rec.Results[1].Allowed)

	// The scratch object must not survive the probe.
	page, err := c.ListObjects(context.Background(), "tmp-a", storage.ListObjectsOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Objects)
}

func TestSweepDeleteProbeNoBuckets(t *testing.T) {
	c := newFileClient(t)

	rec, err := Sweep(context.Background(), c, Spec{Mode: ModeDeleteProbe})
	require.NoError(t, err)
	require.Len(t, rec.Results, 1)
	assert.Equal(t, CapListBuckets, rec.Results[0].Capability)
}

func TestSweepDeleteProbeUnsupported(t *testing.T) {
	rec, err := Sweep(context.Background(), readOnlyClient{newFileClient(t, "tmp-a")}, Spec{Mode: ModeDeleteProbe})
	assert.ErrorIs(t, err, ErrProbeUnsupported)
	require.Len(t, rec.Results, 2)
	assert.False(t, rec.Results[1].Allowed)
}

// failingClient denies every operation.
type failingClient struct{}

func (failingClient) ListBuckets(ctx context.Context, opts storage.ListBucketsOptions) (*storage.BucketPage, error) {
	return nil, &storage.StorageError{Op: "ListBuckets", Err: storage.ErrAccessDenied}
}

func (failingClient) ListObjects(ctx context.Context, bucket string, opts storage.ListObjectsOptions) (*storage.ObjectPage, error) {
	return nil, &storage.StorageError{Op: "ListObjects", Bucket: bucket, Err: storage.ErrAccessDenied}
}

func (failingClient) DeleteObject(ctx context.Context, bucket, key string) error {
	return &storage.StorageError{Op: "DeleteObject", Bucket: bucket, Key: key, Err: storage.ErrAccessDenied}
}

func (failingClient) Close() error { return nil }

// readOnlyClient hides the write capabilities of the wrapped client.
type readOnlyClient struct {
	c *file.Client
}

func (r readOnlyClient) ListBuckets(ctx context.Context, opts storage.ListBucketsOptions) (*storage.BucketPage, error) {
	return r.c.ListBuckets(ctx, opts)
}

func (r readOnlyClient) ListObjects(ctx context.Context, bucket string, opts storage.ListObjectsOptions) (*storage.ObjectPage, error) {
	return r.c.ListObjects(ctx, bucket, opts)
}

func (r readOnlyClient) DeleteObject(ctx context.Context, bucket, key string) error {
	return r.c.DeleteObject(ctx, bucket, key)
}

func (r readOnlyClient) Close() error { return r.c.Close() }
