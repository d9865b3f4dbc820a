package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gosweep/pkg/storage"
	"github.com/3leaps/gosweep/pkg/storage/file"
)

func newFileClient(t *testing.T) *file.Client {
	t.Helper()
	c, err := file.New(file.Config{BaseDir: t.TempDir(), Namespace: "ns"})
	require.NoError(t, err)
	return c
}

func TestSeedCreatesBackdatedObjects(t *testing.T) {
	ctx := context.Background()
	c := newFileClient(t)

	require.NoError(t, Seed(ctx, c, "gosweep-sample", DefaultSeedObjects()))

	page, err := c.ListObjects(ctx, "gosweep-sample", storage.ListObjectsOptions{})
	require.NoError(t, err)
	require.Len(t, page.Objects, 4)

	byKey := make(map[string]storage.ObjectSummary, len(page.Objects))
	for _, o := range page.Objects {
		byKey[o.Key] = o
	}

	now := time.Now().UTC()
	archive, ok := byKey["aged/archive.tar"]
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(-30*time.Hour), archive.TimeCreated, time.Minute)

	report, ok := byKey["fresh/report.csv"]
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(-10*time.Minute), report.TimeCreated, time.Minute)
}

func TestSeedIdempotent(t *testing.T) {
	ctx := context.Background()
	c := newFileClient(t)
	objs := []SeedObject{{Key: "one", Age: time.Hour, Body: "a"}}

	require.NoError(t, Seed(ctx, c, "b", objs))
	require.NoError(t, Seed(ctx, c, "b", objs))

	page, err := c.ListObjects(ctx, "b", storage.ListObjectsOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Objects, 1)
}

func TestTeardown(t *testing.T) {
	ctx := context.Background()
	c := newFileClient(t)
	require.NoError(t, Seed(ctx, c, "b", DefaultSeedObjects()))

	require.NoError(t, Teardown(ctx, c, "b"))

	_, err := c.ListObjects(ctx, "b", storage.ListObjectsOptions{})
	assert.True(t, storage.IsBucketNotFound(err))
}

func TestTeardownMissingBucket(t *testing.T) {
	c := newFileClient(t)
	assert.NoError(t, Teardown(context.Background(), c, "never-existed"))
}
