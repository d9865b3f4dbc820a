package file

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gosweep/pkg/storage"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Config{BaseDir: t.TempDir(), Namespace: "test-ns"})
	require.NoError(t, err)
	return c
}

func put(t *testing.T, c *Client, bucket, key, body string) {
	t.Helper()
	require.NoError(t, c.PutObject(context.Background(), bucket, key, strings.NewReader(body), int64(len(body))))
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Namespace: "ns"}.Validate())
	assert.Error(t, Config{BaseDir: "/tmp/x"}.Validate())
	assert.NoError(t, Config{BaseDir: "/tmp/x", Namespace: "ns"}.Validate())
}

func TestListBuckets(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for _, b := range []string{"tmp-b", "tmp-a", "prod-data"} {
		require.NoError(t, c.CreateBucket(ctx, b))
	}

	page, err := c.ListBuckets(ctx, storage.ListBucketsOptions{})
	require.NoError(t, err)
	require.Len(t, page.Buckets, 3)
	assert.Equal(t, "prod-data", page.Buckets[0].Name)
	assert.Equal(t, "tmp-a", page.Buckets[1].Name)
	assert.Equal(t, "test-ns", page.Buckets[0].Namespace)
	assert.False(t, page.IsTruncated)
}

func TestListBucketsPrefix(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for _, b := range []string{"tmp-b", "tmp-a", "prod-data"} {
		require.NoError(t, c.CreateBucket(ctx, b))
	}

	page, err := c.ListBuckets(ctx, storage.ListBucketsOptions{Prefix: "tmp-"})
	require.NoError(t, err)
	require.Len(t, page.Buckets, 2)
	assert.Equal(t, "tmp-a", page.Buckets[0].Name)
	assert.Equal(t, "tmp-b", page.Buckets[1].Name)
}

func TestListBucketsPagination(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	names := []string{"b1", "b2", "b3", "b4", "b5"}
	for _, b := range names {
		require.NoError(t, c.CreateBucket(ctx, b))
	}

	var got []string
	var token string
	for {
		page, err := c.ListBuckets(ctx, storage.ListBucketsOptions{MaxBuckets: 2, ContinuationToken: token})
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Buckets), 2)
		for _, b := range page.Buckets {
			got = append(got, b.Name)
		}
		if !page.IsTruncated {
			break
		}
		token = page.ContinuationToken
	}
	assert.Equal(t, names, got)
}

func TestListObjects(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	require.NoError(t, c.CreateBucket(ctx, "b"))
	put(t, c, "b", "fresh/report.csv", "data")
	put(t, c, "b", "aged/archive.tar", "bytes")

	page, err := c.ListObjects(ctx, "b", storage.ListObjectsOptions{})
	require.NoError(t, err)
	require.Len(t, page.Objects, 2)
	assert.Equal(t, "aged/archive.tar", page.Objects[0].Key)
	assert.Equal(t, "fresh/report.csv", page.Objects[1].Key)
	assert.Equal(t, int64(5), page.Objects[0].Size)
	assert.False(t, page.Objects[0].TimeCreated.IsZero())
}

func TestListObjectsPagination(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	require.NoError(t, c.CreateBucket(ctx, "b"))

	want := []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7"}
	for _, k := range want {
		put(t, c, "b", k, "x")
	}

	var got []string
	var token string
	for {
		page, err := c.ListObjects(ctx, "b", storage.ListObjectsOptions{MaxKeys: 3, ContinuationToken: token})
		require.NoError(t, err)
		for _, o := range page.Objects {
			got = append(got, o.Key)
		}
		if !page.IsTruncated {
			break
		}
		token = page.ContinuationToken
	}
	assert.Equal(t, want, got)
}

func TestListObjectsPrefix(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	require.NoError(t, c.CreateBucket(ctx, "b"))
	put(t, c, "b", "logs/a.log", "x")
	put(t, c, "b", "data/a.db", "x")

	page, err := c.ListObjects(ctx, "b", storage.ListObjectsOptions{Prefix: "logs/"})
	require.NoError(t, err)
	require.Len(t, page.Objects, 1)
	assert.Equal(t, "logs/a.log", page.Objects[0].Key)
}

func TestListObjectsMissingBucket(t *testing.T) {
	c := newTestClient(t)
	_, err := c.ListObjects(context.Background(), "nope", storage.ListObjectsOptions{})
	assert.True(t, storage.IsBucketNotFound(err))
}

func TestDeleteObject(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	require.NoError(t, c.CreateBucket(ctx, "b"))
	put(t, c, "b", "victim", "x")

	require.NoError(t, c.DeleteObject(ctx, "b", "victim"))

	page, err := c.ListObjects(ctx, "b", storage.ListObjectsOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Objects)

	err = c.DeleteObject(ctx, "b", "victim")
	assert.True(t, storage.IsNotFound(err))
}

func TestSetObjectTime(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	require.NoError(t, c.CreateBucket(ctx, "b"))
	put(t, c, "b", "aged", "x")

	backdated := time.Now().UTC().Add(-30 * time.Hour).Truncate(time.Second)
	require.NoError(t, c.SetObjectTime(ctx, "b", "aged", backdated))

	page, err := c.ListObjects(ctx, "b", storage.ListObjectsOptions{})
	require.NoError(t, err)
	require.Len(t, page.Objects, 1)
	assert.WithinDuration(t, backdated, page.Objects[0].TimeCreated, time.Second)

	err = c.SetObjectTime(ctx, "b", "missing", backdated)
	assert.True(t, storage.IsNotFound(err))
}

func TestRemoveBucket(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	require.NoError(t, c.CreateBucket(ctx, "b"))
	put(t, c, "b", "leftover", "x")

	require.NoError(t, c.RemoveBucket(ctx, "b"))
	err := c.RemoveBucket(ctx, "b")
	assert.True(t, storage.IsBucketNotFound(err))
}

func TestPathEscapeRejected(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	require.NoError(t, c.CreateBucket(ctx, "b"))

	assert.Error(t, c.DeleteObject(ctx, "b", "../outside"))
	assert.Error(t, c.DeleteObject(ctx, "../b", "key"))
	assert.Error(t, c.CreateBucket(ctx, "a/b"))
	assert.Error(t, c.PutObject(ctx, "b", "../../etc/passwd", strings.NewReader("x"), 1))
}

func TestStartAfterToken(t *testing.T) {
	sorted := []string{"a", "b", "c", "d"}

	assert.Equal(t, 0, startAfterToken(sorted, ""))
	assert.Equal(t, 2, startAfterToken(sorted, "b"))
	assert.Equal(t, 4, startAfterToken(sorted, "d"))
	assert.Equal(t, 2, startAfterToken(sorted, "bb"), "token between entries resumes at next key")
}
