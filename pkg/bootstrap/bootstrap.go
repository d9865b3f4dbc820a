// Package bootstrap creates and tears down sample sweep fixtures.
//
// Seeding brackets a demo or smoke-test sweep: create a sample bucket,
// populate it with objects of staggered ages, run the sweep, then tear the
// bucket down. The sweep engine itself assumes buckets already exist;
// everything here is collaborator-level scaffolding.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/3leaps/gosweep/pkg/storage"
)

// SeedObject describes one object to create in the sample bucket.
type SeedObject struct {
	// Key is the object key.
	Key string

	// Age is how old the object should appear relative to seeding time.
	// Only honored by backends implementing storage.ObjectTimeSetter;
	// elsewhere objects carry their true creation time.
	Age time.Duration

	// Body is the object content. Empty is fine.
	Body string
}

// DefaultSeedObjects returns a spread of ages around a one-day boundary.
func DefaultSeedObjects() []SeedObject {
	return []SeedObject{
		{Key: "fresh/report.csv", Age: 10 * time.Minute, Body: "fresh"},
		{Key: "fresh/snapshot.json", Age: 2 * time.Hour, Body: "recent"},
		{Key: "aged/archive.tar", Age: 30 * time.Hour, Body: "aged"},
		{Key: "aged/backup.db", Age: 72 * time.Hour, Body: "old"},
	}
}

// Seed creates the bucket and populates it with the given objects.
//
// The client must implement storage.BucketCreator and storage.ObjectPutter.
// Ages are applied when the client supports backdating; otherwise they are
// silently skipped and objects carry the seeding time.
func Seed(ctx context.Context, c storage.Client, bucket string, objects []SeedObject) error {
	creator, ok := c.(storage.BucketCreator)
	if !ok {
		return fmt.Errorf("client cannot create buckets")
	}
	putter, ok := c.(storage.ObjectPutter)
	if !ok {
		return fmt.Errorf("client cannot put objects")
	}

	if err := creator.CreateBucket(ctx, bucket); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	timeSetter, canBackdate := c.(storage.ObjectTimeSetter)
	now := time.Now().UTC()

	for _, obj := range objects {
		body := strings.NewReader(obj.Body)
		if err := putter.PutObject(ctx, bucket, obj.Key, body, int64(len(obj.Body))); err != nil {
			return fmt.Errorf("seed %s/%s: %w", bucket, obj.Key, err)
		}
		if canBackdate && obj.Age > 0 {
			if err := timeSetter.SetObjectTime(ctx, bucket, obj.Key, now.Add(-obj.Age)); err != nil {
				return fmt.Errorf("backdate %s/%s: %w", bucket, obj.Key, err)
			}
		}
	}

	return nil
}

// Teardown deletes every object in the bucket and removes the bucket.
//
// Objects already gone are ignored, so Teardown is safe to run after a sweep
// has deleted part of the bucket.
func Teardown(ctx context.Context, c storage.Client, bucket string) error {
	remover, ok := c.(storage.BucketRemover)
	if !ok {
		return fmt.Errorf("client cannot remove buckets")
	}

	var token string
	for {
		page, err := c.ListObjects(ctx, bucket, storage.ListObjectsOptions{ContinuationToken: token})
		if err != nil {
			if storage.IsBucketNotFound(err) {
				return nil
			}
			return fmt.Errorf("list %s: %w", bucket, err)
		}

		for _, obj := range page.Objects {
			if err := c.DeleteObject(ctx, bucket, obj.Key); err != nil && !storage.IsNotFound(err) {
				return fmt.Errorf("delete %s/%s: %w", bucket, obj.Key, err)
			}
		}

		if !page.IsTruncated || page.ContinuationToken == "" {
			break
		}
		token = page.ContinuationToken
	}

	if err := remover.RemoveBucket(ctx, bucket); err != nil && !storage.IsBucketNotFound(err) {
		return fmt.Errorf("remove bucket %s: %w", bucket, err)
	}
	return nil
}
