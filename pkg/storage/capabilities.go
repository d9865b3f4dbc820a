package storage

import (
	"context"
	"io"
	"time"
)

// Optional client capability interfaces.
//
// These interfaces are used for feature detection (type assertions). The core
// Client interface remains intentionally small; only the bootstrap and
// preflight paths need write access.

// BucketCreator can create buckets.
type BucketCreator interface {
	CreateBucket(ctx context.Context, bucket string) error
}

// BucketRemover can remove empty buckets.
type BucketRemover interface {
	RemoveBucket(ctx context.Context, bucket string) error
}

// ObjectPutter can create/overwrite objects.
//
// This is used by bootstrap seeding and delete-probe preflight operations.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, key string, body io.Reader, contentLength int64) error
}

// ObjectTimeSetter can backdate an object's creation timestamp.
//
// Object stores stamp creation time server-side, so only backends that own
// their timestamps (the file client) can implement this. Bootstrap seeding
// uses it to create objects with staggered ages.
type ObjectTimeSetter interface {
	SetObjectTime(ctx context.Context, bucket, key string, t time.Time) error
}
