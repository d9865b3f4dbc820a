// Package storage defines abstractions for cloud object storage sweep
// operations.
//
// Clients implement a minimal surface area focused on listing buckets,
// listing objects, and deleting objects. Authentication uses SDK default
// credential chains - clients should not implement custom auth logic.
package storage

import (
	"context"
	"time"
)

// Client abstracts the storage operations a sweep needs.
//
// Implementations should:
//   - Use SDK default credential chains (AWS default config, instance roles)
//   - Support pagination via continuation tokens
//   - Be safe for concurrent use
type Client interface {
	// ListBuckets returns a page of buckets visible under the configured
	// namespace and compartment. Use ContinuationToken from BucketPage
	// for subsequent pages.
	ListBuckets(ctx context.Context, opts ListBucketsOptions) (*BucketPage, error)

	// ListObjects returns a page of objects in the given bucket.
	// Use ContinuationToken from ObjectPage for subsequent pages.
	ListObjects(ctx context.Context, bucket string, opts ListObjectsOptions) (*ObjectPage, error)

	// DeleteObject removes a single object.
	// Returns ErrNotFound if the object does not exist.
	DeleteObject(ctx context.Context, bucket, key string) error

	// Close releases any resources held by the client.
	Close() error
}

// ListBucketsOptions configures a ListBuckets operation.
type ListBucketsOptions struct {
	// Prefix filters results to bucket names starting with this value.
	// Empty string lists all buckets.
	Prefix string

	// ContinuationToken resumes listing from a previous BucketPage.
	// Empty string starts from the beginning.
	ContinuationToken string

	// MaxBuckets limits the number of buckets returned per page.
	// Zero uses the client default.
	MaxBuckets int
}

// ListObjectsOptions configures a ListObjects operation.
type ListObjectsOptions struct {
	// Prefix filters results to keys starting with this value.
	Prefix string

	// ContinuationToken resumes listing from a previous ObjectPage.
	ContinuationToken string

	// MaxKeys limits the number of objects returned per page.
	// Zero uses the client default (typically 1000).
	MaxKeys int
}

// BucketPage contains a page of buckets from a ListBuckets operation.
type BucketPage struct {
	// Buckets contains the bucket summaries for this page.
	Buckets []Bucket

	// ContinuationToken is used to retrieve the next page.
	// Empty string indicates no more pages.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// ObjectPage contains a page of objects from a ListObjects operation.
type ObjectPage struct {
	// Objects contains the object summaries for this page.
	Objects []ObjectSummary

	// ContinuationToken is used to retrieve the next page.
	// Empty string indicates no more pages.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// Bucket identifies a bucket within a storage namespace.
type Bucket struct {
	// Name is the bucket name, unique within the namespace.
	Name string

	// Namespace is the top-level storage scope the bucket lives under.
	Namespace string

	// TimeCreated is when the bucket was created, if the backend reports it.
	TimeCreated time.Time
}

// ObjectSummary contains basic metadata returned from ListObjects.
type ObjectSummary struct {
	// Key is the full object key (path) in the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag, typically an MD5 hash of the object.
	ETag string

	// TimeCreated is the object creation (or last-modified) timestamp.
	// Backends that only track modification time report that instead;
	// for sweep purposes the two are interchangeable.
	TimeCreated time.Time
}

// ClientType identifies a storage backend.
type ClientType string

const (
	// ClientS3 represents AWS S3 or S3-compatible storage.
	ClientS3 ClientType = "s3"

	// ClientFile represents a local filesystem backend.
	ClientFile ClientType = "file"
)

// String returns the string representation of the client type.
func (c ClientType) String() string {
	return string(c)
}
