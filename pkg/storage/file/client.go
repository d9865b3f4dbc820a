// Package file implements the storage client interface for local
// filesystem trees.
//
// Each immediate subdirectory of BaseDir is treated as a bucket, and files
// below a bucket directory are its objects (keys are slash-separated relative
// paths). File modification time stands in for the creation timestamp.
//
// This client exists for local runs and tests; sweeping a directory tree of
// ageing artifacts is also a legitimate production use.
package file

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/3leaps/gosweep/pkg/storage"
)

// Client implements storage.Client over a local directory.
type Client struct {
	baseDir   string
	namespace string
	maxKeys   int
}

// Ensure Client implements the interfaces.
var (
	_ storage.Client        = (*Client)(nil)
	_ storage.BucketCreator = (*Client)(nil)
	_ storage.BucketRemover = (*Client)(nil)
	_ storage.ObjectPutter  = (*Client)(nil)
)

// Config configures a file storage client.
type Config struct {
	// BaseDir is the directory whose subdirectories are treated as buckets.
	BaseDir string

	// Namespace is the logical namespace reported for buckets. Required.
	Namespace string

	// MaxKeys is the default page size. Zero uses 1000.
	MaxKeys int
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base dir is required")
	}
	if strings.TrimSpace(c.Namespace) == "" {
		return fmt.Errorf("namespace is required")
	}
	return nil
}

// New creates a file storage client rooted at cfg.BaseDir.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}
	return &Client{
		baseDir:   filepath.Clean(cfg.BaseDir),
		namespace: cfg.Namespace,
		maxKeys:   maxKeys,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error { return nil }

// ListBuckets returns a page of bucket directories under BaseDir.
func (c *Client) ListBuckets(ctx context.Context, opts storage.ListBucketsOptions) (*storage.BucketPage, error) {
	_ = ctx
	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		return nil, c.wrapError("ListBuckets", "", "", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if opts.Prefix != "" && !strings.HasPrefix(e.Name(), opts.Prefix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	maxBuckets := opts.MaxBuckets
	if maxBuckets <= 0 {
		maxBuckets = c.maxKeys
	}

	start := startAfterToken(names, opts.ContinuationToken)
	end := min(start+maxBuckets, len(names))

	buckets := make([]storage.Bucket, 0, end-start)
	for _, name := range names[start:end] {
		b := storage.Bucket{Name: name, Namespace: c.namespace}
		if info, err := os.Stat(filepath.Join(c.baseDir, name)); err == nil {
			b.TimeCreated = info.ModTime().UTC()
		}
		buckets = append(buckets, b)
	}

	page := &storage.BucketPage{Buckets: buckets}
	if end < len(names) {
		page.ContinuationToken = names[end-1]
		page.IsTruncated = true
	}
	return page, nil
}

// ListObjects returns a page of files under the bucket directory.
func (c *Client) ListObjects(ctx context.Context, bucket string, opts storage.ListObjectsOptions) (*storage.ObjectPage, error) {
	_ = ctx
	dir, err := c.bucketPath(bucket)
	if err != nil {
		return nil, c.wrapError("ListObjects", bucket, "", err)
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, &storage.StorageError{Op: "ListObjects", Client: storage.ClientFile, Bucket: bucket, Err: storage.ErrBucketNotFound}
		}
		return nil, c.wrapError("ListObjects", bucket, "", err)
	}

	keys, err := collectKeys(dir, opts.Prefix)
	if err != nil {
		return nil, c.wrapError("ListObjects", bucket, "", err)
	}
	sort.Strings(keys)

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = c.maxKeys
	}

	start := startAfterToken(keys, opts.ContinuationToken)
	end := min(start+maxKeys, len(keys))

	objects := make([]storage.ObjectSummary, 0, end-start)
	for _, key := range keys[start:end] {
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
		if err != nil {
			// Deleted between walk and stat; skip.
			continue
		}
		objects = append(objects, storage.ObjectSummary{
			Key:         key,
			Size:        info.Size(),
			TimeCreated: info.ModTime().UTC(),
		})
	}

	page := &storage.ObjectPage{Objects: objects}
	if end < len(keys) {
		page.ContinuationToken = keys[end-1]
		page.IsTruncated = true
	}
	return page, nil
}

// DeleteObject removes a file. Missing files surface as ErrNotFound.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_ = ctx
	full, err := c.objectPath(bucket, key)
	if err != nil {
		return c.wrapError("DeleteObject", bucket, key, err)
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return &storage.StorageError{Op: "DeleteObject", Client: storage.ClientFile, Bucket: bucket, Key: key, Err: storage.ErrNotFound}
		}
		if os.IsPermission(err) {
			return &storage.StorageError{Op: "DeleteObject", Client: storage.ClientFile, Bucket: bucket, Key: key, Err: storage.ErrAccessDenied}
		}
		return c.wrapError("DeleteObject", bucket, key, err)
	}
	return nil
}

// PutObject writes a file under the bucket directory, creating parents.
func (c *Client) PutObject(ctx context.Context, bucket, key string, body io.Reader, contentLength int64) error {
	_ = ctx
	_ = contentLength
	full, err := c.objectPath(bucket, key)
	if err != nil {
		return c.wrapError("PutObject", bucket, key, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return c.wrapError("PutObject", bucket, key, err)
	}
	f, err := os.Create(full)
	if err != nil {
		return c.wrapError("PutObject", bucket, key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return c.wrapError("PutObject", bucket, key, err)
	}
	if err := f.Close(); err != nil {
		return c.wrapError("PutObject", bucket, key, err)
	}
	return nil
}

// SetObjectTime backdates an object's timestamp.
//
// Bootstrap seeding uses this to create objects with staggered ages.
func (c *Client) SetObjectTime(ctx context.Context, bucket, key string, t time.Time) error {
	_ = ctx
	full, err := c.objectPath(bucket, key)
	if err != nil {
		return c.wrapError("SetObjectTime", bucket, key, err)
	}
	if err := os.Chtimes(full, t, t); err != nil {
		if os.IsNotExist(err) {
			return &storage.StorageError{Op: "SetObjectTime", Client: storage.ClientFile, Bucket: bucket, Key: key, Err: storage.ErrNotFound}
		}
		return c.wrapError("SetObjectTime", bucket, key, err)
	}
	return nil
}

// CreateBucket creates a bucket directory.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	_ = ctx
	dir, err := c.bucketPath(bucket)
	if err != nil {
		return c.wrapError("CreateBucket", bucket, "", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return c.wrapError("CreateBucket", bucket, "", err)
	}
	return nil
}

// RemoveBucket removes a bucket directory and anything left inside it.
func (c *Client) RemoveBucket(ctx context.Context, bucket string) error {
	_ = ctx
	dir, err := c.bucketPath(bucket)
	if err != nil {
		return c.wrapError("RemoveBucket", bucket, "", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &storage.StorageError{Op: "RemoveBucket", Client: storage.ClientFile, Bucket: bucket, Err: storage.ErrBucketNotFound}
	}
	if err := os.RemoveAll(dir); err != nil {
		return c.wrapError("RemoveBucket", bucket, "", err)
	}
	return nil
}

// bucketPath resolves a bucket directory, rejecting path escapes.
func (c *Client) bucketPath(bucket string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("invalid bucket name %q", bucket)
	}
	return filepath.Join(c.baseDir, bucket), nil
}

// objectPath resolves an object path under a bucket, rejecting path escapes.
func (c *Client) objectPath(bucket, key string) (string, error) {
	dir, err := c.bucketPath(bucket)
	if err != nil {
		return "", err
	}
	key = strings.TrimPrefix(key, "/")
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(dir, clean), nil
}

// collectKeys walks the bucket directory and returns slash-separated keys.
func collectKeys(dir, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// startAfterToken returns the index of the first entry strictly after token.
func startAfterToken(sorted []string, token string) int {
	if token == "" {
		return 0
	}
	idx := sort.SearchStrings(sorted, token)
	for idx < len(sorted) && sorted[idx] <= token {
		idx++
	}
	return idx
}

func (c *Client) wrapError(op, bucket, key string, err error) error {
	return &storage.StorageError{
		Op:     op,
		Client: storage.ClientFile,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}
