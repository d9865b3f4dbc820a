package s3

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/3leaps/gosweep/pkg/storage"
)

// Client implements storage.Client for AWS S3 and S3-compatible storage.
type Client struct {
	api       *s3.Client
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

// New creates a new S3 client with the given configuration.
//
// The client uses AWS SDK v2's default credential chain unless explicit
// credentials are provided in the config.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, &storage.StorageError{
			Op:     "New",
			Client: storage.ClientS3,
			Err:    err,
		}
	}

	// Build S3 client options
	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}

	// Custom endpoint for S3-compatible stores
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	api := s3.NewFromConfig(awsCfg, s3Opts...)

	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}

	return &Client{
		api:       api,
		namespace: cfg.Namespace,
		maxKeys:   maxKeys,
	}, nil
}

// loadAWSConfig builds the AWS configuration with appropriate credentials.
func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	// Only apply explicit region if user set one in config.
	// Let SDK resolve from env/profile first.
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	// Use explicit credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		staticCreds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for long-term credentials)
		)
		opts = append(opts, config.WithCredentialsProvider(staticCreds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	awsCfg.Region = resolveRegion(cfg.Region, cfg.Endpoint, awsCfg.Region)

	return awsCfg, nil
}

// ListBuckets returns a page of buckets visible to the credentials in use.
func (c *Client) ListBuckets(ctx context.Context, opts storage.ListBucketsOptions) (*storage.BucketPage, error) {
	input := &s3.ListBucketsInput{}

	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	if opts.ContinuationToken != "" {
		input.ContinuationToken = aws.String(opts.ContinuationToken)
	}
	if opts.MaxBuckets > 0 {
		input.MaxBuckets = aws.Int32(int32(opts.MaxBuckets))
	}

	output, err := c.api.ListBuckets(ctx, input)
	if err != nil {
		return nil, c.wrapError("ListBuckets", "", "", err)
	}

	buckets := make([]storage.Bucket, 0, len(output.Buckets))
	for _, b := range output.Buckets {
		buckets = append(buckets, storage.Bucket{
			Name:        aws.ToString(b.Name),
			Namespace:   c.namespace,
			TimeCreated: aws.ToTime(b.CreationDate),
		})
	}

	page := &storage.BucketPage{Buckets: buckets}
	if output.ContinuationToken != nil {
		page.ContinuationToken = *output.ContinuationToken
		page.IsTruncated = true
	}

	return page, nil
}

// ListObjects returns a page of objects in the given bucket.
func (c *Client) ListObjects(ctx context.Context, bucket string, opts storage.ListObjectsOptions) (*storage.ObjectPage, error) {
	maxKeys := clampMaxKeys(opts.MaxKeys, c.maxKeys)

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(int32(maxKeys)),
	}

	if opts.Prefix != "" {
		input.Prefix = aws.String(opts.Prefix)
	}
	if opts.ContinuationToken != "" {
		input.ContinuationToken = aws.String(opts.ContinuationToken)
	}

	output, err := c.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, c.wrapError("ListObjects", bucket, "", err)
	}

	objects := make([]storage.ObjectSummary, 0, len(output.Contents))
	for _, obj := range output.Contents {
		objects = append(objects, storage.ObjectSummary{
			Key:         aws.ToString(obj.Key),
			Size:        aws.ToInt64(obj.Size),
			ETag:        cleanETag(aws.ToString(obj.ETag)),
			TimeCreated: aws.ToTime(obj.LastModified),
		})
	}

	page := &storage.ObjectPage{
		Objects:     objects,
		IsTruncated: aws.ToBool(output.IsTruncated),
	}
	if output.NextContinuationToken != nil {
		page.ContinuationToken = *output.NextContinuationToken
	}

	return page, nil
}

// DeleteObject deletes a single object.
//
// S3 DeleteObject succeeds for missing keys, so idempotent delete semantics
// come for free here; other backends surface ErrNotFound instead.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return c.wrapError("DeleteObject", bucket, key, err)
	}
	return nil
}

// PutObject uploads an object.
//
// This is used by bootstrap seeding and delete-probe preflight.
func (c *Client) PutObject(ctx context.Context, bucket, key string, body io.Reader, contentLength int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: &contentLength,
	}

	_, err := c.api.PutObject(ctx, input)
	if err != nil {
		return c.wrapError("PutObject", bucket, key, err)
	}
	return nil
}

// CreateBucket creates a bucket.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}

	// us-east-1 is the only region that rejects an explicit location constraint.
	if region := c.api.Options().Region; region != "" && region != DefaultAWSRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	_, err := c.api.CreateBucket(ctx, input)
	if err != nil {
		return c.wrapError("CreateBucket", bucket, "", err)
	}
	return nil
}

// RemoveBucket removes an empty bucket.
func (c *Client) RemoveBucket(ctx context.Context, bucket string) error {
	_, err := c.api.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return c.wrapError("RemoveBucket", bucket, "", err)
	}
	return nil
}

// Close releases any resources held by the client.
// The S3 client doesn't require explicit cleanup, but this satisfies the interface.
func (c *Client) Close() error {
	return nil
}

// wrapError converts S3 errors to storage errors with appropriate sentinel errors.
func (c *Client) wrapError(op, bucket, key string, err error) error {
	wrapped := &storage.StorageError{
		Op:     op,
		Client: storage.ClientS3,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}

	// Check for specific S3 error types first
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket

	switch {
	case errors.As(err, &notFound), errors.As(err, &noSuchKey):
		wrapped.Err = storage.ErrNotFound
		return wrapped
	case errors.As(err, &noSuchBucket):
		wrapped.Err = storage.ErrBucketNotFound
		return wrapped
	}

	// Check smithy API errors for error codes
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "NoSuchKey", "NotFound":
			wrapped.Err = storage.ErrNotFound
		case "NoSuchBucket":
			wrapped.Err = storage.ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			wrapped.Err = storage.ErrAccessDenied
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			wrapped.Err = storage.ErrInvalidCredentials
		case "SlowDown", "Throttling", "RequestLimitExceeded":
			wrapped.Err = storage.ErrThrottled
		case "ServiceUnavailable", "InternalError":
			wrapped.Err = storage.ErrUnavailable
		}
		return wrapped
	}

	// Fallback: check error message for common cases
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "NoSuchKey") || strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "404"):
		wrapped.Err = storage.ErrNotFound
	case strings.Contains(errMsg, "NoSuchBucket"):
		wrapped.Err = storage.ErrBucketNotFound
	case strings.Contains(errMsg, "AccessDenied") || strings.Contains(errMsg, "Forbidden") || strings.Contains(errMsg, "403"):
		wrapped.Err = storage.ErrAccessDenied
	case strings.Contains(errMsg, "InvalidAccessKeyId") || strings.Contains(errMsg, "SignatureDoesNotMatch"):
		wrapped.Err = storage.ErrInvalidCredentials
	case strings.Contains(errMsg, "SlowDown") || strings.Contains(errMsg, "Throttling") || strings.Contains(errMsg, "429"):
		wrapped.Err = storage.ErrThrottled
	case strings.Contains(errMsg, "ServiceUnavailable") || strings.Contains(errMsg, "503"):
		wrapped.Err = storage.ErrUnavailable
	}

	return wrapped
}

// cleanETag removes surrounding quotes from an ETag value.
// S3 returns ETags with quotes, e.g., "d41d8cd98f00b204e9800998ecf8427e".
func cleanETag(etag string) string {
	return strings.Trim(etag, "\"")
}

// clampMaxKeys applies defaults and limits to maxKeys values.
// If requested is <= 0, uses clientDefault. Result is clamped to MaxAllowedKeys.
func clampMaxKeys(requested, clientDefault int) int {
	if requested <= 0 {
		requested = clientDefault
	}
	if requested > MaxAllowedKeys {
		return MaxAllowedKeys
	}
	return requested
}

// resolveRegion determines the final region to use after SDK config loading.
//
// The sdkRegion parameter is the region after SDK loading, which already
// incorporates explicit cfgRegion (if set) or env/profile resolution.
// This function only applies the fallback default:
//   - If sdkRegion is still empty AND no custom endpoint, default to us-east-1
//   - For S3-compatible stores (endpoint set), no defaulting occurs
func resolveRegion(cfgRegion, endpoint, sdkRegion string) string {
	_ = cfgRegion // already folded into sdkRegion by the SDK

	if sdkRegion != "" {
		return sdkRegion
	}

	// Only default for AWS S3 (no custom endpoint)
	if endpoint == "" {
		return DefaultAWSRegion
	}

	// S3-compatible: no default, endpoint may not need region
	return ""
}
