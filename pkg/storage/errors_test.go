package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageErrorMessage(t *testing.T) {
	err := &StorageError{Op: "DeleteObject", Client: ClientS3, Bucket: "b", Key: "k", Err: ErrNotFound}
	assert.Equal(t, "s3 DeleteObject: b/k: object not found", err.Error())

	err = &StorageError{Op: "ListObjects", Client: ClientS3, Bucket: "b", Err: ErrAccessDenied}
	assert.Equal(t, "s3 ListObjects: b: access denied", err.Error())

	err = &StorageError{Op: "ListBuckets", Client: ClientFile, Err: ErrUnavailable}
	assert.Equal(t, "file ListBuckets: storage unavailable", err.Error())
}

func TestStorageErrorUnwrap(t *testing.T) {
	wrapped := &StorageError{Op: "DeleteObject", Err: ErrNotFound}

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, IsAccessDenied(wrapped))
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
	}{
		{"not found", ErrNotFound, IsNotFound},
		{"bucket not found", ErrBucketNotFound, IsBucketNotFound},
		{"access denied", ErrAccessDenied, IsAccessDenied},
		{"invalid credentials", ErrInvalidCredentials, IsInvalidCredentials},
		{"unavailable", ErrUnavailable, IsUnavailable},
		{"throttled", ErrThrottled, IsThrottled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.checker(&StorageError{Op: "op", Err: tt.err}))
			assert.False(t, tt.checker(errors.New("unrelated")))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&StorageError{Err: ErrThrottled}))
	assert.True(t, IsTransient(&StorageError{Err: ErrUnavailable}))
	assert.True(t, IsTransient(context.DeadlineExceeded))

	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(&StorageError{Err: ErrAccessDenied}))
	assert.False(t, IsTransient(&StorageError{Err: ErrNotFound}))
	assert.False(t, IsTransient(errors.New("unknown")))
}
