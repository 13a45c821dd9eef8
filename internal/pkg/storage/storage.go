package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrObjectNotFound is returned when the bucket has no object under the key.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrInvalidLocation is returned by ParseLocation for malformed locations.
	ErrInvalidLocation = errors.New("storage: invalid object location")
)

// Storage is a read-only view over an object store.
type Storage interface {
	io.Closer

	// GetObject opens the object for reading. The caller closes the reader.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	// StatObject returns object metadata without reading its contents.
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	// Bucket is the bucket name.
	Bucket string
	// Key is the object key.
	Key string
	// Size is the object size in bytes.
	Size int64
	// ETag is the object ETag when provided.
	ETag string
	// ContentType is the object MIME type.
	ContentType string
	// Metadata is user-defined metadata.
	Metadata map[string]string
	// UpdatedAt is the last modified time.
	UpdatedAt time.Time
}

// ParseLocation splits "bucket/key/with/slashes" into its bucket and key.
// A location without a slash is a key in defaultBucket.
func ParseLocation(location, defaultBucket string) (bucket, key string, err error) {
	location = strings.TrimPrefix(strings.TrimSpace(location), "/")
	if location == "" {
		return "", "", ErrInvalidLocation
	}

	bucket, key, found := strings.Cut(location, "/")
	if !found {
		bucket, key = defaultBucket, location
	}
	if bucket == "" || key == "" {
		return "", "", ErrInvalidLocation
	}

	return bucket, key, nil
}
