// Package filestore reads row files from object storage.
//
// Providers (currently MinIO / S3) implement Store; callers depend on this
// package only.
//
// Usage:
//
//	loc, ok, err := filestore.ParseLocation("s3://imports/users.yaml")
//	store, err := minio.New(ctx, filestore.ConfigFromEnv())
//	obj, err := store.GetObject(ctx, loc.Bucket, loc.Key)
//	defer obj.Close()
package filestore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/koustreak/warehouser/internal/errs"
)

// Scheme prefixes object locations, as in s3://bucket/key.
const Scheme = "s3://"

// Store is the interface every storage provider implements.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	Close() error

	// GetObject opens a streaming handle to the object at key inside bucket.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)
}

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	Key          string
	Size         int64 // -1 if unknown
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Object is a streaming handle to an object's content.
type Object interface {
	io.ReadCloser
	Info() *ObjectInfo
}

// Location names one object.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return Scheme + l.Bucket + "/" + l.Key
}

// ParseLocation splits "s3://bucket/key". ok is false when s is not an
// object location at all (a local path); a malformed one is an error.
func ParseLocation(s string) (loc Location, ok bool, err error) {
	rest, found := strings.CutPrefix(s, Scheme)
	if !found {
		return Location{}, false, nil
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Location{}, true, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("object location %q must look like %sbucket/key", s, Scheme))
	}
	return Location{Bucket: bucket, Key: key}, true, nil
}
