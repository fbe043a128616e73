// Package storage holds the document object store: a backend-neutral Storage interface,
// its MinIO implementation, and the Gateway the service layer talks to.
package storage

import (
	"context"
	"io"
	"time"
)

// PutObjectOptions describe an upload. Size -1 means unknown and lets the backend chunk.
type PutObjectOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo is what the backend reports about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is the subset of an S3-compatible API that documents need.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// Stat reports the current state of one object.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// PresignGet returns a credential-free GET URL valid for expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// List walks every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
