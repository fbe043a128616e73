package storage

import (
	"context"
	"io"
	"time"

	"docvault/internal/apperr"
)

// DefaultPresignExpiry applies when the gateway is built with a non-positive expiry.
const DefaultPresignExpiry = time.Hour

// Gateway is the domain-facing view of object storage. Every failure comes back as an
// apperr Storage error.
type Gateway struct {
	store  Storage
	expiry time.Duration
}

// NewGateway wraps a Storage with the presigned URL lifetime.
func NewGateway(s Storage, expiry time.Duration) *Gateway {
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &Gateway{store: s, expiry: expiry}
}

// Expiry is the lifetime of URLs issued by PresignedDownloadURL.
func (g *Gateway) Expiry() time.Duration {
	return g.expiry
}

// Store streams size bytes from r to path.
func (g *Gateway) Store(ctx context.Context, r io.Reader, path, contentType string, size int64) error {
	info, err := g.store.Put(ctx, path, r, PutObjectOptions{Size: size, ContentType: contentType})
	if err != nil {
		return apperr.Storage("failed to upload file to storage", err)
	}
	if size >= 0 && info.Size != size {
		return apperr.Storage("failed to upload file to storage", errShortWrite{want: size, got: info.Size})
	}
	return nil
}

// PresignedDownloadURL returns a time-limited GET URL for path.
func (g *Gateway) PresignedDownloadURL(ctx context.Context, path string) (string, error) {
	u, err := g.store.PresignGet(ctx, path, g.expiry)
	if err != nil {
		return "", apperr.Storage("failed to generate download URL", err)
	}
	if u == "" {
		return "", apperr.Storage("failed to generate download URL", errEmptyURL)
	}
	return u, nil
}

// Remove deletes the object at path.
func (g *Gateway) Remove(ctx context.Context, path string) error {
	if err := g.store.Delete(ctx, path); err != nil {
		return apperr.Storage("failed to remove object", err)
	}
	return nil
}

// Stat returns the current metadata of the object at path.
func (g *Gateway) Stat(ctx context.Context, path string) (ObjectInfo, error) {
	info, err := g.store.Stat(ctx, path)
	if err != nil {
		return ObjectInfo{}, apperr.Storage("failed to read object metadata", err)
	}
	return info, nil
}

// List returns the objects stored under prefix.
func (g *Gateway) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objs, err := g.store.List(ctx, prefix)
	if err != nil {
		return nil, apperr.Storage("failed to list objects", err)
	}
	return objs, nil
}
