package port

import (
	"context"
	"io"
	"time"
)

// ObjectStorage persists receipt and attachment blobs under opaque keys.
// The bucket is an adapter concern; callers only ever hold keys.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
