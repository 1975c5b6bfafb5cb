package ports

import (
	"context"
	"io"
)

// ArtifactStore persists model artifact bytes under an opaque key. The key is
// generated by the store; callers record it and never interpret it. A store
// must be durable before Put returns, so a recorded key always resolves.
type ArtifactStore interface {
	Put(ctx context.Context, r io.Reader, size int64) (key string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
