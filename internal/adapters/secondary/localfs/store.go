package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
)

// Store keeps artifacts as flat files under a base directory, one file per
// key. Keys are generated UUIDs, so callers never collide and the layout
// stays opaque to them.
type Store struct {
	base string
}

func New(base string) (*Store, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create storage root: %v", domain.ErrStorageWrite, err)
	}
	return &Store{base: base}, nil
}

func (s *Store) Put(ctx context.Context, r io.Reader, size int64) (string, error) {
	key := uuid.NewString()
	path := filepath.Join(s.base, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	// The key must not become visible before the bytes are durable.
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	return key, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.base, filepath.Base(key)))
	if os.IsNotExist(err) {
		return nil, domain.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageRead, err)
	}
	return f, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.base, filepath.Base(key)))
	if os.IsNotExist(err) {
		return domain.ErrArtifactNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

var _ ports.ArtifactStore = (*Store)(nil)
