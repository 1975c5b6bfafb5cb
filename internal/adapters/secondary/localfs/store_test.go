package localfs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
)

func TestStore_PutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key, err := store.Put(context.Background(), bytes.NewReader([]byte("abc")), 3)
	require.NoError(t, err)
	require.NotEmpty(t, key)

	rc, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)
}

func TestStore_DistinctKeys(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	k1, err := store.Put(context.Background(), bytes.NewReader([]byte("a")), 1)
	require.NoError(t, err)
	k2, err := store.Put(context.Background(), bytes.NewReader([]byte("a")), 1)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestStore_GetUnknownKey(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestStore_Delete(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key, err := store.Put(context.Background(), bytes.NewReader([]byte("abc")), 3)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), key))

	_, err = store.Get(context.Background(), key)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	err = store.Delete(context.Background(), key)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestNew_BadRoot(t *testing.T) {
	_, err := New("/proc/no-permission-here")
	assert.ErrorIs(t, err, domain.ErrStorageWrite)
}
