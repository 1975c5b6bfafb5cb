package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMethodLocal, cfg.Storage.Method)
	assert.Equal(t, "./models", cfg.Storage.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.NotEmpty(t, cfg.Database.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MODEL_STORAGE_METHOD", "s3")
	t.Setenv("MODEL_STORAGE_PATH", "/srv/models")
	t.Setenv("DATABASE_URL", "postgres://example/registry")
	t.Setenv("S3_BUCKET", "artifacts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMethodS3, cfg.Storage.Method)
	assert.Equal(t, "/srv/models", cfg.Storage.Path)
	assert.Equal(t, "postgres://example/registry", cfg.Database.URL)
	assert.Equal(t, "artifacts", cfg.Storage.S3.Bucket)
}

func TestLoad_UnsupportedStorageMethod(t *testing.T) {
	t.Setenv("MODEL_STORAGE_METHOD", "tape")

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrUnsupportedStorageMethod)
}
