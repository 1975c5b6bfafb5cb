package testutil

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
)

// MockModelRepo is a mock of ModelRepository.
type MockModelRepo struct {
	mock.Mock
}

func (m *MockModelRepo) Create(ctx context.Context, model *domain.Model) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelRepo) GetByName(ctx context.Context, name string) (*domain.Model, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}

func (m *MockModelRepo) List(ctx context.Context) ([]*domain.Model, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Model), args.Error(1)
}

func (m *MockModelRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockModelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVersionRepo is a mock of VersionRepository.
type MockVersionRepo struct {
	mock.Mock
}

func (m *MockVersionRepo) Create(ctx context.Context, version *domain.ModelVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockVersionRepo) MaxVersion(ctx context.Context, modelID uuid.UUID) (int, error) {
	args := m.Called(ctx, modelID)
	return args.Int(0), args.Error(1)
}

func (m *MockVersionRepo) Get(ctx context.Context, modelID uuid.UUID, version int) (*domain.ModelVersion, error) {
	args := m.Called(ctx, modelID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModelVersion), args.Error(1)
}

func (m *MockVersionRepo) Update(ctx context.Context, version *domain.ModelVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockVersionRepo) Delete(ctx context.Context, modelID uuid.UUID, version int) error {
	args := m.Called(ctx, modelID, version)
	return args.Error(0)
}

func (m *MockVersionRepo) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	args := m.Called(ctx, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ModelVersion), args.Error(1)
}

func (m *MockVersionRepo) List(ctx context.Context, filter ports.VersionListFilter) ([]*domain.ModelVersion, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ModelVersion), args.Error(1)
}

// MockAliasRepo is a mock of AliasRepository.
type MockAliasRepo struct {
	mock.Mock
}

func (m *MockAliasRepo) Upsert(ctx context.Context, alias *domain.Alias) error {
	args := m.Called(ctx, alias)
	return args.Error(0)
}

func (m *MockAliasRepo) Get(ctx context.Context, modelID uuid.UUID, name string) (*domain.Alias, error) {
	args := m.Called(ctx, modelID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Alias), args.Error(1)
}

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Put(ctx context.Context, r io.Reader, size int64) (string, error) {
	args := m.Called(ctx, r, size)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockArtifactStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
