package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
)

// VersionListFilter narrows a version listing. Zero-valued fields impose no
// constraint. Results are ordered by created_at ascending, version ascending.
type VersionListFilter struct {
	ModelName  string
	Creator    string
	Tag        string
	NamePrefix string
}

type ModelRepository interface {
	Create(ctx context.Context, model *domain.Model) error
	GetByName(ctx context.Context, name string) (*domain.Model, error)
	List(ctx context.Context) ([]*domain.Model, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type VersionRepository interface {
	// Create inserts the version row. A duplicate (model, version) pair is
	// reported as domain.ErrVersionConflict so the caller can re-allocate.
	Create(ctx context.Context, version *domain.ModelVersion) error
	MaxVersion(ctx context.Context, modelID uuid.UUID) (int, error)
	Get(ctx context.Context, modelID uuid.UUID, version int) (*domain.ModelVersion, error)
	Update(ctx context.Context, version *domain.ModelVersion) error
	Delete(ctx context.Context, modelID uuid.UUID, version int) error
	ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error)
	List(ctx context.Context, filter VersionListFilter) ([]*domain.ModelVersion, error)
}

type AliasRepository interface {
	// Upsert binds the alias to a version, replacing any previous binding of
	// the same alias name within the model.
	Upsert(ctx context.Context, alias *domain.Alias) error
	Get(ctx context.Context, modelID uuid.UUID, name string) (*domain.Alias, error)
}
