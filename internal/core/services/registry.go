package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
)

// maxAllocationRetries bounds the optimistic version-allocation loop. Each
// retry re-reads the current max version, so losing the race more times than
// this means the model is under pathological write contention.
const maxAllocationRetries = 5

// RegistryService implements the registry operations over the repository and
// artifact-store ports.
type RegistryService struct {
	models   ports.ModelRepository
	versions ports.VersionRepository
	aliases  ports.AliasRepository
	store    ports.ArtifactStore
}

func NewRegistryService(models ports.ModelRepository, versions ports.VersionRepository, aliases ports.AliasRepository, store ports.ArtifactStore) *RegistryService {
	return &RegistryService{models: models, versions: versions, aliases: aliases, store: store}
}

// RegisterVersion stores the artifact, creates the model row on first use and
// writes the version record with the next version number for the model.
//
// The artifact is written before any database row so a storage failure leaves
// no record behind; a database failure after the write removes the orphan
// artifact best-effort. Version numbers are allocated optimistically: read
// the current max, insert max+1 under the unique (model, version) constraint
// and retry on conflict, so concurrent registrants for one model still
// receive consecutive distinct numbers.
func (s *RegistryService) RegisterVersion(ctx context.Context, modelName, creator, description string, params map[string]any, metrics map[string]float64, tags []string, artifact io.Reader, size int64) (*domain.ModelVersion, error) {
	if modelName == "" {
		return nil, domain.ErrInvalidModelName
	}
	if artifact == nil || size == 0 {
		return nil, domain.ErrEmptyArtifact
	}

	key, err := s.store.Put(ctx, artifact, size)
	if err != nil {
		return nil, err
	}

	version, err := s.registerStored(ctx, modelName, creator, description, params, metrics, tags, key)
	if err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, err
	}
	return version, nil
}

func (s *RegistryService) registerStored(ctx context.Context, modelName, creator, description string, params map[string]any, metrics map[string]float64, tags []string, key string) (*domain.ModelVersion, error) {
	model, err := s.getOrCreateModel(ctx, modelName, creator)
	if err != nil {
		return nil, err
	}

	if params == nil {
		params = make(map[string]any)
	}
	if metrics == nil {
		metrics = make(map[string]float64)
	}
	if tags == nil {
		tags = []string{}
	}

	for attempt := 0; attempt < maxAllocationRetries; attempt++ {
		max, err := s.versions.MaxVersion(ctx, model.ID)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		version := &domain.ModelVersion{
			ID:          uuid.New(),
			ModelID:     model.ID,
			ModelName:   model.Name,
			Version:     max + 1,
			Parameters:  params,
			Metrics:     metrics,
			Tags:        tags,
			Description: description,
			StorageKey:  key,
			CreatedBy:   creator,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err = s.versions.Create(ctx, version)
		if errors.Is(err, domain.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return version, nil
	}

	return nil, fmt.Errorf("allocate version for model %q: %w", modelName, domain.ErrVersionConflict)
}

func (s *RegistryService) getOrCreateModel(ctx context.Context, name, creator string) (*domain.Model, error) {
	model, err := s.models.GetByName(ctx, name)
	if err == nil {
		return model, nil
	}
	if !errors.Is(err, domain.ErrModelNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	model = &domain.Model{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: creator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.models.Create(ctx, model)
	if errors.Is(err, domain.ErrModelConflict) {
		// Lost the race to a concurrent registrant for the same name.
		return s.models.GetByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}

func (s *RegistryService) GetVersion(ctx context.Context, modelName string, version int) (*domain.ModelVersion, error) {
	model, err := s.models.GetByName(ctx, modelName)
	if err != nil {
		return nil, err
	}
	return s.versions.Get(ctx, model.ID, version)
}

// UpdateVersion applies the non-nil fields of the patch and bumps updated_at.
// The artifact and the version number are immutable.
func (s *RegistryService) UpdateVersion(ctx context.Context, modelName string, versionNumber int, patch domain.VersionPatch) (*domain.ModelVersion, error) {
	model, err := s.models.GetByName(ctx, modelName)
	if err != nil {
		return nil, err
	}
	version, err := s.versions.Get(ctx, model.ID, versionNumber)
	if err != nil {
		return nil, err
	}

	if patch.Parameters != nil {
		version.Parameters = patch.Parameters
	}
	if patch.Metrics != nil {
		version.Metrics = patch.Metrics
	}
	if patch.Tags != nil {
		version.Tags = patch.Tags
	}
	if patch.Description != nil {
		version.Description = *patch.Description
	}
	version.UpdatedAt = time.Now().UTC()

	if err := s.versions.Update(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// DeleteVersion removes the version record and any aliases bound to it, then
// deletes the artifact. A failed artifact delete is not surfaced: the record
// is already gone and the key is unreachable.
func (s *RegistryService) DeleteVersion(ctx context.Context, modelName string, versionNumber int) error {
	model, err := s.models.GetByName(ctx, modelName)
	if err != nil {
		return err
	}
	version, err := s.versions.Get(ctx, model.ID, versionNumber)
	if err != nil {
		return err
	}

	if err := s.versions.Delete(ctx, model.ID, versionNumber); err != nil {
		return err
	}
	_ = s.store.Delete(ctx, version.StorageKey)
	return nil
}

// SetAlias binds the alias to an existing version, overwriting any previous
// binding of the same alias within the model.
func (s *RegistryService) SetAlias(ctx context.Context, modelName, aliasName string, versionNumber int) (*domain.Alias, error) {
	model, err := s.models.GetByName(ctx, modelName)
	if err != nil {
		return nil, err
	}
	version, err := s.versions.Get(ctx, model.ID, versionNumber)
	if err != nil {
		return nil, err
	}

	alias := &domain.Alias{
		ID:        uuid.New(),
		ModelID:   model.ID,
		Name:      aliasName,
		VersionID: version.ID,
		Version:   version.Version,
	}
	if err := s.aliases.Upsert(ctx, alias); err != nil {
		return nil, err
	}
	return alias, nil
}

func (s *RegistryService) ResolveAlias(ctx context.Context, modelName, aliasName string) (*domain.ModelVersion, error) {
	model, err := s.models.GetByName(ctx, modelName)
	if err != nil {
		return nil, err
	}
	alias, err := s.aliases.Get(ctx, model.ID, aliasName)
	if err != nil {
		return nil, err
	}
	return s.versions.Get(ctx, model.ID, alias.Version)
}

func (s *RegistryService) ListVersions(ctx context.Context, filter ports.VersionListFilter) ([]*domain.ModelVersion, error) {
	return s.versions.List(ctx, filter)
}

// OpenArtifact returns the stored bytes of a version. The caller closes the
// reader.
func (s *RegistryService) OpenArtifact(ctx context.Context, modelName string, versionNumber int) (io.ReadCloser, *domain.ModelVersion, error) {
	version, err := s.GetVersion(ctx, modelName, versionNumber)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Get(ctx, version.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return rc, version, nil
}

func (s *RegistryService) GetModel(ctx context.Context, name string) (*domain.Model, error) {
	return s.models.GetByName(ctx, name)
}

func (s *RegistryService) ListModels(ctx context.Context) ([]*domain.Model, error) {
	return s.models.List(ctx)
}

func (s *RegistryService) CountModels(ctx context.Context) (int, error) {
	return s.models.Count(ctx)
}

// DeleteModel removes the model with all its versions and aliases, then
// deletes the stored artifacts.
func (s *RegistryService) DeleteModel(ctx context.Context, name string) error {
	model, err := s.models.GetByName(ctx, name)
	if err != nil {
		return err
	}
	versions, err := s.versions.ListByModel(ctx, model.ID)
	if err != nil {
		return err
	}

	if err := s.models.Delete(ctx, model.ID); err != nil {
		return err
	}
	for _, v := range versions {
		_ = s.store.Delete(ctx, v.StorageKey)
	}
	return nil
}

// ListModelVersions returns all versions of one model ordered by version
// number, for the model detail response.
func (s *RegistryService) ListModelVersions(ctx context.Context, name string) ([]*domain.ModelVersion, error) {
	model, err := s.models.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.versions.ListByModel(ctx, model.ID)
}
