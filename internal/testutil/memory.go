package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
)

// memoryState backs the in-memory repository fakes. It enforces the same
// uniqueness constraints as the Postgres schema (unique model name, unique
// (model, version), unique (model, alias)) and cascades alias deletion, so
// the allocation race and the cascade policy can be tested without a
// database.
type memoryState struct {
	mu       sync.Mutex
	models   map[uuid.UUID]*domain.Model
	byName   map[string]uuid.UUID
	versions map[uuid.UUID]map[int]*domain.ModelVersion
	aliases  map[uuid.UUID]map[string]*domain.Alias
}

// NewMemoryRepos returns repository fakes sharing one consistent state.
func NewMemoryRepos() (ports.ModelRepository, ports.VersionRepository, ports.AliasRepository) {
	s := &memoryState{
		models:   make(map[uuid.UUID]*domain.Model),
		byName:   make(map[string]uuid.UUID),
		versions: make(map[uuid.UUID]map[int]*domain.ModelVersion),
		aliases:  make(map[uuid.UUID]map[string]*domain.Alias),
	}
	return &memModelRepo{s}, &memVersionRepo{s}, &memAliasRepo{s}
}

type memModelRepo struct{ s *memoryState }

func (r *memModelRepo) Create(ctx context.Context, model *domain.Model) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.byName[model.Name]; ok {
		return domain.ErrModelConflict
	}
	m := *model
	r.s.models[m.ID] = &m
	r.s.byName[m.Name] = m.ID
	r.s.versions[m.ID] = make(map[int]*domain.ModelVersion)
	r.s.aliases[m.ID] = make(map[string]*domain.Alias)
	return nil
}

func (r *memModelRepo) GetByName(ctx context.Context, name string) (*domain.Model, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byName[name]
	if !ok {
		return nil, domain.ErrModelNotFound
	}
	m := *r.s.models[id]
	return &m, nil
}

func (r *memModelRepo) List(ctx context.Context) ([]*domain.Model, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var models []*domain.Model
	for _, m := range r.s.models {
		c := *m
		models = append(models, &c)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func (r *memModelRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.models), nil
}

func (r *memModelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.models[id]
	if !ok {
		return domain.ErrModelNotFound
	}
	delete(r.s.byName, m.Name)
	delete(r.s.models, id)
	delete(r.s.versions, id)
	delete(r.s.aliases, id)
	return nil
}

type memVersionRepo struct{ s *memoryState }

func (r *memVersionRepo) Create(ctx context.Context, version *domain.ModelVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byNumber, ok := r.s.versions[version.ModelID]
	if !ok {
		return domain.ErrModelNotFound
	}
	if _, exists := byNumber[version.Version]; exists {
		return domain.ErrVersionConflict
	}
	v := *version
	byNumber[v.Version] = &v
	return nil
}

func (r *memVersionRepo) MaxVersion(ctx context.Context, modelID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	max := 0
	for number := range r.s.versions[modelID] {
		if number > max {
			max = number
		}
	}
	return max, nil
}

func (r *memVersionRepo) Get(ctx context.Context, modelID uuid.UUID, version int) (*domain.ModelVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.versions[modelID][version]
	if !ok {
		return nil, domain.ErrVersionNotFound
	}
	c := *v
	return &c, nil
}

func (r *memVersionRepo) Update(ctx context.Context, version *domain.ModelVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.versions[version.ModelID][version.Version]
	if !ok || existing.ID != version.ID {
		return domain.ErrVersionNotFound
	}
	v := *version
	r.s.versions[version.ModelID][version.Version] = &v
	return nil
}

func (r *memVersionRepo) Delete(ctx context.Context, modelID uuid.UUID, version int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.versions[modelID][version]
	if !ok {
		return domain.ErrVersionNotFound
	}
	delete(r.s.versions[modelID], version)
	// Cascade, as the schema's ON DELETE CASCADE does.
	for name, alias := range r.s.aliases[modelID] {
		if alias.VersionID == v.ID {
			delete(r.s.aliases[modelID], name)
		}
	}
	return nil
}

func (r *memVersionRepo) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var versions []*domain.ModelVersion
	for _, v := range r.s.versions[modelID] {
		c := *v
		versions = append(versions, &c)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
	return versions, nil
}

func (r *memVersionRepo) List(ctx context.Context, filter ports.VersionListFilter) ([]*domain.ModelVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var versions []*domain.ModelVersion
	for modelID, byNumber := range r.s.versions {
		model := r.s.models[modelID]
		for _, v := range byNumber {
			if filter.ModelName != "" && model.Name != filter.ModelName {
				continue
			}
			if filter.Creator != "" && v.CreatedBy != filter.Creator {
				continue
			}
			if filter.Tag != "" && !v.HasTag(filter.Tag) {
				continue
			}
			if filter.NamePrefix != "" && !strings.HasPrefix(model.Name, filter.NamePrefix) {
				continue
			}
			c := *v
			versions = append(versions, &c)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		if !versions[i].CreatedAt.Equal(versions[j].CreatedAt) {
			return versions[i].CreatedAt.Before(versions[j].CreatedAt)
		}
		return versions[i].Version < versions[j].Version
	})
	return versions, nil
}

type memAliasRepo struct{ s *memoryState }

func (r *memAliasRepo) Upsert(ctx context.Context, alias *domain.Alias) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byName, ok := r.s.aliases[alias.ModelID]
	if !ok {
		return domain.ErrModelNotFound
	}
	a := *alias
	byName[a.Name] = &a
	return nil
}

func (r *memAliasRepo) Get(ctx context.Context, modelID uuid.UUID, name string) (*domain.Alias, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.aliases[modelID][name]
	if !ok {
		return nil, domain.ErrAliasNotFound
	}
	c := *a
	return &c, nil
}

// MemoryStore is an in-memory ArtifactStore.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, r io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", domain.ErrStorageWrite
	}
	key := uuid.NewString()
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.objects[key]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return domain.ErrArtifactNotFound
	}
	delete(s.objects, key)
	return nil
}

// Len reports the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
