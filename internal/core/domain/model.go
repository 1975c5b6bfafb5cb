package domain

import (
	"time"

	"github.com/google/uuid"
)

// Model is a named container for versions. It is created implicitly on the
// first version registration under a new name.
type Model struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModelVersion is one trained artifact under a Model. The artifact bytes are
// immutable once stored; only the metadata fields may change afterwards.
type ModelVersion struct {
	ID          uuid.UUID          `json:"id"`
	ModelID     uuid.UUID          `json:"model_id"`
	ModelName   string             `json:"model_name"`
	Version     int                `json:"version"`
	Parameters  map[string]any     `json:"parameters"`
	Metrics     map[string]float64 `json:"metrics"`
	Tags        []string           `json:"tags"`
	Description string             `json:"description"`
	StorageKey  string             `json:"-"`
	CreatedBy   string             `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// HasTag reports whether the version carries the given tag.
func (v *ModelVersion) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Alias is a friendly name bound to exactly one version of a model. Alias
// names are unique within the model's namespace and rebinding overwrites the
// previous target.
type Alias struct {
	ID        uuid.UUID `json:"id"`
	ModelID   uuid.UUID `json:"model_id"`
	Name      string    `json:"name"`
	VersionID uuid.UUID `json:"version_id"`
	Version   int       `json:"version"`
}

// VersionPatch carries the mutable metadata fields of a version. Nil fields
// are left untouched by an update.
type VersionPatch struct {
	Parameters  map[string]any
	Metrics     map[string]float64
	Tags        []string
	Description *string
}
