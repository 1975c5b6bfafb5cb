package dto

import (
	"time"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
)

// CreateVersionMetadata is the JSON document carried in the "metadata" form
// field of a version upload.
type CreateVersionMetadata struct {
	Parameters  map[string]any     `json:"parameters"`
	Metrics     map[string]float64 `json:"metrics"`
	Tags        []string           `json:"tags"`
	Description string             `json:"description"`
	CreatedBy   string             `json:"created_by"`
	Alias       string             `json:"alias"`
}

// UpdateVersionRequest patches version metadata. Absent fields are left
// unchanged; the artifact and version number cannot be patched.
type UpdateVersionRequest struct {
	Parameters  map[string]any     `json:"parameters"`
	Metrics     map[string]float64 `json:"metrics"`
	Tags        []string           `json:"tags"`
	Description *string            `json:"description"`
}

type SetAliasRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

type ModelVersionResponse struct {
	ModelName   string             `json:"model_name"`
	Version     int                `json:"version"`
	Parameters  map[string]any     `json:"parameters"`
	Metrics     map[string]float64 `json:"metrics"`
	Tags        []string           `json:"tags"`
	Description string             `json:"description"`
	CreatedBy   string             `json:"created_by"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type ListVersionsResponse struct {
	Items []ModelVersionResponse `json:"items"`
	Total int                    `json:"total"`
}

type AliasResponse struct {
	ModelName string `json:"model_name"`
	Alias     string `json:"alias"`
	Version   int    `json:"version"`
}

type ModelResponse struct {
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ModelWithVersionsResponse struct {
	ModelResponse
	Versions []ModelVersionResponse `json:"versions"`
}

func ToModelVersionResponse(v *domain.ModelVersion) ModelVersionResponse {
	return ModelVersionResponse{
		ModelName:   v.ModelName,
		Version:     v.Version,
		Parameters:  v.Parameters,
		Metrics:     v.Metrics,
		Tags:        v.Tags,
		Description: v.Description,
		CreatedBy:   v.CreatedBy,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func ToModelResponse(m *domain.Model) ModelResponse {
	return ModelResponse{
		Name:      m.Name,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
