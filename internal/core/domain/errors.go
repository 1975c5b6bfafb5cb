package domain

import "errors"

// Not found errors
var (
	ErrModelNotFound    = errors.New("model not found")
	ErrVersionNotFound  = errors.New("model version not found")
	ErrAliasNotFound    = errors.New("alias not found")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// Validation errors
var (
	ErrInvalidModelName = errors.New("model name is required")
	ErrEmptyArtifact    = errors.New("model file is required")
)

// Conflict errors
var (
	// ErrVersionConflict signals that another writer claimed the same
	// (model, version) pair. The registry retries allocation on it.
	ErrVersionConflict = errors.New("model version already exists")
	ErrModelConflict   = errors.New("model with this name already exists")
)

// Storage errors
var (
	ErrStorageWrite = errors.New("artifact storage write failed")
	ErrStorageRead  = errors.New("artifact storage read failed")
)

// Configuration errors
var (
	ErrUnsupportedStorageMethod = errors.New("unsupported model storage method")
)
