package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
)

const versionColumns = `
	mv.id, mv.model_id, m.name, mv.version, mv.parameters, mv.metrics,
	mv.tags, mv.description, mv.storage_key, mv.created_by,
	mv.created_at, mv.updated_at
`

type versionRepo struct {
	pool *pgxpool.Pool
}

func NewVersionRepository(pool *pgxpool.Pool) ports.VersionRepository {
	return &versionRepo{pool: pool}
}

func (r *versionRepo) Create(ctx context.Context, version *domain.ModelVersion) error {
	paramsJSON, err := json.Marshal(version.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	metricsJSON, err := json.Marshal(version.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	tagsJSON, err := json.Marshal(version.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	query := `
		INSERT INTO model_version
			(id, model_id, version, parameters, metrics, tags, description,
			 storage_key, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err = r.pool.Exec(ctx, query,
		version.ID, version.ModelID, version.Version,
		paramsJSON, metricsJSON, tagsJSON, version.Description,
		version.StorageKey, version.CreatedBy, version.CreatedAt, version.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("create model version: %w", err)
	}
	return nil
}

func (r *versionRepo) MaxVersion(ctx context.Context, modelID uuid.UUID) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(version), 0) FROM model_version WHERE model_id = $1`
	if err := r.pool.QueryRow(ctx, query, modelID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max version: %w", err)
	}
	return max, nil
}

func (r *versionRepo) Get(ctx context.Context, modelID uuid.UUID, version int) (*domain.ModelVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM model_version mv
		JOIN model m ON m.id = mv.model_id
		WHERE mv.model_id = $1 AND mv.version = $2
	`, versionColumns)

	v, err := scanVersion(r.pool.QueryRow(ctx, query, modelID, version))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get model version: %w", err)
	}
	return v, nil
}

func (r *versionRepo) Update(ctx context.Context, version *domain.ModelVersion) error {
	paramsJSON, err := json.Marshal(version.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}
	metricsJSON, err := json.Marshal(version.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	tagsJSON, err := json.Marshal(version.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	query := `
		UPDATE model_version
		SET parameters = $1, metrics = $2, tags = $3, description = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.pool.Exec(ctx, query,
		paramsJSON, metricsJSON, tagsJSON, version.Description, version.UpdatedAt, version.ID,
	)
	if err != nil {
		return fmt.Errorf("update model version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}

func (r *versionRepo) Delete(ctx context.Context, modelID uuid.UUID, version int) error {
	query := `DELETE FROM model_version WHERE model_id = $1 AND version = $2`
	result, err := r.pool.Exec(ctx, query, modelID, version)
	if err != nil {
		return fmt.Errorf("delete model version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}

func (r *versionRepo) ListByModel(ctx context.Context, modelID uuid.UUID) ([]*domain.ModelVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM model_version mv
		JOIN model m ON m.id = mv.model_id
		WHERE mv.model_id = $1
		ORDER BY mv.version
	`, versionColumns)

	rows, err := r.pool.Query(ctx, query, modelID)
	if err != nil {
		return nil, fmt.Errorf("list versions by model: %w", err)
	}
	defer rows.Close()
	return collectVersions(rows)
}

func (r *versionRepo) List(ctx context.Context, filter ports.VersionListFilter) ([]*domain.ModelVersion, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.ModelName != "" {
		conditions = append(conditions, fmt.Sprintf("m.name = $%d", argPos))
		args = append(args, filter.ModelName)
		argPos++
	}
	if filter.Creator != "" {
		conditions = append(conditions, fmt.Sprintf("mv.created_by = $%d", argPos))
		args = append(args, filter.Creator)
		argPos++
	}
	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("mv.tags @> jsonb_build_array($%d::text)", argPos))
		args = append(args, filter.Tag)
		argPos++
	}
	if filter.NamePrefix != "" {
		conditions = append(conditions, fmt.Sprintf("m.name LIKE $%d", argPos))
		args = append(args, filter.NamePrefix+"%")
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM model_version mv
		JOIN model m ON m.id = mv.model_id
		WHERE %s
		ORDER BY mv.created_at ASC, mv.version ASC
	`, versionColumns, whereClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list model versions: %w", err)
	}
	defer rows.Close()
	return collectVersions(rows)
}

func collectVersions(rows pgx.Rows) ([]*domain.ModelVersion, error) {
	var versions []*domain.ModelVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model version row: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model version rows: %w", err)
	}
	return versions, nil
}

func scanVersion(row pgx.Row) (*domain.ModelVersion, error) {
	v := &domain.ModelVersion{}
	var paramsJSON, metricsJSON, tagsJSON []byte

	err := row.Scan(
		&v.ID, &v.ModelID, &v.ModelName, &v.Version, &paramsJSON, &metricsJSON,
		&tagsJSON, &v.Description, &v.StorageKey, &v.CreatedBy,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(paramsJSON, &v.Parameters); err != nil {
		return nil, fmt.Errorf("unmarshal parameters: %w", err)
	}
	if err := json.Unmarshal(metricsJSON, &v.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	if err := json.Unmarshal(tagsJSON, &v.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return v, nil
}
