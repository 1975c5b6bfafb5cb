package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
)

type modelRepo struct {
	pool *pgxpool.Pool
}

func NewModelRepository(pool *pgxpool.Pool) ports.ModelRepository {
	return &modelRepo{pool: pool}
}

func (r *modelRepo) Create(ctx context.Context, model *domain.Model) error {
	query := `
		INSERT INTO model (id, name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		model.ID, model.Name, model.CreatedBy, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrModelConflict
		}
		return fmt.Errorf("create model: %w", err)
	}
	return nil
}

func (r *modelRepo) GetByName(ctx context.Context, name string) (*domain.Model, error) {
	query := `
		SELECT id, name, created_by, created_at, updated_at
		FROM model
		WHERE name = $1
	`
	m := &domain.Model{}
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&m.ID, &m.Name, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrModelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get model by name: %w", err)
	}
	return m, nil
}

func (r *modelRepo) List(ctx context.Context) ([]*domain.Model, error) {
	query := `
		SELECT id, name, created_by, created_at, updated_at
		FROM model
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []*domain.Model
	for rows.Next() {
		m := &domain.Model{}
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan model row: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model rows: %w", err)
	}
	return models, nil
}

func (r *modelRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM model`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count models: %w", err)
	}
	return count, nil
}

func (r *modelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM model WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModelNotFound
	}
	return nil
}
