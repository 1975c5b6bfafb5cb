package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NusretOzates/simple-model-registry/internal/core/domain"
	ports "github.com/NusretOzates/simple-model-registry/internal/core/ports/output"
)

type aliasRepo struct {
	pool *pgxpool.Pool
}

func NewAliasRepository(pool *pgxpool.Pool) ports.AliasRepository {
	return &aliasRepo{pool: pool}
}

func (r *aliasRepo) Upsert(ctx context.Context, alias *domain.Alias) error {
	query := `
		INSERT INTO alias (id, model_id, name, version_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (model_id, name) DO UPDATE SET version_id = EXCLUDED.version_id
	`
	_, err := r.pool.Exec(ctx, query, alias.ID, alias.ModelID, alias.Name, alias.VersionID)
	if err != nil {
		return fmt.Errorf("upsert alias: %w", err)
	}
	return nil
}

func (r *aliasRepo) Get(ctx context.Context, modelID uuid.UUID, name string) (*domain.Alias, error) {
	query := `
		SELECT a.id, a.model_id, a.name, a.version_id, mv.version
		FROM alias a
		JOIN model_version mv ON mv.id = a.version_id
		WHERE a.model_id = $1 AND a.name = $2
	`
	a := &domain.Alias{}
	err := r.pool.QueryRow(ctx, query, modelID, name).Scan(
		&a.ID, &a.ModelID, &a.Name, &a.VersionID, &a.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAliasNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alias: %w", err)
	}
	return a, nil
}
