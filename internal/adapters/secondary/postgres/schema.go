package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS model (
		id         uuid PRIMARY KEY,
		name       text NOT NULL UNIQUE,
		created_by text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS model_version (
		id          uuid PRIMARY KEY,
		model_id    uuid NOT NULL REFERENCES model(id) ON DELETE CASCADE,
		version     integer NOT NULL,
		parameters  jsonb NOT NULL DEFAULT '{}',
		metrics     jsonb NOT NULL DEFAULT '{}',
		tags        jsonb NOT NULL DEFAULT '[]',
		description text NOT NULL DEFAULT '',
		storage_key text NOT NULL,
		created_by  text NOT NULL DEFAULT '',
		created_at  timestamptz NOT NULL,
		updated_at  timestamptz NOT NULL,
		UNIQUE (model_id, version)
	)`,
	`CREATE TABLE IF NOT EXISTS alias (
		id         uuid PRIMARY KEY,
		model_id   uuid NOT NULL REFERENCES model(id) ON DELETE CASCADE,
		name       text NOT NULL,
		version_id uuid NOT NULL REFERENCES model_version(id) ON DELETE CASCADE,
		UNIQUE (model_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_model_version_model_id ON model_version (model_id)`,
	`CREATE INDEX IF NOT EXISTS idx_alias_version_id ON alias (version_id)`,
}

// Bootstrap creates the tables on startup if they are missing. The unique
// (model_id, version) constraint is what makes optimistic version allocation
// safe, and the ON DELETE CASCADE on alias.version_id is the dangling-alias
// policy: deleting a version takes its aliases with it.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
