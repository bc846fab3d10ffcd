package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id             BIGSERIAL PRIMARY KEY,
    task           TEXT NOT NULL DEFAULT '',
    shape_kind     TEXT NOT NULL,
    reason         TEXT NOT NULL,
    missing_fields TEXT[] NOT NULL DEFAULT '{}',
    snippet        TEXT NOT NULL DEFAULT '',
    attempt        INTEGER NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createTaskReasonIndexSQL = `CREATE INDEX IF NOT EXISTS %s
    ON %s (task, reason)`

// EnsureSchema creates the failure table and its index if missing. Meant for
// development; manage production schemas with migrations.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createTableSQL, s.tableName)); err != nil {
		return fmt.Errorf("pgstore: create table: %w", err)
	}
	indexName := pgx.Identifier{"idx_" + s.rawName + "_task_reason"}.Sanitize()
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createTaskReasonIndexSQL, indexName, s.tableName)); err != nil {
		return fmt.Errorf("pgstore: create task_reason index: %w", err)
	}
	return nil
}
