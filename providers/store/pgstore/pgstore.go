package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/revenue-cat-hackwit/recook-edge-function/core/structured"
)

const defaultTableName = "recook_extraction_failures"

// Querier abstracts the pgx methods the store needs. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store records extraction failures.
type Store struct {
	db        Querier
	rawName   string
	tableName string
}

var _ structured.Recorder = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTableName overrides the default table name. The name is quoted with
// pgx.Identifier before it is interpolated into SQL.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.rawName = name
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// New creates a Store on db.
func New(db Querier, opts ...Option) *Store {
	s := &Store{db: db, rawName: defaultTableName, tableName: defaultTableName}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordFailure inserts one failure row.
func (s *Store) RecordFailure(ctx context.Context, r structured.FailureRecord) error {
	missing := r.Missing
	if missing == nil {
		missing = []string{}
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(task, shape_kind, reason, missing_fields, snippet, attempt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, s.tableName)

	_, err := s.db.Exec(ctx, query,
		r.Task,
		r.Shape.String(),
		r.Reason.String(),
		missing,
		r.Snippet,
		r.Attempt,
		r.Occurred,
	)
	if err != nil {
		return fmt.Errorf("pgstore: record failure: %w", err)
	}
	return nil
}

// CountByReason returns failure counts for task keyed by reason code. An
// empty task counts every task.
func (s *Store) CountByReason(ctx context.Context, task string) (map[string]int, error) {
	query := fmt.Sprintf(`SELECT reason, COUNT(*) FROM %s
		WHERE ($1 = '' OR task = $1)
		GROUP BY reason`, s.tableName)

	rows, err := s.db.Query(ctx, query, task)
	if err != nil {
		return nil, fmt.Errorf("pgstore: count by reason: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, fmt.Errorf("pgstore: scan count: %w", err)
		}
		counts[reason] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: count rows: %w", err)
	}
	return counts, nil
}
