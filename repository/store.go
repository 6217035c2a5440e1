package repository

import (
	"context"
	"fmt"

	"finsight/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts over a connection pool and a transaction
type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store executes generated report statements against the platform database.
// It is deliberately generic: the catalog owns what to run, the store only
// runs it and hands back tabular results.
type Store struct {
	q queryable
}

// NewStore creates a store backed by the connection pool
func NewStore(db *database.DB) *Store {
	return &Store{q: db.Pool}
}

// Query runs a read statement and returns the result column names and rows
// in query order
func (s *Store) Query(ctx context.Context, sql string, args []any) ([]string, [][]any, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to run report query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var result [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		result = append(result, values)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate report rows: %w", err)
	}

	return columns, result, nil
}

// Exec runs a write statement and returns the number of affected rows
func (s *Store) Exec(ctx context.Context, sql string, args []any) (int64, error) {
	tag, err := s.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to run report statement: %w", err)
	}
	return tag.RowsAffected(), nil
}
