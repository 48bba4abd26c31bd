// Package store holds the SQL queries of the marketplace. Getters return
// (nil, nil) when the row does not exist.
package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrVersionConflict is returned when a row changed between read and write.
var ErrVersionConflict = errors.New("version conflict")

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
