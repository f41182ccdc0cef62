// Package repository provides data access layer implementations for the ledger engine.
package repository

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql shared by *db.DB and *sql.Tx.
// Repositories are constructed over a Querier so services can run them
// inside a store transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
