package db

import (
	"database/sql"
	"io"
	"log/slog"
)

// NewTestDB wraps an existing sql.DB handle (or nil, for unit tests that
// never touch the store) in a DB whose log output is discarded.
func NewTestDB(sqlDB *sql.DB) *DB {
	return &DB{
		DB:     sqlDB,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
