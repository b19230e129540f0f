package repository

import (
	"context"
	"database/sql"
)

// DBTX is the part of *sqlx.DB and *sqlx.Tx the repositories need.
type DBTX interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
