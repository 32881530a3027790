// Package postgres stores dashboard documents in a PostgreSQL kv_store table.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pnl-dashboard/internal/storage"
)

// ApplicationName is reported to the server unless the DSN sets application_name.
const ApplicationName = "pnl-dashboard"

// SQLSTATE 42P01 undefined_table.
const codeUndefinedTable = "42P01"

// Pool is a pgx connection pool. Pool sizing comes from DSN parameters such as
// pool_max_conns.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects and pings.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// classify maps driver errors for key to storage errors with context.
func classify(op, key string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable {
		return fmt.Errorf("%s %s: kv_store table missing, run migrations: %w", op, key, err)
	}
	return fmt.Errorf("%s %s: %w", op, key, err)
}
