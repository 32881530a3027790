// Package backend opens the configured storage.KVStore implementation.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pnl-dashboard/internal/config"
	"pnl-dashboard/internal/storage"
	"pnl-dashboard/internal/storage/clickhouse"
	"pnl-dashboard/internal/storage/memory"
	"pnl-dashboard/internal/storage/migrations"
	"pnl-dashboard/internal/storage/postgres"
	"pnl-dashboard/internal/storage/redis"
	"pnl-dashboard/internal/storage/sqlite"
)

// Open connects to the store selected by cfg.Driver. Postgres and ClickHouse
// migrations run first when cfg.Migrate is set.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.KVStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("opening storage", zap.String("driver", cfg.Driver), zap.String("codec", cfg.Codec))

	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewKVStore(), nil

	case config.DriverSQLite:
		kv, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return kv, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			ran, err := migrations.RunPostgresMigrations(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, err
			}
			logger.Info("postgres migrations applied", zap.Strings("versions", ran))
		}
		return postgres.NewKVStore(pool), nil

	case config.DriverRedis:
		kv, err := redis.NewKVStore(ctx, cfg.DSN, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return kv, nil

	case config.DriverClickhouse:
		if cfg.Migrate {
			conn, err := migrations.RunClickhouseMigrations(ctx, cfg.DSN)
			if err != nil {
				return nil, err
			}
			return clickhouse.NewKVStore(conn), nil
		}
		conn, err := clickhouse.NewConn(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return clickhouse.NewKVStore(conn), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
