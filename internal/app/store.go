package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/config"
	"github.com/spec-kit/ticket-api/internal/persistence"
	"github.com/spec-kit/ticket-api/internal/repository"
)

// Store is the ticket repository selected by STORE_DRIVER plus its cleanup.
type Store struct {
	Driver string
	Repo   repository.TicketRepository
	closer func()
}

// Close releases the backend connection.
func (s *Store) Close() {
	if s != nil && s.closer != nil {
		s.closer()
	}
}

// OpenStore connects to the configured backend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverDynamoDB:
		client, err := persistence.NewDynamoDB(ctx, cfg.Dynamo, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.Store.Driver,
			Repo:   repository.NewDynamoTicketRepository(client, cfg.Dynamo.Table),
		}, nil

	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return &Store{
			Driver: cfg.Store.Driver,
			Repo:   repository.NewPostgresTicketRepository(pg.PoolHandle()),
			closer: pg.Close,
		}, nil

	case config.DriverRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.Store.Driver,
			Repo:   repository.NewRedisTicketRepository(rdb.Client, cfg.Redis.KeyPrefix),
			closer: rdb.Close,
		}, nil

	case config.DriverSQLite:
		db, err := persistence.NewSQLite(cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		if err := repository.AutoMigrateSQL(db); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.Store.Driver,
			Repo:   repository.NewSQLTicketRepository(db),
			closer: func() { _ = sqlDB.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// Migrate prepares the schema of the configured backend.
func Migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Store.Driver {
	case config.DriverDynamoDB:
		client, err := persistence.NewDynamoDB(ctx, cfg.Dynamo, logger)
		if err != nil {
			return err
		}
		return persistence.EnsureDynamoTable(ctx, client, cfg.Dynamo.Table, logger)

	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
		return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)

	case config.DriverSQLite:
		db, err := persistence.NewSQLite(cfg.SQLite, logger)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		return repository.AutoMigrateSQL(db)

	case config.DriverRedis:
		logger.Info("redis store needs no schema")
		return nil
	}
	return fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}
