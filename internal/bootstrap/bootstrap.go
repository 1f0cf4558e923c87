// Package bootstrap opens the storage backend shared by the server and the
// cronjob runner.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"evrental-backend/internal/config"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"
	"evrental-backend/internal/repository/memory"
	"evrental-backend/internal/repository/postgres"
	"evrental-backend/internal/seed"

	_ "github.com/lib/pq"
)

// OpenRepositories connects the configured driver and returns the repository
// bundle with a func that releases it.
func OpenRepositories(ctx context.Context, cfg *config.Config) (repository.Repositories, func() error, error) {
	if cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		if cfg.Database.SeedFile != "" {
			data, err := seed.Load(cfg.Database.SeedFile)
			if err != nil {
				return repository.Repositories{}, nil, err
			}
			if err := seed.IntoMemory(store, data); err != nil {
				return repository.Repositories{}, nil, err
			}
		}
		logger.Warn("Using the in-memory store; data is lost on restart")
		return store.Repositories(), func() error { return nil }, nil
	}

	isolation, err := postgres.ParseIsolation(cfg.Database.Isolation)
	if err != nil {
		return repository.Repositories{}, nil, err
	}

	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return repository.Repositories{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return repository.Repositories{}, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established", "host", cfg.Database.Host, "database", cfg.Database.Database, "isolation", cfg.Database.Isolation)

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return repository.Repositories{}, nil, err
		}
	}

	store := postgres.NewStore(db, postgres.TxOptions{Isolation: isolation, MaxRetries: cfg.Database.MaxTxRetries})
	return store.Repositories(), db.Close, nil
}
