// Package postgres opens the connection pool and applies the embedded schema.
package postgres

import (
	"context"
	"fmt"
	"time"

	"clinical-intel/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const retryDelay = 2 * time.Second

// NewPool creates a pgx pool and waits for the database to answer a ping,
// retrying while it is still starting up.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolConfig.MaxConns {
		poolConfig.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := ping(ctx, pool, cfg.ConnectRetries, logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Database connection established",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database),
		zap.Int32("max_conns", poolConfig.MaxConns),
	)

	return pool, nil
}

func ping(ctx context.Context, pool *pgxpool.Pool, retries int, logger *zap.Logger) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if attempt >= retries {
			return fmt.Errorf("failed to ping database after %d attempts: %w", attempt+1, err)
		}
		logger.Warn("Database not ready, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to ping database: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}
}
