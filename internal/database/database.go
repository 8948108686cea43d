package database

import (
	"context"
	"fmt"
	"time"

	"trendyshop/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool opens the pool described by cfg.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	return NewPoolFromConnString(ctx, cfg.ConnectionString(), cfg, logger)
}

// NewPoolFromConnString opens a pool for connString, sized from cfg. The
// first ping is retried cfg.ConnectRetries times with exponential backoff
// starting at one second.
func NewPoolFromConnString(ctx context.Context, connString string, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	applyLimits(pc, cfg)

	log := logger.With().
		Str("component", "database").
		Str("host", pc.ConnConfig.Host).
		Str("database", pc.ConnConfig.Database).
		Logger()

	attempts := cfg.ConnectRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := connect(ctx, pc)
		if err == nil {
			log.Info().
				Int32("max_conns", pc.MaxConns).
				Int32("min_conns", pc.MinConns).
				Int("attempt", attempt).
				Msg("database pool ready")
			return pool, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		wait := time.Duration(1<<(attempt-1)) * time.Second
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("database not reachable yet")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}

func applyLimits(pc *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.MaxConnections > 0 {
		pc.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		pc.MinConns = int32(cfg.MinConnections)
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	}
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
}

func connect(ctx context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
