package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrMissingDSN is returned when the postgres driver is selected without DB_URL.
var ErrMissingDSN = errors.New("postgres: DB_URL is not set")

// Option tweaks the pool configuration before the pool is created.
type Option func(*pgxpool.Config)

// WithMaxConns caps the pool size. The changefeed holds one connection for
// the lifetime of the process, so callers should leave room for it.
func WithMaxConns(n int32) Option {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = n
		}
	}
}

// Connect creates a pgx pool for dsn and pings it.
// SQLAlchemy-style prefixes such as postgresql+asyncpg:// are accepted.
func Connect(ctx context.Context, dsn string, log *zap.Logger, opts ...Option) (*pgxpool.Pool, error) {
	normalized := normalizeDSN(dsn)
	if normalized == "" {
		return nil, ErrMissingDSN
	}

	cfg, err := pgxpool.ParseConfig(normalized)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 60 * time.Minute
	cfg.HealthCheckPeriod = time.Minute
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if log != nil {
		log.Info("postgres connected",
			zap.String("host", cfg.ConnConfig.Host),
			zap.String("database", cfg.ConnConfig.Database),
			zap.Int32("max_conns", cfg.MaxConns),
		)
	}
	return pool, nil
}

func normalizeDSN(dsn string) string {
	s := strings.TrimSpace(dsn)
	for _, prefix := range []string{"postgresql+asyncpg://", "postgresql+pgx://"} {
		if strings.HasPrefix(s, prefix) {
			return "postgresql://" + strings.TrimPrefix(s, prefix)
		}
	}
	for _, prefix := range []string{"postgres+asyncpg://", "postgres+pgx://"} {
		if strings.HasPrefix(s, prefix) {
			return "postgres://" + strings.TrimPrefix(s, prefix)
		}
	}
	return s
}
