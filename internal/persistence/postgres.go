package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/loto-fleet/internal/config"
)

// PostgresStore persists blobs in a single fleet_blobs table keyed by name.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore establishes a pgx connection pool.
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN required for postgres storage backend")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Migrate creates the blob table when missing.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS fleet_blobs (
    key        TEXT PRIMARY KEY,
    data       BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate fleet_blobs: %w", err)
	}
	p.logger.Info("migrations applied")
	return nil
}

// Load fetches the blob row; no row means no prior data.
func (p *PostgresStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var blob []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM fleet_blobs WHERE key = $1`, key).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select blob %s: %w", key, err)
	}
	return blob, true, nil
}

// Save upserts the blob row.
func (p *PostgresStore) Save(ctx context.Context, key string, blob []byte) error {
	const upsert = `
INSERT INTO fleet_blobs (key, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if _, err := p.pool.Exec(ctx, upsert, key, blob); err != nil {
		return fmt.Errorf("upsert blob %s: %w", key, err)
	}
	return nil
}

// Close releases pool resources.
func (p *PostgresStore) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// Ping verifies database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.pool.Ping(ctx)
}
