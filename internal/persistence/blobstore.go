package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/loto-fleet/internal/config"
)

// BlobStore is the key-value persistence port for the serialized fleet. The
// second return of Load reports presence: a missing key is not an error.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, blob []byte) error
	Close()
}

// Open builds the blob store selected by configuration.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile:
		return NewFileStore(cfg.Storage.FilePath), nil
	case config.BackendRedis:
		return NewRedisStore(cfg.Redis, logger), nil
	case config.BackendPostgres:
		pg, err := NewPostgresStore(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
