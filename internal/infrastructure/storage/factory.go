package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/console/internal/infrastructure/config"
	"github.com/erp/console/internal/infrastructure/logger"
)

// Open creates the store selected by cfg.Storage.Driver
func Open(cfg *config.Config, log *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(cfg.Storage.Path, cfg.Storage.Prefix, logger.NewGormLogger(log, cfg.Log.Level))
	case "postgres":
		return OpenPostgres(cfg.Storage.DSN, cfg.Storage.Prefix, logger.NewGormLogger(log, cfg.Log.Level))
	case "redis":
		return NewRedisStore(RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Storage.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
