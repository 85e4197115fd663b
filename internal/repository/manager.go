package repository

import (
	"context"
	"fmt"
	"log/slog"

	"userauth/internal/cache"
	"userauth/internal/config"
	"userauth/internal/db"
)

// Open connects the store selected by cfg.StoreDriver, applies its schema
// migrations and wraps it with the list cache. The returned func releases the
// underlying connections.
func Open(ctx context.Context, cfg *config.Config, c *cache.Client, logger *slog.Logger) (UserRepository, func() error, error) {
	var (
		repo    UserRepository
		closeFn func() error
	)

	switch cfg.StoreDriver {
	case config.DriverMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("mysql pool: %w", err)
		}
		if cfg.ResetDB {
			logger.Warn("RESET_DB=true detected, dropping users table")
		}
		if err := db.MigrateMySQL(gormDB, cfg.ResetDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		repo, closeFn = NewUserRepository(gormDB), sqlDB.Close

	case config.DriverPostgres:
		conn, err := db.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.MigratePostgres(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		repo, closeFn = NewPostgresUserRepository(conn), conn.Close

	case config.DriverMemory:
		logger.Warn("using in-memory user store; data is lost on restart")
		repo, closeFn = NewMemoryUserRepository(), func() error { return nil }

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	logger.Info("user store ready", "driver", cfg.StoreDriver)
	return NewCachedUserRepository(repo, c, cfg.UsersCacheTTL), closeFn, nil
}
