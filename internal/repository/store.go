package repository

import (
	"context"
	"fmt"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/database"
	"github.com/SamFelix03/cummadashboard/internal/domain"
	"github.com/SamFelix03/cummadashboard/internal/mongostore"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// OpenStore opens the configured document store. The SQLite handle is also
// returned so the caller can run backups; it is nil for MongoDB.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (domain.Repository, *database.DB, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.DriverSQLite, "":
		db, err := database.NewDB(cfg.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenSessions returns redis-backed sessions with an in-memory fallback, or
// memory only when redis is not configured or unreachable. The redis
// client is returned so other components can share it.
func OpenSessions(ctx context.Context, cfg config.RedisConfig, logger *zerolog.Logger) (domain.SessionRepository, *redis.Client) {
	memory := NewMemorySessionRepository()
	if cfg.Address == "" {
		logger.Info().Msg("redis not configured, sessions kept in memory")
		return memory, nil
	}

	client := NewRedisClient(cfg)
	if err := Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Address).Msg("redis connection failed, sessions kept in memory")
		_ = client.Close()
		return memory, nil
	}

	logger.Info().Str("addr", cfg.Address).Msg("redis connected")
	return NewFailoverSessionRepository(NewRedisSessionRepository(client), memory, logger), client
}
