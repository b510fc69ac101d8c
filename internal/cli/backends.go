package cli

import (
	"context"

	"github.com/narayan-iyengar/scope/pkg/cache"
	"github.com/narayan-iyengar/scope/pkg/config"
	"github.com/narayan-iyengar/scope/pkg/session"
)

// buildCache constructs the layout cache backend selected by the config.
func buildCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "file":
		dir, err := cacheDir(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	case "none":
		return cache.NewDisabled(), nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

// buildSessions constructs the view session store selected by the config.
func buildSessions(ctx context.Context, cfg config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "mongo":
		return session.NewMongoStore(ctx, session.MongoConfig{
			URI:        cfg.Session.MongoURI,
			Database:   cfg.Session.MongoDatabase,
			Collection: cfg.Session.MongoCollection,
		})
	default:
		return session.NewMemoryStore(), nil
	}
}
