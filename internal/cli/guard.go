package cli

import (
	"context"

	"github.com/NeuralTrust/XSSGuard/pkg/config"
	"github.com/NeuralTrust/XSSGuard/pkg/infra/cache"
	"github.com/NeuralTrust/XSSGuard/pkg/infra/patternstore"
	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// openRedis returns a nil client when redis is disabled.
func openRedis(cfg *config.Config, logger *logrus.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	return cache.NewClient(cache.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	}, logger)
}

func patternSource(cfg *config.Config, client *redis.Client) patternstore.Source {
	if client == nil {
		return nil
	}
	return patternstore.NewRedisSource(client, cfg.Redis.PatternsKey)
}

// guardConfig decodes the guard settings and appends the patterns held in source, if any.
// Invalid configured patterns fail later, in xss.NewGuard. A source that cannot be read, or
// a stored pattern that does not compile, is logged and skipped so the guard still starts.
func guardConfig(ctx context.Context, cfg *config.Config, source patternstore.Source, logger *logrus.Logger) (xss.Config, error) {
	gc, err := xss.DecodeConfig(cfg.Guard.Settings)
	if err != nil {
		return xss.Config{}, err
	}
	if source == nil {
		return gc, nil
	}

	loaded, err := source.Load(ctx)
	if err != nil {
		logger.WithError(err).Warn("failed to load stored patterns, using configured patterns only")
		return gc, nil
	}

	valid := make([]string, 0, len(loaded))
	for _, expr := range loaded {
		if _, err := xss.NewPatternSet(expr); err != nil {
			logger.WithError(err).WithField("pattern", expr).Warn("skipping invalid stored pattern")
			continue
		}
		valid = append(valid, expr)
	}
	if len(valid) > 0 {
		logger.WithField("count", len(valid)).Info("loaded stored patterns")
	}
	gc.Patterns = patternstore.Merge(gc.Patterns, valid)
	return gc, nil
}

// offlineGuard builds a guard for the commands that do not serve traffic.
func offlineGuard(ctx context.Context, logger *logrus.Logger) (*xss.Guard, error) {
	client, err := openRedis(appConfig, logger)
	if err != nil {
		return nil, err
	}
	if client != nil {
		defer client.Close()
	}
	gc, err := guardConfig(ctx, appConfig, patternSource(appConfig, client), logger)
	if err != nil {
		return nil, err
	}
	return xss.NewGuard(gc)
}
