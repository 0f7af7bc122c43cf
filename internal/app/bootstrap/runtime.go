package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/prospect-pipeline/internal/config"
	"github.com/wolfman30/prospect-pipeline/internal/preferences"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

const (
	redisDialTimeout = 3 * time.Second
	redisPingTimeout = 2 * time.Second
)

func redisOptions(cfg *appconfig.Config) *redis.Options {
	opts := &redis.Options{
		Addr:        strings.TrimSpace(cfg.RedisAddr),
		Password:    cfg.RedisPassword,
		DialTimeout: redisDialTimeout,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// BuildRedisClient connects to REDIS_ADDR, or returns nil when it is unset.
// With verify, an unreachable server is logged and treated as unset.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := redis.NewClient(redisOptions(cfg))
	if !verify {
		return client
	}
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, preferences fall back to memory", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPreferencesStore keeps view preferences in Redis when a client is given.
func BuildPreferencesStore(redisClient *redis.Client, logger *logging.Logger) preferences.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient == nil {
		logger.Info("preferences stored in memory")
		return preferences.NewMemoryStore()
	}
	return preferences.NewRedisStore(redisClient)
}
