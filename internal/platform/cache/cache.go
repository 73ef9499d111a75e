package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the byte-oriented operations the catalog read-through layer needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// DeleteByPattern removes every key matching a glob pattern such as "catalog:*".
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

// Options configures cache construction.
type Options struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// LocalSize bounds the in-process fallback.
	LocalSize int
}

// New dials Redis when an address is configured and falls back to an in-process LRU
// when it is not, or when Redis does not answer a ping.
func New(ctx context.Context, opts Options, logger *slog.Logger) Cache {
	if logger == nil {
		logger = slog.Default()
	}
	addr := strings.TrimSpace(opts.RedisAddr)
	if addr == "" {
		logger.Info("REDIS_ADDR not set, using in-process catalog cache", slog.Int("size", opts.LocalSize))
		return NewLRU(opts.LocalSize)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        opts.RedisPassword,
		DB:              opts.RedisDB,
		PoolSize:        10,
		MinIdleConns:    2,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("failed to connect to redis, using in-process catalog cache",
			slog.String("addr", addr),
			slog.String("error", err.Error()),
		)
		_ = rdb.Close()
		return NewLRU(opts.LocalSize)
	}
	logger.Info("redis cache initialized", slog.String("addr", addr), slog.Int("db", opts.RedisDB))
	return NewRedis(rdb, logger)
}

// GetJSON decodes a cached JSON value into dest.
func GetJSON(ctx context.Context, c Cache, key string, dest any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetJSON encodes value as JSON and stores it.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}

// TTL converts seconds into a duration.
func TTL(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
