// Package cache memoizes Driver results (spec §4.6) in Redis, keyed by a
// hash of the canonicalized simulation request, so that repeated requests
// for the same party/enemy composition skip re-running 100 simulations.
// Adapted from the teacher's internal/cache/redis.go connection-pool
// wrapper.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/pf2e-sim/combat-engine/internal/config"
	"github.com/pf2e-sim/combat-engine/internal/engine"
	"github.com/pf2e-sim/combat-engine/pkg/logger"
)

// RedisClient wraps the Redis client with connection pooling and
// structured operation logging.
type RedisClient struct {
	client *redis.Client
	logger *logger.LoggerV2
	config *config.RedisConfig
}

// NewRedisClient creates a new Redis client and verifies connectivity.
func NewRedisClient(cfg *config.RedisConfig, log *logger.LoggerV2) (*RedisClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 10,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if log != nil {
		log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("Connected to Redis")
	}

	return &RedisClient{client: client, logger: log, config: cfg}, nil
}

// Close closes the Redis connection.
func (rc *RedisClient) Close() error { return rc.client.Close() }

// Ping checks if Redis is accessible.
func (rc *RedisClient) Ping(ctx context.Context) error { return rc.client.Ping(ctx).Err() }

// GetClient returns the underlying Redis client for advanced operations.
func (rc *RedisClient) GetClient() *redis.Client { return rc.client }

// DriverResultCache memoizes Driver results keyed by request hash.
type DriverResultCache struct {
	client    *RedisClient
	keyPrefix string
	ttl       time.Duration
	logger    *logger.LoggerV2
}

// NewDriverResultCache creates a cache for Driver results.
func NewDriverResultCache(client *RedisClient, ttl time.Duration, log *logger.LoggerV2) *DriverResultCache {
	return &DriverResultCache{client: client, keyPrefix: "sim-result", ttl: ttl, logger: log}
}

// RequestKey hashes a canonicalized simulation request into a stable cache
// key. Party and enemy order matters (a different initiative-order input
// is a different simulation), so no sorting is applied here.
func RequestKey(req engine.SimulationRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize request: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (c *DriverResultCache) makeKey(key string) string {
	return fmt.Sprintf("%s:%s", c.keyPrefix, key)
}

// Get retrieves a cached DriverResult, returning (nil, nil) on a cache miss.
func (c *DriverResultCache) Get(ctx context.Context, key string) (*engine.DriverResult, error) {
	start := time.Now()
	val, err := c.client.client.Get(ctx, c.makeKey(key)).Result()
	hit := err == nil

	if c.logger != nil {
		c.logger.LogCacheOperation("GET", key, hit, time.Since(start))
	}

	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result engine.DriverResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	return &result, nil
}

// Set stores a DriverResult under key with the cache's configured TTL.
func (c *DriverResultCache) Set(ctx context.Context, key string, result engine.DriverResult) error {
	start := time.Now()
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	err = c.client.client.Set(ctx, c.makeKey(key), data, c.ttl).Err()
	if c.logger != nil {
		c.logger.LogCacheOperation("SET", key, false, time.Since(start))
	}
	return err
}
