// Package cache holds the Redis-backed read cache for slot availability.
// It serves the calendar read path only; booking decisions always go to the
// database inside the owning transaction.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

// AvailabilityCache caches the free starting hours per user and day.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewAvailabilityCache creates a cache connected to Redis.
func NewAvailabilityCache(cfg *config.RedisConfig, ttlSeconds int, log *logger.Logger) (*AvailabilityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &AvailabilityCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
		log:    log,
	}, nil
}

// NewAvailabilityCacheWithClient wraps an existing client (used in tests).
func NewAvailabilityCacheWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl, log: log}
}

func key(userID uint, day time.Time) string {
	return fmt.Sprintf("agenda:slots:%d:%s", userID, day.Format("2006-01-02"))
}

// Get returns the cached free hours and whether the entry was present.
func (c *AvailabilityCache) Get(ctx context.Context, userID uint, day time.Time) ([]int, bool, error) {
	raw, err := c.client.Get(ctx, key(userID, day)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read availability cache: %w", err)
	}

	var hours []int
	if err := json.Unmarshal(raw, &hours); err != nil {
		return nil, false, fmt.Errorf("failed to decode availability cache entry: %w", err)
	}
	return hours, true, nil
}

// Set stores the free hours for (userID, day) with the configured TTL.
func (c *AvailabilityCache) Set(ctx context.Context, userID uint, day time.Time, hours []int) error {
	if hours == nil {
		hours = []int{}
	}
	raw, err := json.Marshal(hours)
	if err != nil {
		return fmt.Errorf("failed to encode availability cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key(userID, day), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write availability cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry for (userID, day). Called after any
// mutation that changes the day's availability.
func (c *AvailabilityCache) Invalidate(ctx context.Context, userID uint, day time.Time) {
	if err := c.client.Del(ctx, key(userID, day)).Err(); err != nil {
		c.log.Warn().
			Err(err).
			Uint("user_id", userID).
			Str("day", day.Format("2006-01-02")).
			Msg("Failed to invalidate availability cache")
	}
}

// Close closes the underlying Redis client.
func (c *AvailabilityCache) Close() error {
	return c.client.Close()
}
