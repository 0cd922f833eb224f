// Package cache provides Redis-backed caches for expensive read paths.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	analyticsapp "github.com/ordersight/backend/internal/application/analytics"
)

const (
	forecastKeyPrefix  = "projections:forecast:"
	defaultForecastTTL = 15 * time.Minute
)

// ForecastCache caches computed sales projections per (user, upload, horizon).
// Projections are deterministic for a given dataset, so the cache only needs
// to absorb repeated polling, not correctness.
type ForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewForecastCache creates a cache backed by an existing Redis client
func NewForecastCache(client *redis.Client, ttl time.Duration) *ForecastCache {
	if ttl <= 0 {
		ttl = defaultForecastTTL
	}
	return &ForecastCache{client: client, ttl: ttl}
}

func (c *ForecastCache) key(userID, uploadID uuid.UUID, days int) string {
	return fmt.Sprintf("%s%s:%s:%d", forecastKeyPrefix, userID, uploadID, days)
}

// Get returns the cached projection, or nil on a miss
func (c *ForecastCache) Get(ctx context.Context, userID, uploadID uuid.UUID, days int) (*analyticsapp.Projection, error) {
	payload, err := c.client.Get(ctx, c.key(userID, uploadID, days)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read forecast cache: %w", err)
	}

	var projection analyticsapp.Projection
	if err := json.Unmarshal(payload, &projection); err != nil {
		// A corrupt entry is treated as a miss
		return nil, nil
	}
	return &projection, nil
}

// Set stores a projection with the configured TTL
func (c *ForecastCache) Set(ctx context.Context, userID, uploadID uuid.UUID, days int, projection *analyticsapp.Projection) error {
	payload, err := json.Marshal(projection)
	if err != nil {
		return fmt.Errorf("failed to encode projection: %w", err)
	}
	if err := c.client.Set(ctx, c.key(userID, uploadID, days), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write forecast cache: %w", err)
	}
	return nil
}

// Invalidate drops all cached horizons for an upload. Called after a re-ingest
// changes the underlying data.
func (c *ForecastCache) Invalidate(ctx context.Context, userID, uploadID uuid.UUID) error {
	pattern := fmt.Sprintf("%s%s:%s:*", forecastKeyPrefix, userID, uploadID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate forecast cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan forecast cache: %w", err)
	}
	return nil
}
