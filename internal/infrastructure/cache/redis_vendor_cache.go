package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultVendorKeyPrefix = "pov:vendor_no:"

// RedisVendorNoCache shares portal-to-vendor resolutions across instances
type RedisVendorNoCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisVendorNoCache connects to Redis and verifies the connection
func NewRedisVendorNoCache(ctx context.Context, opts *redis.Options) (*RedisVendorNoCache, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisVendorNoCacheWithClient(client, ""), nil
}

// NewRedisVendorNoCacheWithClient wraps an existing client
func NewRedisVendorNoCacheWithClient(client *redis.Client, keyPrefix string) *RedisVendorNoCache {
	if keyPrefix == "" {
		keyPrefix = defaultVendorKeyPrefix
	}
	return &RedisVendorNoCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached vendor number; a missing key is not an error
func (c *RedisVendorNoCache) Get(ctx context.Context, vendorPortalID uuid.UUID) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(vendorPortalID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read vendor mapping: %w", err)
	}
	return val, true, nil
}

// Set stores vendorNo with an expiry of ttl. A non-positive ttl is ignored.
func (c *RedisVendorNoCache) Set(ctx context.Context, vendorPortalID uuid.UUID, vendorNo string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.key(vendorPortalID), vendorNo, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store vendor mapping: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisVendorNoCache) Close() error {
	return c.client.Close()
}

func (c *RedisVendorNoCache) key(id uuid.UUID) string {
	return c.keyPrefix + id.String()
}

var _ integration.VendorNoCache = (*RedisVendorNoCache)(nil)
