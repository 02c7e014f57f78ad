package shopconfig

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "shopcfg:"

// Cache keeps the raw blob in Redis in front of the store so every pricing
// recompute does not hit Postgres.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached blob for the shop. It reports whether the key existed.
func (c *Cache) Get(ctx context.Context, shopDomain string) (string, bool, error) {
	if c == nil || c.client == nil || shopDomain == "" {
		return "", false, nil
	}
	value, err := c.client.Get(ctx, cacheKeyPrefix+shopDomain).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores the blob with the configured TTL.
func (c *Cache) Set(ctx context.Context, shopDomain, value string) error {
	if c == nil || c.client == nil || shopDomain == "" {
		return nil
	}
	return c.client.Set(ctx, cacheKeyPrefix+shopDomain, value, c.ttl).Err()
}

// Delete drops the cached blob after a write so the next read sees the new rule.
func (c *Cache) Delete(ctx context.Context, shopDomain string) error {
	if c == nil || c.client == nil || shopDomain == "" {
		return nil
	}
	return c.client.Del(ctx, cacheKeyPrefix+shopDomain).Err()
}
