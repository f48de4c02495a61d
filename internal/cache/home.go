package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const homeKeyPrefix = "home:"

// ErrCacheMiss signals the key is absent; callers rebuild the payload.
var ErrCacheMiss = errors.New("cache miss")

// homeKey is the render-cache key for one user's home route.
func homeKey(accountID string) string {
	return homeKeyPrefix + accountID
}

// GetHome returns the cached home payload for a user.
func (c *Cache) GetHome(ctx context.Context, accountID string) ([]byte, error) {
	payload, err := c.client.Get(ctx, homeKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get home render: %w", err)
	}
	return payload, nil
}

// SetHome caches a rendered home payload.
func (c *Cache) SetHome(ctx context.Context, accountID string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, homeKey(accountID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache home render: %w", err)
	}
	return nil
}

// InvalidateHome drops the cached home payload. This is the revalidation
// side channel fired after a successful bank-link exchange.
func (c *Cache) InvalidateHome(ctx context.Context, accountID string) error {
	if err := c.client.Del(ctx, homeKey(accountID)).Err(); err != nil {
		return fmt.Errorf("invalidate home render: %w", err)
	}
	return nil
}
