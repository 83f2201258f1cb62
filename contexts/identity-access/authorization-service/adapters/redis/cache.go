package redisadapter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "authz:member:"

// MembershipCache keeps authorization lookups in Redis with a bounded TTL.
// It is advisory: callers fall back to the repository when it misses or fails.
type MembershipCache struct {
	client *redis.Client
}

func NewMembershipCache(client *redis.Client) *MembershipCache {
	return &MembershipCache{client: client}
}

func (c *MembershipCache) Get(ctx context.Context, accountID string) (bool, bool, error) {
	value, err := c.client.Get(ctx, keyPrefix+accountID).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return value == "1", true, nil
}

func (c *MembershipCache) Set(ctx context.Context, accountID string, authorized bool, ttl time.Duration) error {
	value := "0"
	if authorized {
		value = "1"
	}
	return c.client.Set(ctx, keyPrefix+accountID, value, ttl).Err()
}

func (c *MembershipCache) Invalidate(ctx context.Context, accountID string) error {
	return c.client.Del(ctx, keyPrefix+accountID).Err()
}
