package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const quotaPrefix = "quota:"

// Counter is a ports.CallCounter shared by every replica through Redis.
type Counter struct {
	rdb client
}

func NewCounter(rdb client) *Counter { return &Counter{rdb: rdb} }

func (c *Counter) Count(ctx context.Context, day string) (int64, error) {
	n, err := c.rdb.Get(ctx, quotaPrefix+day).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache.Count: %w", err)
	}
	return n, nil
}

// Incr bumps the day's counter and sets it to expire at expireAt.
func (c *Counter) Incr(ctx context.Context, day string, expireAt time.Time) (int64, error) {
	key := quotaPrefix + day
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache.Incr: %w", err)
	}
	if n == 1 {
		if err := c.rdb.ExpireAt(ctx, key, expireAt).Err(); err != nil {
			return n, fmt.Errorf("cache.Incr: expire: %w", err)
		}
	}
	return n, nil
}
