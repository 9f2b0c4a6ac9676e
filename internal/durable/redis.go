package durable

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/lexi-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Redis stores one browser's keys under storefront:{browser}:{key}. Every
// read and write refreshes the key's TTL.
type Redis struct {
	rdb       redis.Cmdable
	browserID string
	ttl       time.Duration
}

func (r *Redis) key(k string) string {
	return fmt.Sprintf(redisx.KeyBrowserStorage, r.browserID, k)
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.GetEx(ctx, r.key(key), r.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("storage set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("storage remove %s: %w", key, err)
	}
	return nil
}

type RedisFactory struct {
	RDB redis.Cmdable
	TTL time.Duration
}

func (f RedisFactory) For(browserID string) Storage {
	ttl := f.TTL
	if ttl <= 0 {
		ttl = redisx.TTLBrowserStorage
	}
	return &Redis{rdb: f.RDB, browserID: browserID, ttl: ttl}
}
