package redisad

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"staysync/internal/adapters/observability"
)

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// NewFromClient wraps an existing client (tests).
func NewFromClient(c *redis.Client) *Cache { return &Cache{c: c} }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if strings.HasSuffix(key, ":stale") {
		observability.ObserveCache("redis", "stale_hit")
	} else {
		observability.ObserveCache("redis", "hit")
	}
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, _ := json.Marshal(v)
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, key).Err()
}

// Acquire takes the per-key fetch lock via SET NX with an expiry, so a crashed
// holder can never wedge the key. Returns false when another fetch holds it.
func (r *Cache) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.c.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		observability.ObserveLock("acquired")
	} else {
		observability.ObserveLock("contended")
	}
	return ok, nil
}

func (r *Cache) Release(ctx context.Context, key string) error {
	observability.ObserveLock("released")
	return r.c.Del(ctx, key).Err()
}
