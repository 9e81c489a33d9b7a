package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "staysync/internal/adapters/redis"
)

func newTestCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	if err := c.Set(ctx, "k", payload{Name: "jane"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || !ok || got.Name != "jane" {
		t.Fatalf("get: ok=%v err=%v got=%+v", ok, err, got)
	}

	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "k", &got)
	if err != nil || ok {
		t.Fatalf("expected miss after del, ok=%v err=%v", ok, err)
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(61 * time.Second)

	var got string
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || ok {
		t.Fatalf("expected expiry, ok=%v err=%v", ok, err)
	}
}

func TestLock_AcquireIsExclusive(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Acquire(ctx, "k:lock", 15*time.Second)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = c.Acquire(ctx, "k:lock", 15*time.Second)
	if err != nil || ok {
		t.Fatalf("second acquire should contend: ok=%v err=%v", ok, err)
	}

	if err := c.Release(ctx, "k:lock"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = c.Acquire(ctx, "k:lock", 15*time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}

	// Expiry frees a lock abandoned by a crashed holder.
	mr.FastForward(16 * time.Second)
	ok, err = c.Acquire(ctx, "k:lock", 15*time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire after expiry: ok=%v err=%v", ok, err)
	}
}
