package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"staysync/internal/adapters/observability"
	"staysync/internal/domain"
	"staysync/internal/shared"
)

// Fetcher runs every upstream call through the cache protocol: fresh lookup,
// per-key lock with polling for in-flight duplicates, two-tier fresh/stale
// writes on success, stale fallback on upstream failure, and a force-refresh
// path that busts both tiers first.
type Fetcher struct {
	cache domain.Cache
	lock  domain.Locker
	log   zerolog.Logger

	freshTTL     time.Duration
	lockTTL      time.Duration
	pollInterval time.Duration
	pollCeiling  time.Duration

	staleNear    time.Duration
	staleMid     time.Duration
	staleFar     time.Duration
	staleDefault time.Duration
}

func NewFetcher(cfg shared.Config, cache domain.Cache, lock domain.Locker, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		cache:        cache,
		lock:         lock,
		log:          log,
		freshTTL:     cfg.FreshTTL,
		lockTTL:      cfg.LockTTL,
		pollInterval: cfg.LockPollInterval,
		pollCeiling:  cfg.LockPollCeiling,
		staleNear:    cfg.StaleTTLNear,
		staleMid:     cfg.StaleTTLMid,
		staleFar:     cfg.StaleTTLFar,
		staleDefault: cfg.StaleTTLDefault,
	}
}

// StaleFor tiers the stale TTL by how far the data's subject date sits from
// now: near dates change often, far ones barely. A zero subject means the
// action carried a date we could not resolve.
func (f *Fetcher) StaleFor(subject time.Time) time.Duration {
	if subject.IsZero() {
		return f.staleFar
	}
	d := time.Until(subject)
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 30*24*time.Hour:
		return f.staleNear
	case d <= 180*24*time.Hour:
		return f.staleMid
	default:
		return f.staleFar
	}
}

// StaleDefault is for actions that inherently carry no subject date.
func (f *Fetcher) StaleDefault() time.Duration { return f.staleDefault }

// cacheKey derives the deterministic key for an upstream action. Params are
// canonicalized via JSON (map keys marshal sorted), and the tenant
// fingerprint is hashed in so distinct credentials never share entries.
func cacheKey(service, tenant, action string, params map[string]any) string {
	b, _ := json.Marshal(params)
	sum := sha1.Sum([]byte(tenant + "|" + action + "|" + string(b)))
	return "sync:" + service + ":" + action + ":" + hex.EncodeToString(sum[:])
}

// fetchThrough is the protocol itself. call is only reached on a fresh miss,
// and at most one concurrent caller per key reaches it while the others poll
// the fresh cache. The lock is released on every exit path; on upstream
// failure the stale tier answers if it can.
func fetchThrough[T any](ctx context.Context, f *Fetcher, key string, staleTTL time.Duration, force bool, call func(context.Context) (T, error)) (T, error) {
	var zero T
	staleKey := key + ":stale"

	if force {
		_ = f.cache.Del(ctx, key)
		_ = f.cache.Del(ctx, staleKey)
	} else {
		var v T
		if ok, err := f.cache.Get(ctx, key, &v); err == nil && ok {
			return v, nil
		}
	}

	lockKey := key + ":lock"
	acquired, lockErr := f.lock.Acquire(ctx, lockKey, f.lockTTL)
	if lockErr != nil {
		// Lock store trouble: skip dedup rather than fail the request.
		f.log.Warn().Err(lockErr).Str("key", key).Msg("fetch lock unavailable")
	}
	if acquired {
		defer func() {
			// The call may have consumed the context; release regardless.
			if err := f.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				f.log.Warn().Err(err).Str("key", key).Msg("fetch lock release failed")
			}
		}()
	} else if lockErr == nil && !force {
		// Someone else is fetching this key: poll the fresh cache until it
		// lands or the ceiling passes, then fetch ourselves (never deadlock).
		if v, ok := pollFresh[T](ctx, f, key); ok {
			return v, nil
		}
	}

	v, err := call(ctx)
	if err != nil {
		if !force && domain.IsUpstream(err) {
			var sv T
			if ok, gerr := f.cache.Get(ctx, staleKey, &sv); gerr == nil && ok {
				f.log.Warn().Err(err).Str("key", key).Msg("upstream failed, serving stale")
				return sv, nil
			}
		}
		return zero, err
	}

	_ = f.cache.Set(ctx, key, v, int(f.freshTTL.Seconds()))
	_ = f.cache.Set(ctx, staleKey, v, int(staleTTL.Seconds()))
	return v, nil
}

func pollFresh[T any](ctx context.Context, f *Fetcher, key string) (T, bool) {
	var zero T
	waited := time.Duration(0)
	t := time.NewTicker(f.pollInterval)
	defer t.Stop()
	for waited < f.pollCeiling {
		select {
		case <-ctx.Done():
			return zero, false
		case <-t.C:
			waited += f.pollInterval
			var v T
			if ok, err := f.cache.Get(ctx, key, &v); err == nil && ok {
				observability.ObserveLock("poll_hit")
				return v, true
			}
		}
	}
	observability.ObserveLock("poll_timeout")
	f.log.Warn().Str("key", key).Dur("waited", waited).Msg("lock poll ceiling reached, fetching anyway")
	return zero, false
}
