package pms

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"staysync/internal/adapters/observability"
	"staysync/internal/domain"
)

const service = "pms"

// Credentials for the hotel property-management system. The region selects
// the tenant's API cluster and is part of every request.
type Credentials struct {
	Username string
	Password string
	APIKey   string
	Region   string
}

// Fingerprint is a stable token identifying the tenant these credentials
// resolve to. It feeds the cache key so distinct tenants never collide.
func (c Credentials) Fingerprint() string {
	return c.Region + "/" + c.Username
}

// Client talks to the PMS's action-style endpoint: every operation is a POST
// of {action params...} to base/<action>, answered as {data: [...]}.
type Client struct {
	base  string
	hc    *http.Client
	creds Credentials
	rl    *rate.Limiter
}

// New builds a client. base may contain "%s", substituted with the region.
func New(base string, creds Credentials, rps int, timeout time.Duration) (*Client, error) {
	if creds.Username == "" || creds.Password == "" || creds.APIKey == "" {
		return nil, &domain.ConfigError{Msg: "pms credentials are incomplete"}
	}
	if strings.Contains(base, "%s") {
		base = fmt.Sprintf(base, creds.Region)
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		hc:    &http.Client{Timeout: timeout},
		creds: creds,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

func (c *Client) GetBooking(ctx context.Context, id int64) (map[string]any, error) {
	rows, err := c.do(ctx, "bookings_get", map[string]any{"booking_id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0], nil
}

func (c *Client) ListBookings(ctx context.Context, listType string, from, to time.Time) ([]map[string]any, error) {
	return c.do(ctx, "bookings_list", map[string]any{
		"period_from": from.Format("2006-01-02"),
		"period_to":   to.Format("2006-01-02"),
		"list_type":   listType,
	})
}

func (c *Client) ListSites(ctx context.Context) ([]map[string]any, error) {
	return c.do(ctx, "sites_list", map[string]any{})
}

// ---- Internals ----

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do performs an action POST with client-side rate limiting and retries on
// 429/transient 5xx, honoring Retry-After when provided. Failures come back
// as *domain.UpstreamError so callers can decide on stale fallback.
func (c *Client) do(ctx context.Context, action string, params map[string]any) ([]map[string]any, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	body := map[string]any{
		"region":  c.creds.Region,
		"api_key": c.creds.APIKey,
	}
	for k, v := range params {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	url := c.base + "/" + action

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "staysync/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			observability.ObserveExternal(service, action, 0, time.Since(start))
			lastErr = &domain.UpstreamError{Service: service, Op: action, Kind: domain.UpstreamUnavailable, Err: err}
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}

		observability.ObserveExternal(service, action, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			rows, derr := decodeEnvelope(resp.Body, action)
			resp.Body.Close()
			return rows, derr

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = &domain.UpstreamError{
				Service: service, Op: action, Kind: domain.UpstreamUnavailable,
				Status: resp.StatusCode, Body: strings.TrimSpace(string(b)),
			}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &domain.UpstreamError{
				Service: service, Op: action, Kind: domain.UpstreamUnavailable,
				Status: resp.StatusCode, Body: strings.TrimSpace(string(b)),
			}
		}
	}

	return nil, lastErr
}

// decodeEnvelope unwraps {data: [...]} into row maps. A single-object data
// payload is wrapped into a one-element list.
func decodeEnvelope(r io.Reader, action string) ([]map[string]any, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, &domain.UpstreamError{Service: service, Op: action, Kind: domain.UpstreamBadData, Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var rows []map[string]any
	if err := json.Unmarshal(env.Data, &rows); err == nil {
		return rows, nil
	}
	var one map[string]any
	if err := json.Unmarshal(env.Data, &one); err == nil {
		return []map[string]any{one}, nil
	}
	return nil, &domain.UpstreamError{
		Service: service, Op: action, Kind: domain.UpstreamBadData,
		Body: trim(string(env.Data), 4096),
	}
}

func trim(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
