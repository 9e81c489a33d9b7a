package resto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"staysync/internal/adapters/observability"
	"staysync/internal/domain"
)

const service = "resto"

// Client talks to the restaurant reservation system's REST API. The bearer
// token is sent as the basic-auth username with an empty password, which is
// how this API expects it.
type Client struct {
	base  string
	hc    *http.Client
	token string
	rl    *rate.Limiter
}

func New(base, token string, rps int, timeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, &domain.ConfigError{Msg: "restaurant API token is required"}
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
		token: token,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Fingerprint identifies the tenant for cache-key scoping.
func (c *Client) Fingerprint() string { return c.token }

// ---- Public API ----

func (c *Client) ListBookings(ctx context.Context, from, to time.Time, limit int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Bookings []map[string]any `json:"bookings"`
	}
	if err := c.getJSON(ctx, "bookings_list", "/api/bookings", q, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *Client) GetBooking(ctx context.Context, id int64) (map[string]any, error) {
	var out map[string]any
	path := fmt.Sprintf("/api/bookings/%d", id)
	if err := c.getJSON(ctx, "booking_get", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateBooking(ctx context.Context, id int64, fields map[string]any) error {
	path := fmt.Sprintf("/api/bookings/%d", id)
	status, body, err := c.do(ctx, http.MethodPut, "booking_update", path, nil, fields)
	if err != nil {
		return err
	}
	if status >= 300 {
		return c.fail("booking_update", status, body)
	}
	return nil
}

func (c *Client) CreateBooking(ctx context.Context, fields map[string]any) (map[string]any, error) {
	status, body, err := c.do(ctx, http.MethodPost, "booking_create", "/api/bookings", nil, fields)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, c.fail("booking_create", status, body)
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &domain.UpstreamError{Service: service, Op: "booking_create", Kind: domain.UpstreamBadData, Err: err}
	}
	return out, nil
}

func (c *Client) AddNote(ctx context.Context, id int64, note string) error {
	path := fmt.Sprintf("/api/bookings/%d/notes", id)
	status, body, err := c.do(ctx, http.MethodPost, "booking_note", path, nil, map[string]any{"note": note})
	if err != nil {
		return err
	}
	if status >= 300 {
		return c.fail("booking_note", status, body)
	}
	return nil
}

func (c *Client) CustomFieldDefs(ctx context.Context) ([]map[string]any, error) {
	var out struct {
		CustomFields []map[string]any `json:"custom_fields"`
	}
	if err := c.getJSON(ctx, "customfields_list", "/api/customfields", nil, &out); err != nil {
		return nil, err
	}
	return out.CustomFields, nil
}

func (c *Client) OpeningHours(ctx context.Context, from, to time.Time) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	var out struct {
		OpeningHours []map[string]any `json:"opening_hours"`
	}
	if err := c.getJSON(ctx, "openinghours_list", "/api/openinghours", q, &out); err != nil {
		return nil, err
	}
	return out.OpeningHours, nil
}

func (c *Client) Availability(ctx context.Context, date time.Time, covers int) (map[string]any, error) {
	q := url.Values{}
	q.Set("date", date.Format("2006-01-02"))
	if covers > 0 {
		q.Set("covers", strconv.Itoa(covers))
	}
	var out map[string]any
	if err := c.getJSON(ctx, "availability_get", "/api/availability", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Internals ----

func (c *Client) do(ctx context.Context, method, op, path string, q url.Values, body any) (int, []byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, nil, err
	}

	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return 0, nil, err
	}
	req.SetBasicAuth(c.token, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		observability.ObserveExternal(service, op, 0, time.Since(start))
		return 0, nil, &domain.UpstreamError{Service: service, Op: op, Kind: domain.UpstreamUnavailable, Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, op, resp.StatusCode, time.Since(start))

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, &domain.UpstreamError{Service: service, Op: op, Kind: domain.UpstreamUnavailable, Err: err}
	}
	return resp.StatusCode, b, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, q url.Values, dst any) error {
	status, body, err := c.do(ctx, http.MethodGet, op, path, q, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if status >= 300 {
		return c.fail(op, status, body)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &domain.UpstreamError{Service: service, Op: op, Kind: domain.UpstreamBadData, Err: err}
	}
	return nil
}

func (c *Client) fail(op string, status int, body []byte) error {
	// Surface the API's message field when it has one.
	var msg struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &msg)
	b := strings.TrimSpace(string(body))
	if len(b) > 4096 {
		b = b[:4096]
	}
	if msg.Message != "" {
		b = msg.Message
	}
	return &domain.UpstreamError{Service: service, Op: op, Kind: domain.UpstreamUnavailable, Status: status, Body: b}
}
