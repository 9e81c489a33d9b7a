//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	server "staysync/internal/adapters/http_server"
	"staysync/internal/adapters/pms"
	redisad "staysync/internal/adapters/redis"
	"staysync/internal/adapters/resto"
	"staysync/internal/app"
	"staysync/internal/shared"
)

func startRedis(t *testing.T) string {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7.4",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	addr := "localhost:" + resource.GetPort("6379/tcp")
	if err := pool.Retry(func() error {
		return goredis.NewClient(&goredis.Options{Addr: addr}).Ping(context.Background()).Err()
	}); err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	return addr
}

// fake upstreams, served over real HTTP so the actual clients run end to end

func startFakePMS(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookings_get" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(hits, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"booking_id":  1001,
				"period_from": "2025-06-01",
				"period_to":   "2025-06-03",
				"guests": []any{
					map[string]any{
						"firstname":      "jane",
						"lastname":       "doe",
						"primary_client": true,
						"contact_details": []any{
							map[string]any{"type": "phone", "label": "mobile", "content": "07911123456"},
						},
					},
				},
				"inventory_items": []any{
					map[string]any{"stay_date": "2025-06-01", "description": "DBB Dinner Bed & Breakfast"},
				},
			},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func startFakeResto(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/bookings" {
			http.NotFound(w, r)
			return
		}
		var bookings []any
		if r.URL.Query().Get("from") == "2025-06-01" {
			bookings = []any{
				map[string]any{
					"id":     501,
					"date":   "2025-06-01",
					"time":   "19:00",
					"name":   "Jane Doe",
					"covers": 2,
					"status": "confirmed",
					"custom_fields": []any{
						map[string]any{"name": "Booking #", "value": "1001"},
					},
				},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"bookings": bookings})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_MatchStay(t *testing.T) {
	redisAddr := startRedis(t)

	var pmsHits int32
	pmsSrv := startFakePMS(t, &pmsHits)
	restoSrv := startFakeResto(t)

	cfg := shared.Config{
		FreshTTL:           60 * time.Second,
		StaleTTLNear:       300 * time.Second,
		StaleTTLMid:        600 * time.Second,
		StaleTTLFar:        900 * time.Second,
		StaleTTLDefault:    600 * time.Second,
		LockTTL:            15 * time.Second,
		LockPollInterval:   50 * time.Millisecond,
		LockPollCeiling:    2 * time.Second,
		BookingIDField:     "Booking #",
		HotelGuestField:    "Hotel Guest",
		PackageField:       "DBB",
		GroupField:         "Group / Exclusions",
		PackageKeyword:     "DBB",
		DefaultPhonePrefix: "+44",
		MatchConcurrency:   2,
		SittingDuration:    2 * time.Hour,
		LayoutBuffer:       5 * time.Minute,
	}

	creds := pms.Credentials{Username: "u", Password: "p", APIKey: "k", Region: "eu"}
	hotelClient, err := pms.New(pmsSrv.URL, creds, 100, 2*time.Second)
	if err != nil {
		t.Fatalf("pms client: %v", err)
	}
	restoClient, err := resto.New(restoSrv.URL, "tok", 100, 2*time.Second)
	if err != nil {
		t.Fatalf("resto client: %v", err)
	}

	cache := redisad.New(redisAddr, "", 0)
	fetcher := app.NewFetcher(cfg, cache, cache, zerolog.Nop())
	hotels := app.NewHotelGateway(hotelClient, fetcher, creds.Fingerprint(), zerolog.Nop())
	restos := app.NewRestoGateway(restoClient, fetcher, restoClient.Fingerprint(), cfg.GroupField, cfg.DefaultPhonePrefix, zerolog.Nop())
	svc := app.NewService(cfg, hotels, restos, zerolog.Nop())

	srv := server.New()
	srv.MountHandlers(&server.Handlers{S: svc})
	api := httptest.NewServer(srv.Mux())
	defer api.Close()

	res, err := http.Get(fmt.Sprintf("%s/v1/match?booking_id=1001", api.URL))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	etag := res.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag")
	}

	var body struct {
		HotelID int64
		Nights  []struct {
			HasPackage  bool
			Unavailable bool
			Matches     []struct {
				Type       string
				Confidence string
				Primary    bool
				Restaurant struct{ ID int64 }
			}
		}
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.HotelID != 1001 || len(body.Nights) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	n1 := body.Nights[0]
	if !n1.HasPackage || len(n1.Matches) != 1 || n1.Matches[0].Type != "booking_id" ||
		!n1.Matches[0].Primary || n1.Matches[0].Restaurant.ID != 501 {
		t.Fatalf("unexpected first night: %+v", n1)
	}
	if len(body.Nights[1].Matches) != 0 {
		t.Fatalf("expected no matches on night two: %+v", body.Nights[1])
	}

	// Second request: served from Redis, upstream untouched, ETag revalidates.
	req, _ := http.NewRequest(http.MethodGet, api.URL+"/v1/match?booking_id=1001", nil)
	req.Header.Set("If-None-Match", etag)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET 2: %v", err)
	}
	defer res2.Body.Close()
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res2.StatusCode)
	}
	if atomic.LoadInt32(&pmsHits) != 1 {
		t.Fatalf("expected one PMS hit, got %d", pmsHits)
	}
}
