package domain

import (
	"context"
	"time"
)

// Cache is the key-value store every upstream call runs through.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Locker is the per-key mutual exclusion used to de-duplicate concurrent
// identical upstream fetches. Acquire is atomic per key; Release must be
// safe to call after expiry.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// PMSClient is the raw hotel-system client. Results are the upstream's
// `data` array, undecoded; mapping to domain types happens in the app layer.
type PMSClient interface {
	GetBooking(ctx context.Context, id int64) (map[string]any, error)
	ListBookings(ctx context.Context, listType string, from, to time.Time) ([]map[string]any, error)
	ListSites(ctx context.Context) ([]map[string]any, error)
}

// RestaurantClient is the raw restaurant-system client.
type RestaurantClient interface {
	ListBookings(ctx context.Context, from, to time.Time, limit int) ([]map[string]any, error)
	GetBooking(ctx context.Context, id int64) (map[string]any, error)
	UpdateBooking(ctx context.Context, id int64, fields map[string]any) error
	CreateBooking(ctx context.Context, fields map[string]any) (map[string]any, error)
	AddNote(ctx context.Context, id int64, note string) error
	CustomFieldDefs(ctx context.Context) ([]map[string]any, error)
	OpeningHours(ctx context.Context, from, to time.Time) ([]map[string]any, error)
	Availability(ctx context.Context, date time.Time, covers int) (map[string]any, error)
}
