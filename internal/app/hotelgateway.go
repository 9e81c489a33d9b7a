package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"staysync/internal/domain"
)

// Hotel list types understood by the PMS.
const (
	ListStaying   = "staying"   // arrival <= date < departure
	ListPlaced    = "placed"    // created within the window
	ListCancelled = "cancelled" // cancelled within the window
)

// HotelGateway wraps the raw PMS client with the cache protocol and maps
// payloads to domain types.
type HotelGateway struct {
	client domain.PMSClient
	f      *Fetcher
	tenant string
	log    zerolog.Logger
}

func NewHotelGateway(client domain.PMSClient, f *Fetcher, tenant string, log zerolog.Logger) *HotelGateway {
	return &HotelGateway{client: client, f: f, tenant: tenant, log: log}
}

func (g *HotelGateway) Booking(ctx context.Context, id int64, force bool) (*domain.HotelBooking, error) {
	if id <= 0 {
		return nil, domain.Validationf("hotel booking id must be positive, got %d", id)
	}
	key := cacheKey("pms", g.tenant, "bookings_get", map[string]any{"booking_id": id})
	raw, err := fetchThrough(ctx, g.f, key, g.f.StaleDefault(), force, func(ctx context.Context) (map[string]any, error) {
		return g.client.GetBooking(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	hb := mapHotelBooking(raw)
	if hb.ID == 0 {
		hb.ID = id
	}
	return &hb, nil
}

func (g *HotelGateway) ListBookings(ctx context.Context, listType string, from, to time.Time, force bool) ([]domain.HotelBooking, error) {
	switch listType {
	case ListStaying, ListPlaced, ListCancelled:
	default:
		return nil, domain.Validationf("unknown list type %q", listType)
	}
	params := map[string]any{
		"period_from": from.Format("2006-01-02"),
		"period_to":   to.Format("2006-01-02"),
		"list_type":   listType,
	}
	key := cacheKey("pms", g.tenant, "bookings_list", params)
	rows, err := fetchThrough(ctx, g.f, key, g.f.StaleFor(from), force, func(ctx context.Context) ([]map[string]any, error) {
		return g.client.ListBookings(ctx, listType, from, to)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.HotelBooking, 0, len(rows))
	for _, r := range rows {
		hb := mapHotelBooking(r)
		if hb.ID == 0 {
			g.log.Warn().Msg("pms booking row without id, skipping")
			continue
		}
		out = append(out, hb)
	}
	return out, nil
}

// Sites lists the property's rooms/sites. Dateless action, default stale TTL.
func (g *HotelGateway) Sites(ctx context.Context, force bool) ([]string, error) {
	key := cacheKey("pms", g.tenant, "sites_list", map[string]any{})
	rows, err := fetchThrough(ctx, g.f, key, g.f.StaleDefault(), force, func(ctx context.Context) ([]map[string]any, error) {
		return g.client.ListSites(ctx)
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if name := lookupStr(r, "site_name"); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
