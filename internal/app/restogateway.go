package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"staysync/internal/domain"
)

const listBookingsLimit = 200

// BookingUpdate is the set of operator-approved changes to push to the
// restaurant system. Nil fields are left untouched; an empty string in
// Custom clears that custom field.
type BookingUpdate struct {
	GuestName *string
	Phone     *string
	Email     *string
	Covers    *int
	Status    *domain.BookingStatus
	Custom    map[string]string
}

func (u BookingUpdate) empty() bool {
	return u.GuestName == nil && u.Phone == nil && u.Email == nil &&
		u.Covers == nil && u.Status == nil && len(u.Custom) == 0
}

// RestoGateway wraps the raw restaurant client with the cache protocol,
// payload mapping, and client-side exclusion of dead bookings.
type RestoGateway struct {
	client      domain.RestaurantClient
	f           *Fetcher
	tenant      string
	groupField  string
	phonePrefix string
	log         zerolog.Logger
}

func NewRestoGateway(client domain.RestaurantClient, f *Fetcher, tenant, groupField, phonePrefix string, log zerolog.Logger) *RestoGateway {
	return &RestoGateway{
		client:      client,
		f:           f,
		tenant:      tenant,
		groupField:  groupField,
		phonePrefix: phonePrefix,
		log:         log,
	}
}

// ListBookings returns live bookings in [from, to]. Cancelled, no-show and
// deleted entries are dropped after the fetch; rows with unknown statuses
// are logged and skipped rather than guessed at.
func (g *RestoGateway) ListBookings(ctx context.Context, from, to time.Time, force bool) ([]domain.RestaurantBooking, error) {
	params := map[string]any{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"limit": listBookingsLimit,
	}
	key := cacheKey("resto", g.tenant, "bookings_list", params)
	rows, err := fetchThrough(ctx, g.f, key, g.f.StaleFor(from), force, func(ctx context.Context) ([]map[string]any, error) {
		return g.client.ListBookings(ctx, from, to, listBookingsLimit)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.RestaurantBooking, 0, len(rows))
	for _, r := range rows {
		rb, ok := mapRestaurantBooking(r)
		if !ok {
			g.log.Warn().Int64("id", rb.ID).Msg("restaurant booking with unknown status, skipping")
			continue
		}
		if rb.Status.Dead() {
			continue
		}
		out = append(out, rb)
	}
	return out, nil
}

func (g *RestoGateway) Booking(ctx context.Context, id int64, force bool) (*domain.RestaurantBooking, error) {
	if id <= 0 {
		return nil, domain.Validationf("restaurant booking id must be positive, got %d", id)
	}
	key := cacheKey("resto", g.tenant, "booking_get", map[string]any{"id": id})
	raw, err := fetchThrough(ctx, g.f, key, g.f.StaleDefault(), force, func(ctx context.Context) (map[string]any, error) {
		return g.client.GetBooking(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	rb, ok := mapRestaurantBooking(raw)
	if !ok {
		return nil, &domain.UpstreamError{Service: "resto", Op: "booking_get", Kind: domain.UpstreamBadData, Body: "unknown booking status"}
	}
	if rb.ID == 0 {
		rb.ID = id
	}
	return &rb, nil
}

// Update pushes operator-approved field changes. Not cached; the booking's
// cache entries are busted afterwards so the next read sees the change.
func (g *RestoGateway) Update(ctx context.Context, id int64, u BookingUpdate) error {
	if id <= 0 {
		return domain.Validationf("restaurant booking id must be positive, got %d", id)
	}
	if u.empty() {
		return domain.Validationf("no fields to update for booking %d", id)
	}
	fields := map[string]any{}
	if u.GuestName != nil {
		fields["name"] = *u.GuestName
	}
	if u.Phone != nil {
		fields["phone"] = outboundPhone(*u.Phone, g.phonePrefix)
	}
	if u.Email != nil {
		fields["email"] = *u.Email
	}
	if u.Covers != nil {
		fields["covers"] = *u.Covers
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return domain.Validationf("invalid status %q", *u.Status)
		}
		fields["status"] = string(*u.Status)
	}
	if len(u.Custom) > 0 {
		cf := make([]map[string]any, 0, len(u.Custom))
		for name, value := range u.Custom {
			cf = append(cf, map[string]any{"name": name, "value": value})
		}
		fields["custom_fields"] = cf
	}
	if err := g.client.UpdateBooking(ctx, id, fields); err != nil {
		return err
	}
	g.bustBooking(ctx, id)
	return nil
}

func (g *RestoGateway) Create(ctx context.Context, rb domain.RestaurantBooking) (*domain.RestaurantBooking, error) {
	if rb.Date.IsZero() || rb.Covers <= 0 || rb.GuestName == "" {
		return nil, domain.Validationf("create needs date, covers and guest name")
	}
	fields := map[string]any{
		"date":   rb.Date.Format("2006-01-02"),
		"time":   rb.Start.Format("15:04"),
		"covers": rb.Covers,
		"name":   rb.GuestName,
		"phone":  outboundPhone(rb.Phone, g.phonePrefix),
		"email":  rb.Email,
	}
	if len(rb.Fields) > 0 {
		cf := make([]map[string]any, 0, len(rb.Fields))
		for _, f := range rb.Fields {
			cf = append(cf, map[string]any{"name": f.Name, "value": f.Value})
		}
		fields["custom_fields"] = cf
	}
	raw, err := g.client.CreateBooking(ctx, fields)
	if err != nil {
		return nil, err
	}
	created, ok := mapRestaurantBooking(raw)
	if !ok {
		return nil, &domain.UpstreamError{Service: "resto", Op: "booking_create", Kind: domain.UpstreamBadData, Body: "unknown booking status"}
	}
	return &created, nil
}

func (g *RestoGateway) AddNote(ctx context.Context, id int64, note string) error {
	if note == "" {
		return domain.Validationf("note must not be empty")
	}
	if err := g.client.AddNote(ctx, id, note); err != nil {
		return err
	}
	g.bustBooking(ctx, id)
	return nil
}

// ExcludeMatch marks a hotel booking as a non-match for this restaurant
// booking by rewriting the group/exclusion custom field. Idempotent.
func (g *RestoGateway) ExcludeMatch(ctx context.Context, restaurantID, hotelID int64) error {
	if hotelID <= 0 {
		return domain.Validationf("hotel booking id must be positive, got %d", hotelID)
	}
	// Force-read so the read-modify-write starts from the live value.
	rb, err := g.Booking(ctx, restaurantID, true)
	if err != nil {
		return err
	}
	gx := domain.ParseGroupExclusion(rb.FieldValue(g.groupField))
	if gx.ExcludesHotel(hotelID) {
		return nil
	}
	gx.AddExclusion(hotelID)
	return g.Update(ctx, restaurantID, BookingUpdate{
		Custom: map[string]string{g.groupField: gx.Encode()},
	})
}

func (g *RestoGateway) FieldDefs(ctx context.Context, force bool) ([]domain.FieldDef, error) {
	key := cacheKey("resto", g.tenant, "customfields_list", map[string]any{})
	rows, err := fetchThrough(ctx, g.f, key, g.f.StaleDefault(), force, func(ctx context.Context) ([]map[string]any, error) {
		return g.client.CustomFieldDefs(ctx)
	})
	if err != nil {
		return nil, err
	}
	return mapFieldDefs(rows), nil
}

// Hours resolves the opening hours and special-event closures for one date.
func (g *RestoGateway) Hours(ctx context.Context, date time.Time, force bool) (domain.DayHours, []domain.TimelineBlock, error) {
	params := map[string]any{"from": date.Format("2006-01-02"), "to": date.Format("2006-01-02")}
	key := cacheKey("resto", g.tenant, "openinghours_list", params)
	rows, err := fetchThrough(ctx, g.f, key, g.f.StaleFor(date), force, func(ctx context.Context) ([]map[string]any, error) {
		return g.client.OpeningHours(ctx, date, date)
	})
	if err != nil {
		return domain.DayHours{}, nil, err
	}
	for _, day := range rows {
		if parseDate(lookupStr(day, "date")).Equal(date) {
			dh, closures := mapDayHours(day, date)
			return dh, closures, nil
		}
	}
	return domain.DayHours{Date: date, Closed: true}, nil, nil
}

// AvailableTimes returns the bookable slot times for a date, or nil when the
// upstream does not expose availability for it.
func (g *RestoGateway) AvailableTimes(ctx context.Context, date time.Time, covers int, force bool) ([]time.Time, error) {
	params := map[string]any{"date": date.Format("2006-01-02"), "covers": covers}
	key := cacheKey("resto", g.tenant, "availability_get", params)
	raw, err := fetchThrough(ctx, g.f, key, g.f.StaleFor(date), force, func(ctx context.Context) (map[string]any, error) {
		return g.client.Availability(ctx, date, covers)
	})
	if err != nil {
		return nil, err
	}
	return mapAvailableTimes(raw, date), nil
}

// bustBooking drops both cache tiers for a booking after a mutation.
func (g *RestoGateway) bustBooking(ctx context.Context, id int64) {
	key := cacheKey("resto", g.tenant, "booking_get", map[string]any{"id": id})
	_ = g.f.cache.Del(ctx, key)
	_ = g.f.cache.Del(ctx, key+":stale")
}
