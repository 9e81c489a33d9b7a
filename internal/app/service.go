package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"staysync/internal/domain"
	"staysync/internal/shared"
)

// Service ties the gateways and engines into the request-level operations
// the outer surfaces call. One request runs the whole fetch→match→reconcile
// pipeline to completion; the only cross-request coordination is the cache
// layer's per-key lock.
type Service struct {
	hotels     *HotelGateway
	restos     *RestoGateway
	matcher    *Matcher
	reconciler *Reconciler

	packageKeyword string
	concurrency    int
	layout         LayoutConfig
	log            zerolog.Logger
}

func NewService(cfg shared.Config, hotels *HotelGateway, restos *RestoGateway, log zerolog.Logger) *Service {
	concurrency := cfg.MatchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		hotels:         hotels,
		restos:         restos,
		matcher:        NewMatcher(cfg.BookingIDField, cfg.GroupField, log),
		reconciler:     NewReconciler(cfg.PackageKeyword, cfg.PackageField, cfg.HotelGuestField, cfg.BookingIDField),
		packageKeyword: cfg.PackageKeyword,
		concurrency:    concurrency,
		layout:         LayoutConfig{Sitting: cfg.SittingDuration, Buffer: cfg.LayoutBuffer},
		log:            log,
	}
}

// MatchStay resolves the hotel booking and matches candidates for every
// stay-night. Nights whose candidate pool could not be fetched are reported
// as unavailable, not as an overall failure. Night fetches fan out, bounded;
// each still goes through the per-key cache lock.
func (s *Service) MatchStay(ctx context.Context, hotelID int64, force bool) (*domain.StayMatches, error) {
	hb, err := s.hotels.Booking(ctx, hotelID, force)
	if err != nil {
		return nil, err
	}
	nights := hb.Nights()
	out := &domain.StayMatches{HotelID: hb.ID, Nights: make([]domain.NightResult, len(nights))}

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, night := range nights {
		i, night := i, night
		g.Go(func() error {
			res := domain.NightResult{
				Night:      night,
				HasPackage: hb.HasPackageOn(night, s.packageKeyword),
			}
			candidates, err := s.restos.ListBookings(ctx, night, night, force)
			if err != nil {
				s.log.Warn().Err(err).Time("night", night).Int64("hotel_id", hb.ID).Msg("night candidates unavailable")
				res.Unavailable = true
			} else {
				res.Matches = s.matcher.MatchNight(hb, night, candidates)
			}
			out.Nights[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// MatchPeriod matches every hotel booking in a PMS listing window.
func (s *Service) MatchPeriod(ctx context.Context, listType string, from, to time.Time, force bool) ([]domain.StayMatches, error) {
	hbs, err := s.hotels.ListBookings(ctx, listType, from, to, force)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StayMatches, 0, len(hbs))
	for _, hb := range hbs {
		sm, err := s.MatchStay(ctx, hb.ID, force)
		if err != nil {
			s.log.Warn().Err(err).Int64("hotel_id", hb.ID).Msg("stay match failed, skipping")
			continue
		}
		out = append(out, *sm)
	}
	return out, nil
}

// Compare fetches both sides and reconciles them for the given stay-night.
func (s *Service) Compare(ctx context.Context, hotelID, restaurantID int64, night time.Time, force bool) (*domain.Comparison, error) {
	if night.IsZero() {
		return nil, domain.Validationf("a stay-night date is required")
	}
	hb, err := s.hotels.Booking(ctx, hotelID, force)
	if err != nil {
		return nil, err
	}
	rb, err := s.restos.Booking(ctx, restaurantID, force)
	if err != nil {
		return nil, err
	}
	cmp := s.reconciler.Compare(hb, *rb, night)
	return &cmp, nil
}

// Timeline lays out one night's bookings against the day's opening hours,
// special events, and (when known) slot availability.
func (s *Service) Timeline(ctx context.Context, date time.Time, force bool) (*domain.Timeline, error) {
	if date.IsZero() {
		return nil, domain.Validationf("a date is required")
	}
	bookings, err := s.restos.ListBookings(ctx, date, date, force)
	if err != nil {
		return nil, err
	}
	hours, closures, err := s.restos.Hours(ctx, date, force)
	if err != nil {
		return nil, err
	}
	// Availability is best effort: the chart still renders without it.
	avail, err := s.restos.AvailableTimes(ctx, date, 2, force)
	if err != nil {
		s.log.Warn().Err(err).Time("date", date).Msg("availability unavailable, skipping full-slot overlays")
		avail = nil
	}
	tl := Layout(LayoutInput{
		Date:           date,
		Bookings:       bookings,
		Hours:          hours,
		Closures:       closures,
		AvailableSlots: avail,
	}, s.layout)
	return &tl, nil
}

// Sites lists the property's rooms/sites.
func (s *Service) Sites(ctx context.Context, force bool) ([]string, error) {
	return s.hotels.Sites(ctx, force)
}

// UpdateBooking applies operator-approved changes to a restaurant booking.
func (s *Service) UpdateBooking(ctx context.Context, id int64, u BookingUpdate) error {
	return s.restos.Update(ctx, id, u)
}

// ExcludeMatch marks a hotel booking as a non-match for a restaurant booking.
func (s *Service) ExcludeMatch(ctx context.Context, restaurantID, hotelID int64) error {
	return s.restos.ExcludeMatch(ctx, restaurantID, hotelID)
}
