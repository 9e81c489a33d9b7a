package app_test

import (
	"testing"
	"time"

	"staysync/internal/app"
	"staysync/internal/domain"
)

var layoutCfg = app.LayoutConfig{Sitting: 2 * time.Hour, Buffer: 5 * time.Minute}

func at(h, m int) time.Time {
	return time.Date(2025, 6, 1, h, m, 0, 0, time.UTC)
}

func dinnerHours() domain.DayHours {
	return domain.DayHours{
		Date: night(2025, 6, 1),
		Periods: []domain.ServicePeriod{
			{Start: at(18, 0), End: at(22, 0), Interval: 30 * time.Minute},
		},
	}
}

func seated(id int64, start time.Time, covers int) domain.RestaurantBooking {
	return domain.RestaurantBooking{ID: id, GuestName: "Guest", Start: start, Covers: covers, Status: domain.StatusApproved}
}

func TestLayout_NoOverlapWithBuffer(t *testing.T) {
	in := app.LayoutInput{
		Date:  night(2025, 6, 1),
		Hours: dinnerHours(),
		Bookings: []domain.RestaurantBooking{
			seated(1, at(18, 0), 2),
			seated(2, at(18, 30), 2),
			seated(3, at(19, 0), 4),
			seated(4, at(20, 0), 2),
			seated(5, at(18, 0), 6),
		},
	}
	tl := app.Layout(in, layoutCfg)
	if len(tl.Entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(tl.Entries))
	}

	for i := 0; i < len(tl.Entries); i++ {
		for j := i + 1; j < len(tl.Entries); j++ {
			a, b := tl.Entries[i], tl.Entries[j]
			rowsTouch := a.Row < b.Row+b.Span && b.Row < a.Row+a.Span
			if !rowsTouch {
				continue
			}
			gapOK := !a.End.Add(layoutCfg.Buffer).After(b.Start) || !b.End.Add(layoutCfg.Buffer).After(a.Start)
			if !gapOK {
				t.Fatalf("entries %d and %d share rows with under-buffered overlap: %+v vs %+v",
					a.BookingID, b.BookingID, a, b)
			}
		}
	}
	if tl.Rows == 0 {
		t.Fatalf("expected a positive row count")
	}
}

func TestLayout_RowSpanScalesWithCovers(t *testing.T) {
	cases := []struct {
		covers, span int
	}{
		{1, 2}, {2, 2}, {4, 3}, {10, 6}, {20, 11}, {50, 11},
	}
	for _, tc := range cases {
		in := app.LayoutInput{
			Date:     night(2025, 6, 1),
			Hours:    dinnerHours(),
			Bookings: []domain.RestaurantBooking{seated(1, at(19, 0), tc.covers)},
		}
		tl := app.Layout(in, layoutCfg)
		if len(tl.Entries) != 1 || tl.Entries[0].Span != tc.span {
			t.Fatalf("covers %d: expected span %d, got %+v", tc.covers, tc.span, tl.Entries)
		}
	}
}

func TestLayout_ClipsToWindow(t *testing.T) {
	in := app.LayoutInput{
		Date:  night(2025, 6, 1),
		Hours: dinnerHours(),
		Bookings: []domain.RestaurantBooking{
			seated(1, at(21, 0), 2),  // would run past close
			seated(2, at(23, 30), 2), // entirely outside the window
		},
	}
	tl := app.Layout(in, layoutCfg)
	if len(tl.Entries) != 1 {
		t.Fatalf("expected one placed entry, got %+v", tl.Entries)
	}
	e := tl.Entries[0]
	if !e.Start.Equal(at(21, 0)) || !e.End.Equal(at(22, 0)) {
		t.Fatalf("expected clip to close, got %v-%v", e.Start, e.End)
	}
}

func TestLayout_ClosedDay(t *testing.T) {
	in := app.LayoutInput{
		Date:     night(2025, 6, 1),
		Hours:    domain.DayHours{Date: night(2025, 6, 1), Closed: true},
		Bookings: []domain.RestaurantBooking{seated(1, at(19, 0), 2)},
	}
	tl := app.Layout(in, layoutCfg)
	if len(tl.Entries) != 0 {
		t.Fatalf("closed day should place nothing, got %+v", tl.Entries)
	}
	if len(tl.Blocks) != 1 || tl.Blocks[0].Reason != "event" {
		t.Fatalf("expected a single closure overlay, got %+v", tl.Blocks)
	}
}

func TestLayout_GapBetweenServices(t *testing.T) {
	hours := domain.DayHours{
		Date: night(2025, 6, 1),
		Periods: []domain.ServicePeriod{
			{Start: at(12, 0), End: at(14, 30), Interval: 15 * time.Minute},
			{Start: at(18, 0), End: at(22, 0), Interval: 30 * time.Minute},
		},
	}
	tl := app.Layout(app.LayoutInput{Date: night(2025, 6, 1), Hours: hours}, layoutCfg)

	var gaps []domain.TimelineBlock
	for _, b := range tl.Blocks {
		if b.Reason == "gap" {
			gaps = append(gaps, b)
		}
	}
	if len(gaps) != 1 {
		t.Fatalf("expected one gap block, got %+v", gaps)
	}
	if !gaps[0].Start.Equal(at(14, 30)) || !gaps[0].End.Equal(at(18, 0)) {
		t.Fatalf("unexpected gap bounds: %v-%v", gaps[0].Start, gaps[0].End)
	}
}

func TestLayout_FullSlotComplementMerges(t *testing.T) {
	in := app.LayoutInput{
		Date:  night(2025, 6, 1),
		Hours: dinnerHours(),
		// Grid is 18:00..20:00 on the half hour; 18:30 and 20:00 still have
		// tables, so everything else shows as fully booked.
		AvailableSlots: []time.Time{at(18, 30), at(20, 0)},
	}
	tl := app.Layout(in, layoutCfg)

	var full []domain.TimelineBlock
	for _, b := range tl.Blocks {
		if b.Reason == "full" {
			full = append(full, b)
		}
	}
	if len(full) != 2 {
		t.Fatalf("expected two merged full blocks, got %+v", full)
	}
	if !full[0].Start.Equal(at(18, 0)) || !full[0].End.Equal(at(18, 30)) {
		t.Fatalf("unexpected first full block: %+v", full[0])
	}
	if !full[1].Start.Equal(at(19, 0)) || !full[1].End.Equal(at(20, 0)) {
		t.Fatalf("unexpected merged full block: %+v", full[1])
	}
}

func TestLayout_NoAvailabilityMeansNoFullBlocks(t *testing.T) {
	tl := app.Layout(app.LayoutInput{Date: night(2025, 6, 1), Hours: dinnerHours()}, layoutCfg)
	for _, b := range tl.Blocks {
		if b.Reason == "full" {
			t.Fatalf("nil availability must not synthesize full blocks: %+v", b)
		}
	}
}
