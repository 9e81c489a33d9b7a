package app

import (
	"sort"
	"time"

	"staysync/internal/domain"
)

const maxSpanCovers = 20

// LayoutConfig carries the geometry knobs: how long a booking occupies a
// table by default, and the clearance required between bookings sharing rows.
type LayoutConfig struct {
	Sitting time.Duration
	Buffer  time.Duration
}

// LayoutInput is one night's worth of bookings plus the day's shape.
// AvailableSlots nil means availability is unknown and no "full" overlays
// are derived.
type LayoutInput struct {
	Date           time.Time
	Bookings       []domain.RestaurantBooking
	Hours          domain.DayHours
	Closures       []domain.TimelineBlock
	AvailableSlots []time.Time
}

// rowInterval is a placed booking's raw occupancy on a row.
type rowInterval struct {
	start, end time.Time
}

// Layout packs the night's bookings into non-overlapping rows. Greedy
// first-fit over an interval graph with size-weighted row consumption:
// deterministic for a given input order and overlap-free, not guaranteed
// row-count-optimal.
func Layout(in LayoutInput, cfg LayoutConfig) domain.Timeline {
	tl := domain.Timeline{Date: in.Date}

	open, close, ok := in.Hours.Window()
	if !ok {
		// Closed all day: a single overlay, nothing to place.
		tl.Blocks = []domain.TimelineBlock{{Reason: "event"}}
		return tl
	}

	entries := make([]domain.TimelineEntry, 0, len(in.Bookings))
	for _, b := range in.Bookings {
		if b.Start.IsZero() {
			continue
		}
		start, end := clip(b.Start, b.Start.Add(cfg.Sitting), open, close)
		if !end.After(start) {
			continue
		}
		entries = append(entries, domain.TimelineEntry{
			BookingID: b.ID,
			Label:     b.GuestName,
			Start:     start,
			End:       end,
			Span:      rowSpan(b.Covers),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

	var rows [][]rowInterval
	for i := range entries {
		e := &entries[i]
		bufStart := e.Start.Add(-cfg.Buffer)
		bufEnd := e.End.Add(cfg.Buffer)

		row := 0
		for !fits(rows, row, e.Span, bufStart, bufEnd) {
			row++
		}
		for len(rows) < row+e.Span {
			rows = append(rows, nil)
		}
		for r := row; r < row+e.Span; r++ {
			rows[r] = append(rows[r], rowInterval{start: e.Start, end: e.End})
		}
		e.Row = row
	}

	tl.Entries = entries
	tl.Rows = len(rows)
	tl.Blocks = buildBlocks(in, cfg, open, close)
	return tl
}

// rowSpan reserves more vertical space for larger parties.
func rowSpan(covers int) int {
	if covers > maxSpanCovers {
		covers = maxSpanCovers
	}
	span := covers/2 + 1
	if span < 2 {
		span = 2
	}
	return span
}

// fits reports whether all rows in [row, row+span) are free of any interval
// overlapping the buffered range. Rows beyond the current pool are free.
func fits(rows [][]rowInterval, row, span int, bufStart, bufEnd time.Time) bool {
	for r := row; r < row+span && r < len(rows); r++ {
		for _, iv := range rows[r] {
			if iv.start.Before(bufEnd) && bufStart.Before(iv.end) {
				return false
			}
		}
	}
	return true
}

func clip(start, end, open, close time.Time) (time.Time, time.Time) {
	if start.Before(open) {
		start = open
	}
	if end.After(close) {
		end = close
	}
	return start, end
}

// buildBlocks computes the non-interactive overlays: gaps between service
// periods, special-event closures, and fully-booked slots derived from the
// complement of the available-slot set against the expected slot grid.
func buildBlocks(in LayoutInput, cfg LayoutConfig, open, close time.Time) []domain.TimelineBlock {
	var blocks []domain.TimelineBlock

	// Gaps between sorted periods inside the overall window.
	periods := append([]domain.ServicePeriod(nil), in.Hours.Periods...)
	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Start.Before(periods[j].Start) })
	cursor := open
	for _, p := range periods {
		if p.Start.After(cursor) {
			blocks = append(blocks, domain.TimelineBlock{Start: cursor, End: p.Start, Reason: "gap"})
		}
		if p.End.After(cursor) {
			cursor = p.End
		}
	}
	if close.After(cursor) {
		blocks = append(blocks, domain.TimelineBlock{Start: cursor, End: close, Reason: "gap"})
	}

	blocks = append(blocks, in.Closures...)

	if in.AvailableSlots != nil {
		avail := make(map[time.Time]struct{}, len(in.AvailableSlots))
		for _, t := range in.AvailableSlots {
			avail[t] = struct{}{}
		}
		var full []domain.TimelineBlock
		for _, p := range periods {
			// Step from period open to the last possible seating.
			last := p.End.Add(-cfg.Sitting)
			for t := p.Start; !t.After(last); t = t.Add(p.Interval) {
				if _, ok := avail[t]; ok {
					continue
				}
				end := t.Add(p.Interval)
				if n := len(full); n > 0 && full[n-1].End.Equal(t) {
					full[n-1].End = end // merge adjacent full slots
					continue
				}
				full = append(full, domain.TimelineBlock{Start: t, End: end, Reason: "full"})
			}
		}
		blocks = append(blocks, full...)
	}

	return blocks
}
