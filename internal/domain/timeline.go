package domain

import "time"

// TimelineEntry is one positioned booking on the night's chart. Row is the
// first occupied row; Span the number of rows consumed downward.
type TimelineEntry struct {
	BookingID int64
	Label     string
	Start     time.Time
	End       time.Time
	Row       int
	Span      int
}

// TimelineBlock is a non-interactive closed/unavailable overlay.
type TimelineBlock struct {
	Start  time.Time
	End    time.Time
	Reason string // gap|event|full
}

// Timeline is the laid-out chart for one night.
type Timeline struct {
	Date    time.Time
	Entries []TimelineEntry
	Blocks  []TimelineBlock
	Rows    int
}
