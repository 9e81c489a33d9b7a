package domain

import "time"

// MatchType tags how a candidate was matched. Primary types come from an
// unambiguous identifier; composite is accumulated partial-signal evidence.
type MatchType string

const (
	MatchBookingID      MatchType = "booking_id"
	MatchAgentRef       MatchType = "agent_ref"
	MatchNotesBookingID MatchType = "notes_booking_id"
	MatchNotesAgentRef  MatchType = "notes_agent_ref"
	MatchComposite      MatchType = "composite"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchCandidate pairs a restaurant booking with the hotel booking it was
// scored against for one stay-night. Ephemeral: computed per request.
type MatchCandidate struct {
	HotelID    int64
	Restaurant RestaurantBooking
	Night      time.Time
	Type       MatchType
	Confidence Confidence
	Score      int
	Primary    bool
	Signals    []string
}

// NightResult is the match outcome for one stay-night. Unavailable marks a
// night whose candidate pool could not be fetched (reported as no data, not
// as an error).
type NightResult struct {
	Night       time.Time
	HasPackage  bool
	Matches     []MatchCandidate
	Unavailable bool
}

// StayMatches is the full multi-night result for one hotel booking.
type StayMatches struct {
	HotelID int64
	Nights  []NightResult
}
