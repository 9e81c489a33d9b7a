package domain

import (
	"strings"
	"time"
)

type ContactKind string

const (
	ContactPhone ContactKind = "phone"
	ContactEmail ContactKind = "email"
)

// Contact is one way of reaching a guest. Label carries the upstream
// sub-label ("mobile", "landline", ...) when the PMS provides one.
type Contact struct {
	Kind  ContactKind
	Label string
	Value string
}

type Guest struct {
	Name     string
	Primary  bool
	Contacts []Contact
}

// Phone returns the guest's preferred phone number: mobile over landline
// over any other phone contact. Empty string when the guest has none.
func (g Guest) Phone() string {
	var landline, other string
	for _, c := range g.Contacts {
		if c.Kind != ContactPhone || c.Value == "" {
			continue
		}
		switch strings.ToLower(c.Label) {
		case "mobile", "cell", "cellphone":
			return c.Value
		case "landline", "home", "phone":
			if landline == "" {
				landline = c.Value
			}
		default:
			if other == "" {
				other = c.Value
			}
		}
	}
	if landline != "" {
		return landline
	}
	return other
}

// Email returns the guest's first email contact, or "".
func (g Guest) Email() string {
	for _, c := range g.Contacts {
		if c.Kind == ContactEmail && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// RateEntry is one per-night rate-plan line on a hotel booking.
type RateEntry struct {
	Night  time.Time
	Plan   string
	Amount *float64
}

// InventoryItem is a dated inventory line. Description free text is what
// package detection runs against.
type InventoryItem struct {
	Night       time.Time
	Description string
}

// HotelBooking is a read-only snapshot of a PMS booking. It is fetched per
// request and never mutated by this system.
type HotelBooking struct {
	ID        int64
	Ref       string
	AgentRef  string
	Arrival   time.Time // date-only, UTC midnight
	Departure time.Time // date-only, exclusive
	Site      string
	Guests    []Guest
	Adults    int
	Children  int
	Infants   int
	Tariffs   []RateEntry
	Inventory []InventoryItem
	Status    string
}

// Nights lists the stay-nights: arrival inclusive through departure exclusive.
func (h HotelBooking) Nights() []time.Time {
	if h.Departure.Before(h.Arrival) || h.Departure.Equal(h.Arrival) {
		return nil
	}
	var out []time.Time
	for d := h.Arrival; d.Before(h.Departure); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// PrimaryGuest returns the guest flagged primary, falling back to the first
// guest on the booking. Nil when the guest list is empty.
func (h HotelBooking) PrimaryGuest() *Guest {
	for i := range h.Guests {
		if h.Guests[i].Primary {
			return &h.Guests[i]
		}
	}
	if len(h.Guests) > 0 {
		return &h.Guests[0]
	}
	return nil
}

// HasPackageOn reports whether any inventory item dated to the given night
// carries the package keyword (case-insensitive) in its description.
func (h HotelBooking) HasPackageOn(night time.Time, keyword string) bool {
	if keyword == "" {
		return false
	}
	kw := strings.ToLower(keyword)
	for _, it := range h.Inventory {
		if sameDay(it.Night, night) && strings.Contains(strings.ToLower(it.Description), kw) {
			return true
		}
	}
	return false
}

// People is the total occupancy across adults, children and infants.
func (h HotelBooking) People() int { return h.Adults + h.Children + h.Infants }

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
