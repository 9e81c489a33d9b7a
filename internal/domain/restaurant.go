package domain

import "time"

// BookingStatus is the closed set of restaurant booking states.
type BookingStatus string

const (
	StatusRequest   BookingStatus = "request"
	StatusApproved  BookingStatus = "approved"
	StatusDeclined  BookingStatus = "declined"
	StatusWaitlist  BookingStatus = "waitlist"
	StatusArrived   BookingStatus = "arrived"
	StatusSeated    BookingStatus = "seated"
	StatusLeft      BookingStatus = "left"
	StatusNoShow    BookingStatus = "no_show"
	StatusCancelled BookingStatus = "cancelled"
)

// AllStatuses in their canonical lifecycle order.
var AllStatuses = []BookingStatus{
	StatusRequest, StatusApproved, StatusDeclined, StatusWaitlist,
	StatusArrived, StatusSeated, StatusLeft, StatusNoShow, StatusCancelled,
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusRequest, StatusApproved, StatusDeclined, StatusWaitlist,
		StatusArrived, StatusSeated, StatusLeft, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// EarlyStage reports whether the booking has not yet been confirmed by the
// restaurant. Only these states are eligible for an "approve" suggestion.
func (s BookingStatus) EarlyStage() bool {
	switch s {
	case StatusRequest, StatusDeclined, StatusWaitlist:
		return true
	}
	return false
}

// Dead reports whether the booking should be excluded from matching entirely.
func (s BookingStatus) Dead() bool {
	return s == StatusCancelled || s == StatusNoShow
}

// CustomField is a name/value pair on a restaurant booking. Single-choice
// fields carry Value and its human-readable Label; multi-choice fields carry
// Values/Labels in parallel.
type CustomField struct {
	Name   string
	Value  string
	Label  string
	Values []string
	Labels []string
	Multi  bool
}

// RestaurantBooking is a reservation read from the restaurant system. It is
// mutated only through explicit update/create operations.
type RestaurantBooking struct {
	ID            int64
	RestaurantRef string
	Date          time.Time // date-only
	Start         time.Time // seating date-time
	Covers        int
	GuestName     string
	Phone         string
	Email         string
	Status        BookingStatus
	Notes         []string
	Fields        []CustomField
}

// Field returns the named custom field, if present.
func (b RestaurantBooking) Field(name string) (CustomField, bool) {
	for _, f := range b.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return CustomField{}, false
}

// FieldValue returns the named custom field's value, or "" when absent.
func (b RestaurantBooking) FieldValue(name string) string {
	if f, ok := b.Field(name); ok {
		return f.Value
	}
	return ""
}

// FieldDef is a custom-field definition fetched from the restaurant system:
// the field's name, its kind (text, single-choice, multi-choice), and the
// choice options where applicable.
type FieldDef struct {
	Name    string
	Kind    string
	Options []string
}

// ServicePeriod is one opening window on a day, with its slot interval.
type ServicePeriod struct {
	Start    time.Time
	End      time.Time
	Interval time.Duration
}

// DayHours are the resolved opening hours for one date, special-event
// overrides already applied.
type DayHours struct {
	Date    time.Time
	Closed  bool
	Periods []ServicePeriod
}

// Window returns the overall open window: first open to last close.
func (d DayHours) Window() (time.Time, time.Time, bool) {
	if d.Closed || len(d.Periods) == 0 {
		return time.Time{}, time.Time{}, false
	}
	open, close := d.Periods[0].Start, d.Periods[0].End
	for _, p := range d.Periods[1:] {
		if p.Start.Before(open) {
			open = p.Start
		}
		if p.End.After(close) {
			close = p.End
		}
	}
	return open, close, true
}
