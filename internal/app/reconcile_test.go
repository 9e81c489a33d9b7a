package app_test

import (
	"testing"

	"staysync/internal/app"
	"staysync/internal/domain"
)

const (
	packageField    = "DBB"
	hotelGuestField = "Hotel Guest"
	packageKeyword  = "DBB"
)

func newReconciler() *app.Reconciler {
	return app.NewReconciler(packageKeyword, packageField, hotelGuestField, bookingIDField)
}

func comparableHotelBooking() *domain.HotelBooking {
	hb := fixtureHotelBooking()
	hb.Adults = 2
	hb.Inventory = []domain.InventoryItem{
		{Night: night(2025, 6, 1), Description: "DBB package, 2 adults"},
	}
	hb.Status = "confirmed"
	return hb
}

func TestCompare_Discrepancies(t *testing.T) {
	hb := comparableHotelBooking()
	rb := domain.RestaurantBooking{
		ID:        5,
		GuestName: "J. Doe",
		Phone:     "0123",
		Email:     "other@example.com",
		Covers:    4,
		Status:    domain.StatusRequest,
	}

	cmp := newReconciler().Compare(hb, rb, night(2025, 6, 1))

	if cmp.Suggested[domain.FieldName] != "Jane Doe" {
		t.Fatalf("expected title-cased name suggestion, got %q", cmp.Suggested[domain.FieldName])
	}
	if cmp.Suggested[domain.FieldPhone] != "+44 7911 123456" {
		t.Fatalf("expected hotel phone suggestion, got %q", cmp.Suggested[domain.FieldPhone])
	}
	if cmp.Suggested[domain.FieldEmail] != "Jane.Doe@Example.com" {
		t.Fatalf("expected hotel email suggestion, got %q", cmp.Suggested[domain.FieldEmail])
	}
	if cmp.Suggested[domain.FieldCovers] != "2" || !cmp.Advisory[domain.FieldCovers] {
		t.Fatalf("expected advisory covers suggestion of 2, got %q (advisory=%v)",
			cmp.Suggested[domain.FieldCovers], cmp.Advisory[domain.FieldCovers])
	}
	if cmp.Suggested[domain.FieldBookingRef] != "1001" {
		t.Fatalf("expected booking ref suggestion, got %q", cmp.Suggested[domain.FieldBookingRef])
	}
	if cmp.Suggested[domain.FieldPackage] != "Yes" {
		t.Fatalf("expected package Yes suggestion, got %q", cmp.Suggested[domain.FieldPackage])
	}
	if cmp.Suggested[domain.FieldHotelGuest] != "Yes" {
		t.Fatalf("expected hotel guest Yes suggestion, got %q", cmp.Suggested[domain.FieldHotelGuest])
	}
	if cmp.Suggested[domain.FieldStatus] != "approved" {
		t.Fatalf("expected approve suggestion for request status, got %q", cmp.Suggested[domain.FieldStatus])
	}
}

func TestCompare_PackageRemovalAndNights(t *testing.T) {
	hb := comparableHotelBooking()
	rb := domain.RestaurantBooking{
		ID:     5,
		Fields: []domain.CustomField{{Name: packageField, Value: "Yes"}},
		Status: domain.StatusApproved,
	}

	// Night two has no DBB inventory line, so the flag should come off.
	cmp := newReconciler().Compare(hb, rb, night(2025, 6, 2))
	if v, ok := cmp.Suggested[domain.FieldPackage]; !ok || v != "" {
		t.Fatalf("expected empty-string removal suggestion, got %q (present=%v)", v, ok)
	}

	// Night one has the package on both sides: agreement, no suggestion.
	rbMatching := rb
	cmp = newReconciler().Compare(hb, rbMatching, night(2025, 6, 1))
	if !cmp.Match[domain.FieldPackage] {
		t.Fatalf("expected package agreement on night one")
	}
	if _, ok := cmp.Suggested[domain.FieldPackage]; ok {
		t.Fatalf("unexpected package suggestion: %q", cmp.Suggested[domain.FieldPackage])
	}
}

func TestCompare_StatusOnlyEarlyStageSuggested(t *testing.T) {
	hb := comparableHotelBooking()
	for _, st := range []domain.BookingStatus{domain.StatusArrived, domain.StatusSeated, domain.StatusLeft, domain.StatusApproved} {
		cmp := newReconciler().Compare(hb, domain.RestaurantBooking{Status: st}, night(2025, 6, 1))
		if _, ok := cmp.Suggested[domain.FieldStatus]; ok {
			t.Fatalf("status %s should not get an approve suggestion", st)
		}
	}
	for _, st := range []domain.BookingStatus{domain.StatusRequest, domain.StatusDeclined, domain.StatusWaitlist} {
		cmp := newReconciler().Compare(hb, domain.RestaurantBooking{Status: st}, night(2025, 6, 1))
		if cmp.Suggested[domain.FieldStatus] != "approved" {
			t.Fatalf("status %s should get an approve suggestion", st)
		}
	}
}

// Applying every suggestion and re-comparing must converge: the second pass
// proposes nothing new for the applied fields.
func TestCompare_SuggestionsAreIdempotent(t *testing.T) {
	hb := comparableHotelBooking()
	stayNight := night(2025, 6, 1)
	rb := domain.RestaurantBooking{
		ID:        5,
		GuestName: "J. Doe",
		Phone:     "0123",
		Email:     "other@example.com",
		Covers:    4,
		Status:    domain.StatusRequest,
	}

	first := newReconciler().Compare(hb, rb, stayNight)
	applySuggestions(&rb, first)

	second := newReconciler().Compare(hb, rb, stayNight)
	for f, v := range second.Suggested {
		t.Errorf("second pass still suggests %s=%q", f, v)
	}
}

func applySuggestions(rb *domain.RestaurantBooking, cmp domain.Comparison) {
	setField := func(name, value string) {
		for i := range rb.Fields {
			if rb.Fields[i].Name == name {
				rb.Fields[i].Value = value
				return
			}
		}
		rb.Fields = append(rb.Fields, domain.CustomField{Name: name, Value: value})
	}
	for f, v := range cmp.Suggested {
		switch f {
		case domain.FieldName:
			rb.GuestName = v
		case domain.FieldPhone:
			rb.Phone = v
		case domain.FieldEmail:
			rb.Email = v
		case domain.FieldCovers:
			rb.Covers = atoiOr(v, rb.Covers)
		case domain.FieldBookingRef:
			setField(bookingIDField, v)
		case domain.FieldPackage:
			setField(packageField, v)
		case domain.FieldHotelGuest:
			setField(hotelGuestField, v)
		case domain.FieldStatus:
			rb.Status = domain.BookingStatus(v)
		}
	}
}

func atoiOr(s string, def int) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	return n
}
