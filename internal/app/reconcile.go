package app

import (
	"strconv"
	"time"

	"staysync/internal/domain"
)

// Reconciler computes per-field discrepancies and suggested corrective
// updates between a matched pair of bookings. It only proposes; applying a
// suggestion is an explicit operator action, and each suggestion can be
// toggled independently before being sent.
type Reconciler struct {
	packageKeyword  string
	packageField    string
	hotelGuestField string
	bookingIDField  string
}

func NewReconciler(packageKeyword, packageField, hotelGuestField, bookingIDField string) *Reconciler {
	return &Reconciler{
		packageKeyword:  packageKeyword,
		packageField:    packageField,
		hotelGuestField: hotelGuestField,
		bookingIDField:  bookingIDField,
	}
}

// Compare builds the symmetric comparison for one stay-night. Re-running
// Compare after applying any suggestion yields no suggestion for that field.
func (r *Reconciler) Compare(hb *domain.HotelBooking, rb domain.RestaurantBooking, night time.Time) domain.Comparison {
	cmp := domain.Comparison{
		HotelSide:      map[domain.CompareField]string{},
		RestaurantSide: map[domain.CompareField]string{},
		Match:          map[domain.CompareField]bool{},
		Suggested:      map[domain.CompareField]string{},
		Advisory:       map[domain.CompareField]bool{},
	}

	var guest domain.Guest
	if pg := hb.PrimaryGuest(); pg != nil {
		guest = *pg
	}

	// Name: surnames must agree after normalization and be long enough to
	// mean anything; the suggestion is the hotel's name, title-cased.
	hName, rName := guest.Name, rb.GuestName
	cmp.HotelSide[domain.FieldName] = hName
	cmp.RestaurantSide[domain.FieldName] = rName
	hs := normalizeName(surname(hName))
	cmp.Match[domain.FieldName] = hs != "" && len(hs) > 2 && hs == normalizeName(surname(rName))
	if suggested := titleCase(hName); hName != "" && rName != hName && rName != suggested {
		cmp.Suggested[domain.FieldName] = suggested
	}

	// Phone: compare the trailing digits of the guest's preferred number.
	hPhone, rPhone := guest.Phone(), rb.Phone
	cmp.HotelSide[domain.FieldPhone] = hPhone
	cmp.RestaurantSide[domain.FieldPhone] = rPhone
	ht := phoneTail(hPhone)
	phoneMatch := ht != "" && ht == phoneTail(rPhone)
	cmp.Match[domain.FieldPhone] = phoneMatch
	if !phoneMatch && hPhone != "" && rPhone != hPhone {
		cmp.Suggested[domain.FieldPhone] = hPhone
	}

	// Email.
	hEmail, rEmail := guest.Email(), rb.Email
	cmp.HotelSide[domain.FieldEmail] = hEmail
	cmp.RestaurantSide[domain.FieldEmail] = rEmail
	emailMatch := normalizeEmail(hEmail) == normalizeEmail(rEmail)
	cmp.Match[domain.FieldEmail] = emailMatch
	if !emailMatch && hEmail != "" && rEmail != hEmail {
		cmp.Suggested[domain.FieldEmail] = hEmail
	}

	// People count: differences are often legitimate (outside diners join),
	// so the suggestion is advisory and never auto-applied.
	people := hb.People()
	cmp.HotelSide[domain.FieldCovers] = strconv.Itoa(people)
	cmp.RestaurantSide[domain.FieldCovers] = strconv.Itoa(rb.Covers)
	cmp.Match[domain.FieldCovers] = people == rb.Covers
	if people != rb.Covers {
		cmp.Suggested[domain.FieldCovers] = strconv.Itoa(people)
		cmp.Advisory[domain.FieldCovers] = true
	}

	// Booking reference: always the hotel booking id; no-op once applied.
	idStr := strconv.FormatInt(hb.ID, 10)
	rRef := rb.FieldValue(r.bookingIDField)
	cmp.HotelSide[domain.FieldBookingRef] = idStr
	cmp.RestaurantSide[domain.FieldBookingRef] = rRef
	cmp.Match[domain.FieldBookingRef] = rRef == idStr
	if rRef != idStr {
		cmp.Suggested[domain.FieldBookingRef] = idStr
	}

	// Package: the hotel side has it iff an inventory line on this night
	// mentions the package keyword. Empty suggestion means remove the field.
	hasPackage := hb.HasPackageOn(night, r.packageKeyword)
	rPkg := rb.FieldValue(r.packageField)
	cmp.HotelSide[domain.FieldPackage] = yesNo(hasPackage)
	cmp.RestaurantSide[domain.FieldPackage] = rPkg
	cmp.Match[domain.FieldPackage] = (hasPackage && rPkg == "Yes") || (!hasPackage && (rPkg == "" || rPkg == "No"))
	switch {
	case hasPackage && rPkg != "Yes":
		cmp.Suggested[domain.FieldPackage] = "Yes"
	case !hasPackage && rPkg == "Yes":
		cmp.Suggested[domain.FieldPackage] = ""
	}

	// Hotel-guest flag: always suggested Yes until it is exactly Yes.
	rHG := rb.FieldValue(r.hotelGuestField)
	cmp.HotelSide[domain.FieldHotelGuest] = "Yes"
	cmp.RestaurantSide[domain.FieldHotelGuest] = rHG
	cmp.Match[domain.FieldHotelGuest] = rHG == "Yes"
	if rHG != "Yes" {
		cmp.Suggested[domain.FieldHotelGuest] = "Yes"
	}

	// Status: only early-stage bookings get an approve suggestion.
	cmp.HotelSide[domain.FieldStatus] = hb.Status
	cmp.RestaurantSide[domain.FieldStatus] = string(rb.Status)
	cmp.Match[domain.FieldStatus] = !rb.Status.EarlyStage()
	if rb.Status.EarlyStage() {
		cmp.Suggested[domain.FieldStatus] = string(domain.StatusApproved)
	}

	return cmp
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
