package domain

// CompareField names one reconciled field between the two booking records.
type CompareField string

const (
	FieldName       CompareField = "name"
	FieldPhone      CompareField = "phone"
	FieldEmail      CompareField = "email"
	FieldCovers     CompareField = "covers"
	FieldBookingRef CompareField = "booking_ref"
	FieldPackage    CompareField = "package"
	FieldHotelGuest CompareField = "hotel_guest"
	FieldStatus     CompareField = "status"
)

// CompareFields in display order.
var CompareFields = []CompareField{
	FieldName, FieldPhone, FieldEmail, FieldCovers,
	FieldBookingRef, FieldPackage, FieldHotelGuest, FieldStatus,
}

// Comparison is the symmetric reconciliation output for one matched pair.
// Suggested holds only fields where a change is recommended; each entry is
// independently toggleable by the operator before being applied. Advisory
// marks suggestions that are informational only and never auto-applied.
type Comparison struct {
	HotelSide      map[CompareField]string
	RestaurantSide map[CompareField]string
	Match          map[CompareField]bool
	Suggested      map[CompareField]string
	Advisory       map[CompareField]bool
}
