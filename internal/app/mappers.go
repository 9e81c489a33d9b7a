package app

import (
	"strconv"
	"strings"
	"time"

	"staysync/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hotelAliases = map[string][]string{
	"id":        {"booking_id", "id"},
	"ref":       {"booking_reference", "reference", "ref"},
	"agent_ref": {"travel_agent_reference", "agent_reference", "agent_ref"},
	"arrival":   {"period_from", "arrival", "check_in"},
	"departure": {"period_to", "departure", "check_out"},
	"site":      {"site_name", "room_name", "site", "room"},
	"status":    {"booking_status", "status"},
}

var restoAliases = map[string][]string{
	"id":     {"id", "booking_id"},
	"ref":    {"reference", "booking_reference"},
	"date":   {"date", "visit_date"},
	"time":   {"time", "visit_time"},
	"name":   {"name", "guest_name", "customer.name"},
	"first":  {"customer.first_name", "first_name"},
	"last":   {"customer.last_name", "last_name"},
	"phone":  {"customer.phone", "phone", "customer.mobile", "mobile"},
	"email":  {"customer.email", "email"},
	"status": {"status", "booking_status"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstStr: first non-empty string across a named alias set.
func firstStr(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstInt64: int64 from several paths (float64/int/string).
func firstInt64(m map[string]any, paths ...string) int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

// firstInt: like firstInt64 but for small counts.
func firstInt(m map[string]any, paths ...string) int {
	return int(firstInt64(m, paths...))
}

func firstFloat(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func boolish(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "yes" || s == "1"
	case float64:
		return t != 0
	}
	return false
}

// parseDate accepts the date layouts both upstreams emit. Zero time when
// nothing parses.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// parseClock parses "HH:MM" or "HH:MM:SS" onto the given date.
func parseClock(day time.Time, s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		}
	}
	return time.Time{}
}

func rowList(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

/********** hotel booking mapper **********/

func mapHotelBooking(p map[string]any) domain.HotelBooking {
	hb := domain.HotelBooking{
		ID:        firstInt64(p, hotelAliases["id"]...),
		Ref:       firstStr(p, hotelAliases, "ref"),
		AgentRef:  firstStr(p, hotelAliases, "agent_ref"),
		Arrival:   parseDate(firstStr(p, hotelAliases, "arrival")),
		Departure: parseDate(firstStr(p, hotelAliases, "departure")),
		Site:      firstStr(p, hotelAliases, "site"),
		Status:    firstStr(p, hotelAliases, "status"),
		Adults:    firstInt(p, "booking_adults", "adults"),
		Children:  firstInt(p, "booking_children", "children"),
		Infants:   firstInt(p, "booking_infants", "infants"),
	}

	for _, g := range rowList(lookupAny(p, "guests")) {
		guest := domain.Guest{
			Name:    strings.TrimSpace(strings.Join([]string{lookupStr(g, "firstname"), lookupStr(g, "lastname")}, " ")),
			Primary: boolish(lookupAny(g, "primary_client")),
		}
		if guest.Name == "" {
			guest.Name = lookupStr(g, "name")
		}
		for _, c := range rowList(lookupAny(g, "contact_details")) {
			kind := domain.ContactKind(strings.ToLower(lookupStr(c, "type")))
			if kind != domain.ContactPhone && kind != domain.ContactEmail {
				continue
			}
			val := lookupStr(c, "content")
			if val == "" {
				val = lookupStr(c, "value")
			}
			if val == "" {
				continue
			}
			guest.Contacts = append(guest.Contacts, domain.Contact{
				Kind:  kind,
				Label: lookupStr(c, "label"),
				Value: val,
			})
		}
		hb.Guests = append(hb.Guests, guest)
	}

	for _, t := range rowList(lookupAny(p, "tariffs_quoted")) {
		hb.Tariffs = append(hb.Tariffs, domain.RateEntry{
			Night:  parseDate(lookupStr(t, "stay_date")),
			Plan:   lookupStr(t, "tariff_label"),
			Amount: firstFloat(t, "tariff_total", "amount"),
		})
	}

	for _, it := range rowList(lookupAny(p, "inventory_items")) {
		hb.Inventory = append(hb.Inventory, domain.InventoryItem{
			Night:       parseDate(lookupStr(it, "stay_date")),
			Description: lookupStr(it, "description"),
		})
	}

	return hb
}

/********** restaurant booking mapper **********/

// statusAliases folds the restaurant API's historical spellings onto the
// closed enum.
var statusAliases = map[string]domain.BookingStatus{
	"request":   domain.StatusRequest,
	"pending":   domain.StatusRequest,
	"approved":  domain.StatusApproved,
	"confirmed": domain.StatusApproved,
	"declined":  domain.StatusDeclined,
	"rejected":  domain.StatusDeclined,
	"waitlist":  domain.StatusWaitlist,
	"wait_list": domain.StatusWaitlist,
	"arrived":   domain.StatusArrived,
	"seated":    domain.StatusSeated,
	"left":      domain.StatusLeft,
	"finished":  domain.StatusLeft,
	"no_show":   domain.StatusNoShow,
	"noshow":    domain.StatusNoShow,
	"cancelled": domain.StatusCancelled,
	"canceled":  domain.StatusCancelled,
	"deleted":   domain.StatusCancelled,
}

func parseBookingStatus(raw string) (domain.BookingStatus, bool) {
	s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

func mapRestaurantBooking(p map[string]any) (domain.RestaurantBooking, bool) {
	rb := domain.RestaurantBooking{
		ID:            firstInt64(p, restoAliases["id"]...),
		RestaurantRef: firstStr(p, restoAliases, "ref"),
		Date:          parseDate(firstStr(p, restoAliases, "date")),
		Covers:        firstInt(p, "covers", "party_size"),
		Phone:         firstStr(p, restoAliases, "phone"),
		Email:         firstStr(p, restoAliases, "email"),
	}
	rb.Start = parseClock(rb.Date, firstStr(p, restoAliases, "time"))

	rb.GuestName = firstStr(p, restoAliases, "name")
	if rb.GuestName == "" {
		rb.GuestName = strings.TrimSpace(strings.Join([]string{
			firstStr(p, restoAliases, "first"),
			firstStr(p, restoAliases, "last"),
		}, " "))
	}

	status, ok := parseBookingStatus(firstStr(p, restoAliases, "status"))
	if !ok {
		return rb, false
	}
	rb.Status = status

	// Notes arrive as plain strings or {text: ...} objects.
	if raw, ok := lookupAny(p, "notes").([]any); ok {
		for _, n := range raw {
			switch t := n.(type) {
			case string:
				if t != "" {
					rb.Notes = append(rb.Notes, t)
				}
			case map[string]any:
				if s := lookupStr(t, "text"); s != "" {
					rb.Notes = append(rb.Notes, s)
				}
			}
		}
	}

	for _, f := range rowList(lookupAny(p, "custom_fields")) {
		cf := domain.CustomField{
			Name:  lookupStr(f, "name"),
			Value: lookupStr(f, "value"),
			Label: lookupStr(f, "label"),
		}
		if vs, ok := lookupAny(f, "values").([]any); ok {
			cf.Multi = true
			for _, v := range vs {
				if s, ok := v.(string); ok {
					cf.Values = append(cf.Values, s)
				}
			}
		}
		if ls, ok := lookupAny(f, "labels").([]any); ok {
			for _, l := range ls {
				if s, ok := l.(string); ok {
					cf.Labels = append(cf.Labels, s)
				}
			}
		}
		if cf.Name != "" {
			rb.Fields = append(rb.Fields, cf)
		}
	}

	return rb, true
}

/********** opening hours mapper **********/

// mapDayHours resolves one day's opening hours plus special-event closures.
func mapDayHours(day map[string]any, date time.Time) (domain.DayHours, []domain.TimelineBlock) {
	dh := domain.DayHours{Date: date, Closed: boolish(lookupAny(day, "closed"))}
	for _, p := range rowList(lookupAny(day, "periods")) {
		sp := domain.ServicePeriod{
			Start:    parseClock(date, lookupStr(p, "start")),
			End:      parseClock(date, lookupStr(p, "end")),
			Interval: time.Duration(firstInt(p, "interval")) * time.Minute,
		}
		if sp.Interval <= 0 {
			sp.Interval = 15 * time.Minute
		}
		if !sp.Start.IsZero() && sp.End.After(sp.Start) {
			dh.Periods = append(dh.Periods, sp)
		}
	}

	var closures []domain.TimelineBlock
	for _, ev := range rowList(lookupAny(day, "special_events")) {
		if boolish(lookupAny(ev, "closed_all_day")) {
			dh.Closed = true
			dh.Periods = nil
			continue
		}
		start := parseClock(date, lookupStr(ev, "start"))
		end := parseClock(date, lookupStr(ev, "end"))
		if start.IsZero() || !end.After(start) {
			continue
		}
		closures = append(closures, domain.TimelineBlock{Start: start, End: end, Reason: "event"})
	}
	return dh, closures
}

// mapAvailableTimes extracts the available slot list from an availability
// payload. Returns nil (unknown) when the payload has no times key at all.
func mapAvailableTimes(p map[string]any, date time.Time) []time.Time {
	raw, ok := lookupAny(p, "times").([]any)
	if !ok {
		return nil
	}
	out := make([]time.Time, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			if t := parseClock(date, s); !t.IsZero() {
				out = append(out, t)
			}
		}
	}
	return out
}

/********** custom field definitions **********/

func mapFieldDefs(rows []map[string]any) []domain.FieldDef {
	out := make([]domain.FieldDef, 0, len(rows))
	for _, r := range rows {
		fd := domain.FieldDef{
			Name: lookupStr(r, "name"),
			Kind: lookupStr(r, "type"),
		}
		if opts, ok := lookupAny(r, "options").([]any); ok {
			for _, o := range opts {
				if s, ok := o.(string); ok {
					fd.Options = append(fd.Options, s)
				}
			}
		}
		if fd.Name != "" {
			out = append(out, fd)
		}
	}
	return out
}
