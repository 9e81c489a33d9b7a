package app

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"staysync/internal/adapters/observability"
	"staysync/internal/domain"
)

// primaryScore is the sentinel rank for identifier-based matches. It sits far
// above the maximum composite total (34) so a primary match always outranks
// any accumulation of partial signals.
const primaryScore = 1000

// Composite signal weights.
const (
	scoreRoom    = 8
	scoreSurname = 7
	scorePhone   = 9
	scoreEmail   = 10
)

// Matcher scores restaurant booking candidates against a hotel booking for
// one stay-night. It is pure: candidates come in, classified matches come
// out, nothing is fetched or mutated.
type Matcher struct {
	bookingIDField string
	groupField     string
	log            zerolog.Logger
}

func NewMatcher(bookingIDField, groupField string, log zerolog.Logger) *Matcher {
	return &Matcher{bookingIDField: bookingIDField, groupField: groupField, log: log}
}

// MatchNight classifies every candidate and returns the matches ranked:
// primary matches first, then composite matches by descending score. Ties
// keep input order. Candidates excluded via the group/exclusion field never
// reach scoring.
func (m *Matcher) MatchNight(hb *domain.HotelBooking, night time.Time, candidates []domain.RestaurantBooking) []domain.MatchCandidate {
	idStr := strconv.FormatInt(hb.ID, 10)
	agent := strings.TrimSpace(hb.AgentRef)

	var out []domain.MatchCandidate
	for _, rb := range candidates {
		gx := domain.ParseGroupExclusion(rb.FieldValue(m.groupField))
		if gx.ExcludesHotel(hb.ID) {
			m.log.Debug().Int64("hotel_id", hb.ID).Int64("restaurant_id", rb.ID).Msg("candidate excluded by operator")
			continue
		}
		mc, ok := m.classify(hb, rb, night, idStr, agent)
		if !ok {
			continue
		}
		observability.ObserveMatch(string(mc.Type), string(mc.Confidence))
		m.log.Debug().
			Int64("hotel_id", hb.ID).
			Int64("restaurant_id", rb.ID).
			Str("type", string(mc.Type)).
			Str("confidence", string(mc.Confidence)).
			Int("score", mc.Score).
			Strs("signals", mc.Signals).
			Msg("match decision")
		out = append(out, mc)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// classify applies the rules in strict priority order: the first identifier
// rule that fires wins and short-circuits composite scoring.
func (m *Matcher) classify(hb *domain.HotelBooking, rb domain.RestaurantBooking, night time.Time, idStr, agent string) (domain.MatchCandidate, bool) {
	mc := domain.MatchCandidate{HotelID: hb.ID, Restaurant: rb, Night: night}
	notes := strings.ToLower(strings.Join(rb.Notes, "\n"))

	primary := func(t domain.MatchType) (domain.MatchCandidate, bool) {
		mc.Type = t
		mc.Confidence = domain.ConfidenceHigh
		mc.Score = primaryScore
		mc.Primary = true
		return mc, true
	}

	// 1. Booking-id custom field exact equality.
	if strings.TrimSpace(rb.FieldValue(m.bookingIDField)) == idStr {
		return primary(domain.MatchBookingID)
	}

	// 2. Agent reference in any custom field.
	if agent != "" {
		for _, f := range rb.Fields {
			if strings.TrimSpace(f.Value) == agent {
				return primary(domain.MatchAgentRef)
			}
		}
	}

	// 3. Hotel booking id inside concatenated notes.
	if strings.Contains(notes, idStr) {
		return primary(domain.MatchNotesBookingID)
	}

	// 4. Agent reference inside notes.
	if agent != "" && strings.Contains(notes, strings.ToLower(agent)) {
		return primary(domain.MatchNotesAgentRef)
	}

	// 5. Composite scoring.
	var score int
	var signals []string

	if hb.Site != "" && strings.Contains(notes, strings.ToLower(hb.Site)) {
		score += scoreRoom
		signals = append(signals, "room")
	}
	if pg := hb.PrimaryGuest(); pg != nil {
		if hs := normalizeName(surname(pg.Name)); hs != "" && hs == normalizeName(surname(rb.GuestName)) {
			score += scoreSurname
			signals = append(signals, "surname")
		}
		if ht := phoneTail(pg.Phone()); ht != "" && ht == phoneTail(rb.Phone) {
			score += scorePhone
			signals = append(signals, "phone")
		}
		if he := normalizeEmail(pg.Email()); he != "" && he == normalizeEmail(rb.Email) {
			score += scoreEmail
			signals = append(signals, "email")
		}
	}
	if score == 0 {
		return mc, false
	}

	mc.Type = domain.MatchComposite
	mc.Score = score
	mc.Signals = signals
	mc.Confidence = compositeConfidence(score, len(signals))
	return mc, true
}

func compositeConfidence(score, signals int) domain.Confidence {
	switch {
	case score >= 20 || signals >= 3:
		return domain.ConfidenceHigh
	case score >= 15 || signals >= 2:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
