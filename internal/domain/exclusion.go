package domain

import (
	"strconv"
	"strings"
)

// GroupExclusionField is the structured value stored inside a single
// restaurant custom field: group links, individual booking links, and hotel
// bookings explicitly excluded from matching.
//
// Wire form is comma-delimited tokens: "G#<id>" for groups, "#<id>" for
// linked bookings, "NOT-#<id>" for exclusions. A bare integer parses as a
// linked booking. Encode never emits empty or duplicate tokens, so
// ParseGroupExclusion(g.Encode()) round-trips losslessly.
type GroupExclusionField struct {
	Groups   []int64
	Linked   []int64
	Excluded []int64
}

func ParseGroupExclusion(s string) GroupExclusionField {
	var g GroupExclusionField
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		switch {
		case strings.HasPrefix(tok, "NOT-#"):
			g.Excluded = appendID(g.Excluded, tok[len("NOT-#"):])
		case strings.HasPrefix(tok, "G#"):
			g.Groups = appendID(g.Groups, tok[len("G#"):])
		case strings.HasPrefix(tok, "#"):
			g.Linked = appendID(g.Linked, tok[len("#"):])
		default:
			g.Linked = appendID(g.Linked, tok)
		}
	}
	return g
}

func (g GroupExclusionField) Encode() string {
	var toks []string
	seen := map[string]struct{}{}
	add := func(t string) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		toks = append(toks, t)
	}
	for _, id := range g.Groups {
		add("G#" + strconv.FormatInt(id, 10))
	}
	for _, id := range g.Linked {
		add("#" + strconv.FormatInt(id, 10))
	}
	for _, id := range g.Excluded {
		add("NOT-#" + strconv.FormatInt(id, 10))
	}
	return strings.Join(toks, ",")
}

// ExcludesHotel reports whether the hotel booking has been marked NOT-#id.
func (g GroupExclusionField) ExcludesHotel(id int64) bool {
	for _, e := range g.Excluded {
		if e == id {
			return true
		}
	}
	return false
}

// AddExclusion marks a hotel booking excluded. Idempotent.
func (g *GroupExclusionField) AddExclusion(id int64) {
	if !g.ExcludesHotel(id) {
		g.Excluded = append(g.Excluded, id)
	}
}

func appendID(dst []int64, raw string) []int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return dst
	}
	for _, v := range dst {
		if v == n {
			return dst
		}
	}
	return append(dst, n)
}
