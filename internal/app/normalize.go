package app

import "strings"

// phoneTailLen is how many trailing digits two phone numbers must share to be
// considered the same line, ignoring country-code and formatting noise.
const phoneTailLen = 8

var nameStripper = strings.NewReplacer("-", "", "'", "", " ", "", ".", "")

// normalizeName lowercases and strips the punctuation that differs between
// the two systems' name fields.
func normalizeName(s string) string {
	return nameStripper.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// surname is the last whitespace-separated token of a full name.
func surname(name string) string {
	fields := strings.Fields(strings.TrimSpace(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// normalizePhone strips everything except digits.
func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// phoneTail returns the last phoneTailLen normalized digits, or "" when the
// number is too short to compare reliably.
func phoneTail(s string) string {
	d := normalizePhone(s)
	if len(d) < phoneTailLen {
		return ""
	}
	return d[len(d)-phoneTailLen:]
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// titleCase upper-cases the first letter of each word, lower-cases the rest.
func titleCase(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	for i, f := range fields {
		lower := strings.ToLower(f)
		r := []rune(lower)
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}

// outboundPhone formats a phone number for the restaurant API. Numbers with
// an explicit "+" pass through; anything else gets the configured default
// country prefix with the leading trunk zero dropped.
func outboundPhone(s, defaultPrefix string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if strings.HasPrefix(t, "+") {
		return "+" + normalizePhone(t)
	}
	d := normalizePhone(t)
	d = strings.TrimPrefix(d, "0")
	return defaultPrefix + d
}
