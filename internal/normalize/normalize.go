// Package normalize produces comparison keys for company names and
// canonical forms for contact values. Everything here is pure and
// deterministic; malformed input maps to the empty string.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Russian)

// legalMarkers is the ordered replacement list applied to lowered company
// names. The substring form is deliberate: it reproduces the matching
// behavior the rest of the system was tuned against, collisions included.
var legalMarkers = [][2]string{
	{"ооо ", ""},
	{"оао ", ""},
	{"зао ", ""},
	{"пао ", ""},
	{"ип ", ""},
	{"индивидуальный предприниматель ", ""},
	{" ооо", ""},
	{" оао", ""},
	{`"`, ""},
	{"'", ""},
	{"«", ""},
	{"»", ""},
}

// Company returns the comparison key for a company name: lowered, trimmed,
// with legal-entity markers and quote characters stripped. The mapping is
// intentionally lossy: distinct companies may collide and spelling
// variants of one company may not. Empty input yields an empty key.
func Company(name string) string {
	if name == "" {
		return ""
	}
	key := strings.TrimSpace(lower.String(name))
	for _, m := range legalMarkers {
		key = strings.ReplaceAll(key, m[0], m[1])
	}
	return strings.TrimSpace(key)
}

// ContactValue trims surrounding whitespace. Raw text is otherwise
// preserved; use CompareKey for dedup comparisons.
func ContactValue(v string) string {
	return strings.TrimSpace(v)
}

// CompareKey is the lowered, trimmed form of a contact value used for
// case/whitespace-insensitive deduplication. It is never emitted.
func CompareKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// PhoneDigits strips everything but digits and '+' from a phone-like
// string. Used for validity checks only; the raw text is what gets
// reported.
func PhoneDigits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EntityKey builds the cache/grouping identity for a (company, city)
// pair: lower-trimmed company joined with the lowered city.
func EntityKey(company, city string) string {
	return strings.ToLower(strings.TrimSpace(company)) + "_" + strings.ToLower(city)
}
