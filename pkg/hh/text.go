package hh

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/leadforge/leadscout/internal/model"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`[\s\x{00A0}]+`)
)

// StripHTML removes markup from a posting description: tags are dropped,
// entities decoded, and runs of whitespace collapsed to single spaces.
func StripHTML(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FormatSalary renders a structured salary block as a display string:
// "от 50 000 руб.", "до 120 000 руб.", "50 000 - 120 000 руб." or the
// unspecified sentinel when the block is absent or empty.
func FormatSalary(s *Salary) string {
	if s == nil || (s.From == nil && s.To == nil) {
		return model.UnspecifiedSalary
	}

	currency := s.Currency
	if currency == "" || currency == "RUR" {
		currency = "руб."
	}

	switch {
	case s.From != nil && s.To != nil:
		return groupDigits(*s.From) + " - " + groupDigits(*s.To) + " " + currency
	case s.From != nil:
		return "от " + groupDigits(*s.From) + " " + currency
	default:
		return "до " + groupDigits(*s.To) + " " + currency
	}
}

// groupDigits inserts spaces as thousands separators.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
