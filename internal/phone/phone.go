// Package phone canonicalizes Mozambican mobile numbers.
//
// The canonical form is twelve digits: the country code 258 followed by the
// nine-digit subscriber number. Everything that feeds the payment validator
// goes through Normalize, which rejects any input it cannot bring into that
// exact shape. Digits is the informal best-effort variant and is only safe
// for display and search.
package phone

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	countryCode  = "258"
	localDigits  = 9
	canonicalLen = 12
)

// Normalize returns the canonical 258-prefixed form of raw, or ok=false when
// the input cannot be normalized. It strips every non-digit character (a
// leading + included), then accepts exactly two shapes: nine digits, which
// get the country code prepended, and twelve digits already starting with
// 258. No other correction is attempted.
func Normalize(raw string) (string, bool) {
	digits := Digits(raw)
	switch {
	case len(digits) == localDigits:
		return countryCode + digits, true
	case len(digits) == canonicalLen && strings.HasPrefix(digits, countryCode):
		return digits, true
	default:
		return "", false
	}
}

// Digits strips raw down to its digit characters with no shape guarantee.
// Do not feed its output into anything that assumes the canonical form.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WaLink builds a WhatsApp deep link for the given number and message text.
// The phone segment carries digits only, no plus sign and no spaces; the
// link format is an external contract and must stay exactly this shape.
func WaLink(rawPhone, text string) (string, bool) {
	normalized, ok := Normalize(rawPhone)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", normalized, url.QueryEscape(text)), true
}
