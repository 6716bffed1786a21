// Package notify composes customer-facing WhatsApp messages and hands them to
// a delivery queue.
package notify

import "strings"

// DefaultCountryCode is the Indonesian calling code.
const DefaultCountryCode = "62"

// NormalizePhone strips every non-digit and rewrites a local number into
// international form: a leading 0 becomes the country code, numbers already
// carrying the code are kept, anything else is prefixed with it.
func NormalizePhone(raw, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	digits := digitsOnly(raw)
	switch {
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:]
	case strings.HasPrefix(digits, countryCode):
		return digits
	default:
		return countryCode + digits
	}
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
