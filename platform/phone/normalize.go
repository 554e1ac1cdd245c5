// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	countryCode   = "55"
	defaultRegion = "BR"

	// whatsappSuffix is the JID suffix the Evolution API expects for
	// individual chats.
	whatsappSuffix = "@s.whatsapp.net"
	groupSuffix    = "@g.us"
)

// Digits strips every non-digit character from the input.
func Digits(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeBR canonicalizes a Brazilian phone number into the
// country-code-prefixed digit form used for WhatsApp delivery.
//
// Rules, by digit count after stripping an existing 55 prefix:
//   - 8 or 9 digits: local number without DDD, prefix country code only.
//   - 10 digits: DDD + 8-digit number; mobile numbers (first digit 6-9)
//     gained a leading 9 in the national renumbering, so it is inserted.
//   - 11 digits: DDD + 9-digit number, already canonical.
//   - anything else: pass through with the country code, no further guessing.
func NormalizeBR(input string) string {
	clean := Digits(input)
	if clean == "" {
		return ""
	}

	// Strip the country code only above 11 digits: a 10/11-digit number
	// starting with 55 is a local number with DDD 55 (Rio Grande do Sul),
	// not a country-prefixed one.
	if strings.HasPrefix(clean, countryCode) && len(clean) > 11 {
		clean = clean[len(countryCode):]
	}

	switch len(clean) {
	case 8, 9:
		return countryCode + clean
	case 10:
		ddd := clean[:2]
		number := clean[2:]
		if number[0] >= '6' && number[0] <= '9' {
			number = "9" + number
		}
		return countryCode + ddd + number
	case 11:
		return countryCode + clean
	default:
		return countryCode + clean
	}
}

// WhatsAppJID formats a phone number as an Evolution API JID
// (5511999999999@s.whatsapp.net). Existing JID suffixes are stripped first.
func WhatsAppJID(input string) string {
	clean := strings.TrimSuffix(input, whatsappSuffix)
	clean = strings.TrimSuffix(clean, groupSuffix)
	return NormalizeBR(clean) + whatsappSuffix
}

// StripJID removes WhatsApp JID suffixes, leaving the bare number. Used to
// derive session identifiers from inbound sender addresses.
func StripJID(address string) string {
	address = strings.TrimSuffix(address, whatsappSuffix)
	return strings.TrimSuffix(address, groupSuffix)
}

// NormalizeE164 formats a phone number to E.164 with Brazil as the default
// region. If parsing fails, it falls back to the country-code digit form.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return "+" + NormalizeBR(trimmed)
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
