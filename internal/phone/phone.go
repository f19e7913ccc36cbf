// Package phone formats WhatsApp phone identifiers for the two delivery
// providers. The same number arrives in several surface forms
// ("+551199998888", "551199998888", "whatsapp:+551199998888") and each
// provider wants a different one.
package phone

import "strings"

const whatsappPrefix = "whatsapp:"

// ForTwilio ensures the "whatsapp:" transport prefix the Twilio API
// expects, adding a leading "+" when the bare number lacks one.
func ForTwilio(number string) string {
	if strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}
	return whatsappPrefix + number
}

// ForMeta strips the transport prefix and the "+": the Graph API takes the
// recipient as bare digits.
func ForMeta(number string) string {
	number = strings.ReplaceAll(number, whatsappPrefix, "")
	return strings.ReplaceAll(number, "+", "")
}

// FixBrazilMobile inserts the mobile "9" that Meta sometimes drops from
// Brazilian numbers. A 12-digit number starting with country code 55 is
// missing the prefix digit, so "9" goes in after the two-digit area code.
// Anything else passes through unchanged, including the canonical
// 13-digit form.
func FixBrazilMobile(digits string) string {
	if len(digits) != 12 || !strings.HasPrefix(digits, "55") {
		return digits
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return digits
		}
	}
	return digits[:4] + "9" + digits[4:]
}
