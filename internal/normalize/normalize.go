// Package normalize canonicalizes the messy identity fields that arrive on
// raw submission events. All functions are pure and idempotent over their
// own output.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// gmailDomains share Gmail's aliasing rules: dots in the local part are
// ignored and anything after a '+' is discarded.
var gmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// phoneDigits is the number of trailing digits that identify a phone line.
const phoneDigits = 10

// Email lowercases and trims an address and applies Gmail-family aliasing.
// It returns the canonical address, the domain, and whether the input was a
// usable address at all.
func Email(raw string) (normalized string, domain string, ok bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", "", false
	}
	local, domain, found := strings.Cut(s, "@")
	if !found || domain == "" {
		return "", "", false
	}
	if gmailDomains[domain] {
		if plus := strings.Index(local, "+"); plus >= 0 {
			local = local[:plus]
		}
		local = strings.ReplaceAll(local, ".", "")
	}
	if local == "" {
		return "", "", false
	}
	return local + "@" + domain, domain, true
}

// Phone strips everything but ASCII digits and keeps the last 10, so local
// conventions like +91 prefixes, spaces and dashes collapse to one key.
// Inputs with fewer than 10 digits are rejected rather than guessed at.
func Phone(raw string) (normalized string, ok bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < phoneDigits {
		return "", false
	}
	return digits[len(digits)-phoneDigits:], true
}

// Name collapses whitespace runs and title-cases the result. Display only,
// never used for identity matching.
func Name(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}
